package api

import (
	"net/http"
	"regexp"
	"strings"
)

var localhostPattern = regexp.MustCompile(`^(localhost|127\.0\.0\.1):\d+$`)

func cleanOrigin(origin string) string {
	cleanedOrigin := origin
	for _, scheme := range []string{"https://", "http://", "wss://", "ws://"} {
		cleanedOrigin = strings.TrimPrefix(cleanedOrigin, scheme)
	}
	if idx := strings.Index(cleanedOrigin, "/"); idx != -1 {
		cleanedOrigin = cleanedOrigin[:idx]
	}
	return cleanedOrigin
}

func isAllowedOrigin(origin string, allowedOrigins []string, devMode bool) bool {
	cleanedRequest := cleanOrigin(origin)

	// Allow localhost for development
	if devMode && localhostPattern.MatchString(cleanedRequest) {
		return true
	}

	// Check against configured allowed origins
	for _, allowed := range allowedOrigins {
		cleanedAllowed := cleanOrigin(allowed)
		if cleanedAllowed == cleanedRequest {
			return true
		}
	}

	return false
}

func wrapMuxWithCorsAndOrigins(mux *http.ServeMux, app *Application) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin == "" {
			referer := r.Header.Get("Referer")
			if referer != "" {
				origin = referer
			}
		}

		if origin == "" {
			handleCors(mux.ServeHTTP)(w, r)
			return
		}

		// Check if origin is allowed
		if isAllowedOrigin(origin, app.Config.AllowedOrigins, app.Config.DevMode) {
			handleCors(mux.ServeHTTP)(w, r)
			return
		}

		app.Logger.Warn("origin rejected", "origin", cleanOrigin(origin))
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("origin not allowed: " + cleanOrigin(origin)))
	})
}

func (app *Application) BuildRoutes(mux *http.ServeMux) *http.ServeMux {
	finalMux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, app.Metrics.instrument(pattern, h))
	}

	// Public endpoints
	handle("/", app.home)
	handle("/v1/colors/random", app.getRandomColor)
	handle("/v1/colors/describe", app.describeColor)
	handle("/v1/contest/entries", app.submitEntry)
	handle("/v1/admin/login", app.adminLogin)
	handle("/v1/admin/logout", app.adminLogout)

	// Admin endpoints
	handle("/v1/admin/entries", app.verifyPermissions(app.listEntries))
	handle("/v1/admin/reference", app.verifyPermissions(app.referenceColor))
	handle("/v1/admin/ranking", app.verifyPermissions(app.getRanking))
	handle("/v1/admin/tags", app.verifyPermissions(app.listTags))
	handle("/v1/admin/tags/create", app.verifyPermissions(app.createTag))
	handle("/v1/admin/tags/delete", app.verifyPermissions(app.deleteTag))
	handle("/v1/admin/tags/rename", app.verifyPermissions(app.renameTag))
	handle("/v1/admin/entries/tags/add", app.verifyPermissions(app.addEntryTags))
	handle("/v1/admin/entries/tags/remove", app.verifyPermissions(app.removeEntryTags))
	handle("/v1/admin/export", app.verifyPermissions(app.exportEntries))
	handle("/v1/admin/import", app.verifyPermissions(app.importEntries))
	handle("/v1/admin/reset", app.verifyPermissions(app.resetContest))

	mux.Handle("/metrics", app.Metrics.Handler())

	// Wrap entire mux with CORS and origins check
	finalMux.Handle("/", wrapMuxWithCorsAndOrigins(mux, app))

	return finalMux
}
