package api

import (
	"errors"
	"net/http"

	"github.com/color-game/contest/models"
)

func handleCors(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Headers", "Access-Control-Allow-Credentials, Access-Control-Allow-Origin, Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
		if r.Method == "OPTIONS" {
			return
		} else {
			h.ServeHTTP(w, r)
		}
	}
}

// adminFromJWT validates the admin access token cookie
func (app *Application) adminFromJWT(r *http.Request) (*models.AdminClaims, error) {
	cookie, err := r.Cookie(models.JWT.ACCESS_COOKIE_NAME)
	if err != nil {
		return nil, errors.New("no JWT cookie found")
	}
	return models.ValidateJWTToken(cookie.Value, app.Config.JwtSecret, app.now)
}

// Verify the caller holds an admin token
func (app *Application) verifyPermissions(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := app.adminFromJWT(r)
		if err != nil {
			app.invalidAuthorization(w, r, err)
			return
		}

		app.Logger.Debug("admin request", "path", r.URL.Path, "jti", claims.ID)
		h.ServeHTTP(w, r)
	}
}
