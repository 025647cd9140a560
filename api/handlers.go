package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/color-game/contest/colors"
	"github.com/color-game/contest/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// GET /
func (app *Application) home(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Color Contest API")
}

// GET /v1/colors/random - A primer color for the next contestant
func (app *Application) getRandomColor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		app.requireGetMethod(w, r, ErrGET)
		return
	}

	sample := app.randomSample()
	writeJSON(w, http.StatusOK, models.RandomColorResponse{
		Color:       sample,
		Description: colors.Describe(sample, app.Palette),
	})
}

// sampleFromRequest resolves a hex or OKLCH color request
func sampleFromRequest(req models.ColorRequest) (models.ColorSample, error) {
	if req.Hex != "" {
		return colors.FromHex(req.Hex)
	}
	if req.Color == nil {
		return models.ColorSample{}, errors.New("either hex or color is required")
	}
	sample := req.Color.Sample()
	if !colors.Valid(sample) {
		return models.ColorSample{}, errors.New("color must have l in [0,1] and c >= 0")
	}
	return sample, nil
}

// POST /v1/colors/describe
func (app *Application) describeColor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r, ErrPOST)
		return
	}

	var req models.ColorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		app.badJSONRequest(w, r, err)
		return
	}

	sample, err := sampleFromRequest(req)
	if err != nil {
		app.badRequest(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, colors.Describe(sample, app.Palette))
}

// POST /v1/contest/entries - Record a contestant's guess
func (app *Application) submitEntry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r, ErrPOST)
		return
	}

	var submission models.SubmitEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&submission); err != nil {
		app.badJSONRequest(w, r, err)
		return
	}

	name := strings.TrimSpace(submission.Name)
	contact := strings.TrimSpace(submission.Contact)
	if name == "" || contact == "" {
		app.badRequest(w, r, errors.New("name and contact are required"))
		return
	}
	if submission.GuessedColor == nil {
		app.badRequest(w, r, errors.New("guessedColor is required"))
		return
	}

	guessed := submission.GuessedColor.Sample()
	primer := guessed
	if submission.PrimerColor != nil {
		primer = submission.PrimerColor.Sample()
	}
	if !colors.Valid(guessed) || !colors.Valid(primer) {
		app.badRequest(w, r, errors.New("colors must have l in [0,1] and c >= 0"))
		return
	}

	entry, err := app.Ledger.SubmitEntry(r.Context(), name, contact, guessed, primer)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	app.Metrics.submissions.Inc()

	writeJSON(w, http.StatusCreated, models.SubmitEntryResponse{
		Entry:       entry,
		Description: colors.Describe(guessed, app.Palette),
		Message:     fmt.Sprintf("Thanks, %s! Your guess has been recorded.", entry.Name),
	})
}

// POST /v1/admin/login
func (app *Application) adminLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r, ErrPOST)
		return
	}

	creds := &models.AdminLoginRequest{}
	if err := json.NewDecoder(r.Body).Decode(creds); err != nil {
		app.badJSONRequest(w, r, err)
		return
	}

	if err := models.VerifyPassword(app.Config.AdminPasswordHash, creds.Password); err != nil {
		app.invalidCredentials(w, r, err)
		return
	}

	now := app.now()
	accessExpiry := now.Add(app.Config.AccessDuration())
	claims := models.NewAdminClaims(now, accessExpiry)
	accessTokenString, err := models.SignAdminToken(claims, app.Config.JwtSecret)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	sameSite := http.SameSiteStrictMode
	if app.Config.JwtDomain == "" {
		sameSite = http.SameSiteNoneMode
	}

	// Set access token cookie
	http.SetCookie(w, &http.Cookie{
		Name:     models.JWT.ACCESS_COOKIE_NAME,
		Value:    accessTokenString,
		HttpOnly: true,
		Secure:   true,
		SameSite: sameSite,
		Path:     "/",
		Domain:   app.Config.JwtDomain,
		Expires:  accessExpiry,
	})

	app.Logger.Info("admin logged in", "jti", claims.ID, "expires", accessExpiry)
	writeJSON(w, http.StatusOK, models.AdminLoginResponse{ExpiresAt: accessExpiry.UnixMilli()})
}

// POST /v1/admin/logout
func (app *Application) adminLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		app.requirePostMethod(w, r, ErrPOST)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     models.JWT.ACCESS_COOKIE_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
		Domain:   app.Config.JwtDomain,
		MaxAge:   -1,
	})
	w.WriteHeader(http.StatusNoContent)
}
