package handlers

import (
	"net/http"

	"pebblely/internal/domain"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Themes lists the background presets accepted by create-background and inpaint.
func (a *App) Themes(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, domain.Themes())
}

// CheckCredits returns the vendor credit balance as a bare JSON integer.
func (a *App) CheckCredits(w http.ResponseWriter, r *http.Request) {
	credits, err := a.Credits.Credits(r.Context())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, credits)
}
