package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lehigh-university-libraries/idealab/internal/auth"
)

type loginResponse struct {
	*auth.Login
	Studio any `json:"studio"`
}

func (h *Handler) HandleAuthConfig(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{
		"google_client_id": h.googleClientID,
	})
}

func (h *Handler) HandlePasswordLogin(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	login, err := h.gate.PasswordLogin(request.Email, request.Password)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.completeLogin(w, r, login)
}

func (h *Handler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Credential string `json:"credential"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	login, err := h.gate.GoogleLogin(request.Credential)
	if errors.Is(err, auth.ErrMissingCredential) {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		h.writeError(w, "Failed to sign in with Google: "+err.Error(), http.StatusInternalServerError)
		return
	}
	h.completeLogin(w, r, login)
}

func (h *Handler) completeLogin(w http.ResponseWriter, r *http.Request, login *auth.Login) {
	auth.SetSessionCookie(w, login.SessionID, h.secureCookies || auth.IsSecure(r))
	h.writeJSON(w, loginResponse{Login: login, Studio: login.View.Snapshot()})
}
