package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"qc-console/internal/model"
	"qc-console/internal/service"
	"qc-console/internal/session"
	"qc-console/pkg/apierror"
)

type AuthHandler struct {
	service  *service.AuthService
	sessions *session.Store
}

func NewAuthHandler(service *service.AuthService, sessions *session.Store) *AuthHandler {
	return &AuthHandler{service: service, sessions: sessions}
}

// Login authenticates against the plant backend and opens the station
// session. The station holds one session at a time; the current operator
// must sign out before another can sign in.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	if h.sessions.Authenticated() {
		writeError(w, model.ErrSessionActive)
		return
	}

	var payload model.Credentials
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New(apierror.KindValidation, "BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	payload.Email = strings.TrimSpace(payload.Email)
	if payload.Email == "" || payload.Password == "" {
		writeError(w, apierror.Validation("BAD_CREDENTIALS", "email and password are required", ""))
		return
	}

	token, err := h.service.Login(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.sessions.Login(token); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, h.sessions.User())
}

// Logout notifies the backend, then clears the local session. The local
// clear happens even when the backend call fails.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.service.Logout(r.Context())
	h.sessions.Logout()

	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true})
}

// Me returns the operator of the current session.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := h.sessions.User()
	if user == nil {
		writeError(w, model.ErrNoSession)
		return
	}

	writeSuccess(w, http.StatusOK, user)
}

// Register creates a backend account. Admin only; routing enforces the role.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var payload model.Registration
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, apierror.New(apierror.KindValidation, "BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest))
		return
	}

	result, err := h.service.Register(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, result)
}

// Roles lists the assignable backend roles for the registration screen.
func (h *AuthHandler) Roles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.Roles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, roles)
}
