package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"edunova-server/internal/api"
	"edunova-server/internal/models"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var creds Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.service.Login(creds)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, result)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var in RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := h.service.Register(in)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	api.WriteData(w, http.StatusCreated, result)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		api.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	if err := h.service.Logout(token); err != nil {
		api.WriteError(w, http.StatusInternalServerError, "logout failed")
		return
	}
	api.WriteData(w, http.StatusOK, true)
}

// Me returns the user resolved from the session token.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := CurrentUser(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	api.WriteData(w, http.StatusOK, sanitize(user))
}

// ---- admin user management ----

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	api.WriteData(w, http.StatusOK, h.service.ListUsers())
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in CreateUserInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.service.CreateUser(in)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	api.WriteData(w, http.StatusCreated, user)
}

func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Role models.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		api.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.service.UpdateRole(mux.Vars(r)["id"], in.Role)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, user)
}

func (h *Handler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.ToggleActive(mux.Vars(r)["id"])
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteUser(mux.Vars(r)["id"]); err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, true)
}

func (h *Handler) writeAuthError(w http.ResponseWriter, err error) {
	var ve ValidationError
	switch {
	case errors.As(err, &ve):
		api.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrAccountDisabled):
		api.WriteError(w, http.StatusUnauthorized, err.Error())
	default:
		api.WriteFailure(w, err)
	}
}
