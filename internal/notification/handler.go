package notification

import (
	"net/http"

	"edunova-server/internal/api"
	"edunova-server/internal/auth"

	"github.com/gorilla/mux"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	api.WriteData(w, http.StatusOK, h.service.ForUser(user.ID))
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	n, err := h.service.MarkRead(user.ID, mux.Vars(r)["id"])
	if err != nil {
		api.WriteFailure(w, err)
		return
	}
	api.WriteData(w, http.StatusOK, n)
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r.Context())
	if !ok {
		api.WriteError(w, http.StatusUnauthorized, "authorization required")
		return
	}
	api.WriteData(w, http.StatusOK, h.service.MarkAllRead(user.ID))
}
