package handlers

import (
	"net/http"

	apierrors "github.com/pribylovaa/forum-web-client/internal/web/errors"
)

// MyProfile возвращает профиль текущего пользователя.
func (h *Handlers) MyProfile(w http.ResponseWriter, r *http.Request) {
	user, err := h.client(w, r).Me(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Startups возвращает каталог стартапов.
func (h *Handlers) Startups(w http.ResponseWriter, r *http.Request) {
	startups, err := h.client(w, r).Startups(r.Context())
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, startups)
}
