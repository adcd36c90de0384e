package handlers

import (
	"net/http"

	"github.com/pribylovaa/forum-web-client/internal/models"
	"github.com/pribylovaa/forum-web-client/internal/oauth"
	"github.com/pribylovaa/forum-web-client/internal/session"
	apierrors "github.com/pribylovaa/forum-web-client/internal/web/errors"
)

// SocialURLs отдаёт адреса входа через провайдеров.
func (h *Handlers) SocialURLs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"google": h.OAuth.GoogleAuthorizeURL(),
		"github": h.OAuth.GithubAuthorizeURL(),
	})
}

// OAuthCallback принимает возврат из провайдера и обменивает его на
// временную пару токенов. Успешный обмен не делает пользователя
// аутентифицированным: следующий шаг — выбор роли.
func (h *Handlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	cb, err := oauth.ParseCallback(r.URL)
	if err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	ex := oauth.NewExchanger(h.client(w, r), h.OAuth.RedirectURI)
	if _, err := ex.Exchange(r.Context(), cb); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"state": ex.State().String(),
		"next":  "/choose_role/",
	})
}

// ChooseRole закрепляет роль за пользователем социального входа
// и повышает временную пару до первичной.
func (h *Handlers) ChooseRole(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Role models.Role `json:"role"`
	}
	if err := decodeStrict(r, &in); err != nil {
		apierrors.WriteError(w, r, errInvalidArgument())
		return
	}

	client := h.client(w, r)
	if err := oauth.Promote(r.Context(), client, in.Role); err != nil {
		apierrors.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, session.Status(client.Store()))
}
