package forumapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pribylovaa/forum-web-client/internal/forumapi/transport"
	"github.com/pribylovaa/forum-web-client/internal/models"
	"github.com/pribylovaa/forum-web-client/internal/tokens"
	"github.com/pribylovaa/forum-web-client/internal/tokens/tokentest"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *tokens.MemoryStore, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store := tokens.NewMemoryStore()
	client := New(Config{
		BaseURL:        srv.URL,
		StartupsPath:   "startups/",
		ClientID:       "client-id-1",
		Timeout:        5 * time.Second,
		RefreshTimeout: 5 * time.Second,
		UserAgent:      "forum-web-client-test",
	}, store)

	return client, store, srv
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestLogin_StoresPair(t *testing.T) {
	t.Parallel()

	access := tokentest.Sign(t, 1, time.Now().Add(time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Role     int    `json:"role"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, 1, in.Role)
		require.Equal(t, "founder@example.com", in.Email)
		require.Equal(t, "secret", in.Password)

		writeJSON(t, w, map[string]string{"access": access, "refresh": "refresh-1"})
	})

	client, store, _ := newTestClient(t, mux)

	err := client.Login(context.Background(), models.RoleStartup, "founder@example.com", "secret")
	require.NoError(t, err)
	require.Equal(t, access, store.AccessToken())
	require.Equal(t, "refresh-1", store.RefreshToken())
}

// TestLogin_RoleWireFormat — на проводе роль уходит числом (1/2),
// а не именем: backend ожидает идентификатор из общего маппинга.
func TestLogin_RoleWireFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		role models.Role
		want int
	}{
		{models.RoleStartup, 1},
		{models.RoleInvestor, 2},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(string(tc.role), func(t *testing.T) {
			t.Parallel()

			access := tokentest.Sign(t, tc.want, time.Now().Add(time.Hour))

			mux := http.NewServeMux()
			mux.HandleFunc("POST /api/v1/auth/login/", func(w http.ResponseWriter, r *http.Request) {
				var raw map[string]json.RawMessage
				require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
				require.JSONEq(t, fmt.Sprintf("%d", tc.want), string(raw["role"]))

				writeJSON(t, w, map[string]string{"access": access, "refresh": "refresh-1"})
			})

			client, _, _ := newTestClient(t, mux)

			require.NoError(t, client.Login(context.Background(), tc.role, "u@example.com", "secret"))
		})
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, store, _ := newTestClient(t, mux)

	err := client.Login(context.Background(), models.RoleInvestor, "x@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	require.Empty(t, store.RefreshToken())
}

func TestLogin_UnknownRole(t *testing.T) {
	t.Parallel()

	client, _, _ := newTestClient(t, http.NewServeMux())

	err := client.Login(context.Background(), models.Role("admin"), "x@example.com", "p")
	require.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLogout_ClearsTokensEvenOnBackendError(t *testing.T) {
	t.Parallel()

	access := tokentest.Sign(t, 1, time.Now().Add(time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/logout/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	client, store, _ := newTestClient(t, mux)
	store.SetPair(models.TokenPair{AccessToken: access, RefreshToken: "refresh-1"})

	err := client.Logout(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
	require.Empty(t, store.AccessToken())
	require.Empty(t, store.RefreshToken())
}

func TestLogout_NoSessionIsNoop(t *testing.T) {
	t.Parallel()

	client, _, _ := newTestClient(t, http.NewServeMux())

	require.NoError(t, client.Logout(context.Background()))
}

func TestMe_RefreshAndRetryOn401(t *testing.T) {
	t.Parallel()

	oldAccess := tokentest.Sign(t, 2, time.Now().Add(time.Hour))
	newAccess := tokentest.Sign(t, 2, time.Now().Add(2*time.Hour))

	var refreshCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls.Add(1)

		var in struct {
			Refresh string `json:"refresh"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "refresh-1", in.Refresh)

		writeJSON(t, w, map[string]string{"access": newAccess, "refresh": "refresh-2"})
	})
	mux.HandleFunc("GET /api/v1/auth/me/", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+newAccess {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(t, w, models.User{Email: "inv@example.com", RoleName: "investor"})
	})

	client, store, _ := newTestClient(t, mux)
	store.SetPair(models.TokenPair{AccessToken: oldAccess, RefreshToken: "refresh-1"})

	user, err := client.Me(context.Background())
	require.NoError(t, err)
	require.Equal(t, "inv@example.com", user.Email)
	require.EqualValues(t, 1, refreshCalls.Load())
	require.Equal(t, "refresh-2", store.RefreshToken())
}

func TestMe_SessionExpired(t *testing.T) {
	t.Parallel()

	access := tokentest.Sign(t, 1, time.Now().Add(time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/token/refresh/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc("GET /api/v1/auth/me/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	client, store, _ := newTestClient(t, mux)
	store.SetPair(models.TokenPair{AccessToken: access, RefreshToken: "stale"})

	_, err := client.Me(context.Background())
	require.ErrorIs(t, err, transport.ErrSessionExpired)
	require.Empty(t, store.AccessToken())
	require.Empty(t, store.RefreshToken())
}

func TestStartups(t *testing.T) {
	t.Parallel()

	access := tokentest.Sign(t, 2, time.Now().Add(time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/startups/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer "+access, r.Header.Get("Authorization"))
		writeJSON(t, w, []models.Startup{
			{ID: 1, CompanyName: "Acme", City: "Berlin", Country: "DE", Industry: "fintech"},
		})
	})

	client, store, _ := newTestClient(t, mux)
	store.SetPair(models.TokenPair{AccessToken: access, RefreshToken: "refresh"})

	startups, err := client.Startups(context.Background())
	require.NoError(t, err)
	require.Len(t, startups, 1)
	require.Equal(t, "Acme", startups[0].CompanyName)
}

func TestChangeRole_UsesExplicitBearer(t *testing.T) {
	t.Parallel()

	finalAccess := tokentest.Sign(t, 1, time.Now().Add(time.Hour))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/change-role/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer provisional-access", r.Header.Get("Authorization"))

		var in struct {
			Role int `json:"role"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, 1, in.Role)

		writeJSON(t, w, map[string]string{"access": finalAccess, "refresh": "final-refresh"})
	})

	client, _, _ := newTestClient(t, mux)

	pair, err := client.ChangeRole(context.Background(), 1, "provisional-access")
	require.NoError(t, err)
	require.Equal(t, finalAccess, pair.AccessToken)
	require.Equal(t, "final-refresh", pair.RefreshToken)
}

func TestGithubToken(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/github-token/", func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Code        string `json:"code"`
			RedirectURI string `json:"redirect_uri"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Equal(t, "gh-code-1", in.Code)
		require.Equal(t, "https://app.example.com/oauth2callback/", in.RedirectURI)

		writeJSON(t, w, map[string]string{"github_access_token": "gho_token"})
	})

	client, _, _ := newTestClient(t, mux)

	token, err := client.GithubToken(context.Background(), "gh-code-1", "https://app.example.com/oauth2callback/")
	require.NoError(t, err)
	require.Equal(t, "gho_token", token)
}

func TestConvertToken_FormEncoded(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/convert-token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		require.Equal(t, "convert_token", r.PostForm.Get("grant_type"))
		require.Equal(t, "client-id-1", r.PostForm.Get("client_id"))
		require.Equal(t, BackendGithub, r.PostForm.Get("backend"))
		require.Equal(t, "gho_token", r.PostForm.Get("token"))

		writeJSON(t, w, map[string]string{
			"access_token":  "provisional-access",
			"refresh_token": "provisional-refresh",
		})
	})

	client, _, _ := newTestClient(t, mux)

	pair, err := client.ConvertToken(context.Background(), BackendGithub, "gho_token")
	require.NoError(t, err)
	require.Equal(t, "provisional-access", pair.AccessToken)
	require.Equal(t, "provisional-refresh", pair.RefreshToken)
}

func TestDo_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"forbidden", http.StatusForbidden, ErrForbidden},
		{"not_found", http.StatusNotFound, ErrNotFound},
		{"bad_request", http.StatusBadRequest, ErrInvalidArgument},
		{"unprocessable", http.StatusUnprocessableEntity, ErrInvalidArgument},
		{"internal", http.StatusInternalServerError, ErrUnavailable},
		{"bad_gateway", http.StatusBadGateway, ErrUnavailable},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mux := http.NewServeMux()
			mux.HandleFunc("POST /api/v1/auth/github-token/", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
			})

			client, _, _ := newTestClient(t, mux)

			_, err := client.GithubToken(context.Background(), "code", "uri")
			require.ErrorIs(t, err, tc.want)
		})
	}
}
