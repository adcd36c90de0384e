package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pribylovaa/forum-web-client/internal/models"
	"github.com/pribylovaa/forum-web-client/internal/tokens"
	"github.com/pribylovaa/forum-web-client/internal/tokens/tokentest"
	"github.com/stretchr/testify/require"
)

func newBareClient(base http.RoundTripper) *http.Client {
	return &http.Client{Transport: NewBare(Options{
		UserAgent: "forum-web-client-test",
		Base:      base,
	})}
}

func newAuthedClient(store tokens.Store, refresh RefreshFunc, base http.RoundTripper) *http.Client {
	coord := NewCoordinator(store, refresh, 5*time.Second)
	auth := NewAuthLayer(store, coord)

	return &http.Client{Transport: NewAuthenticated(Options{
		UserAgent: "forum-web-client-test",
		Base:      base,
	}, auth)}
}

func TestMetadata_RequestIDAndUserAgent(t *testing.T) {
	t.Parallel()

	var gotRID, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRID = r.Header.Get("X-Request-Id")
		gotUA = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	client := newBareClient(nil)

	ctx := context.WithValue(context.Background(), CtxRequestID, "rid-from-ctx")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, "rid-from-ctx", gotRID)
	require.Equal(t, "forum-web-client-test", gotUA)
}

func TestMetadata_GeneratesRequestID(t *testing.T) {
	t.Parallel()

	var gotRID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRID = r.Header.Get("X-Request-Id")
	}))
	defer srv.Close()

	resp, err := newBareClient(nil).Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.NotEmpty(t, gotRID)
}

func TestTimeout_CancelsSlowCall(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	client := &http.Client{Transport: NewBare(Options{Timeout: 50 * time.Millisecond})}

	_, err := client.Get(srv.URL)
	require.Error(t, err)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestAuthLayer_AttachesBearer(t *testing.T) {
	t.Parallel()

	access := tokentest.Sign(t, 1, time.Now().Add(time.Hour))

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
	}))
	defer srv.Close()

	store := tokens.NewMemoryStore()
	store.SetPair(models.TokenPair{AccessToken: access, RefreshToken: "refresh"})

	refresh := func(ctx context.Context, refreshToken string) (models.TokenPair, error) {
		t.Fatal("refresh must not be called")
		return models.TokenPair{}, nil
	}

	resp, err := newAuthedClient(store, refresh, nil).Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, "Bearer "+access, gotAuth)
}

func TestAuthLayer_RetryOnceAfterRefresh(t *testing.T) {
	t.Parallel()

	oldAccess := tokentest.Sign(t, 1, time.Now().Add(time.Hour))
	newAccess := tokentest.Sign(t, 1, time.Now().Add(2*time.Hour))

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer "+newAccess {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := tokens.NewMemoryStore()
	store.SetPair(models.TokenPair{AccessToken: oldAccess, RefreshToken: "refresh-1"})

	var refreshCalls atomic.Int32
	refresh := func(ctx context.Context, refreshToken string) (models.TokenPair, error) {
		refreshCalls.Add(1)
		require.Equal(t, "refresh-1", refreshToken)
		return models.TokenPair{AccessToken: newAccess, RefreshToken: "refresh-2"}, nil
	}

	resp, err := newAuthedClient(store, refresh, nil).Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 2, calls.Load())
	require.EqualValues(t, 1, refreshCalls.Load())
	require.Equal(t, newAccess, store.AccessToken())
	require.Equal(t, "refresh-2", store.RefreshToken())
}

func TestAuthLayer_SecondUnauthorizedReturnedAsIs(t *testing.T) {
	t.Parallel()

	access := tokentest.Sign(t, 1, time.Now().Add(time.Hour))
	fresh := tokentest.Sign(t, 1, time.Now().Add(2*time.Hour))

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := tokens.NewMemoryStore()
	store.SetPair(models.TokenPair{AccessToken: access, RefreshToken: "refresh"})

	refresh := func(ctx context.Context, refreshToken string) (models.TokenPair, error) {
		return models.TokenPair{AccessToken: fresh, RefreshToken: "refresh-2"}, nil
	}

	resp, err := newAuthedClient(store, refresh, nil).Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.EqualValues(t, 2, calls.Load())
}

func TestAuthLayer_RefreshFailureIsTerminal(t *testing.T) {
	t.Parallel()

	access := tokentest.Sign(t, 1, time.Now().Add(time.Hour))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := tokens.NewMemoryStore()
	store.SetPair(models.TokenPair{AccessToken: access, RefreshToken: "stale"})

	refresh := func(ctx context.Context, refreshToken string) (models.TokenPair, error) {
		return models.TokenPair{}, fmt.Errorf("backend: 401")
	}

	_, err := newAuthedClient(store, refresh, nil).Get(srv.URL)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Empty(t, store.AccessToken())
	require.Empty(t, store.RefreshToken())
}

func TestAuthLayer_ReplaysRequestBody(t *testing.T) {
	t.Parallel()

	oldAccess := tokentest.Sign(t, 1, time.Now().Add(time.Hour))
	newAccess := tokentest.Sign(t, 1, time.Now().Add(2*time.Hour))

	var bodies []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+newAccess {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	store := tokens.NewMemoryStore()
	store.SetPair(models.TokenPair{AccessToken: oldAccess, RefreshToken: "refresh"})

	refresh := func(ctx context.Context, refreshToken string) (models.TokenPair, error) {
		return models.TokenPair{AccessToken: newAccess, RefreshToken: "refresh-2"}, nil
	}

	resp, err := newAuthedClient(store, refresh, nil).Post(srv.URL, "application/json", strings.NewReader(`{"k":"v"}`))
	require.NoError(t, err)
	resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, []string{`{"k":"v"}`, `{"k":"v"}`}, bodies)
}

func TestCoordinator_SingleFlight(t *testing.T) {
	t.Parallel()

	fresh := tokentest.Sign(t, 1, time.Now().Add(time.Hour))

	store := tokens.NewMemoryStore()
	store.SetRefreshToken("refresh-shared")

	var refreshCalls atomic.Int32
	gate := make(chan struct{})
	refresh := func(ctx context.Context, refreshToken string) (models.TokenPair, error) {
		refreshCalls.Add(1)
		<-gate
		return models.TokenPair{AccessToken: fresh, RefreshToken: "refresh-next"}, nil
	}

	coord := NewCoordinator(store, refresh, 5*time.Second)

	const workers = 16
	results := make(chan string, workers)
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			access, err := coord.RefreshAccessToken(context.Background())
			results <- access
			errs <- err
		}()
	}

	// Даём всем вызовам встать в очередь singleflight.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()
	close(results)
	close(errs)

	require.EqualValues(t, 1, refreshCalls.Load())
	for access := range results {
		require.Equal(t, fresh, access)
	}
	for err := range errs {
		require.NoError(t, err)
	}

	require.Equal(t, fresh, store.AccessToken())
	require.Equal(t, "refresh-next", store.RefreshToken())
}

func TestCoordinator_NoRefreshToken(t *testing.T) {
	t.Parallel()

	store := tokens.NewMemoryStore()
	store.SetAccessToken("orphan-access")

	coord := NewCoordinator(store, func(ctx context.Context, refreshToken string) (models.TokenPair, error) {
		t.Fatal("refresh must not be called")
		return models.TokenPair{}, nil
	}, time.Second)

	_, err := coord.RefreshAccessToken(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Empty(t, store.AccessToken())
	require.Empty(t, store.RefreshToken())
}

func TestCoordinator_FailureClearsTokens(t *testing.T) {
	t.Parallel()

	store := tokens.NewMemoryStore()
	store.SetPair(models.TokenPair{AccessToken: "a", RefreshToken: "stale"})

	coord := NewCoordinator(store, func(ctx context.Context, refreshToken string) (models.TokenPair, error) {
		return models.TokenPair{}, fmt.Errorf("exchange rejected")
	}, time.Second)

	_, err := coord.RefreshAccessToken(context.Background())
	require.ErrorIs(t, err, ErrSessionExpired)
	require.Empty(t, store.AccessToken())
	require.Empty(t, store.RefreshToken())
}

func TestCoordinator_IndependentOfCallerCancellation(t *testing.T) {
	t.Parallel()

	fresh := tokentest.Sign(t, 1, time.Now().Add(time.Hour))

	store := tokens.NewMemoryStore()
	store.SetRefreshToken("refresh")

	coord := NewCoordinator(store, func(ctx context.Context, refreshToken string) (models.TokenPair, error) {
		select {
		case <-ctx.Done():
			return models.TokenPair{}, ctx.Err()
		case <-time.After(30 * time.Millisecond):
		}
		return models.TokenPair{AccessToken: fresh, RefreshToken: "refresh-next"}, nil
	}, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	access, err := coord.RefreshAccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, fresh, access)
}
