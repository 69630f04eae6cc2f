// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookclub/bookclub/internal/auth"
	"github.com/bookclub/bookclub/internal/profile"
	"github.com/bookclub/bookclub/internal/shelf"
	"github.com/bookclub/bookclub/internal/volumes"
)

// staticUserRepo satisfies auth.UserRepository with a single user.
type staticUserRepo struct{ user *auth.User }

func (r *staticUserRepo) Create(context.Context, *auth.User) error { return nil }

func (r *staticUserRepo) GetByUsername(_ context.Context, username string) (*auth.User, error) {
	if r.user != nil && r.user.Username == username {
		return r.user, nil
	}
	return nil, auth.ErrNotFound
}

func (r *staticUserRepo) Delete(context.Context, ulid.ULID) error { return nil }

// noopTokenRepo satisfies auth.TokenRepository; every lookup misses.
type noopTokenRepo struct{}

func (noopTokenRepo) Insert(_ context.Context, token *auth.Token) (*auth.Token, error) {
	return token, nil
}

func (noopTokenRepo) Get(context.Context, ulid.ULID, string) (*auth.Token, error) {
	return nil, auth.ErrNotFound
}

func (noopTokenRepo) Delete(context.Context, string) (int64, error) { return 0, nil }

// noopProfileRepo satisfies profile.Repository; every lookup misses.
type noopProfileRepo struct{}

func (noopProfileRepo) Create(context.Context, *profile.Profile) error { return nil }

func (noopProfileRepo) Get(context.Context, string) (*profile.Profile, error) {
	return nil, auth.ErrNotFound
}

func (noopProfileRepo) Update(context.Context, *profile.Profile) error { return auth.ErrNotFound }

// emptyShelfRepo satisfies shelf.Repository with no entries.
type emptyShelfRepo struct{}

func (emptyShelfRepo) Upsert(context.Context, *shelf.Entry) error { return nil }

func (emptyShelfRepo) Get(context.Context, string, string) (*shelf.Entry, error) {
	return nil, auth.ErrNotFound
}

func (emptyShelfRepo) Delete(context.Context, string, string) (int64, error) { return 0, nil }

func (emptyShelfRepo) ListByUser(context.Context, string) ([]shelf.Entry, error) { return nil, nil }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	hasher, err := auth.NewBcryptHasherWithCost(bcrypt.MinCost)
	require.NoError(t, err)

	authSvc, err := auth.NewService(&staticUserRepo{}, noopTokenRepo{}, hasher)
	require.NoError(t, err)

	profileSvc, err := profile.NewService(noopProfileRepo{})
	require.NoError(t, err)

	shelfSvc, err := shelf.NewService(emptyShelfRepo{})
	require.NoError(t, err)

	return NewRouter(&RouterConfig{
		AuthService:    authSvc,
		ProfileService: profileSvc,
		ShelfService:   shelfSvc,
		VolumesClient:  volumes.NewClient("http://127.0.0.1:0", time.Second),
		Logger:         discardLogger(),
	})
}

func TestNewRouter_OptionsCatchAll(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/anything/at/all", nil)
	req.Header.Set("Origin", "http://example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRouter_SetsRequestID(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestNewRouter_UnknownRoute404(t *testing.T) {
	router := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ServeAndShutdown(t *testing.T) {
	defer goleak.VerifyNone(t)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	srv := New(addr, newTestRouter(t), Options{})

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	// Wait for the listener to come up.
	client := &http.Client{Timeout: time.Second}
	var resp *http.Response
	require.Eventually(t, func() bool {
		resp, err = client.Get(fmt.Sprintf("http://%s/health", addr))
		return err == nil
	}, 5*time.Second, 25*time.Millisecond)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	client.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case serveErr := <-errCh:
		assert.True(t, errors.Is(serveErr, http.ErrServerClosed))
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
