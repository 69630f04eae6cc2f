// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Bookclub Contributors

//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/bookclub/bookclub/internal/auth"
	authpg "github.com/bookclub/bookclub/internal/auth/postgres"
	"github.com/bookclub/bookclub/internal/httpserver"
	"github.com/bookclub/bookclub/internal/profile"
	profilepg "github.com/bookclub/bookclub/internal/profile/postgres"
	"github.com/bookclub/bookclub/internal/shelf"
	shelfpg "github.com/bookclub/bookclub/internal/shelf/postgres"
	"github.com/bookclub/bookclub/internal/store"
	"github.com/bookclub/bookclub/internal/volumes"
)

// apiEnv holds the resources for one API test environment.
type apiEnv struct {
	container testcontainers.Container
	pool      *pgxpool.Pool
	books     *httptest.Server
	api       *httptest.Server
}

func setupAPIEnv(ctx context.Context) (*apiEnv, error) {
	env := &apiEnv{}

	container, err := pgcontainer.Run(ctx,
		"postgres:18-alpine",
		pgcontainer.WithDatabase("bookclub_test"),
		pgcontainer.WithUsername("bookclub"),
		pgcontainer.WithPassword("bookclub"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}
	env.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		env.cleanup(ctx)
		return nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		env.cleanup(ctx)
		return nil, err
	}
	if err := migrator.Up(); err != nil {
		_ = migrator.Close()
		env.cleanup(ctx)
		return nil, err
	}
	_ = migrator.Close()

	env.pool, err = store.NewPool(ctx, connStr)
	if err != nil {
		env.cleanup(ctx)
		return nil, err
	}

	env.books = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind":"books#volumes","items":[{"id":"vol-1"}]}`))
	}))

	hasher, err := auth.NewBcryptHasherWithCost(bcrypt.MinCost)
	if err != nil {
		env.cleanup(ctx)
		return nil, err
	}

	authSvc, err := auth.NewService(
		authpg.NewUserRepository(env.pool),
		authpg.NewTokenRepository(env.pool),
		hasher,
	)
	if err != nil {
		env.cleanup(ctx)
		return nil, err
	}

	profileSvc, err := profile.NewService(profilepg.NewRepository(env.pool))
	if err != nil {
		env.cleanup(ctx)
		return nil, err
	}

	shelfSvc, err := shelf.NewService(shelfpg.NewRepository(env.pool))
	if err != nil {
		env.cleanup(ctx)
		return nil, err
	}

	router := httpserver.NewRouter(&httpserver.RouterConfig{
		AuthService:    authSvc,
		ProfileService: profileSvc,
		ShelfService:   shelfSvc,
		VolumesClient:  volumes.NewClient(env.books.URL, 5*time.Second),
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	env.api = httptest.NewServer(router)

	return env, nil
}

func (env *apiEnv) cleanup(ctx context.Context) {
	if env.api != nil {
		env.api.Close()
	}
	if env.books != nil {
		env.books.Close()
	}
	if env.pool != nil {
		env.pool.Close()
	}
	if env.container != nil {
		_ = env.container.Terminate(ctx)
	}
}

func postJSON(url string, body any) (*http.Response, []byte, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, nil, err
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(raw)) //nolint:gosec // test URL
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	return resp, data, err
}

func doRequest(method, url, token string, body any) (*http.Response, []byte, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return nil, nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	return resp, data, err
}

var _ = Describe("Bookclub API", Ordered, func() {
	var (
		ctx   context.Context
		env   *apiEnv
		grant auth.Grant
	)

	BeforeAll(func() {
		ctx = context.Background()

		var err error
		env, err = setupAPIEnv(ctx)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterAll(func() {
		if env != nil {
			env.cleanup(ctx)
		}
	})

	It("registers a new user and returns a grant", func() {
		resp, body, err := postJSON(env.api.URL+"/api/v1/register", map[string]string{
			"username": "alice",
			"password": "open sesame",
			"email":    "alice@example.com",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK), string(body))

		Expect(json.Unmarshal(body, &grant)).To(Succeed())
		Expect(grant.Username).To(Equal("alice"))
		Expect(grant.UserID).NotTo(BeEmpty())
		Expect(grant.AccessToken).To(HaveLen(auth.TokenLength))
		Expect(grant.Expiry).To(BeTemporally(">", time.Now()))
	})

	It("rejects a duplicate registration", func() {
		resp, body, err := postJSON(env.api.URL+"/api/v1/register", map[string]string{
			"username": "alice",
			"password": "another",
			"email":    "alice2@example.com",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusConflict))
		Expect(string(body)).To(Equal("User already exists"))
	})

	It("created a default profile at registration", func() {
		resp, body, err := doRequest(http.MethodGet, env.api.URL+"/api/v1/"+grant.UserID+"/profile", "", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK), string(body))

		var p profile.Profile
		Expect(json.Unmarshal(body, &p)).To(Succeed())
		Expect(p.DisplayName).To(Equal("alice"))
	})

	It("accepts the token on a protected endpoint", func() {
		resp, body, err := doRequest(http.MethodGet,
			env.api.URL+"/api/v1/"+grant.UserID+"/protected_endpoint", grant.AccessToken, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(body)).To(Equal("Successfully accessed data using correct credentials"))
	})

	It("issues a second independent token on login", func() {
		resp, body, err := postJSON(env.api.URL+"/api/v1/login", map[string]string{
			"username": "alice",
			"password": "open sesame",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK), string(body))

		var second auth.Grant
		Expect(json.Unmarshal(body, &second)).To(Succeed())
		Expect(second.UserID).To(Equal(grant.UserID))
		Expect(second.AccessToken).NotTo(Equal(grant.AccessToken))
	})

	It("keeps shelves exclusive across add and move", func() {
		target := env.api.URL + "/api/v1/" + grant.UserID + "/shelves/exclusive"

		resp, body, err := doRequest(http.MethodPatch, target, grant.AccessToken, map[string]any{
			"op": "add", "volume_id": "vol-1", "to_shelf": "to-read",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK), string(body))

		resp, body, err = doRequest(http.MethodPatch, target, grant.AccessToken, map[string]any{
			"op": "move", "volume_id": "vol-1", "to_shelf": "read", "set_completed": true,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK), string(body))

		resp, body, err = doRequest(http.MethodGet,
			env.api.URL+"/api/v1/"+grant.UserID+"/shelves", "", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		var us shelf.UserShelf
		Expect(json.Unmarshal(body, &us)).To(Succeed())
		Expect(us.ToRead).To(BeEmpty())
		Expect(us.Reading).To(BeEmpty())
		Expect(us.Read).To(HaveLen(1))
		Expect(us.Read[0].VolumeID).To(Equal("vol-1"))
		Expect(us.Read[0].Completed).To(BeTrue())
	})

	It("proxies volume searches to the books upstream", func() {
		resp, body, err := doRequest(http.MethodGet, env.api.URL+"/api/v1/volumes?q=golang", "", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(body)).To(ContainSubstring("books#volumes"))
	})

	It("deletes the token on deactivate", func() {
		resp, body, err := postJSON(env.api.URL+"/api/v1/deactivate", map[string]string{
			"access_token": grant.AccessToken,
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(string(body)).To(Equal("Successfully deleted token"))
	})

	It("rejects the deleted token afterwards", func() {
		resp, body, err := doRequest(http.MethodGet,
			env.api.URL+"/api/v1/"+grant.UserID+"/protected_endpoint", grant.AccessToken, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusUnauthorized))
		Expect(string(body)).To(Equal("Invalid token/user_id combination"))
	})
})
