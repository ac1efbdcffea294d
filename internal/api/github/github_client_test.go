package github

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/devconnector-api/config"
	"github.com/FACorreiaa/devconnector-api/internal/api"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.GithubConfig{
		BaseURL:      srv.URL + "/",
		ClientID:     "id",
		ClientSecret: "secret",
		Timeout:      time.Second,
	}, slog.Default())
}

func TestHTTPClient_Repos(t *testing.T) {
	ctx := context.Background()

	t.Run("Passthrough", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/octocat/repos", r.URL.Path)
			assert.Equal(t, "5", r.URL.Query().Get("per_page"))
			assert.Equal(t, "created:asc", r.URL.Query().Get("sort"))
			assert.Equal(t, "id", r.URL.Query().Get("client_id"))
			assert.Equal(t, "secret", r.URL.Query().Get("client_secret"))
			assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"name":"hello-world","stargazers_count":3}]`))
		})

		repos, err := client.Repos(ctx, "octocat")
		require.NoError(t, err)
		assert.JSONEq(t, `[{"name":"hello-world","stargazers_count":3}]`, string(repos))
	})

	t.Run("UpstreamNotFound", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
		})

		_, err := client.Repos(ctx, "ghost-user")
		require.ErrorIs(t, err, api.ErrUpstream)
		assert.Equal(t, http.StatusBadRequest, api.StatusFor(err))
		assert.Equal(t, "No Github profile found", api.MessageFor(err))
	})

	t.Run("InvalidUsernameSkipsRequest", func(t *testing.T) {
		called := false
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		for _, name := range []string{"", "../admin", "-leading", "a b", "toolong-toolong-toolong-toolong-toolong1"} {
			_, err := client.Repos(ctx, name)
			assert.ErrorIs(t, err, api.ErrUpstream, name)
		}
		assert.False(t, called)
	})

	t.Run("NotJSON", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		})

		_, err := client.Repos(ctx, "octocat")
		assert.ErrorIs(t, err, api.ErrUpstream)
	})
}

func TestHTTPClient_SafeClientRefusesLoopback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach a loopback server")
	}))
	defer srv.Close()

	client := NewClient(config.GithubConfig{BaseURL: srv.URL, Timeout: time.Second, SafeClient: true}, slog.Default())
	_, err := client.Repos(context.Background(), "octocat")
	assert.ErrorIs(t, err, api.ErrUpstream)
}

func TestHandler_GetRepos(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/missing/repos" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`[{"name":"repo"}]`))
	})
	router := chi.NewRouter()
	router.Get("/api/profile/github/{username}", NewHandler(client, slog.Default()).GetRepos)

	t.Run("Found", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/profile/github/octocat", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"name":"repo"}]`, w.Body.String())
	})

	t.Run("Missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/profile/github/missing", nil))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"success":false,"msg":"No Github profile found"}`, w.Body.String())
	})
}
