package invalidation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kyomu-reader/kyomu/internal/config"
)

func revalidatorFor(url string) *Revalidator {
	cfg := &config.Config{}
	cfg.Revalidate.URL = url
	cfg.Revalidate.Secret = "testsecret"
	cfg.Revalidate.TimeoutSeconds = 5
	return NewRevalidator(cfg)
}

func TestRevalidatorPostsPaths(t *testing.T) {
	var gotAuth string
	var gotBody map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/revalidate", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"revalidated": true})
	}))
	defer server.Close()

	r := revalidatorFor(server.URL)
	err := r.Revalidate(context.Background(), []string{"/manga/foo", "/"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer testsecret", gotAuth)
	assert.Equal(t, []string{"/manga/foo", "/"}, gotBody["paths"])
}

func TestRevalidatorRejectsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	err := revalidatorFor(server.URL).Revalidate(context.Background(), []string{"/"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestRevalidatorTransportError(t *testing.T) {
	// Point at a server that is already closed.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	err := revalidatorFor(server.URL).Revalidate(context.Background(), []string{"/"})
	assert.Error(t, err)
}
