package captcha

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/consensuslabs/festival/backend/internal/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func siteverify(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "s3cret", r.PostForm.Get("secret"))
		resp := siteverifyResponse{Success: r.PostForm.Get("response") == "good"}
		if !resp.Success {
			resp.ErrorCodes = []string{"invalid-input-response"}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPVerifier(t *testing.T) {
	srv := siteverify(t)
	v := NewHTTPVerifier(&Config{Secret: "s3cret", VerifyURL: srv.URL}, srv.Client())

	assert.NoError(t, v.Verify(context.Background(), "good", "203.0.113.9"))
	assert.ErrorIs(t, v.Verify(context.Background(), "bad", ""), ErrRejected)
	assert.ErrorIs(t, v.Verify(context.Background(), " ", ""), ErrMissingToken)
}

func TestHTTPVerifierServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewHTTPVerifier(&Config{VerifyURL: srv.URL}, srv.Client()).Verify(context.Background(), "good", "")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRejected)
}

func TestGuardRejectsReplay(t *testing.T) {
	g := NewGuard(AllowAll{}, cache.NewMemoryService(), time.Minute)

	require.NoError(t, g.Verify(context.Background(), "tok", ""))
	assert.ErrorIs(t, g.Verify(context.Background(), "tok", ""), ErrReplayed)
	assert.NoError(t, g.Verify(context.Background(), "other", ""))
	assert.ErrorIs(t, g.Verify(context.Background(), "", ""), ErrMissingToken)
}
