package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/consensuslabs/festival/backend/internal/errors"
	"github.com/consensuslabs/festival/backend/internal/intake/draft"
	"github.com/consensuslabs/festival/backend/internal/intake/encode"
	"github.com/consensuslabs/festival/backend/internal/intake/field"
	"github.com/consensuslabs/festival/backend/internal/intake/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func minimalDraft() draft.Draft {
	return draft.Draft{
		Identity: draft.Identity{FirstName: "Agnès", Email: "agnes@example.com"},
		Work:     draft.Work{TitleEN: "The Gleaners", Tags: []string{"essay"}},
		Media: draft.Media{
			Video: &draft.Attachment{File: media.NewMemoryFile("film.mp4", "video/mp4", []byte("v"))},
		},
		Consent: draft.Consent{
			RightsAccepted: true,
			Verification:   draft.VerificationToken{Value: "tok", ObtainedAt: now, TTL: time.Minute},
		},
	}
}

type recorded struct {
	method   string
	path     string
	device   string
	titleEN  string
	tags     []string
	hasVideo bool
}

func newServer(t *testing.T, status int, body interface{}) (*httptest.Server, *recorded, *int32) {
	t.Helper()
	rec := &recorded{}
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.device = r.Header.Get(DeviceHeader)
		if r.Method != http.MethodGet {
			if err := r.ParseMultipartForm(1 << 20); err == nil {
				rec.titleEN = r.FormValue(field.TitleEN)
				rec.tags = r.MultipartForm.Value["tags[]"]
				_, rec.hasVideo = r.MultipartForm.File[field.Video]
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		switch b := body.(type) {
		case string:
			_, _ = w.Write([]byte(b))
		default:
			_ = json.NewEncoder(w).Encode(b)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, rec, &hits
}

func newClient(t *testing.T, baseURL string, devices DeviceSource) *Client {
	t.Helper()
	c, err := New(Config{
		BaseURL: baseURL,
		Encoder: encode.New(encode.Options{Now: func() time.Time { return now }}),
		Devices: devices,
	})
	require.NoError(t, err)
	return c
}

func TestSubmitCreated(t *testing.T) {
	srv, rec, _ := newServer(t, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    map[string]string{"id": "5f0c", "status": "pending"},
	})

	receipt, err := newClient(t, srv.URL, StaticDevice("device-42")).Submit(context.Background(), minimalDraft())
	require.NoError(t, err)
	assert.Equal(t, &draft.Receipt{ID: "5f0c", Status: "pending"}, receipt)

	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/v1/submissions", rec.path)
	assert.Equal(t, "device-42", rec.device)
	assert.Equal(t, "The Gleaners", rec.titleEN)
	assert.Equal(t, []string{"essay"}, rec.tags)
	assert.True(t, rec.hasVideo)
}

func TestSubmitWithoutDevice(t *testing.T) {
	srv, rec, _ := newServer(t, http.StatusCreated, map[string]interface{}{
		"success": true,
		"data":    map[string]string{"id": "1"},
	})

	_, err := newClient(t, srv.URL, nil).Submit(context.Background(), minimalDraft())
	require.NoError(t, err)
	assert.Empty(t, rec.device)
}

func TestSubmitValidationErrors(t *testing.T) {
	srv, _, _ := newServer(t, http.StatusBadRequest, map[string]interface{}{
		"success": false,
		"errors": []map[string]string{
			{"field": "video", "message": "video is 151.00 seconds long, the maximum is 150 seconds"},
			{"field": "email", "message": "email address is invalid"},
		},
	})

	_, err := newClient(t, srv.URL, nil).Submit(context.Background(), minimalDraft())
	var verrs apperrors.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	require.Len(t, verrs, 2)
	first, _ := verrs.First(field.Video)
	assert.Equal(t, "video is 151.00 seconds long, the maximum is 150 seconds", first.Message)
}

func TestSubmitVerificationRejected(t *testing.T) {
	srv, _, _ := newServer(t, http.StatusForbidden, map[string]interface{}{
		"success": false,
		"error":   map[string]string{"code": "VERIFICATION_FAILED", "message": "verification failed"},
	})
	_, err := newClient(t, srv.URL, nil).Submit(context.Background(), minimalDraft())
	assert.ErrorIs(t, err, ErrVerificationRejected)
}

func TestSubmitServerError(t *testing.T) {
	srv, _, _ := newServer(t, http.StatusInternalServerError, map[string]interface{}{
		"success": false,
		"error":   map[string]string{"code": "STORAGE_ERROR", "message": "could not store files"},
	})
	_, err := newClient(t, srv.URL, nil).Submit(context.Background(), minimalDraft())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.StatusCode)
	assert.Equal(t, "STORAGE_ERROR", se.Code)
	assert.Equal(t, "could not store files", se.Message)
}

func TestSubmitMalformedResponse(t *testing.T) {
	srv, _, _ := newServer(t, http.StatusBadGateway, "<html>bad gateway</html>")
	_, err := newClient(t, srv.URL, nil).Submit(context.Background(), minimalDraft())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
}

func TestSubmitTokenGateMakesNoRequest(t *testing.T) {
	srv, _, hits := newServer(t, http.StatusCreated, map[string]interface{}{"success": true})
	d := minimalDraft()
	d.Consent.Verification = draft.VerificationToken{}

	_, err := newClient(t, srv.URL, nil).Submit(context.Background(), d)
	assert.ErrorIs(t, err, draft.ErrVerificationMissing)
	assert.Zero(t, atomic.LoadInt32(hits))
}

func TestOpenEditFailures(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrEditTokenInvalid},
		{http.StatusGone, ErrEditTokenExpired},
		{http.StatusConflict, ErrEditTokenUsed},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv, _, _ := newServer(t, tt.status, map[string]interface{}{"success": false})
			_, err := newClient(t, srv.URL, nil).OpenEdit(context.Background(), "tok")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAmendUsedToken(t *testing.T) {
	srv, rec, _ := newServer(t, http.StatusConflict, map[string]interface{}{
		"success": false,
		"error":   map[string]string{"code": "EDIT_TOKEN_USED"},
	})
	_, err := newClient(t, srv.URL, nil).Amend(context.Background(), "abc", minimalDraft())
	assert.ErrorIs(t, err, ErrEditTokenUsed)
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/api/v1/submissions/edit/abc", rec.path)
}

func TestNewRejectsBadBaseURL(t *testing.T) {
	_, err := New(Config{BaseURL: "localhost:8080"})
	assert.Error(t, err)
}
