package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/consensuslabs/festival/backend/internal/errors"
	"github.com/consensuslabs/festival/backend/testhelper"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r
}

func TestValidationErrorsResponse(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h := NewResponseHandler(testhelper.NewTestLogger(false))
	h.ValidationErrorsResponse(c, apperrors.ValidationErrors{
		{Field: "email", Message: "email is invalid"},
		{Field: "video", Message: "video is too long"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	r := decode(t, w)
	assert.False(t, r.Success)
	require.Len(t, r.Errors, 2)
	assert.Equal(t, "video", r.Errors[1].Field)
	assert.Equal(t, apperrors.CodeValidation, r.Error.Code)
}

func TestCreatedResponse(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	NewResponseHandler(testhelper.NewTestLogger(false)).CreatedResponse(c, map[string]string{"id": "abc"}, "created")

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"created","data":{"id":"abc"}}`, w.Body.String())
}

func TestInternalErrorResponseLogs(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	log := testhelper.NewTestLogger(false)

	NewResponseHandler(log).InternalErrorResponse(c, "could not store files", errors.New("disk full"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, apperrors.CodeInternal, decode(t, w).Error.Code)
	require.Len(t, log.GetErrorMessages(), 1)
	assert.Equal(t, "disk full", log.GetErrorMessages()[0].Fields["error"])
}

func TestRecoveryMiddleware(t *testing.T) {
	log := testhelper.NewTestLogger(false)
	router := gin.New()
	router.Use(RecoveryMiddleware(NewResponseHandler(log), log))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotEmpty(t, log.GetErrorMessages())
}

func TestCORSMiddlewarePreflight(t *testing.T) {
	router := gin.New()
	router.Use(CORSMiddleware("X-Device-Id"))
	router.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Device-Id")
}
