package submission

import (
	"errors"
	stdhttp "net/http"

	"github.com/consensuslabs/festival/backend/internal/edittoken"
	apperrors "github.com/consensuslabs/festival/backend/internal/errors"
	"github.com/consensuslabs/festival/backend/internal/http/middleware"
	"github.com/gin-gonic/gin"
)

// DefaultMaxRequestBytes bounds a whole submission body.
const DefaultMaxRequestBytes int64 = 256 << 20

// multipartMemory is the part of a form kept in memory before spilling to disk.
const multipartMemory = 32 << 20

// Handler handles HTTP requests for submission endpoints
type Handler struct {
	service         *Service
	responseHandler ResponseHandler
	maxBytes        int64
}

// NewHandler creates a new submission handler; maxBytes <= 0 selects
// DefaultMaxRequestBytes.
func NewHandler(service *Service, responseHandler ResponseHandler, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestBytes
	}
	return &Handler{
		service:         service,
		responseHandler: responseHandler,
		maxBytes:        maxBytes,
	}
}

// RegisterRoutes registers all submission routes
func (h *Handler) RegisterRoutes(router gin.IRouter) {
	submissions := router.Group("/submissions")
	{
		submissions.POST("", h.handleCreate)
		submissions.GET("/edit/:token", h.handleOpenEdit)
		submissions.PUT("/edit/:token", h.handleAmend)
	}
}

// handleCreate accepts a new entry with its media files. Responds 201 with
// the receipt, 400 with field errors, 403 when human verification fails and
// 413 when the body is over the limit.
func (h *Handler) handleCreate(c *gin.Context) {
	req, ok := h.readRequest(c)
	if !ok {
		return
	}
	defer req.Form.RemoveAll()

	receipt, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Set(middleware.SubmissionIDKey, receipt.ID)
	h.responseHandler.CreatedResponse(c, receipt, "Submission received")
}

// handleOpenEdit returns the submission behind an edit token: 404 for an
// unknown link, 409 once used, 410 after expiry.
func (h *Handler) handleOpenEdit(c *gin.Context) {
	sub, err := h.service.OpenEdit(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Set(middleware.SubmissionIDKey, sub.ID.String())
	h.responseHandler.SuccessResponse(c, ToView(sub), "Submission loaded")
}

// handleAmend replaces the details of a submission through its edit token
// and consumes the token.
func (h *Handler) handleAmend(c *gin.Context) {
	req, ok := h.readRequest(c)
	if !ok {
		return
	}
	defer req.Form.RemoveAll()

	receipt, err := h.service.Amend(c.Request.Context(), c.Param("token"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.Set(middleware.SubmissionIDKey, receipt.ID)
	h.responseHandler.SuccessResponse(c, receipt, "Submission updated")
}

func (h *Handler) readRequest(c *gin.Context) (Request, bool) {
	c.Request.Body = stdhttp.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *stdhttp.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.responseHandler.ErrorResponse(c, stdhttp.StatusRequestEntityTooLarge, apperrors.CodeValidation,
				"Request is too large", err)
			return Request{}, false
		}
		h.responseHandler.ErrorResponse(c, stdhttp.StatusBadRequest, apperrors.CodeMalformedSubmission,
			"Request must be a multipart form", errors.Join(ErrMalformed, err))
		return Request{}, false
	}
	return Request{
		Form:     c.Request.MultipartForm,
		RemoteIP: c.ClientIP(),
		DeviceID: middleware.DeviceID(c),
	}, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var validation apperrors.ValidationErrors
	var storageErr *apperrors.StorageError
	switch {
	case errors.As(err, &validation):
		h.responseHandler.ValidationErrorsResponse(c, validation)
	case errors.Is(err, ErrVerificationFailed):
		h.responseHandler.ForbiddenResponse(c, apperrors.CodeVerificationFailed,
			"Human verification failed, please verify again")
	case errors.Is(err, edittoken.ErrInvalid):
		h.responseHandler.ErrorResponse(c, stdhttp.StatusNotFound, apperrors.CodeEditTokenInvalid,
			"Edit link is invalid", err)
	case errors.Is(err, edittoken.ErrExpired):
		h.responseHandler.ErrorResponse(c, stdhttp.StatusGone, apperrors.CodeEditTokenExpired,
			"Edit link has expired", err)
	case errors.Is(err, edittoken.ErrUsed):
		h.responseHandler.ErrorResponse(c, stdhttp.StatusConflict, apperrors.CodeEditTokenUsed,
			"Edit link was already used", err)
	case errors.Is(err, ErrNotFound):
		h.responseHandler.ErrorResponse(c, stdhttp.StatusNotFound, apperrors.CodeSubmissionNotFound,
			"Submission not found", err)
	case errors.As(err, &storageErr):
		h.responseHandler.ErrorResponse(c, stdhttp.StatusInternalServerError, apperrors.CodeStorageFailed,
			"Failed to store submission", err)
	default:
		h.responseHandler.InternalErrorResponse(c, "Failed to process submission", err)
	}
}
