package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/Bessima/botform-intake/internal/customerror"
	"github.com/Bessima/botform-intake/internal/handlers/schemas"
	"github.com/Bessima/botform-intake/internal/middlewares/logger"
	"github.com/Bessima/botform-intake/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxBodySize = 1 << 20

type SubmissionServiceI interface {
	ListSubmissions(ctx context.Context) ([]models.Submission, error)
	ListSubmissionsByEmail(ctx context.Context, email string) ([]models.Submission, error)
	GetSubmission(ctx context.Context, id int64) (*models.Submission, error)
	GetSubmissionByReference(ctx context.Context, code string) (*models.Submission, error)
	CreateSubmission(ctx context.Context, body []byte) (*models.Submission, error)
	UpdateSubmissionStatus(ctx context.Context, id int64, status string) (*models.Submission, error)
	Validate(body []byte) error
	Rules() schemas.SchemaResponse
}

type SubmissionsHandler struct {
	service SubmissionServiceI
}

func NewSubmissionsHandler(service SubmissionServiceI) *SubmissionsHandler {
	return &SubmissionsHandler{service: service}
}

func (h *SubmissionsHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		submissions []models.Submission
		err         error
	)
	if email := r.URL.Query().Get("email"); email != "" {
		submissions, err = h.service.ListSubmissionsByEmail(r.Context(), email)
	} else {
		submissions, err = h.service.ListSubmissions(r.Context())
	}
	if err != nil {
		writeServiceError(w, err, "Failed to fetch submissions")
		return
	}

	writeJSON(w, http.StatusOK, submissions)
}

func (h *SubmissionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	submission, err := h.service.GetSubmission(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch submission")
		return
	}

	writeJSON(w, http.StatusOK, submission)
}

func (h *SubmissionsHandler) GetByReference(w http.ResponseWriter, r *http.Request) {
	submission, err := h.service.GetSubmissionByReference(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeServiceError(w, err, "Failed to fetch submission")
		return
	}

	writeJSON(w, http.StatusOK, submission)
}

func (h *SubmissionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	submission, err := h.service.CreateSubmission(r.Context(), body)
	if err != nil {
		writeServiceError(w, err, "Failed to create submission")
		return
	}

	writeJSON(w, http.StatusCreated, submission)
}

// Validate проверяет форму без сохранения.
func (h *SubmissionsHandler) Validate(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	if err := h.service.Validate(body); err != nil {
		writeServiceError(w, err, "Failed to validate submission")
		return
	}

	writeJSON(w, http.StatusOK, schemas.ValidateResponse{Valid: true})
}

func (h *SubmissionsHandler) Schema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Rules())
}

func (h *SubmissionsHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var req schemas.StatusRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Status == nil || *req.Status == "" {
		writeJSON(w, http.StatusBadRequest, schemas.ErrorResponse{Message: "Status is required and must be a string"})
		return
	}

	submission, err := h.service.UpdateSubmissionStatus(r.Context(), id, *req.Status)
	if err != nil {
		writeServiceError(w, err, "Failed to update submission status")
		return
	}

	logger.Log.Info("Submission status updated",
		zap.Int64("id", submission.ID),
		zap.String("status", string(submission.Status)),
	)
	writeJSON(w, http.StatusOK, submission)
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, schemas.ErrorResponse{Message: "Invalid submission ID"})
		return 0, false
	}
	return id, true
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		logger.Log.Info("can't read body", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, schemas.ErrorResponse{Message: "can't read body"})
		return nil, false
	}
	return body, true
}

// writeServiceError переводит ошибку сервиса в ответ. Для 5xx клиент
// получает только общий текст, подробности остаются в логе.
func writeServiceError(w http.ResponseWriter, err error, failMessage string) {
	var validationErr *customerror.ValidationError
	if errors.As(err, &validationErr) {
		logger.Log.Debug("validation failed", zap.Any("fields", validationErr.Fields))
		writeJSON(w, http.StatusBadRequest, schemas.ErrorResponse{
			Message: "Validation error",
			Errors:  validationErr.Fields,
		})
		return
	}

	var notFound *customerror.NotFoundError
	if errors.As(err, &notFound) {
		logger.Log.Debug(notFound.Error())
		writeJSON(w, http.StatusNotFound, schemas.ErrorResponse{Message: "Submission not found"})
		return
	}

	code := http.StatusInternalServerError
	var customErr customerror.CustomError
	if errors.As(err, &customErr) && customErr.GetHTTPCode() >= http.StatusInternalServerError {
		code = customErr.GetHTTPCode()
	}
	logger.Log.Error(failMessage, zap.Error(err))
	writeJSON(w, code, schemas.ErrorResponse{Message: failMessage})
}
