package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Bessima/botform-intake/internal/customerror"
	"github.com/Bessima/botform-intake/internal/handlers/schemas"
	"github.com/Bessima/botform-intake/internal/middlewares/logger"
	"github.com/Bessima/botform-intake/internal/models"
	"github.com/Bessima/botform-intake/internal/refcode"
	"github.com/Bessima/botform-intake/internal/repository"
	"github.com/Bessima/botform-intake/internal/validation"
	"go.uber.org/zap"
)

const (
	MessageStatusRequired = "Status is required and must be a string"
	MessageStatusUnknown  = "Status must be one of pending, completed, failed"
)

type SubmissionService struct {
	repository   repository.SubmissionStorageRepositoryI
	generator    refcode.Generator
	validator    *validation.Validator
	codeAttempts int
	strictStatus bool
}

func NewSubmissionService(
	rep repository.SubmissionStorageRepositoryI,
	generator refcode.Generator,
	codeAttempts int,
	strictStatus bool,
) *SubmissionService {
	if codeAttempts < 1 {
		codeAttempts = 1
	}
	return &SubmissionService{
		repository:   rep,
		generator:    generator,
		validator:    validation.New(),
		codeAttempts: codeAttempts,
		strictStatus: strictStatus,
	}
}

func (service *SubmissionService) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	return service.repository.GetAll(ctx)
}

func (service *SubmissionService) ListSubmissionsByEmail(ctx context.Context, email string) ([]models.Submission, error) {
	return service.repository.GetListByEmail(ctx, strings.TrimSpace(email))
}

func (service *SubmissionService) GetSubmission(ctx context.Context, id int64) (*models.Submission, error) {
	if id <= 0 {
		return nil, customerror.NewNotFoundError(fmt.Sprintf("submission %d not found", id))
	}
	return service.repository.GetByID(ctx, id)
}

func (service *SubmissionService) GetSubmissionByReference(ctx context.Context, code string) (*models.Submission, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !refcode.IsValid(code) {
		return nil, customerror.NewNotFoundError(fmt.Sprintf("submission %s not found", code))
	}
	return service.repository.GetByReferenceCode(ctx, code)
}

// Validate выполняет только проверку схемы, без обращения к хранилищу.
func (service *SubmissionService) Validate(body []byte) error {
	_, err := service.validator.Parse(body)
	return err
}

func (service *SubmissionService) Rules() schemas.SchemaResponse {
	return service.validator.Rules()
}

// CreateSubmission проверяет заявку, генерирует код и сохраняет её.
// При коллизии кода генерируется новый, не более codeAttempts раз.
func (service *SubmissionService) CreateSubmission(ctx context.Context, body []byte) (*models.Submission, error) {
	req, err := service.validator.Parse(body)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= service.codeAttempts; attempt++ {
		code, err := service.generator.Generate()
		if err != nil {
			return nil, customerror.NewCreationFailedError("unable to generate reference code", err)
		}

		created, err := service.repository.Create(ctx, req.ToNewSubmission(code))
		if err == nil {
			submissionsCreated.Inc()
			logger.Log.Info("Submission created",
				zap.Int64("id", created.ID),
				zap.String("reference_code", created.ReferenceCode),
			)
			return created, nil
		}

		var uniqueErr *customerror.UniqueViolationError
		if !errors.As(err, &uniqueErr) {
			return nil, err
		}
		referenceCodeCollisions.Inc()
		logger.Log.Warn("Reference code collision",
			zap.String("reference_code", code),
			zap.Int("attempt", attempt),
		)
		lastErr = err
	}

	return nil, customerror.NewCreationFailedError(
		fmt.Sprintf("reference code collision after %d attempts", service.codeAttempts), lastErr)
}

// UpdateSubmissionStatus меняет статус. Переходы не ограничены: любой статус
// может смениться любым другим, повторная установка идемпотентна.
func (service *SubmissionService) UpdateSubmissionStatus(ctx context.Context, id int64, status string) (*models.Submission, error) {
	if status == "" {
		return nil, customerror.NewValidationError(map[string]string{"status": MessageStatusRequired})
	}
	newStatus := models.SubmissionStatus(status)
	if service.strictStatus && !newStatus.IsKnown() {
		return nil, customerror.NewValidationError(map[string]string{"status": MessageStatusUnknown})
	}
	if id <= 0 {
		return nil, customerror.NewNotFoundError(fmt.Sprintf("submission %d not found", id))
	}

	updated, err := service.repository.UpdateStatus(ctx, id, newStatus)
	if err != nil {
		return nil, err
	}
	statusUpdates.WithLabelValues(statusLabel(newStatus)).Inc()
	return updated, nil
}

func statusLabel(status models.SubmissionStatus) string {
	if status.IsKnown() {
		return string(status)
	}
	return "other"
}
