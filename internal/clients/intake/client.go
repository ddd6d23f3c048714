package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Bessima/botform-intake/internal/customerror"
	"github.com/Bessima/botform-intake/internal/handlers/schemas"
	"github.com/Bessima/botform-intake/internal/middlewares/logger"
	"github.com/Bessima/botform-intake/internal/models"
	"github.com/Bessima/botform-intake/internal/retry"
	"github.com/Bessima/botform-intake/internal/validation"
	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

var ErrUnexpectedStatus = errors.New("unexpected response status")

type IntakeClientI interface {
	Create(ctx context.Context, req schemas.SubmissionRequest) (*models.Submission, error)
	Get(ctx context.Context, id int64) (*models.Submission, error)
	GetByReference(ctx context.Context, code string) (*models.Submission, error)
	List(ctx context.Context) ([]models.Submission, error)
	ListByEmail(ctx context.Context, email string) ([]models.Submission, error)
	UpdateStatus(ctx context.Context, id int64, status string) (*models.Submission, error)
	Validate(ctx context.Context, body []byte) error
	Schema(ctx context.Context) (*schemas.SchemaResponse, error)
}

type IntakeClient struct {
	httpClient  *http.Client
	address     string
	validator   *validation.Validator
	retryConfig retry.Config
}

func NewIntakeClient(address string) *IntakeClient {
	return &IntakeClient{
		address:     address,
		httpClient:  &http.Client{Timeout: defaultTimeout},
		validator:   validation.New(),
		retryConfig: retry.ClientRetryConfig,
	}
}

// Create сначала проверяет заявку локально тем же набором правил, что и
// сервер, и не ходит в сеть, если проверка не прошла. Запись не повторяется.
func (client *IntakeClient) Create(ctx context.Context, req schemas.SubmissionRequest) (*models.Submission, error) {
	if err := client.validator.ValidateRequest(req); err != nil {
		return nil, err
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error marshalling submission: %w", err)
	}

	var submission models.Submission
	if err := client.do(ctx, http.MethodPost, "/api/submissions", body, http.StatusCreated, &submission); err != nil {
		return nil, err
	}
	logger.Log.Info("Submission created", zap.String("reference_code", submission.ReferenceCode))
	return &submission, nil
}

func (client *IntakeClient) Get(ctx context.Context, id int64) (*models.Submission, error) {
	return getWithRetry[models.Submission](ctx, client, "/api/submissions/"+strconv.FormatInt(id, 10))
}

func (client *IntakeClient) GetByReference(ctx context.Context, code string) (*models.Submission, error) {
	return getWithRetry[models.Submission](ctx, client, "/api/submissions/reference/"+url.PathEscape(code))
}

func (client *IntakeClient) List(ctx context.Context) ([]models.Submission, error) {
	list, err := getWithRetry[[]models.Submission](ctx, client, "/api/submissions")
	if err != nil {
		return nil, err
	}
	return *list, nil
}

func (client *IntakeClient) ListByEmail(ctx context.Context, email string) ([]models.Submission, error) {
	list, err := getWithRetry[[]models.Submission](ctx, client, "/api/submissions?email="+url.QueryEscape(email))
	if err != nil {
		return nil, err
	}
	return *list, nil
}

func (client *IntakeClient) UpdateStatus(ctx context.Context, id int64, status string) (*models.Submission, error) {
	body, err := json.Marshal(schemas.StatusRequest{Status: &status})
	if err != nil {
		return nil, err
	}

	var submission models.Submission
	path := "/api/submissions/" + strconv.FormatInt(id, 10) + "/status"
	if err := client.do(ctx, http.MethodPatch, path, body, http.StatusOK, &submission); err != nil {
		return nil, err
	}
	return &submission, nil
}

// Validate отправляет сырое тело на серверную проверку без сохранения.
func (client *IntakeClient) Validate(ctx context.Context, body []byte) error {
	var resp schemas.ValidateResponse
	return client.do(ctx, http.MethodPost, "/api/submissions/validate", body, http.StatusOK, &resp)
}

func (client *IntakeClient) Schema(ctx context.Context) (*schemas.SchemaResponse, error) {
	return getWithRetry[schemas.SchemaResponse](ctx, client, "/api/submissions/schema")
}

func getWithRetry[T any](ctx context.Context, client *IntakeClient, path string) (*T, error) {
	return retry.DoRetryWithResult(ctx, func() (*T, error) {
		var answer T
		if err := client.do(ctx, http.MethodGet, path, nil, http.StatusOK, &answer); err != nil {
			return nil, err
		}
		return &answer, nil
	}, client.retryConfig)
}

func (client *IntakeClient) do(ctx context.Context, method, path string, body []byte, expected int, answer any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, client.address+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	response, err := client.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request %s %s: %w", method, path, err)
	}
	defer func() {
		if err := response.Body.Close(); err != nil {
			logger.Log.Warn("error closing response body", zap.Error(err))
		}
	}()

	data, err := io.ReadAll(response.Body)
	if err != nil {
		logger.Log.Error("Error reading response body", zap.Error(err))
		return err
	}

	if response.StatusCode != expected {
		return decodeError(response.StatusCode, data)
	}

	if err := json.Unmarshal(data, answer); err != nil {
		logger.Log.Error("Error unmarshalling JSON", zap.Error(err))
		return err
	}
	return nil
}

// decodeError восстанавливает ошибки сервера в те же типы, что использует
// сервис, чтобы вызывающий код проверял их через errors.As.
func decodeError(status int, data []byte) error {
	var resp schemas.ErrorResponse
	_ = json.Unmarshal(data, &resp)

	switch {
	case status == http.StatusBadRequest && len(resp.Errors) > 0:
		return customerror.NewValidationError(resp.Errors)
	case status == http.StatusNotFound:
		return customerror.NewNotFoundError(resp.Message)
	}
	return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, status, resp.Message)
}
