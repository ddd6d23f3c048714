package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Bessima/botform-intake/internal/customerror"
	"github.com/Bessima/botform-intake/internal/handlers/schemas"
	"github.com/Bessima/botform-intake/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSubmissionService struct {
	mock.Mock
}

func (m *MockSubmissionService) ListSubmissions(ctx context.Context) ([]models.Submission, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Submission), args.Error(1)
}

func (m *MockSubmissionService) ListSubmissionsByEmail(ctx context.Context, email string) ([]models.Submission, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Submission), args.Error(1)
}

func (m *MockSubmissionService) GetSubmission(ctx context.Context, id int64) (*models.Submission, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionService) GetSubmissionByReference(ctx context.Context, code string) (*models.Submission, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionService) CreateSubmission(ctx context.Context, body []byte) (*models.Submission, error) {
	args := m.Called(ctx, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionService) UpdateSubmissionStatus(ctx context.Context, id int64, status string) (*models.Submission, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Submission), args.Error(1)
}

func (m *MockSubmissionService) Validate(body []byte) error {
	return m.Called(body).Error(0)
}

func (m *MockSubmissionService) Rules() schemas.SchemaResponse {
	return m.Called().Get(0).(schemas.SchemaResponse)
}

func newRouter(service SubmissionServiceI) chi.Router {
	h := NewSubmissionsHandler(service)
	router := chi.NewRouter()
	router.Get("/api/submissions", h.List)
	router.Post("/api/submissions", h.Create)
	router.Get("/api/submissions/schema", h.Schema)
	router.Post("/api/submissions/validate", h.Validate)
	router.Get("/api/submissions/reference/{code}", h.GetByReference)
	router.Get("/api/submissions/{id}", h.Get)
	router.Patch("/api/submissions/{id}/status", h.UpdateStatus)
	router.Get("/api/options", Options)
	return router
}

func doRequest(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) schemas.ErrorResponse {
	t.Helper()
	var resp schemas.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func testSubmission(id int64, status models.SubmissionStatus) *models.Submission {
	return &models.Submission{
		ID:             id,
		ReferenceCode:  "BOT-ABCDE-23456",
		RequesterName:  "Jane Doe",
		RequesterEmail: "jane@example.com",
		EquityIndices:  []string{"SP500"},
		Forex:          []string{},
		Commodities:    []string{},
		PremiumAccess:  "telegramGroup",
		Status:         status,
		CreatedAt:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestSubmissionsHandler_Create_Success(t *testing.T) {
	service := new(MockSubmissionService)
	body := `{"requesterName":"Jane Doe","requesterEmail":"jane@example.com","premiumAccess":"telegramGroup"}`
	service.On("CreateSubmission", mock.Anything, []byte(body)).Return(testSubmission(1, models.PendingStatus), nil)

	rec := doRequest(newRouter(service), http.MethodPost, "/api/submissions", body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var created models.Submission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, "BOT-ABCDE-23456", created.ReferenceCode)
	assert.Equal(t, models.PendingStatus, created.Status)
	service.AssertExpectations(t)
}

func TestSubmissionsHandler_Create_ValidationError(t *testing.T) {
	service := new(MockSubmissionService)
	body := `{"requesterName":"Jane Doe","premiumAccess":"telegramGroup"}`
	service.On("CreateSubmission", mock.Anything, []byte(body)).
		Return(nil, customerror.NewValidationError(map[string]string{"requesterEmail": "Required"}))

	rec := doRequest(newRouter(service), http.MethodPost, "/api/submissions", body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "Validation error", resp.Message)
	assert.Equal(t, map[string]string{"requesterEmail": "Required"}, resp.Errors)
}

func TestSubmissionsHandler_Create_InternalErrorHidesDetails(t *testing.T) {
	service := new(MockSubmissionService)
	service.On("CreateSubmission", mock.Anything, mock.Anything).
		Return(nil, customerror.NewCreationFailedError("reference code attempts exhausted", errors.New("dial tcp: refused")))

	rec := doRequest(newRouter(service), http.MethodPost, "/api/submissions", `{}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "Failed to create submission", resp.Message)
	assert.NotContains(t, rec.Body.String(), "dial tcp")
}

func TestSubmissionsHandler_Get(t *testing.T) {
	service := new(MockSubmissionService)
	service.On("GetSubmission", mock.Anything, int64(7)).Return(testSubmission(7, models.PendingStatus), nil)

	rec := doRequest(newRouter(service), http.MethodGet, "/api/submissions/7", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var got models.Submission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(7), got.ID)
}

func TestSubmissionsHandler_Get_NotFound(t *testing.T) {
	service := new(MockSubmissionService)
	service.On("GetSubmission", mock.Anything, int64(999999)).
		Return(nil, customerror.NewNotFoundError("submission 999999 not found"))

	rec := doRequest(newRouter(service), http.MethodGet, "/api/submissions/999999", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Submission not found", decodeError(t, rec).Message)
}

func TestSubmissionsHandler_InvalidID(t *testing.T) {
	ids := []string{"abc", "0", "-3", "1.5", "99999999999999999999"}

	for _, id := range ids {
		t.Run(id, func(t *testing.T) {
			service := new(MockSubmissionService)
			router := newRouter(service)

			rec := doRequest(router, http.MethodGet, "/api/submissions/"+id, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Invalid submission ID", decodeError(t, rec).Message)

			rec = doRequest(router, http.MethodPatch, "/api/submissions/"+id+"/status", `{"status":"completed"}`)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			service.AssertNotCalled(t, "GetSubmission", mock.Anything, mock.Anything)
			service.AssertNotCalled(t, "UpdateSubmissionStatus", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSubmissionsHandler_GetByReference(t *testing.T) {
	service := new(MockSubmissionService)
	service.On("GetSubmissionByReference", mock.Anything, "BOT-ABCDE-23456").Return(testSubmission(3, models.PendingStatus), nil)
	service.On("GetSubmissionByReference", mock.Anything, "BOT-NONE0-00000").
		Return(nil, customerror.NewNotFoundError("not found"))
	router := newRouter(service)

	rec := doRequest(router, http.MethodGet, "/api/submissions/reference/BOT-ABCDE-23456", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(router, http.MethodGet, "/api/submissions/reference/BOT-NONE0-00000", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmissionsHandler_List(t *testing.T) {
	service := new(MockSubmissionService)
	service.On("ListSubmissions", mock.Anything).Return([]models.Submission{
		*testSubmission(1, models.PendingStatus),
		*testSubmission(2, models.CompletedStatus),
	}, nil)

	rec := doRequest(newRouter(service), http.MethodGet, "/api/submissions", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var list []models.Submission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(2), list[1].ID)
}

func TestSubmissionsHandler_List_EmptyIsArray(t *testing.T) {
	service := new(MockSubmissionService)
	service.On("ListSubmissions", mock.Anything).Return([]models.Submission{}, nil)

	rec := doRequest(newRouter(service), http.MethodGet, "/api/submissions", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestSubmissionsHandler_List_ByEmail(t *testing.T) {
	service := new(MockSubmissionService)
	service.On("ListSubmissionsByEmail", mock.Anything, "jane@example.com").
		Return([]models.Submission{*testSubmission(1, models.PendingStatus)}, nil)

	rec := doRequest(newRouter(service), http.MethodGet, "/api/submissions?email=jane@example.com", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	service.AssertNotCalled(t, "ListSubmissions", mock.Anything)
}

func TestSubmissionsHandler_List_StorageError(t *testing.T) {
	service := new(MockSubmissionService)
	service.On("ListSubmissions", mock.Anything).Return(nil, customerror.NewCommonPGError("connection reset"))

	rec := doRequest(newRouter(service), http.MethodGet, "/api/submissions", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to fetch submissions", decodeError(t, rec).Message)
}

func TestSubmissionsHandler_UpdateStatus(t *testing.T) {
	service := new(MockSubmissionService)
	service.On("UpdateSubmissionStatus", mock.Anything, int64(1), "completed").
		Return(testSubmission(1, models.CompletedStatus), nil)

	rec := doRequest(newRouter(service), http.MethodPatch, "/api/submissions/1/status", `{"status":"completed"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	var updated models.Submission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &updated))
	assert.Equal(t, models.CompletedStatus, updated.Status)
	assert.Equal(t, "BOT-ABCDE-23456", updated.ReferenceCode)
}

func TestSubmissionsHandler_UpdateStatus_BadBody(t *testing.T) {
	bodies := map[string]string{
		"missing status": `{}`,
		"empty status":   `{"status":""}`,
		"number status":  `{"status":5}`,
		"null status":    `{"status":null}`,
		"invalid json":   `{"status":`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			service := new(MockSubmissionService)

			rec := doRequest(newRouter(service), http.MethodPatch, "/api/submissions/1/status", body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Status is required and must be a string", decodeError(t, rec).Message)
			service.AssertNotCalled(t, "UpdateSubmissionStatus", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestSubmissionsHandler_UpdateStatus_NotFound(t *testing.T) {
	service := new(MockSubmissionService)
	service.On("UpdateSubmissionStatus", mock.Anything, int64(42), "completed").
		Return(nil, customerror.NewNotFoundError("submission 42 not found"))

	rec := doRequest(newRouter(service), http.MethodPatch, "/api/submissions/42/status", `{"status":"completed"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmissionsHandler_Validate(t *testing.T) {
	service := new(MockSubmissionService)
	service.On("Validate", []byte(`{"ok":true}`)).Return(nil)
	service.On("Validate", []byte(`{}`)).
		Return(customerror.NewValidationError(map[string]string{"requesterName": "Required"}))
	router := newRouter(service)

	rec := doRequest(router, http.MethodPost, "/api/submissions/validate", `{"ok":true}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"valid":true}`, rec.Body.String())

	rec = doRequest(router, http.MethodPost, "/api/submissions/validate", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Required", decodeError(t, rec).Errors["requesterName"])
}

func TestSubmissionsHandler_Schema(t *testing.T) {
	service := new(MockSubmissionService)
	service.On("Rules").Return(schemas.SchemaResponse{
		Fields:         []schemas.FieldRule{{Field: "requesterName", Type: "string", Required: true}},
		ServerAssigned: schemas.ServerAssignedFields,
	})

	rec := doRequest(newRouter(service), http.MethodGet, "/api/submissions/schema", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp schemas.SchemaResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Fields, 1)
	assert.Equal(t, "requesterName", resp.Fields[0].Field)
	assert.Contains(t, resp.ServerAssigned, "referenceCode")
}

func TestOptions(t *testing.T) {
	rec := doRequest(newRouter(new(MockSubmissionService)), http.MethodGet, "/api/options", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp schemas.OptionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.EquityIndices, 9)
	assert.Len(t, resp.Forex, 5)
	assert.Len(t, resp.Commodities, 3)
	assert.Len(t, resp.PremiumAccess, 4)
}

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

func TestHealthHandler_Ready(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(stubPinger{}).Ready(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	NewHealthHandler(stubPinger{err: errors.New("down")}).Ready(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
