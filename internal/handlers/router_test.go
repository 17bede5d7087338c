package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ledgerchat-backend/internal/chat"
	"ledgerchat-backend/internal/config"
	"ledgerchat-backend/internal/llm"
	"ledgerchat-backend/internal/observability"
	"ledgerchat-backend/internal/repository/memory"
	"ledgerchat-backend/internal/resilience"
	"ledgerchat-backend/internal/service/ledger"
	"ledgerchat-backend/pkg/api"
)

const testUser = "user-1"

type testServer struct {
	router   http.Handler
	provider *llm.MockProvider
	limiter  *resilience.RateLimiter
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()
	provider := &llm.MockProvider{}
	svc := ledger.NewService(memory.NewStore(), nil, logger)
	metrics := observability.New(prometheus.NewRegistry())
	orchestrator := chat.NewOrchestrator(svc, provider, config.Default().Model, metrics, logger)
	limiter := resilience.NewRateLimiter(resilience.RateLimiterConfig{
		Window:      time.Minute,
		MaxRequests: 100,
	})
	t.Cleanup(limiter.Stop)

	h := New(svc, orchestrator, logger)
	return &testServer{
		router:   NewRouter(h, limiter, metrics, logger),
		provider: provider,
		limiter:  limiter,
	}
}

func (ts *testServer) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestHealthEndpointIsPublic(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAPIRequiresIdentity(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/jobs/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestJobCRUDOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/jobs/", testUser, api.CreateJobRequest{
		Name: "Cocina", Revenue: 5000,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[api.JobResponse](t, rec)
	assert.Equal(t, "Cocina", created.Name)
	assert.Equal(t, 5000.0, created.Profit)

	rec = ts.do(t, http.MethodGet, "/api/jobs/"+created.JobID, testUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	newName := "Cocina grande"
	rec = ts.do(t, http.MethodPut, "/api/jobs/"+created.JobID, testUser, api.UpdateJobRequest{Name: &newName})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decodeBody[api.JobResponse](t, rec)
	assert.Equal(t, "Cocina grande", updated.Name)

	rec = ts.do(t, http.MethodDelete, "/api/jobs/"+created.JobID, testUser, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/jobs/"+created.JobID, testUser, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestJobsAreScopedPerUser(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/jobs/", testUser, api.CreateJobRequest{Name: "Cocina", Revenue: 5000})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[api.JobResponse](t, rec)

	rec = ts.do(t, http.MethodGet, "/api/jobs/"+created.JobID, "intruder", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateJobRejectsInvalidBody(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/jobs/", testUser, map[string]any{"name": "Cocina"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodPost, "/api/jobs/", testUser, api.CreateJobRequest{Name: "Cocina", Revenue: 5000, StartDate: "27/08/2026"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExpenseAttachDetachOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/jobs/", testUser, api.CreateJobRequest{Name: "Cocina", Revenue: 5000})
	require.Equal(t, http.StatusCreated, rec.Code)
	job := decodeBody[api.JobResponse](t, rec)

	rec = ts.do(t, http.MethodPost, "/api/expenses/", testUser, api.CreateExpenseRequest{
		Name: "Cemento", Amount: 1200,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	expense := decodeBody[api.ExpenseResponse](t, rec)
	assert.Equal(t, "Otros", expense.Category)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/expenses/%s/attach/%s", expense.ExpenseID, job.JobID), testUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/jobs/"+job.JobID, testUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	linked := decodeBody[api.JobResponse](t, rec)
	assert.Equal(t, 1200.0, linked.Expenses)
	assert.Equal(t, 3800.0, linked.Profit)

	rec = ts.do(t, http.MethodPost, fmt.Sprintf("/api/expenses/%s/detach", expense.ExpenseID), testUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	detached := decodeBody[api.ExpenseResponse](t, rec)
	assert.Empty(t, detached.JobID)
}

func TestCategoryEndpoints(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/categories/", testUser, api.CreateCategoryRequest{Name: "Materiales"})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[api.CategoryResponse](t, rec)

	rec = ts.do(t, http.MethodPut, "/api/categories/"+created.CategoryID, testUser, api.RenameCategoryRequest{Name: "Construcción"})
	require.Equal(t, http.StatusOK, rec.Code)
	renamed := decodeBody[api.CategoryResponse](t, rec)
	assert.Equal(t, "Construcción", renamed.Name)

	rec = ts.do(t, http.MethodGet, "/api/categories/", testUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]api.CategoryResponse](t, rec)
	names := make([]string, 0, len(list))
	for _, c := range list {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "Otros")
	assert.Contains(t, names, "Construcción")

	// The reserved default cannot be deleted.
	var defaultID string
	for _, c := range list {
		if c.IsDefault {
			defaultID = c.CategoryID
		}
	}
	require.NotEmpty(t, defaultID)
	rec = ts.do(t, http.MethodDelete, "/api/categories/"+defaultID, testUser, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatTurnOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.provider.Responses = []string{
		`{"text": "Registré el trabajo Cocina con un ingreso de 5000.", "actions": [{"action": "create_job", "data": {"name": "Cocina", "revenue": 5000}}]}`,
	}

	rec := ts.do(t, http.MethodPost, "/api/chat", testUser, api.ChatRequest{
		Prompt: "crea el trabajo Cocina por 5000",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[api.ChatResponse](t, rec)
	assert.Contains(t, resp.Text, "Cocina")
	assert.NotEmpty(t, resp.CorrelationID)
	require.Len(t, resp.Actions, 1)

	rec = ts.do(t, http.MethodGet, "/api/jobs/", testUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	jobs := decodeBody[[]api.JobResponse](t, rec)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Cocina", jobs[0].Name)
}

func TestExecuteActionsEndpoint(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/actions/execute", testUser, api.ExecuteActionsRequest{
		Actions: []api.Action{
			{Action: "create_job", Data: map[string]any{"name": "Cocina", "revenue": 5000.0}},
			{Action: "create_expense", Data: map[string]any{"name": "Cemento", "amount": 1200.0, "jobName": "Cocina"}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[api.ExecuteActionsResponse](t, rec)
	assert.True(t, resp.Success)
	assert.True(t, resp.Mutated)
	assert.Len(t, resp.Log, 2)
}

func TestExecuteActionsRejectsUnknownAction(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/actions/execute", testUser, api.ExecuteActionsRequest{
		Actions: []api.Action{{Action: "drop_tables"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimitReturns429WithRetryAfter(t *testing.T) {
	logger := zap.NewNop()
	provider := &llm.MockProvider{}
	svc := ledger.NewService(memory.NewStore(), nil, logger)
	metrics := observability.New(prometheus.NewRegistry())
	orchestrator := chat.NewOrchestrator(svc, provider, config.Default().Model, metrics, logger)
	limiter := resilience.NewRateLimiter(resilience.RateLimiterConfig{
		Window:      time.Minute,
		MaxRequests: 2,
	})
	t.Cleanup(limiter.Stop)
	router := NewRouter(New(svc, orchestrator, logger), limiter, metrics, logger)
	ts := &testServer{router: router, provider: provider, limiter: limiter}

	for i := 0; i < 2; i++ {
		rec := ts.do(t, http.MethodGet, "/api/jobs/", testUser, nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := ts.do(t, http.MethodGet, "/api/jobs/", testUser, nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Another endpoint for the same user still works.
	rec = ts.do(t, http.MethodGet, "/api/categories/", testUser, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNotificationEndpoints(t *testing.T) {
	ts := newTestServer(t)
	ts.provider.Responses = []string{
		`{"text": "Te dejé un recordatorio sobre el trabajo pendiente de cobro.", "actions": [{"action": "create_notification", "data": {"message": "Cobra el trabajo Cocina", "type": "reminder"}}]}`,
	}

	rec := ts.do(t, http.MethodPost, "/api/chat", testUser, api.ChatRequest{Prompt: "recuérdame cobrar"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/notifications/", testUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decodeBody[[]api.NotificationResponse](t, rec)
	require.Len(t, list, 1)
	assert.False(t, list[0].Read)

	rec = ts.do(t, http.MethodPost, "/api/notifications/"+list[0].NotificationID+"/read", testUser, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	read := decodeBody[api.NotificationResponse](t, rec)
	assert.True(t, read.Read)

	rec = ts.do(t, http.MethodDelete, "/api/notifications/"+list[0].NotificationID, testUser, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestMetricsEndpointExposed(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
