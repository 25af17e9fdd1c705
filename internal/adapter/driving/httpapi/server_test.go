package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diillson/warehouse-finops-dashboard-go/internal/adapter/driven/warehouse"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/adapter/driving/httpapi"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/application/usecase"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/shared/types"
	"github.com/diillson/warehouse-finops-dashboard-go/internal/testutil"
)

type apiFixture struct {
	srv       *httptest.Server
	completer *testutil.MockCompleter
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()

	repo, err := warehouse.NewSQLRepository(testutil.OpenSeededDuckDB(t), types.WarehouseConfig{})
	require.NoError(t, err)

	completer := &testutil.MockCompleter{}
	uc := usecase.NewDashboardUseCase(repo, completer, &testutil.MockExporter{}, nil, testutil.NewMockConsole(), "mistral-large2")

	cfg := types.DefaultConfig()
	cfg.Dashboard.Days = 2
	s := httpapi.NewServer(uc, *cfg, zerolog.New(io.Discard))
	s.SetClock(func() time.Time { return time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC) })

	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return &apiFixture{srv: srv, completer: completer}
}

func (a *apiFixture) do(t *testing.T, method, path string, body any) (int, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	out := map[string]any{}
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

func TestHealthAndWarehouses(t *testing.T) {
	api := newAPI(t)

	status, body := api.do(t, http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])

	status, body = api.do(t, http.MethodGet, "/api/v1/warehouses", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{"(All)", "BI_WH", "ETL_WH", "O'Brien_WH"}, body["warehouses"])
}

func TestSummaryUsesDefaultWindow(t *testing.T) {
	api := newAPI(t)

	status, body := api.do(t, http.MethodGet, "/api/v1/summary", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "45", body["total_cost"])
	assert.Equal(t, float64(3), body["days"])

	status, body = api.do(t, http.MethodGet, "/api/v1/summary?warehouse=BI_WH&cost_per_credit=2&discount=50", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "6", body["total_cost"])
	assert.Equal(t, "3", body["discounted_cost"])
}

func TestPanelsReportNoDataAsWarning(t *testing.T) {
	api := newAPI(t)

	for _, path := range []string{"/api/v1/summary", "/api/v1/warehouse-usage", "/api/v1/queries", "/api/v1/storage"} {
		status, body := api.do(t, http.MethodGet, path+"?start=2025-01-01&end=2025-01-31", nil)
		assert.Equal(t, http.StatusOK, status, path)
		assert.Equal(t, usecase.NoDataMessage, body["warning"], path)
	}
}

func TestInvalidFilters(t *testing.T) {
	api := newAPI(t)

	for _, query := range []string{
		"start=2024-01-05&end=2024-01-01",
		"start=yesterday",
		"days=many",
		"discount=150",
		"cost_per_credit=-1",
		"cost_per_credit=NaN",
		"cost_per_credit=Inf",
	} {
		status, body := api.do(t, http.MethodGet, "/api/v1/summary?"+query, nil)
		assert.Equal(t, http.StatusBadRequest, status, query)
		assert.NotEmpty(t, body["error"], query)
	}
}

func TestDashboardPanels(t *testing.T) {
	api := newAPI(t)

	status, body := api.do(t, http.MethodGet, "/api/v1/dashboard?panels=queries,storage", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, body["summary"])
	require.NotNil(t, body["performance"])
	assert.InDelta(t, 1.5, body["performance"].(map[string]any)["avg_query_seconds"], 1e-9)
	assert.InDelta(t, 25.0, body["storage"].(map[string]any)["growth_gb"], 1e-9)

	status, _ = api.do(t, http.MethodGet, "/api/v1/dashboard?panels=billing", nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestStatements(t *testing.T) {
	api := newAPI(t)

	status, body := api.do(t, http.MethodGet, "/api/v1/sql?warehouse=O'Brien_WH", nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, body)
	for name, stmt := range body {
		assert.NotContains(t, stmt, "?", name)
	}
}

func TestInsights(t *testing.T) {
	api := newAPI(t)
	api.completer.CompleteFn = func(context.Context, string, string) (string, error) {
		return "ETL_WH drives most cost.", nil
	}

	status, body := api.do(t, http.MethodPost, "/api/v1/insights", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ETL_WH drives most cost.", body["insights"])
	assert.Equal(t, "mistral-large2", body["model"])

	api.completer.CompleteFn = func(_ context.Context, model, _ string) (string, error) {
		return "", &types.CompletionError{Model: model, Err: errors.New("quota exceeded")}
	}
	status, body = api.do(t, http.MethodPost, "/api/v1/insights", nil)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body["error"], "quota exceeded")
}

func TestChatSessionLifecycle(t *testing.T) {
	api := newAPI(t)
	api.completer.CompleteFn = func(context.Context, string, string) (string, error) {
		return "Suspend idle warehouses.", nil
	}

	status, body := api.do(t, http.MethodPost, "/api/v1/chat/sessions", nil)
	require.Equal(t, http.StatusCreated, status)
	id := body["session_id"].(string)
	base := "/api/v1/chat/sessions/" + id

	status, body = api.do(t, http.MethodPost, base+"/messages", map[string]string{"question": "How do I save?"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Suspend idle warehouses.", body["answer"])
	assert.Len(t, body["turns"], 2)

	api.completer.CompleteFn = func(_ context.Context, model, _ string) (string, error) {
		return "", &types.CompletionError{Model: model, Err: errors.New("timeout")}
	}
	status, body = api.do(t, http.MethodPost, base+"/messages", map[string]string{"question": "And more?"})
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Contains(t, body["error"], "timeout")
	assert.Len(t, body["turns"], 3)
	assert.Equal(t, false, body["pending"])

	status, _ = api.do(t, http.MethodPost, base+"/messages", map[string]string{"question": "   "})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = api.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, status)
	turns := body["turns"].([]any)
	require.Len(t, turns, 3)
	assert.Equal(t, "user", turns[2].(map[string]any)["role"])
	assert.Equal(t, "And more?", turns[2].(map[string]any)["content"])

	status, _ = api.do(t, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, _ = api.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = api.do(t, http.MethodGet, "/api/v1/chat/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCORSPreflight(t *testing.T) {
	api := newAPI(t)

	req, err := http.NewRequest(http.MethodOptions, api.srv.URL+"/api/v1/summary", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://dashboard.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger := httpapi.NewLogger("warn", &buf)
	logger.Info().Msg("hidden")
	logger.Warn().Str("panel", "summary").Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.Contains(out, `"panel":"summary"`))

	assert.Equal(t, zerolog.InfoLevel, httpapi.NewLogger("bogus", &buf).GetLevel())
}
