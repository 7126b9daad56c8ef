package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/food-insight/backend-go/internal/api"
	"github.com/andresuchdata/food-insight/backend-go/internal/api/middleware"
	"github.com/andresuchdata/food-insight/backend-go/internal/config"
	"github.com/andresuchdata/food-insight/backend-go/internal/domain"
	"github.com/andresuchdata/food-insight/backend-go/internal/insight"
	"github.com/andresuchdata/food-insight/backend-go/internal/repository/memory"
	"github.com/andresuchdata/food-insight/backend-go/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func jan(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	var ds domain.Dataset
	for d := 1; d <= 31; d++ {
		ds.Purchases = append(ds.Purchases, domain.PurchaseRecord{
			Date: jan(d), ProductCode: "RM001", ProductName: "양파", Quantity: 10, UnitPrice: 1000, Total: 10000,
		})
		ds.Sales = append(ds.Sales, domain.DailySalesRecord{Date: jan(d), JasaRevenue: 100000, TotalRevenue: 100000})
	}
	ds.Inventory = []domain.InventorySafetyItem{{SKUCode: "RM001", SKUName: "양파", CurrentStock: 50}}

	store := memory.NewStoreFromDataset(ds)
	svc := service.NewInsightService(
		service.Repositories{Datasets: store, Writer: store, ChannelCosts: store, Labor: store, Runs: store},
		nil, config.DefaultBusinessConfig(),
	)
	return api.NewRouter(&api.Services{Insights: svc, Admin: svc}, nil)
}

func do(router *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// =============================================================================
// INSIGHTS
// =============================================================================

func TestHealth(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestGetAllInsights(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/v1/insights?from=2025-01-01&to=2025-01-31&service_level=99", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	order, ok := body["statistical_order"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 99.0, order["service_level"])
	assert.Nil(t, body["waste"], "no production rows")
	assert.Equal(t, "2025-01-31T00:00:00Z", body["as_of"])
}

func TestGetSection(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodGet, "/api/v1/insights/abc_xyz", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	assert.Equal(t, "abc_xyz", body["section"])
	assert.NotNil(t, body["data"])

	w = do(router, http.MethodGet, "/api/v1/insights/forecast", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, decode(t, w)["details"], "unknown insight")

	w = do(router, http.MethodGet, "/api/v1/insights/waste", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListSections(t *testing.T) {
	w := do(newTestRouter(t), http.MethodGet, "/api/v1/insights/sections", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["sections"], len(insight.Sections))
}

func TestGetInsights_BadQuery(t *testing.T) {
	router := newTestRouter(t)

	for _, target := range []string{
		"/api/v1/insights?from=01/02/2025",
		"/api/v1/insights?service_level=high",
		"/api/v1/insights?service_level=100",
		"/api/v1/insights?from=2025-02-01&to=2025-01-01",
		"/api/v1/insights?archive=maybe",
		"/api/v1/insights/abc_xyz?strategy=industry",
	} {
		w := do(router, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)
		assert.NotEmpty(t, decode(t, w)["error"], target)
	}
}

func TestInvalidateCache(t *testing.T) {
	w := do(newTestRouter(t), http.MethodPost, "/api/v1/insights/cache/invalidate", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

type brokenProvider struct{}

func (brokenProvider) Compute(context.Context, service.ComputeRequest) (*insight.AllInsights, error) {
	return nil, errors.New("db down")
}

func (brokenProvider) Section(context.Context, string, service.ComputeRequest) (any, error) {
	return nil, errors.New("db down")
}

func (brokenProvider) InvalidateCache(context.Context) error {
	return errors.New("redis down")
}

func TestInsights_InternalErrors(t *testing.T) {
	router := api.NewRouter(&api.Services{Insights: brokenProvider{}}, []string{"*"})

	w := do(router, http.MethodGet, "/api/v1/insights", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "failed to compute insights", body["error"])
	assert.Equal(t, "db down", body["details"])

	w = do(router, http.MethodPost, "/api/v1/insights/cache/invalidate", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = do(router, http.MethodGet, "/api/v1/admin/channel-costs", nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "admin routes are not mounted without a provider")
}

// =============================================================================
// ADMIN
// =============================================================================

func TestChannelCosts(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodPut, "/api/v1/admin/channel-costs", map[string]any{
		"channel_costs": []map[string]any{
			{"channel_name": "쿠팡", "total_variable_rate_pct": 8, "commission_rate": 12},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 1.0, decode(t, w)["updated"])

	w = do(router, http.MethodGet, "/api/v1/admin/channel-costs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	costs := decode(t, w)["channel_costs"].([]any)
	require.Len(t, costs, 1)
	assert.Equal(t, "쿠팡", costs[0].(map[string]any)["channel_name"])

	w = do(router, http.MethodGet, "/api/v1/admin/channel-costs/kurly", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodPut, "/api/v1/admin/channel-costs", map[string]any{
		"channel_costs": []map[string]any{{"channel_name": "", "commission_rate": 150}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodPut, "/api/v1/admin/channel-costs", map[string]any{"rows": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLaborRecords(t *testing.T) {
	router := newTestRouter(t)

	w := do(router, http.MethodPut, "/api/v1/admin/labor-records", map[string]any{
		"labor_records": []map[string]any{
			{"month": "2025-01", "department": "생산", "headcount": 5, "total_cost": 15000000},
			{"month": "2025-02", "department": "생산", "headcount": 5, "total_cost": 15500000},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(router, http.MethodGet, "/api/v1/admin/labor-records?from_month=2025-02", nil)
	require.Equal(t, http.StatusOK, w.Code)
	records := decode(t, w)["labor_records"].([]any)
	require.Len(t, records, 1)
	assert.Equal(t, "2025-02", records[0].(map[string]any)["month"])

	w = do(router, http.MethodGet, "/api/v1/admin/labor-records?from_month=feb", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportRuns(t *testing.T) {
	store := memory.NewStore()
	svc := service.NewInsightService(
		service.Repositories{Datasets: store, Writer: store, ChannelCosts: store, Labor: store, Runs: store},
		nil, config.DefaultBusinessConfig(),
	)
	router := api.NewRouter(&api.Services{Insights: svc, Admin: svc}, nil)

	ds := domain.Dataset{Purchases: []domain.PurchaseRecord{{Date: jan(1), ProductCode: "RM001", Quantity: 1}}}
	_, err := svc.Import(context.Background(), "files:./data", ds)
	require.NoError(t, err)

	w := do(router, http.MethodGet, "/api/v1/admin/import-runs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	runs := decode(t, w)["import_runs"].([]any)
	require.Len(t, runs, 1)
	run := runs[0].(map[string]any)
	assert.Equal(t, "completed", run["status"])
	assert.Equal(t, 1.0, run["total_rows"])

	w = do(router, http.MethodGet, "/api/v1/admin/import-runs/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "files:./data", decode(t, w)["source"])

	w = do(router, http.MethodGet, "/api/v1/admin/import-runs/7", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/api/v1/admin/import-runs/x", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router, http.MethodGet, "/api/v1/admin/import-runs?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
