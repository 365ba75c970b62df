/*
handlers_test.go - Tests for API handlers

Tests for:
- Salary calculation (status codes, breakdown, history recording)
- Calculation history filtering
- City tax administration and its effect on calculations
- Statistics
*/
package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/salary-engine/salary"
	"github.com/warp/salary-engine/store/cache"
	"github.com/warp/salary-engine/store/sqlite"
)

type testServer struct {
	store  *sqlite.Store
	router http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := NewHandler(store, salary.NewCalculator(store), nil, nil)

	clock := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	seq := 0
	h.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	h.newID = func() string {
		seq++
		return fmt.Sprintf("calc-%03d", seq)
	}

	return &testServer{store: store, router: NewRouter(h)}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

// =============================================================================
// CALCULATION
// =============================================================================

func TestCalculate_Delhi(t *testing.T) {
	// GIVEN: an empty city table (static fallback applies)
	srv := newTestServer(t)

	// WHEN: a 10 lakh CTC is calculated for Delhi
	rec := srv.do(t, http.MethodPost, "/api/salary/calculate", map[string]any{
		"ctc": 1000000, "city": "Delhi", "userId": "user-1",
	})

	// THEN: the breakdown is returned and recorded
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	got := decode[CalculationDTO](t, rec)

	assert.Equal(t, "calc-001", got.ID)
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, "Delhi", got.City)

	b := got.Breakdown
	assert.InDelta(t, 1000000, b.FixedCTC, 0.001)
	assert.InDelta(t, 41666.67, b.BasicSalary, 0.001)
	assert.InDelta(t, 33333.33, b.HRA, 0.001)
	assert.InDelta(t, 8333.33, b.SpecialAllowance, 0.001)
	assert.InDelta(t, 1800, b.PF, 0.001)
	assert.InDelta(t, 0, b.ESI, 0.001)
	assert.InDelta(t, 0, b.ProfessionalTax, 0.001)
	assert.InDelta(t, 1576.67, b.IncomeTax, 0.001)
	assert.InDelta(t, 3376.67, b.MonthlyDeductions, 0.001)
	assert.InDelta(t, 79956.67, b.InHandSalary, 0.001)
	assert.InDelta(t, 40520, b.AnnualDeductions, 0.001)

	history := decode[[]CalculationDTO](t, srv.do(t, http.MethodGet, "/api/salary/calculations", nil))
	require.Len(t, history, 1)
	assert.Equal(t, got, history[0])
}

func TestCalculate_WireFieldNames(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/salary/calculate",
		`{"ctc": 1200000, "city": "Chennai", "variablePay": 100000, "insurance": 20000}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got := decode[CalculationDTO](t, rec)
	assert.InDelta(t, 1080000, got.Breakdown.FixedCTC, 0.001)
	assert.InDelta(t, 100000, got.Breakdown.VariablePay, 0.001)
	assert.InDelta(t, 20000, got.Breakdown.Insurance, 0.001)
	assert.Contains(t, rec.Body.String(), `"inHandSalary"`)
	assert.Contains(t, rec.Body.String(), `"professionalTax"`)
}

func TestCalculate_InvalidInput(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"malformed json", `{"ctc": `, "Invalid request body"},
		{"missing city", `{"ctc": 1000000}`, "city is required"},
		{"zero ctc", `{"ctc": 0, "city": "Pune"}`, "Invalid salary input"},
		{"negative ctc", `{"ctc": -5, "city": "Pune"}`, "Invalid salary input"},
		{"components exceed ctc", `{"ctc": 100000, "city": "Pune", "variablePay": 90000, "insurance": 20000}`, "Invalid salary input"},
		{"negative insurance", `{"ctc": 100000, "city": "Pune", "insurance": -1}`, "Invalid salary input"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, "/api/salary/calculate", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.wantMsg, decode[ErrorResponse](t, rec).Error)
		})
	}

	// Nothing is recorded for rejected input
	history := decode[[]CalculationDTO](t, srv.do(t, http.MethodGet, "/api/salary/calculations", nil))
	assert.Empty(t, history)
}

func TestCalculate_RecordFailureIs500(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, srv.store.Close())

	rec := srv.do(t, http.MethodPost, "/api/salary/calculate", `{"ctc": 1000000, "city": "Mumbai"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to record calculation", decode[ErrorResponse](t, rec).Error)
}

// =============================================================================
// HISTORY
// =============================================================================

func TestListCalculations_FilterAndLimit(t *testing.T) {
	srv := newTestServer(t)

	for i, user := range []string{"alice", "bob", "alice", "alice"} {
		body := fmt.Sprintf(`{"ctc": %d, "city": "Pune", "userId": %q}`, 500000+i*100000, user)
		require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/salary/calculate", body).Code)
	}

	all := decode[[]CalculationDTO](t, srv.do(t, http.MethodGet, "/api/salary/calculations", nil))
	require.Len(t, all, 4)
	assert.Equal(t, "calc-004", all[0].ID, "newest first")

	alice := decode[[]CalculationDTO](t, srv.do(t, http.MethodGet, "/api/salary/calculations?user_id=alice&limit=2", nil))
	require.Len(t, alice, 2)
	assert.Equal(t, "calc-004", alice[0].ID)
	assert.Equal(t, "calc-003", alice[1].ID)

	for _, bad := range []string{"0", "-1", "ten"} {
		rec := srv.do(t, http.MethodGet, "/api/salary/calculations?limit="+bad, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

// =============================================================================
// CITY TAX
// =============================================================================

func TestCities_CRUD(t *testing.T) {
	srv := newTestServer(t)

	// Create
	rec := srv.do(t, http.MethodPost, "/api/cities", `{"city": "Mumbai", "state": "Maharashtra", "professionalTax": 250}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[CityTaxDTO](t, rec)
	assert.Equal(t, "Mumbai", created.City)
	assert.InDelta(t, 250, created.ProfessionalTax, 0.001)
	assert.True(t, created.IsMetro)
	assert.NotEmpty(t, created.UpdatedAt)

	// Get
	rec = srv.do(t, http.MethodGet, "/api/cities/Mumbai", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Maharashtra", decode[CityTaxDTO](t, rec).State)

	// Update
	rec = srv.do(t, http.MethodPut, "/api/cities/Mumbai", `{"state": "MH", "professionalTax": 300}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.InDelta(t, 300, decode[CityTaxDTO](t, rec).ProfessionalTax, 0.001)

	// List
	srv.do(t, http.MethodPost, "/api/cities", `{"city": "Ahmedabad", "professionalTax": "200"}`)
	list := decode[[]CityTaxDTO](t, srv.do(t, http.MethodGet, "/api/cities", nil))
	require.Len(t, list, 2)
	assert.Equal(t, "Ahmedabad", list[0].City)
	assert.False(t, list[0].IsMetro)

	// Delete
	rec = srv.do(t, http.MethodDelete, "/api/cities/Mumbai", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[DeleteResponse](t, rec).Success)

	rec = srv.do(t, http.MethodDelete, "/api/cities/Mumbai", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[DeleteResponse](t, rec).Success)

	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/api/cities/Mumbai", nil).Code)
}

func TestCities_Errors(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPut, "/api/cities/Atlantis", `{"professionalTax": 100}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/cities", `{"city": "Pune", "professionalTax": -10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Details, "negative")

	rec = srv.do(t, http.MethodPost, "/api/cities", `{"city": "  ", "professionalTax": 10}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/cities", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCities_UpdateKeepsFieldsNotSent(t *testing.T) {
	srv := newTestServer(t)

	// GIVEN: Pune stored at 250
	rec := srv.do(t, http.MethodPost, "/api/cities", `{"city": "Pune", "state": "Maharashtra", "professionalTax": 250}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// WHEN: only the state changes
	rec = srv.do(t, http.MethodPut, "/api/cities/Pune", `{"state": "MH"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: the rate is untouched
	updated := decode[CityTaxDTO](t, rec)
	assert.Equal(t, "MH", updated.State)
	assert.InDelta(t, 250, updated.ProfessionalTax, 0.001)

	// WHEN: only the rate changes
	rec = srv.do(t, http.MethodPut, "/api/cities/Pune", `{"professionalTax": "175.50"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// THEN: the state is untouched
	stored := decode[CityTaxDTO](t, srv.do(t, http.MethodGet, "/api/cities/Pune", nil))
	assert.Equal(t, "MH", stored.State)
	assert.InDelta(t, 175.5, stored.ProfessionalTax, 0.001)

	// An empty body changes nothing
	rec = srv.do(t, http.MethodPut, "/api/cities/Pune", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 175.5, decode[CityTaxDTO](t, rec).ProfessionalTax, 0.001)

	// A negative rate is still rejected on update
	rec = srv.do(t, http.MethodPut, "/api/cities/Pune", `{"professionalTax": -1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCities_CreateRequiresProfessionalTax(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/cities", `{"city": "Nashik"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "professionalTax is required", decode[ErrorResponse](t, rec).Error)

	rec = srv.do(t, http.MethodPost, "/api/cities", `{"city": "Nashik", "professionalTax": null}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Nothing was stored
	assert.Equal(t, http.StatusNotFound, srv.do(t, http.MethodGet, "/api/cities/Nashik", nil).Code)

	// An explicit zero is a valid rate
	rec = srv.do(t, http.MethodPost, "/api/cities", `{"city": "Nashik", "professionalTax": 0}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.InDelta(t, 0, decode[CityTaxDTO](t, rec).ProfessionalTax, 0.001)
}

func TestCities_StoredRateOverridesFallback(t *testing.T) {
	srv := newTestServer(t)

	calculate := func() BreakdownDTO {
		rec := srv.do(t, http.MethodPost, "/api/salary/calculate", `{"ctc": 1000000, "city": "Delhi"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		return decode[CalculationDTO](t, rec).Breakdown
	}

	// GIVEN: Delhi only in the static table
	assert.InDelta(t, 0, calculate().ProfessionalTax, 0.001)

	// WHEN: an administrator stores a Delhi rate
	srv.do(t, http.MethodPost, "/api/cities", `{"city": "Delhi", "state": "Delhi", "professionalTax": 150}`)

	// THEN: the stored rate wins
	assert.InDelta(t, 150, calculate().ProfessionalTax, 0.001)

	// and deleting it restores the fallback
	srv.do(t, http.MethodDelete, "/api/cities/Delhi", nil)
	assert.InDelta(t, 0, calculate().ProfessionalTax, 0.001)
}

func TestCities_WritesInvalidateCache(t *testing.T) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer store.Close()

	rdb, redisMock := redismock.NewClientMock()
	cityCache := cache.NewCityTaxCache(store, rdb, time.Minute, nil)
	srv := &testServer{
		store:  store,
		router: NewRouter(NewHandler(store, salary.NewCalculator(cityCache), cityCache, nil)),
	}

	key := cache.CityTaxKey("Pune")
	redisMock.ExpectDel(key).SetVal(0)
	redisMock.ExpectDel(key).SetVal(1)
	redisMock.ExpectDel(key).SetVal(1)

	require.Equal(t, http.StatusCreated, srv.do(t, http.MethodPost, "/api/cities", `{"city": "Pune", "professionalTax": 200}`).Code)
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPut, "/api/cities/Pune", `{"professionalTax": 175}`).Code)
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodDelete, "/api/cities/Pune", nil).Code)

	// A delete of a missing city touches nothing
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodDelete, "/api/cities/Pune", nil).Code)

	assert.NoError(t, redisMock.ExpectationsWereMet())
}

func TestSeedCities(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/cities/seed", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 24, decode[SeedResponse](t, rec).Seeded)

	list := decode[[]CityTaxDTO](t, srv.do(t, http.MethodGet, "/api/cities", nil))
	assert.Len(t, list, 24)

	kolkata := decode[CityTaxDTO](t, srv.do(t, http.MethodGet, "/api/cities/Kolkata", nil))
	assert.InDelta(t, 110, kolkata.ProfessionalTax, 0.001)
	assert.True(t, kolkata.IsMetro)

	// Seeding twice is idempotent
	require.Equal(t, http.StatusOK, srv.do(t, http.MethodPost, "/api/cities/seed", nil).Code)
	assert.Len(t, decode[[]CityTaxDTO](t, srv.do(t, http.MethodGet, "/api/cities", nil)), 24)
}

// =============================================================================
// STATISTICS / HEALTH
// =============================================================================

func TestStatistics(t *testing.T) {
	srv := newTestServer(t)

	empty := decode[StatisticsDTO](t, srv.do(t, http.MethodGet, "/api/statistics", nil))
	assert.Zero(t, empty.TotalCalculations)
	assert.Empty(t, empty.Cities)

	for _, city := range []string{"Pune", "Mumbai", "Mumbai"} {
		srv.do(t, http.MethodPost, "/api/salary/calculate", fmt.Sprintf(`{"ctc": 900000, "city": %q}`, city))
	}

	stats := decode[StatisticsDTO](t, srv.do(t, http.MethodGet, "/api/statistics", nil))
	assert.Equal(t, 3, stats.TotalCalculations)
	assert.Equal(t, []CityUsageDTO{{City: "Mumbai", Calculations: 2}, {City: "Pune", Calculations: 1}}, stats.Cities)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}
