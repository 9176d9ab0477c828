package handlers

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/aristath/stresswatch/internal/domain"
	"github.com/aristath/stresswatch/internal/modules/assessment"
	"github.com/aristath/stresswatch/internal/modules/customers"
	"github.com/aristath/stresswatch/internal/modules/risk"
	"github.com/aristath/stresswatch/internal/modules/simulation"
)

func testPopulation(n int) []domain.CustomerRecord {
	rng := rand.New(rand.NewSource(5))
	records := make([]domain.CustomerRecord, 0, n)
	for i := 0; i < n; i++ {
		rec := domain.CustomerRecord{
			CustomerID: fmt.Sprintf("CUST%04d", 1000+i),
			Profile:    domain.Profile{MonthlyIncome: 55000},
			Accounts:   []domain.Account{{AccountID: fmt.Sprintf("SAV%d", i), CurrentBalance: 80000}},
			EMIDetails: domain.EMIDetails{EMIAmount: 11000},
		}
		if i%2 == 1 {
			rec.EMIDetails.EMIAmount = 22000
			rec.BehavioralMetrics.FailedAutoDebits = float64(2 + rng.Intn(2))
			rec.BehavioralMetrics.SalaryDelayDays = 7
		}
		records = append(records, rec)
	}
	return records
}

func setupRouter(t *testing.T, trained bool) *chi.Mux {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(customers.Schema)
	require.NoError(t, err)
	_, err = db.Exec(assessment.Schema)
	require.NoError(t, err)

	customerRepo := customers.NewRepository(db)
	require.NoError(t, customerRepo.SaveAll(testPopulation(40)))

	runRepo := assessment.NewRepository(db)

	svc := assessment.NewService(assessment.Deps{
		Classifier: risk.NewClassifier(zerolog.Nop()),
		Customers:  customerRepo,
		Runs:       runRepo,
		Simulator:  simulation.NewWithRand(rand.New(rand.NewSource(1)), zerolog.Nop()),
		Log:        zerolog.Nop(),
	})
	if trained {
		require.NoError(t, svc.Train())
	}

	h := NewHandler(svc, customerRepo, runRepo, zerolog.Nop())

	router := chi.NewRouter()
	h.RegisterRoutes(router)
	return router
}

func TestHandlePredict(t *testing.T) {
	router := setupRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/api/predict", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.Assessment `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 40)
}

func TestHandlePredict_ModelNotTrained(t *testing.T) {
	router := setupRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/predict", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleSimulate(t *testing.T) {
	router := setupRouter(t, false)

	body := strings.NewReader(`{"scenario":"inflation","intensity":1.5}`)
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Scenario  string                  `json:"scenario"`
			Intensity float64                 `json:"intensity"`
			Customers []domain.CustomerRecord `json:"customers"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "inflation", resp.Data.Scenario)
	assert.Len(t, resp.Data.Customers, 40)
}

func TestHandleSimulate_WithScoring(t *testing.T) {
	router := setupRouter(t, true)

	body := strings.NewReader(`{"scenario":"recession","intensity":1.0,"score":true}`)
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Assessments []domain.Assessment `json:"assessments"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data.Assessments, 40)
}

func TestHandleSimulate_UnknownScenario(t *testing.T) {
	router := setupRouter(t, false)

	body := strings.NewReader(`{"scenario":"meteor_strike","intensity":1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSimulate_NegativeIntensity(t *testing.T) {
	router := setupRouter(t, false)

	body := strings.NewReader(`{"scenario":"inflation","intensity":-1}`)
	req := httptest.NewRequest(http.MethodPost, "/api/simulate", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleSimulate_InvalidBody(t *testing.T) {
	router := setupRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/simulate", strings.NewReader("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRetrain(t *testing.T) {
	router := setupRouter(t, false)

	req := httptest.NewRequest(http.MethodPost, "/api/retrain", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandleListCustomers(t *testing.T) {
	router := setupRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []domain.CustomerRecord `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 40)
}

func TestHandleGetCustomer(t *testing.T) {
	router := setupRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/customers/CUST1000", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "CUST1000")
}

func TestHandleGetCustomer_NotFound(t *testing.T) {
	router := setupRouter(t, false)

	req := httptest.NewRequest(http.MethodGet, "/api/customers/CUST9999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleListRuns(t *testing.T) {
	router := setupRouter(t, true)

	// Generate one run
	req := httptest.NewRequest(http.MethodGet, "/api/predict", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	req = httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []assessment.RunInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 40, resp.Data[0].CustomerCount)
}
