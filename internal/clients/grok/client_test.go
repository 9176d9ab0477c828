package grok

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"

	"github.com/aristath/stresswatch/internal/clientdata"
	"github.com/aristath/stresswatch/internal/domain"
)

func testCache(t *testing.T) *clientdata.Repository {
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(clientdata.Schema)
	require.NoError(t, err)

	return clientdata.NewRepository(db)
}

func testAssessment() domain.Assessment {
	return domain.Assessment{
		CustomerID: "CUST1001",
		RiskScore:  78,
		TopFactors: []domain.Attribution{
			{Feature: "income_to_emi_ratio", Impact: 1.4},
		},
	}
}

func TestInsight_NoAPIKey(t *testing.T) {
	c := NewClient(Config{}, nil, zerolog.Nop())

	got := c.Insight(context.Background(), testAssessment(), domain.FeatureVector{})

	assert.Equal(t, "AI suggestions unavailable: XAI_API_KEY not set.", got)
}

func TestInsight_Success(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "grok-4-latest", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Contains(t, req.Messages[1].Content, "Risk Score: 78/100")

		json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{
				{Message: chatMessage{Role: "assistant", Content: "Cut discretionary spending."}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "grok-4-latest"}, nil, zerolog.Nop())

	got := c.Insight(context.Background(), testAssessment(), domain.FeatureVector{SalaryDelayDays: 4})

	assert.Equal(t, "Cut discretionary spending.", got)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestInsight_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "grok-4-latest"}, nil, zerolog.Nop())

	got := c.Insight(context.Background(), testAssessment(), domain.FeatureVector{})

	assert.Contains(t, got, "Grok error")
}

func TestInsight_CachesResult(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{
				{Message: chatMessage{Role: "assistant", Content: "Build a buffer."}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "grok-4-latest"}, testCache(t), zerolog.Nop())

	a := testAssessment()
	first := c.Insight(context.Background(), a, domain.FeatureVector{})
	second := c.Insight(context.Background(), a, domain.FeatureVector{})

	assert.Equal(t, "Build a buffer.", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "second call must be served from cache")
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(testAssessment(), domain.FeatureVector{
		SalaryDelayDays:  6,
		FailedAutoDebits: 2,
	})

	assert.Contains(t, prompt, "Risk Score: 78/100")
	assert.Contains(t, prompt, "income_to_emi_ratio (impact: 1.40)")
	assert.Contains(t, prompt, "Salary delay of 6 days")
	assert.Contains(t, prompt, "2 failed auto-debits")
}
