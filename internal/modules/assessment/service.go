// Package assessment orchestrates the scoring pipeline: feature derivation,
// prediction, attribution, offer selection, alerting, and persistence of the
// resulting assessments. The trained model lives on the service - an
// explicit context object built at startup, never package-level state.
package assessment

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/stresswatch/internal/clientdata"
	"github.com/aristath/stresswatch/internal/domain"
	"github.com/aristath/stresswatch/internal/events"
	"github.com/aristath/stresswatch/internal/modules/advisory"
	"github.com/aristath/stresswatch/internal/modules/alerts"
	"github.com/aristath/stresswatch/internal/modules/customers"
	"github.com/aristath/stresswatch/internal/modules/features"
	"github.com/aristath/stresswatch/internal/modules/health"
	"github.com/aristath/stresswatch/internal/modules/offers"
	"github.com/aristath/stresswatch/internal/modules/risk"
	"github.com/aristath/stresswatch/internal/modules/simulation"
)

// ErrModelUnavailable is returned by scoring operations before a Train call
// has succeeded. Fatal for the request; the caller must retrain first.
var ErrModelUnavailable = errors.New("assessment: model unavailable, classifier has not been trained")

const (
	featureCacheTable = "feature_snapshots"
	featureCacheTTL   = 24 * time.Hour
)

// InsightClient produces free-text suggestions for a scored customer.
// Implemented by the grok boundary client; nil disables insights.
type InsightClient interface {
	Insight(ctx context.Context, a domain.Assessment, v domain.FeatureVector) string
}

// Deps wires the service's collaborators.
type Deps struct {
	Classifier *risk.Classifier
	Customers  *customers.Repository
	Runs       *Repository
	Cache      *clientdata.Repository // optional
	Insights   InsightClient          // optional
	Simulator  *simulation.Simulator
	Bus        *events.Bus

	// InsightTargets caps how many of the riskiest customers get an AI
	// insight per scoring run.
	InsightTargets int

	Log zerolog.Logger
}

// Service is the scoring context object. The model pointer is swapped under
// the mutex on retrain; readers take a snapshot and never see a partial
// model.
type Service struct {
	mu        sync.RWMutex
	model     *risk.Model
	explainer *risk.Explainer

	classifier     *risk.Classifier
	customers      *customers.Repository
	runs           *Repository
	cache          *clientdata.Repository
	insights       InsightClient
	simulator      *simulation.Simulator
	bus            *events.Bus
	insightTargets int
	log            zerolog.Logger
}

// NewService creates the scoring service. The model is nil until Train is
// called.
func NewService(deps Deps) *Service {
	return &Service{
		classifier:     deps.Classifier,
		customers:      deps.Customers,
		runs:           deps.Runs,
		cache:          deps.Cache,
		insights:       deps.Insights,
		simulator:      deps.Simulator,
		bus:            deps.Bus,
		insightTargets: deps.InsightTargets,
		log:            deps.Log.With().Str("service", "assessment").Logger(),
	}
}

// Ready reports whether a trained model is available.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model != nil
}

// Train builds a labeled example set from the stored customers and fits a
// fresh model, swapping it in atomically on success. A failed training run
// leaves any previous model in place.
func (s *Service) Train() error {
	started := time.Now()

	records, err := s.customers.GetAll()
	if err != nil {
		return fmt.Errorf("failed to load customers for training: %w", err)
	}

	vectors := features.BuildAll(records)
	examples := features.MakeExamples(vectors)

	model, err := s.classifier.Train(examples)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	s.mu.Lock()
	s.model = model
	s.explainer = risk.NewExplainer(model)
	s.mu.Unlock()

	positives := 0
	for _, ex := range examples {
		positives += ex.WillMissEMI
	}
	positiveRate := 0.0
	if len(examples) > 0 {
		positiveRate = float64(positives) / float64(len(examples))
	}

	if s.bus != nil {
		s.bus.Publish(&events.ModelTrainedData{
			Examples:     len(examples),
			PositiveRate: positiveRate,
			DurationMS:   time.Since(started).Milliseconds(),
		})
	}

	s.log.Info().
		Int("examples", len(examples)).
		Float64("positive_rate", positiveRate).
		Msg("Model trained and swapped in")

	return nil
}

// snapshot returns the current model and explainer without holding the lock
// during scoring.
func (s *Service) snapshot() (*risk.Model, *risk.Explainer) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model, s.explainer
}

// ScoreAll scores every stored customer and persists the run. Output order
// matches the repository's customer order.
func (s *Service) ScoreAll(ctx context.Context) ([]domain.Assessment, error) {
	model, explainer := s.snapshot()
	if model == nil {
		return nil, ErrModelUnavailable
	}

	records, err := s.customers.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}

	list, vectors := scoreRecords(model, explainer, records)

	s.attachInsights(ctx, list, vectors)
	s.cacheFeatures(list, vectors)
	runID := s.persistRun(list, "", 0)
	s.publishRunEvents(runID, list)

	return list, nil
}

// ScoreScenario regenerates the customer set under a shock scenario, scores
// the stressed records, and persists the run tagged with the scenario.
func (s *Service) ScoreScenario(ctx context.Context, scenario simulation.Scenario, intensity float64) ([]domain.Assessment, error) {
	model, explainer := s.snapshot()
	if model == nil {
		return nil, ErrModelUnavailable
	}

	stressed, err := s.Simulate(scenario, intensity)
	if err != nil {
		return nil, err
	}

	list, _ := scoreRecords(model, explainer, stressed)
	s.persistRun(list, string(scenario), intensity)

	return list, nil
}

// Simulate returns perturbed copies of the stored customer records for the
// scenario. Scoring is not required: simulation works off raw records even
// before the model is trained.
func (s *Service) Simulate(scenario simulation.Scenario, intensity float64) ([]domain.CustomerRecord, error) {
	records, err := s.customers.GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}

	out := s.simulator.Apply(records, scenario, intensity)

	if s.bus != nil {
		s.bus.Publish(&events.SimulationCompletedData{
			Scenario:  string(scenario),
			Intensity: intensity,
			Customers: len(out),
		})
	}

	return out, nil
}

// scoreRecords runs the per-customer pipeline in parallel. Workers write to
// index-addressed slots so output order always matches input order; the only
// shared state is the read-only model.
func scoreRecords(model *risk.Model, explainer *risk.Explainer, records []domain.CustomerRecord) ([]domain.Assessment, []domain.FeatureVector) {
	list := make([]domain.Assessment, len(records))
	vectors := make([]domain.FeatureVector, len(records))

	workers := runtime.NumCPU()
	if workers > len(records) {
		workers = len(records)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				v := features.Build(records[i])
				vectors[i] = v
				list[i] = assessOne(model, explainer, &records[i], v)
			}
		}()
	}
	for i := range records {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return list, vectors
}

// assessOne runs the full pipeline for a single customer.
func assessOne(model *risk.Model, explainer *risk.Explainer, rec *domain.CustomerRecord, v domain.FeatureVector) domain.Assessment {
	prob := model.Predict(v)
	score := risk.RiskScore(prob)

	return domain.Assessment{
		CustomerID:       rec.CustomerID,
		RiskScore:        score,
		HealthScore:      health.Score(v),
		Alert:            alerts.ShouldAlert(v, score),
		RecommendedOffer: offers.Select(prob, rec.EMIDetails.EMIAmount),
		Advisory:         advisory.Generate(v),
		TopFactors:       explainer.Explain(v),
	}
}

// attachInsights fills AIInsight for the riskiest customers only - the
// insight call is slow and the long tail adds nothing.
func (s *Service) attachInsights(ctx context.Context, list []domain.Assessment, vectors []domain.FeatureVector) {
	if s.insights == nil || s.insightTargets <= 0 {
		return
	}

	order := make([]int, len(list))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return list[order[a]].RiskScore > list[order[b]].RiskScore
	})

	n := s.insightTargets
	if len(order) < n {
		n = len(order)
	}
	for _, i := range order[:n] {
		list[i].AIInsight = s.insights.Insight(ctx, list[i], vectors[i])
	}
}

func (s *Service) cacheFeatures(list []domain.Assessment, vectors []domain.FeatureVector) {
	if s.cache == nil {
		return
	}
	// A failed write degrades one customer's snapshot, never the run.
	for i := range list {
		if err := s.cache.StoreMsgpack(featureCacheTable, list[i].CustomerID, vectors[i], featureCacheTTL); err != nil {
			s.log.Warn().Err(err).Str("customer_id", list[i].CustomerID).Msg("Failed to cache feature snapshot")
		}
	}
}

// CachedFeatures returns the feature snapshot from the latest scoring run,
// or false when none is fresh.
func (s *Service) CachedFeatures(customerID string) (domain.FeatureVector, bool) {
	var v domain.FeatureVector
	if s.cache == nil {
		return v, false
	}
	ok, err := s.cache.GetMsgpackIfFresh(featureCacheTable, customerID, &v)
	if err != nil {
		s.log.Warn().Err(err).Str("customer_id", customerID).Msg("Failed to read feature snapshot")
		return v, false
	}
	return v, ok
}

func (s *Service) persistRun(list []domain.Assessment, scenario string, intensity float64) string {
	runID := uuid.NewString()
	if s.runs == nil {
		return runID
	}
	if err := s.runs.StoreRun(runID, scenario, intensity, list); err != nil {
		s.log.Error().Err(err).Str("run_id", runID).Msg("Failed to persist assessment run")
	}
	return runID
}

func (s *Service) publishRunEvents(runID string, list []domain.Assessment) {
	if s.bus == nil {
		return
	}

	alertCount := 0
	for i := range list {
		if list[i].Alert {
			alertCount++
			s.bus.Publish(&events.AlertRaisedData{
				CustomerID: list[i].CustomerID,
				RiskScore:  list[i].RiskScore,
			})
		}
	}

	s.bus.Publish(&events.AssessmentsReadyData{
		RunID:     runID,
		Customers: len(list),
		Alerts:    alertCount,
	})
}
