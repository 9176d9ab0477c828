package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/stresswatch/internal/modules/assessment"
)

// RetrainJob rebuilds the risk model from the current customer set and
// refreshes the baseline assessments.
type RetrainJob struct {
	log     zerolog.Logger
	service *assessment.Service
}

// NewRetrainJob creates a new RetrainJob
func NewRetrainJob(service *assessment.Service) *RetrainJob {
	return &RetrainJob{
		log:     zerolog.Nop(),
		service: service,
	}
}

// SetLogger sets the logger for the job
func (j *RetrainJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *RetrainJob) Name() string {
	return "retrain"
}

// Run executes the retrain job
func (j *RetrainJob) Run() error {
	start := time.Now()

	if err := j.service.Train(); err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	list, err := j.service.ScoreAll(ctx)
	if err != nil {
		return fmt.Errorf("baseline scoring failed: %w", err)
	}

	j.log.Info().
		Int("customers", len(list)).
		Dur("duration", time.Since(start)).
		Msg("Scheduled retrain completed")

	return nil
}
