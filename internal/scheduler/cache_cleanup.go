package scheduler

import (
	"github.com/rs/zerolog"

	"github.com/aristath/stresswatch/internal/clientdata"
)

// CacheCleanupJob removes expired rows from the cache tables
type CacheCleanupJob struct {
	log   zerolog.Logger
	cache *clientdata.Repository
}

// NewCacheCleanupJob creates a new CacheCleanupJob
func NewCacheCleanupJob(cache *clientdata.Repository) *CacheCleanupJob {
	return &CacheCleanupJob{
		log:   zerolog.Nop(),
		cache: cache,
	}
}

// SetLogger sets the logger for the job
func (j *CacheCleanupJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *CacheCleanupJob) Name() string {
	return "cache_cleanup"
}

// Run executes the cache cleanup job
func (j *CacheCleanupJob) Run() error {
	removed, err := j.cache.CleanupExpired()
	if err != nil {
		return err
	}

	if removed > 0 {
		j.log.Info().Int64("removed", removed).Msg("Expired cache entries removed")
	}

	return nil
}
