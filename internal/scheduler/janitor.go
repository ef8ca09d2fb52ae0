package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/reel/internal/index"
	"github.com/MrSnakeDoc/reel/internal/logger"
	redisstore "github.com/MrSnakeDoc/reel/internal/store/redis"
)

const (
	// DefaultIdleThreshold is how long a session may stay unused in memory
	DefaultIdleThreshold = 30 * time.Minute
)

// Janitor evicts idle sessions from memory. Their Redis records stay
// until the TTL expires, so an evicted session is rehydrated on its next
// request.
type Janitor struct {
	store     *redisstore.Store
	index     *index.MemoryIndex
	logger    logger.Logger
	interval  time.Duration
	threshold time.Duration
	now       func() time.Time
	stopCh    chan struct{}
}

// NewJanitor creates a new session janitor
func NewJanitor(
	store *redisstore.Store,
	idx *index.MemoryIndex,
	log logger.Logger,
	interval time.Duration,
	threshold time.Duration,
) *Janitor {
	if threshold == 0 {
		threshold = DefaultIdleThreshold
	}

	return &Janitor{
		store:     store,
		index:     idx,
		logger:    log,
		interval:  interval,
		threshold: threshold,
		now:       time.Now,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (j *Janitor) Start(ctx context.Context) error {
	// Run immediately on start
	if err := j.Sweep(ctx); err != nil {
		j.logger.Warn("initial session sweep failed",
			logger.Error(err))
	}

	ticker := time.NewTicker(j.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := j.Sweep(ctx); err != nil {
					j.logger.Error("session sweep failed",
						logger.Error(err))
				}
			case <-j.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the janitor
func (j *Janitor) Stop() {
	close(j.stopCh)
}

// Sweep evicts idle sessions and prunes expired IDs from Redis
func (j *Janitor) Sweep(ctx context.Context) error {
	cutoff := j.now().Add(-j.threshold)
	evicted := j.index.EvictIdle(cutoff)

	pruned := 0
	if j.store != nil {
		n, err := j.store.PruneExpired(ctx)
		if err != nil {
			// Best effort: the memory sweep already happened
			j.logger.Warn("failed to prune expired sessions from redis",
				logger.Error(err))
		}
		pruned = n
	}

	if len(evicted) > 0 || pruned > 0 {
		j.logger.Info("session sweep completed",
			logger.Int("evicted", len(evicted)),
			logger.Int("pruned", pruned),
			logger.Int("live", j.index.Count()))
	} else {
		j.logger.Debug("no idle sessions")
	}

	return nil
}
