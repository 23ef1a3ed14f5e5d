package worker

// retry_cron.go
// Background goroutine that periodically re-drives dead-lettered sync jobs
// back onto the work queue once the remote store looks healthy again. Uses
// the circuit breaker state to avoid re-driving into a downed store.

import (
	"context"
	"encoding/json"
	"time"

	"opticpos/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const retryBatchSize = 10

// RetryCronConfig holds all dependencies for the re-drive goroutine.
type RetryCronConfig struct {
	RDB          *redis.Client
	CB           *infra.CircuitBreaker
	TickInterval time.Duration
}

// StartRetryCron launches a background goroutine that ticks on the configured
// interval and moves up to retryBatchSize DLQ entries back to QueueLedgerSync.
// It respects the context for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(cfg.TickInterval)
		defer ticker.Stop()

		log.Info().Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				redriveDLQ(ctx, cfg)
			}
		}
	}()
}

func redriveDLQ(ctx context.Context, cfg RetryCronConfig) {
	// If CB is open, skip entirely — don't re-drive into a downed store
	if cfg.CB.State() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return
	}

	dlqKey := DLQPrefix + QueueLedgerSync
	redriven := 0
	for i := 0; i < retryBatchSize; i++ {
		raw, err := cfg.RDB.RPop(ctx, dlqKey).Result()
		if err != nil {
			break // empty queue or redis error
		}

		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Msg("retry_cron: malformed DLQ entry dropped")
			continue
		}

		job := Job{Type: entry.JobType, Payload: entry.Payload}
		encoded, err := json.Marshal(job)
		if err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to re-encode job")
			continue
		}
		if err := cfg.RDB.LPush(ctx, entry.OriginalQueue, encoded).Err(); err != nil {
			// Put the entry back so it is not lost
			_ = cfg.RDB.LPush(ctx, dlqKey, raw).Err()
			log.Error().Err(err).Msg("retry_cron: failed to re-enqueue job")
			return
		}
		redriven++
	}

	if redriven > 0 {
		log.Info().Int("count", redriven).Msg("retry_cron: re-drove dead-lettered sync jobs")
	}
}
