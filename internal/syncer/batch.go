// Package syncer implements the batched, bounded-retry upload pipeline that
// pushes locally-created entities to the remote store. One generic routine
// serves every entity type — callers supply an id extractor and an upsert
// function.
package syncer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	DefaultBatchSize = 20
	MaxRetries       = 3
	// RetryDelay is the linear backoff unit: a batch's n-th retry waits n × RetryDelay.
	RetryDelay = 1500 * time.Millisecond
	// BatchDelay is the fixed pause between batches — simple client-side rate
	// limiting, not adaptive.
	BatchDelay = 200 * time.Millisecond
)

// Progress receives cumulative counters after every batch.
type Progress func(processed, total, success, failed int)

// Result is the aggregate outcome of one pipeline run. Sync failures are
// reported here, never as Go errors — callers inspect counts, not exceptions.
type Result struct {
	Success int    `json:"success"`
	Failed  int    `json:"failed"`
	Details string `json:"details,omitempty"`
}

// Options tunes one pipeline run. Zero values fall back to the package
// defaults above.
type Options struct {
	BatchSize  int
	MaxRetries int
	RetryDelay time.Duration
	BatchDelay time.Duration
	OnProgress Progress
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = MaxRetries
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = RetryDelay
	}
	if o.BatchDelay < 0 {
		o.BatchDelay = BatchDelay
	}
	return o
}

// BatchUpsert partitions items into fixed-size batches and upserts each batch,
// retrying the same whole batch (not individual items) with linear backoff.
// A batch that exhausts its retries records every item id as failed and the
// pipeline continues with the next batch — best effort, never aborting the
// whole run on one batch's failure.
func BatchUpsert[T any](ctx context.Context, items []T, id func(T) string, upsert func(context.Context, []T) error, opts Options) Result {
	opts = opts.withDefaults()
	total := len(items)

	var res Result
	var failedIDs []string

	for start := 0; start < total; start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > total {
			end = total
		}
		batch := items[start:end]

		if start > 0 && opts.BatchDelay > 0 {
			if !sleep(ctx, opts.BatchDelay) {
				// Context gone — count the rest as failed and stop.
				for _, it := range items[start:] {
					failedIDs = append(failedIDs, id(it))
				}
				res.Failed += total - start
				break
			}
		}

		err := upsertWithRetry(ctx, batch, upsert, opts)
		if err != nil {
			for _, it := range batch {
				failedIDs = append(failedIDs, id(it))
			}
			res.Failed += len(batch)
			log.Warn().
				Err(err).
				Int("batch_start", start).
				Int("batch_size", len(batch)).
				Msg("syncer: batch failed after all retries")
		} else {
			res.Success += len(batch)
		}

		if opts.OnProgress != nil {
			opts.OnProgress(end, total, res.Success, res.Failed)
		}
	}

	res.Details = describeFailures(failedIDs)
	return res
}

// upsertWithRetry attempts the batch once plus up to MaxRetries retries,
// waiting attempt × RetryDelay before each retry.
func upsertWithRetry[T any](ctx context.Context, batch []T, upsert func(context.Context, []T) error, opts Options) error {
	var lastErr error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if !sleep(ctx, time.Duration(attempt)*opts.RetryDelay) {
				return ctx.Err()
			}
		}
		if err := upsert(ctx, batch); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}

// describeFailures lists the first 5 failed ids for the result details.
func describeFailures(ids []string) string {
	if len(ids) == 0 {
		return ""
	}
	sample := ids
	if len(sample) > 5 {
		sample = sample[:5]
	}
	msg := "failed ids: " + strings.Join(sample, ", ")
	if len(ids) > len(sample) {
		msg += fmt.Sprintf(" (and %d more)", len(ids)-len(sample))
	}
	return msg
}

// sleep waits for d or until ctx is done; returns false when cancelled.
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
