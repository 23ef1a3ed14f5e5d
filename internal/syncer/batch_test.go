package syncer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct{ id string }

func makeItems(n int) []item {
	out := make([]item, n)
	for i := range out {
		out[i] = item{id: fmt.Sprintf("it-%03d", i)}
	}
	return out
}

func itemID(it item) string { return it.id }

// fastOpts keeps backoff out of test wall time.
func fastOpts() Options {
	return Options{BatchSize: 5, MaxRetries: 3, RetryDelay: time.Millisecond, BatchDelay: time.Millisecond}
}

func TestBatchUpsert_AllSucceed(t *testing.T) {
	var calls int
	res := BatchUpsert(context.Background(), makeItems(12), itemID,
		func(_ context.Context, batch []item) error {
			calls++
			return nil
		}, fastOpts())

	assert.Equal(t, 12, res.Success)
	assert.Equal(t, 0, res.Failed)
	assert.Empty(t, res.Details)
	assert.Equal(t, 3, calls) // 5 + 5 + 2
}

// A batch that fails twice and then succeeds must land entirely in Success.
func TestBatchUpsert_TransientFailureRecovers(t *testing.T) {
	attempts := make(map[string]int)
	res := BatchUpsert(context.Background(), makeItems(15), itemID,
		func(_ context.Context, batch []item) error {
			key := batch[0].id
			attempts[key]++
			if key == "it-000" && attempts[key] <= 2 {
				return errors.New("connection reset")
			}
			return nil
		}, fastOpts())

	assert.Equal(t, 15, res.Success)
	assert.Equal(t, 0, res.Failed)
	assert.Empty(t, res.Details)
	assert.Equal(t, 3, attempts["it-000"], "first batch should have needed three attempts")
	assert.Equal(t, 1, attempts["it-005"])
}

func TestBatchUpsert_PermanentFailureContinues(t *testing.T) {
	res := BatchUpsert(context.Background(), makeItems(10), itemID,
		func(_ context.Context, batch []item) error {
			if batch[0].id == "it-000" {
				return errors.New("constraint violation")
			}
			return nil
		}, fastOpts())

	assert.Equal(t, 5, res.Success)
	assert.Equal(t, 5, res.Failed)
	assert.Contains(t, res.Details, "it-000")
	assert.Contains(t, res.Details, "it-004")
}

func TestBatchUpsert_DetailsListsFirstFiveOnly(t *testing.T) {
	res := BatchUpsert(context.Background(), makeItems(8), itemID,
		func(_ context.Context, _ []item) error { return errors.New("down") },
		fastOpts())

	assert.Equal(t, 8, res.Failed)
	assert.Contains(t, res.Details, "it-004")
	assert.NotContains(t, res.Details, "it-005")
	assert.Contains(t, res.Details, "(and 3 more)")
}

func TestBatchUpsert_ProgressCumulative(t *testing.T) {
	type snap struct{ processed, total, success, failed int }
	var snaps []snap

	opts := fastOpts()
	opts.OnProgress = func(processed, total, success, failed int) {
		snaps = append(snaps, snap{processed, total, success, failed})
	}

	BatchUpsert(context.Background(), makeItems(12), itemID,
		func(_ context.Context, batch []item) error {
			if batch[0].id == "it-005" {
				return errors.New("down")
			}
			return nil
		}, opts)

	require.Len(t, snaps, 3)
	assert.Equal(t, snap{5, 12, 5, 0}, snaps[0])
	assert.Equal(t, snap{10, 12, 5, 5}, snaps[1])
	assert.Equal(t, snap{12, 12, 7, 5}, snaps[2])
}

func TestBatchUpsert_CancelledContextFailsRemainder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	opts := fastOpts()
	opts.BatchDelay = 10 * time.Millisecond
	res := BatchUpsert(ctx, makeItems(10), itemID,
		func(_ context.Context, _ []item) error {
			cancel() // dies after the first batch lands
			return nil
		}, opts)

	assert.Equal(t, 5, res.Success)
	assert.Equal(t, 5, res.Failed)
}

func TestBatchUpsert_EmptyInput(t *testing.T) {
	res := BatchUpsert(context.Background(), nil, itemID,
		func(_ context.Context, _ []item) error {
			t.Fatal("upsert should never be called")
			return nil
		}, Options{})
	assert.Zero(t, res.Success)
	assert.Zero(t, res.Failed)
}
