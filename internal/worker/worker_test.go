package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"mata/internal/reconciliation"
	"mata/internal/rollover"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── In-memory list store ─────────────────────────────────────────────────────

type fakeLists struct {
	lists map[string][]string
}

var _ listPusher = (*fakeLists)(nil)

func newFakeLists() *fakeLists { return &fakeLists{lists: map[string][]string{}} }

func (f *fakeLists) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	for _, v := range values {
		switch b := v.(type) {
		case []byte:
			f.lists[key] = append(f.lists[key], string(b))
		case string:
			f.lists[key] = append(f.lists[key], b)
		}
	}
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(int64(len(f.lists[key])))
	return cmd
}

type fakeRunner struct {
	opts []rollover.Options
	err  error
}

func (r *fakeRunner) Run(_ context.Context, opts rollover.Options) (*rollover.Result, error) {
	r.opts = append(r.opts, opts)
	return &rollover.Result{}, r.err
}

func encodeJob(t *testing.T, job Job) string {
	t.Helper()
	raw, err := json.Marshal(job)
	require.NoError(t, err)
	return string(raw)
}

func TestDispatcher_EnqueueRollover(t *testing.T) {
	lists := newFakeLists()
	d := &Dispatcher{rdb: lists}

	id, err := d.EnqueueRollover(context.Background(), RolloverPayload{Date: "2025-03-01", DryRun: true})
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Len(t, lists.lists[QueueRollover], 1)

	var job Job
	require.NoError(t, json.Unmarshal([]byte(lists.lists[QueueRollover][0]), &job))
	assert.Equal(t, id, job.ID)
	assert.Equal(t, JobTypeRollover, job.Type)
	assert.JSONEq(t, `{"date":"2025-03-01","dry_run":true}`, string(job.Payload))
}

func TestProcessJob_SuccessLeavesNothing(t *testing.T) {
	lists := newFakeLists()
	called := 0
	handlers := map[string]HandlerFunc{"x": func(context.Context, json.RawMessage) error { called++; return nil }}

	processJob(context.Background(), lists, handlers, "jobs:x", encodeJob(t, Job{ID: "1", Type: "x"}))
	assert.Equal(t, 1, called)
	assert.Empty(t, lists.lists)
}

func TestProcessJob_RetriesThenDeadLetters(t *testing.T) {
	lists := newFakeLists()
	handlers := map[string]HandlerFunc{"x": func(context.Context, json.RawMessage) error { return errors.New("redis timeout") }}

	processJob(context.Background(), lists, handlers, "jobs:x", encodeJob(t, Job{ID: "1", Type: "x"}))
	require.Len(t, lists.lists["jobs:x"], 1)
	var requeued Job
	require.NoError(t, json.Unmarshal([]byte(lists.lists["jobs:x"][0]), &requeued))
	assert.Equal(t, 1, requeued.Attempts)

	processJob(context.Background(), lists, handlers, "jobs:x", encodeJob(t, Job{ID: "1", Type: "x", Attempts: MaxAttempts - 1}))
	require.Len(t, lists.lists[DLQPrefix+"jobs:x"], 1)
	var entry DLQEntry
	require.NoError(t, json.Unmarshal([]byte(lists.lists[DLQPrefix+"jobs:x"][0]), &entry))
	assert.Equal(t, MaxAttempts, entry.Attempts)
	assert.Equal(t, "redis timeout", entry.Reason)
}

func TestProcessJob_PermanentGoesToDLQ(t *testing.T) {
	lists := newFakeLists()
	handlers := map[string]HandlerFunc{"x": func(context.Context, json.RawMessage) error { return Permanent(errors.New("bad")) }}

	processJob(context.Background(), lists, handlers, "jobs:x", encodeJob(t, Job{ID: "1", Type: "x"}))
	assert.Empty(t, lists.lists["jobs:x"])
	assert.Len(t, lists.lists[DLQPrefix+"jobs:x"], 1)
}

func TestProcessJob_MalformedAndUnknown(t *testing.T) {
	lists := newFakeLists()
	processJob(context.Background(), lists, nil, "jobs:x", "{not json")
	processJob(context.Background(), lists, map[string]HandlerFunc{}, "jobs:x", encodeJob(t, Job{ID: "2", Type: "other"}))
	assert.Len(t, lists.lists[DLQPrefix+"jobs:x"], 2)
}

func TestRolloverWorker_Options(t *testing.T) {
	w := NewRolloverWorker(&fakeRunner{}, true)

	opts, err := w.Options(RolloverPayload{})
	require.NoError(t, err)
	assert.True(t, opts.Source.IsZero())
	assert.True(t, opts.Overwrite)

	no := false
	opts, err = w.Options(RolloverPayload{Date: "2025-03-01", DryRun: true, Overwrite: &no})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), opts.Source)
	assert.True(t, opts.DryRun)
	assert.False(t, opts.Overwrite)

	_, err = w.Options(RolloverPayload{Date: "01/03/2025"})
	assert.ErrorIs(t, err, reconciliation.ErrInvalidDate)
}

func TestRolloverWorker_HandleClassifiesErrors(t *testing.T) {
	runner := &fakeRunner{err: rollover.ErrSourceMissing}
	w := NewRolloverWorker(runner, true)

	err := w.Handle(context.Background(), json.RawMessage(`{"date":"2025-03-01"}`))
	assert.True(t, isPermanent(err))
	assert.ErrorIs(t, err, rollover.ErrSourceMissing)

	runner.err = errors.New("lock held by another process")
	err = w.Handle(context.Background(), json.RawMessage(`{}`))
	require.Error(t, err)
	assert.False(t, isPermanent(err))

	runner.err = nil
	assert.NoError(t, w.Handle(context.Background(), json.RawMessage(`{}`)))

	err = w.Handle(context.Background(), json.RawMessage(`{"date":"hier"}`))
	assert.True(t, isPermanent(err))
}

func TestWaitAfterPopError(t *testing.T) {
	ctx := context.Background()

	// a timeout loops immediately whatever the delay
	start := time.Now()
	assert.True(t, waitAfterPopError(ctx, 0, redis.Nil, time.Hour))
	assert.Less(t, time.Since(start), time.Second)

	// a connection error waits before the next pop
	start = time.Now()
	assert.True(t, waitAfterPopError(ctx, 0, errors.New("connection refused"), 20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, waitAfterPopError(cancelled, 0, redis.Nil, time.Hour))
	assert.False(t, waitAfterPopError(cancelled, 0, errors.New("connection refused"), time.Hour))
}

func TestWaitAfterPopError_StopsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	assert.False(t, waitAfterPopError(ctx, 1, errors.New("i/o timeout"), time.Hour))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestTick_SkipsDayAlreadyCarried(t *testing.T) {
	at := func(hour, minute int) time.Time { return time.Date(2025, 3, 2, hour, minute, 0, 0, time.UTC) }
	triggered := 0
	carried := false
	cfg := RolloverCronConfig{
		Hour:    6,
		Trigger: func(context.Context) error { triggered++; carried = true; return nil },
		Done:    func(context.Context) (bool, error) { return carried, nil },
	}
	ctx := context.Background()

	last := tick(ctx, cfg, at(6, 0), time.Time{})
	assert.Equal(t, 1, triggered)
	assert.Equal(t, at(6, 0), last)

	// process restarted within the hour: last is lost but the stock is there
	last = tick(ctx, cfg, at(6, 20), time.Time{})
	assert.Equal(t, 1, triggered)
	assert.Equal(t, at(6, 20), last)

	// once skipped, the rest of the hour stays quiet without asking again
	cfg.Done = func(context.Context) (bool, error) { t.Fatal("unexpected check"); return false, nil }
	tick(ctx, cfg, at(6, 40), last)
	assert.Equal(t, 1, triggered)
}

func TestTick_CheckFailureStillTriggers(t *testing.T) {
	triggered := 0
	cfg := RolloverCronConfig{
		Hour:    6,
		Trigger: func(context.Context) error { triggered++; return errors.New("queue down") },
		Done:    func(context.Context) (bool, error) { return false, errors.New("disk error") },
	}
	now := time.Date(2025, 3, 2, 6, 1, 0, 0, time.UTC)

	assert.Equal(t, now, tick(context.Background(), cfg, now, time.Time{}))
	assert.Equal(t, 1, triggered)
	assert.Equal(t, time.Time{}, tick(context.Background(), cfg, now.Add(-time.Hour), time.Time{}))
	assert.Equal(t, 1, triggered)
}

func TestDue(t *testing.T) {
	at := func(day, hour int) time.Time { return time.Date(2025, 3, day, hour, 30, 0, 0, time.UTC) }

	assert.False(t, due(at(2, 5), 6, time.Time{}))
	assert.True(t, due(at(2, 6), 6, time.Time{}))
	assert.False(t, due(at(2, 6), 6, at(2, 6)), "already fired today")
	assert.False(t, due(at(2, 9), 6, time.Time{}), "late start does not fire")
	assert.True(t, due(at(3, 6), 6, at(2, 6)))
}
