package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueRollover   = "jobs:rollover"
	JobTypeRollover = "rollover"

	// MaxAttempts is the number of runs a job gets before the DLQ.
	MaxAttempts = 3

	// popRetryDelay is the pause after a BRPOP failure other than a timeout.
	popRetryDelay = 2 * time.Second
)

// Job is the generic envelope for all async tasks.
type Job struct {
	ID       string          `json:"id"`
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// HandlerFunc processes the payload of one job.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying: the job goes straight to the DLQ.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

func isPermanent(err error) bool {
	var p permanentError
	return errors.As(err, &p)
}

// listPusher is the part of the Redis client used to requeue and dead-letter.
type listPusher interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb listPusher
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueRollover pushes a rollover job and returns its id.
func (d *Dispatcher) EnqueueRollover(ctx context.Context, payload RolloverPayload) (string, error) {
	return d.enqueue(ctx, QueueRollover, JobTypeRollover, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	job := Job{ID: uuid.NewString(), Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return "", err
	}
	if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		return "", err
	}
	return job.ID, nil
}

// Pool consumes the registered queues with a fixed number of goroutines.
type Pool struct {
	rdb      *redis.Client
	queues   []string
	handlers map[string]HandlerFunc
}

func NewPool(rdb *redis.Client) *Pool {
	return &Pool{rdb: rdb, handlers: map[string]HandlerFunc{}}
}

// Handle registers h for jobType on queue.
func (p *Pool) Handle(queue, jobType string, h HandlerFunc) {
	found := false
	for _, q := range p.queues {
		if q == queue {
			found = true
		}
	}
	if !found {
		p.queues = append(p.queues, queue)
	}
	p.handlers[jobType] = h
}

// Start launches numWorkers goroutines consuming every registered queue.
// Each goroutine blocks on BRPOP and costs nothing while idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go p.runWorker(ctx, i)
	}
	log.Info().Int("workers", numWorkers).Strs("queues", p.queues).Msg("worker pool started")
}

func (p *Pool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Int("worker", id).Msg("worker shutting down")
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, 5*time.Second, p.queues...).Result()
			if err != nil {
				if !waitAfterPopError(ctx, id, err, popRetryDelay) {
					log.Info().Int("worker", id).Msg("worker shutting down")
					return
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, p.rdb, p.handlers, result[0], result[1])
		}
	}
}

// waitAfterPopError reports whether the worker should pop again. A timeout
// (redis.Nil) loops right away; any other error waits delay first so a Redis
// outage does not spin the worker. It returns false once ctx is done.
func waitAfterPopError(ctx context.Context, id int, err error, delay time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, redis.Nil) {
		return true
	}
	log.Warn().Int("worker", id).Err(err).Dur("retry_in", delay).Msg("brpop failed")
	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// processJob runs one raw job. Failures are requeued until MaxAttempts, then
// dead-lettered; permanent failures are dead-lettered right away.
func processJob(ctx context.Context, rdb listPusher, handlers map[string]HandlerFunc, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		SendToDLQ(ctx, rdb, queue, "", quoted, "malformed job: "+err.Error(), 0)
		return
	}
	h, ok := handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, "no handler for job type", job.Attempts)
		return
	}

	job.Attempts++
	logger := log.With().Str("job_id", job.ID).Str("type", job.Type).Int("attempt", job.Attempts).Logger()
	logger.Info().Msg("processing job")

	err := h(ctx, job.Payload)
	if err == nil {
		logger.Info().Msg("job done")
		return
	}
	if isPermanent(err) || job.Attempts >= MaxAttempts {
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}

	logger.Warn().Err(err).Msg("job failed, requeued")
	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		logger.Error().Err(mErr).Msg("failed to re-encode job")
		return
	}
	if pErr := rdb.LPush(ctx, queue, encoded).Err(); pErr != nil {
		logger.Error().Err(pErr).Msg("failed to requeue job")
	}
}
