package worker

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// InlineDispatcher runs rollover jobs in a goroutine of the current process.
// It stands in for the Redis queue when Redis is not configured: no retry,
// no DLQ, failures are only logged.
type InlineDispatcher struct {
	rollover HandlerFunc
	ctx      context.Context
}

// NewInlineDispatcher runs jobs under ctx, usually the server's lifetime context.
func NewInlineDispatcher(ctx context.Context, rollover HandlerFunc) *InlineDispatcher {
	return &InlineDispatcher{rollover: rollover, ctx: ctx}
}

func (d *InlineDispatcher) EnqueueRollover(_ context.Context, payload RolloverPayload) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	go func() {
		if err := d.rollover(d.ctx, raw); err != nil {
			log.Error().Err(err).Str("job_id", id).Msg("inline rollover failed")
		}
	}()
	return id, nil
}
