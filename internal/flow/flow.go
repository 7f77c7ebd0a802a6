// Package flow runs the generate, schedule and adapt pipelines as
// sequences of durably-cached steps. Each step's output is persisted
// keyed by (flow id, step name); when asynq redelivers a task after a
// crash or retry, completed steps replay from the cache instead of
// re-executing, so side effects happen at most once per step while step
// attempts stay at-least-once.
package flow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// StepStore persists step outputs. Put is first-write-wins so a
// concurrent retry cannot overwrite a recorded outcome.
type StepStore interface {
	GetStepResult(ctx context.Context, flowID, step string) ([]byte, bool, error)
	PutStepResult(ctx context.Context, flowID, step string, result []byte) error
}

// Run is one flow instance. State moves between steps only through
// step return values; there is no shared mutable flow state.
type Run struct {
	ID    string
	Store StepStore
	Log   zerolog.Logger
}

// NewRun builds a flow instance handle for the given flow id.
func NewRun(id string, store StepStore, log zerolog.Logger) *Run {
	return &Run{ID: id, Store: store, Log: log.With().Str("flow_id", id).Logger()}
}

// Step executes fn once per flow instance. A cached result short-circuits
// execution; a fresh result is cached before being returned. Failures are
// not cached, so a failed step re-runs on the next delivery.
func Step[T any](ctx context.Context, r *Run, name string, fn func(context.Context) (T, error)) (T, error) {
	var out T

	cached, found, err := r.Store.GetStepResult(ctx, r.ID, name)
	if err != nil {
		return out, fmt.Errorf("step %s: read cache: %w", name, err)
	}
	if found {
		if err := json.Unmarshal(cached, &out); err != nil {
			return out, fmt.Errorf("step %s: decode cached result: %w", name, err)
		}
		r.Log.Debug().Str("step", name).Msg("step replayed from cache")
		return out, nil
	}

	out, err = fn(ctx)
	if err != nil {
		return out, fmt.Errorf("step %s: %w", name, err)
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		return out, fmt.Errorf("step %s: encode result: %w", name, err)
	}
	if err := r.Store.PutStepResult(ctx, r.ID, name, encoded); err != nil {
		return out, fmt.Errorf("step %s: write cache: %w", name, err)
	}
	r.Log.Debug().Str("step", name).Msg("step completed")
	return out, nil
}
