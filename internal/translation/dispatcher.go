package translation

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/mts/internal/engine"
)

// Submitter is the asynchronous half of the engine.
type Submitter interface {
	Translate(model engine.Model, text string, callback engine.Callback)
}

// Dispatcher turns the engine's callbacks into blocking calls.
type Dispatcher struct {
	engine   Submitter
	registry *Registry
	logger   zerolog.Logger
}

func NewDispatcher(submitter Submitter, registry *Registry, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		engine:   submitter,
		registry: registry,
		logger:   logger,
	}
}

// RunHop submits one job and blocks until the engine completes it. There is
// no timeout: a job the engine never completes blocks the caller forever.
func (d *Dispatcher) RunHop(model engine.Model, text string) (string, error) {
	if d == nil || d.engine == nil {
		return "", fmt.Errorf("dispatcher is not initialized")
	}

	done := make(chan engine.Response, 1)
	d.engine.Translate(model, text, func(resp engine.Response) {
		select {
		case done <- resp:
		default:
		}
	})

	resp := <-done
	if resp.Err != nil {
		return "", resp.Err
	}
	return resp.Text, nil
}

// Translate executes route. Pivot hops run strictly one after the other, the
// second consuming the first's output.
func (d *Dispatcher) Translate(route Route, text string) (string, error) {
	hops := route.Hops()
	if len(hops) == 0 {
		return "", ErrUnsupportedPair
	}

	current := text
	for _, key := range hops {
		model, ok := d.registry.Model(key)
		if !ok {
			return "", fmt.Errorf("pair %s: %w", key, ErrUnsupportedPair)
		}

		started := time.Now()
		out, err := d.RunHop(model, current)
		if err != nil {
			return "", fmt.Errorf("translate hop %s: %w", key, err)
		}
		d.logger.Debug().
			Str("pair", key.String()).
			Str("route", route.Kind.String()).
			Dur("latency", time.Since(started)).
			Msg("hop finished")
		current = out
	}
	return current, nil
}
