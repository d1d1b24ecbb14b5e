package translation

import (
	"errors"
	"strings"
	"sync"

	"horse.fit/mts/internal/engine"
)

type fakeModel struct {
	name string
}

func (m fakeModel) Name() string {
	return m.name
}

type submission struct {
	model string
	text  string
}

// fakeEngine completes every job on its own goroutine, tagging the text with
// the model name so hop order is visible in the result.
type fakeEngine struct {
	mu     sync.Mutex
	calls  []submission
	fail   map[string]error
	loaded []string
}

func (e *fakeEngine) LoadModel(spec engine.ModelSpec) (engine.Model, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.fail[spec.Name]; err != nil {
		return nil, err
	}
	e.loaded = append(e.loaded, spec.Name)
	return fakeModel{name: spec.Name}, nil
}

func (e *fakeEngine) Translate(model engine.Model, text string, callback engine.Callback) {
	e.mu.Lock()
	e.calls = append(e.calls, submission{model: model.Name(), text: text})
	err := e.fail[model.Name()]
	e.mu.Unlock()

	go func() {
		if err != nil {
			callback(engine.Response{Err: err})
			return
		}
		callback(engine.Response{Text: "[" + model.Name() + "]" + text})
	}()
}

func (e *fakeEngine) submissions() []submission {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]submission, len(e.calls))
	copy(out, e.calls)
	return out
}

func newTestRegistry(keys ...string) *Registry {
	models := make(map[PairKey]engine.Model, len(keys))
	for _, key := range keys {
		models[PairKey(key)] = fakeModel{name: key}
	}
	registry, err := NewRegistry(models)
	if err != nil {
		panic(err)
	}
	return registry
}

var errEngineDown = errors.New("engine down")

func joinKeys(keys []PairKey) string {
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key.String())
	}
	return strings.Join(parts, ",")
}
