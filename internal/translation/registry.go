package translation

import (
	"sort"

	"horse.fit/mts/internal/engine"
)

// Registry maps pair keys to loaded models. It is built once and never
// mutated, so concurrent readers need no locking.
type Registry struct {
	models map[PairKey]engine.Model
	pairs  []PairKey
}

// NewRegistry copies models into an immutable registry. An empty input is an
// error: a service without models cannot serve.
func NewRegistry(models map[PairKey]engine.Model) (*Registry, error) {
	if len(models) == 0 {
		return nil, ErrEmptyRegistry
	}

	owned := make(map[PairKey]engine.Model, len(models))
	pairs := make([]PairKey, 0, len(models))
	for key, model := range models {
		owned[key] = model
		pairs = append(pairs, key)
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i] < pairs[j] })

	return &Registry{
		models: owned,
		pairs:  pairs,
	}, nil
}

// Model resolves the model registered under key.
func (r *Registry) Model(key PairKey) (engine.Model, bool) {
	if r == nil {
		return nil, false
	}
	model, ok := r.models[key]
	return model, ok
}

func (r *Registry) Has(key PairKey) bool {
	_, ok := r.Model(key)
	return ok
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.models)
}

// Pairs returns the registered keys in sorted order.
func (r *Registry) Pairs() []PairKey {
	if r == nil {
		return nil
	}
	out := make([]PairKey, len(r.pairs))
	copy(out, r.pairs)
	return out
}

// SourceLanguages lists the distinct source codes of the registered pairs.
func (r *Registry) SourceLanguages() []string {
	return r.languages(func(source, _ string) string { return source })
}

// TargetLanguages lists the distinct target codes of the registered pairs.
func (r *Registry) TargetLanguages() []string {
	return r.languages(func(_, target string) string { return target })
}

func (r *Registry) languages(pick func(source, target string) string) []string {
	if r == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(r.pairs))
	codes := make([]string, 0, len(r.pairs))
	for _, key := range r.pairs {
		source, target, ok := key.Languages()
		if !ok {
			continue
		}
		code := pick(source, target)
		if _, exists := seen[code]; exists {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
