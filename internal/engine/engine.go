// Package engine defines the contract of the neural translation engine and
// ships the asynchronous worker-pool service that drives a compute backend.
//
// Callers load one Model per language pair once at startup and then submit
// text with a Callback; the callback receives the translated text exactly
// once, on one of the service's worker goroutines.
package engine

import "errors"

var (
	// ErrServiceClosed is delivered to callbacks of jobs submitted after Close.
	ErrServiceClosed = errors.New("engine service is closed")
	// ErrBreakerOpen is returned while the backend circuit breaker rejects calls.
	ErrBreakerOpen = errors.New("engine backend is unavailable")
)

// Model is an opaque handle to one loaded translation model.
type Model interface {
	Name() string
}

// ModelSpec describes a model to load: the pair it serves and its options.
type ModelSpec struct {
	Name   string
	Source string
	Target string
	Config ModelConfig
}

// Response is the outcome of one translation job.
type Response struct {
	Text string
	Err  error
}

// Callback receives the response of a job.
type Callback func(Response)

// Engine is the asynchronous translation engine.
type Engine interface {
	LoadModel(spec ModelSpec) (Model, error)
	Translate(model Model, text string, callback Callback)
}
