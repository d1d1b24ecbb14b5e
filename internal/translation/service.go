package translation

import (
	"github.com/rs/zerolog"
)

// Service is the surface the request handlers call. It only composes the
// registry, router and dispatcher.
type Service struct {
	registry   *Registry
	router     *Router
	dispatcher *Dispatcher
}

func NewService(registry *Registry, submitter Submitter, logger zerolog.Logger) *Service {
	return &Service{
		registry:   registry,
		router:     NewRouter(registry),
		dispatcher: NewDispatcher(submitter, registry, logger),
	}
}

func (s *Service) IsSupported(from, to string) bool {
	return s.router.IsSupported(from, to)
}

func (s *Service) Resolve(from, to string) Route {
	return s.router.Resolve(from, to)
}

// Translate returns ErrUnsupportedPair without touching the engine when no
// route exists.
func (s *Service) Translate(from, to, text string) (string, error) {
	return s.dispatcher.Translate(s.router.Resolve(from, to), text)
}

func (s *Service) ListPairs() []PairKey {
	return s.registry.Pairs()
}

func (s *Service) Registry() *Registry {
	return s.registry
}
