package translation

// RouteKind classifies how a pair is served.
type RouteKind int

const (
	RouteUnsupported RouteKind = iota
	RouteDirect
	RoutePivot
)

func (k RouteKind) String() string {
	switch k {
	case RouteDirect:
		return "direct"
	case RoutePivot:
		return "pivot"
	default:
		return "unsupported"
	}
}

// Route is the per-request routing decision. First is set for direct and
// pivot routes, Second only for pivot routes.
type Route struct {
	Kind   RouteKind
	First  PairKey
	Second PairKey
}

// Hops lists the pairs the route runs through, in order.
func (r Route) Hops() []PairKey {
	switch r.Kind {
	case RouteDirect:
		return []PairKey{r.First}
	case RoutePivot:
		return []PairKey{r.First, r.Second}
	default:
		return nil
	}
}

// Router decides between a direct model and a single bridge hop.
type Router struct {
	registry *Registry
}

func NewRouter(registry *Registry) *Router {
	return &Router{registry: registry}
}

// Resolve prefers a direct model, then a route through BridgeLanguage.
func (r *Router) Resolve(from, to string) Route {
	if r == nil || r.registry == nil {
		return Route{Kind: RouteUnsupported}
	}

	direct := NewPairKey(from, to)
	if r.registry.Has(direct) {
		return Route{Kind: RouteDirect, First: direct}
	}

	first := NewPairKey(from, BridgeLanguage)
	second := NewPairKey(BridgeLanguage, to)
	if r.registry.Has(first) && r.registry.Has(second) {
		return Route{Kind: RoutePivot, First: first, Second: second}
	}

	return Route{Kind: RouteUnsupported}
}

func (r *Router) IsSupported(from, to string) bool {
	return r.Resolve(from, to).Kind != RouteUnsupported
}
