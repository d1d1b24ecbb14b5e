package translation

import "testing"

func TestResolveDirect(t *testing.T) {
	t.Parallel()

	router := NewRouter(newTestRegistry("enfr", "fren"))

	route := router.Resolve("en", "fr")
	if route.Kind != RouteDirect || route.First != "enfr" {
		t.Fatalf("unexpected route: %+v", route)
	}
	if got := joinKeys(route.Hops()); got != "enfr" {
		t.Fatalf("unexpected hops: %s", got)
	}
}

func TestResolvePivotThroughBridge(t *testing.T) {
	t.Parallel()

	router := NewRouter(newTestRegistry("enfr", "deen"))

	route := router.Resolve("de", "fr")
	if route.Kind != RoutePivot {
		t.Fatalf("expected pivot route, got %s", route.Kind)
	}
	if route.First != "deen" || route.Second != "enfr" {
		t.Fatalf("unexpected pivot legs: %+v", route)
	}
	if !router.IsSupported("de", "fr") {
		t.Fatalf("expected de->fr to be supported")
	}
}

func TestResolveDirectBeatsPivot(t *testing.T) {
	t.Parallel()

	router := NewRouter(newTestRegistry("defr", "deen", "enfr"))

	route := router.Resolve("de", "fr")
	if route.Kind != RouteDirect || route.First != "defr" {
		t.Fatalf("expected direct route, got %+v", route)
	}
}

func TestResolveUnsupported(t *testing.T) {
	t.Parallel()

	router := NewRouter(newTestRegistry("enfr", "fren", "ende", "deen"))

	if router.IsSupported("fr", "ja") {
		t.Fatalf("did not expect fr->ja to be supported")
	}
	route := router.Resolve("fr", "ja")
	if route.Kind != RouteUnsupported || len(route.Hops()) != 0 {
		t.Fatalf("unexpected route: %+v", route)
	}

	// Only one leg of the bridge exists.
	if NewRouter(newTestRegistry("enfr", "fren")).IsSupported("de", "fr") {
		t.Fatalf("did not expect de->fr without a de model")
	}
}

func TestResolveOnlyTriesBridgeLanguage(t *testing.T) {
	t.Parallel()

	// de->fr->it would work through "fr", but only "en" is a bridge.
	router := NewRouter(newTestRegistry("defr", "frit"))
	if router.IsSupported("de", "it") {
		t.Fatalf("did not expect a route through a non-bridge language")
	}
}

func TestRouteKindString(t *testing.T) {
	t.Parallel()

	if RouteDirect.String() != "direct" || RoutePivot.String() != "pivot" || RouteUnsupported.String() != "unsupported" {
		t.Fatalf("unexpected route kind names")
	}
}
