package globaltime

import (
	"testing"
	"time"
)

func TestMockTime(t *testing.T) {
	frozen := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	SetMockTime(frozen)
	defer ResetTime()

	if got := UTC(); !got.Equal(frozen) || got.Location() != time.UTC {
		t.Fatalf("unexpected frozen UTC time: %v", got)
	}
	if got := Since(frozen.Add(-time.Minute)); got != time.Minute {
		t.Fatalf("unexpected elapsed time: %v", got)
	}

	ResetTime()
	if got := Now(); got.Equal(frozen) {
		t.Fatalf("clock is still frozen after reset")
	}
}
