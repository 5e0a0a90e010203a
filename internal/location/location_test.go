package location

import (
	"testing"
	"time"

	"backend-laufcoach/internal/geo"
)

func TestFilterFirstFixAccepted(t *testing.T) {
	f := NewFilter()
	if !f.Accept(Fix{Lat: 52, Lng: 13, At: time.Now()}) {
		t.Fatalf("first fix must pass")
	}
}

func TestFilterDropsTooFrequent(t *testing.T) {
	f := NewFilter()
	now := time.Now()
	f.Accept(Fix{Lat: 52, Lng: 13, At: now})

	if f.Accept(Fix{Lat: 52.001, Lng: 13, At: now.Add(200 * time.Millisecond)}) {
		t.Fatalf("fix within the minimum interval must be dropped")
	}
	if !f.Accept(Fix{Lat: 52.001, Lng: 13, At: now.Add(time.Second)}) {
		t.Fatalf("fix after the interval must pass")
	}
}

func TestFilterDropsTooClose(t *testing.T) {
	f := NewFilter()
	now := time.Now()
	f.Accept(Fix{Lat: 52, Lng: 13, At: now})

	// ~0.1m displacement
	if f.Accept(Fix{Lat: 52.000001, Lng: 13, At: now.Add(2 * time.Second)}) {
		t.Fatalf("fix under the displacement floor must be dropped")
	}
}

func TestFilterReset(t *testing.T) {
	f := NewFilter()
	now := time.Now()
	f.Accept(Fix{Lat: 52, Lng: 13, At: now})
	f.Reset()
	if !f.Accept(Fix{Lat: 52, Lng: 13, At: now.Add(time.Millisecond)}) {
		t.Fatalf("after reset the next fix must pass")
	}
}

func TestSimulatorWalksRoute(t *testing.T) {
	route := []geo.Point{
		{Lat: 52.0, Lng: 13.0},
		{Lat: 52.0018, Lng: 13.0}, // ~200m north
	}
	sim := NewSimulator(route, 5.0, time.Now()) // 5 min/km = 3.33 m/s

	var fixes []Fix
	for {
		fix, ok := sim.Next()
		if !ok {
			break
		}
		fixes = append(fixes, fix)
		if len(fixes) > 500 {
			t.Fatalf("simulator did not terminate")
		}
	}

	// ~200m at 3.33 m/s is about 60 fixes.
	if len(fixes) < 50 || len(fixes) > 70 {
		t.Fatalf("unexpected fix count: %d", len(fixes))
	}

	last := fixes[len(fixes)-1]
	if geo.DistanceMeters(last.Point(), route[1]) > 5 {
		t.Fatalf("simulator did not reach the route end")
	}

	// fixes are one second apart
	if fixes[1].At.Sub(fixes[0].At) != time.Second {
		t.Fatalf("fixes must be one second apart")
	}
}

func TestSimulatorShortRoute(t *testing.T) {
	sim := NewSimulator([]geo.Point{{Lat: 52, Lng: 13}}, 5, time.Now())
	if _, ok := sim.Next(); ok {
		t.Fatalf("short route must emit nothing")
	}
}
