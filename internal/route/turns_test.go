package route

import (
	"strings"
	"testing"

	"backend-laufcoach/internal/geo"
)

func TestDetectTurnsLShape(t *testing.T) {
	// North, north, then east: one right-angle turn at index 2.
	route := []geo.Point{
		{Lat: 52.0000, Lng: 13.0},
		{Lat: 52.0009, Lng: 13.0},
		{Lat: 52.0018, Lng: 13.0},
		{Lat: 52.0018, Lng: 13.0015},
	}
	turns := DetectTurns(route, DefaultMinTurnAngle)
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if turns[0].Index != 2 {
		t.Fatalf("expected turn at index 2, got %d", turns[0].Index)
	}
	if turns[0].Angle < 85 || turns[0].Angle > 95 {
		t.Fatalf("expected ~90 degree turn, got %v", turns[0].Angle)
	}
}

func TestDetectTurnsStraight(t *testing.T) {
	route := []geo.Point{
		{Lat: 52.0000, Lng: 13.0},
		{Lat: 52.0009, Lng: 13.0},
		{Lat: 52.0018, Lng: 13.0},
	}
	if turns := DetectTurns(route, DefaultMinTurnAngle); len(turns) != 0 {
		t.Fatalf("straight route must have no turns, got %d", len(turns))
	}
}

func TestNormalizeAngle(t *testing.T) {
	cases := map[float64]float64{
		270:  -90,
		-270: 90,
		180:  180,
		-180: 180,
		0:    0,
	}
	for in, want := range cases {
		if got := normalizeAngle(in); got != want {
			t.Fatalf("normalizeAngle(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestNextTurnBand(t *testing.T) {
	route := []geo.Point{
		{Lat: 52.0000, Lng: 13.0},
		{Lat: 52.0009, Lng: 13.0},
		{Lat: 52.0018, Lng: 13.0},
		{Lat: 52.0018, Lng: 13.0015},
	}
	turns := DetectTurns(route, DefaultMinTurnAngle)

	// ~100m before the turn: inside [20, 200].
	pos := geo.Point{Lat: 52.0009, Lng: 13.0}
	turn, dist, ok := NextTurn(pos, route, turns, 0)
	if !ok {
		t.Fatalf("expected a turn")
	}
	if turn.Index != 2 {
		t.Fatalf("expected index 2, got %d", turn.Index)
	}
	if dist < 80 || dist > 120 {
		t.Fatalf("unexpected distance: %v", dist)
	}

	// Already processed: no repeat.
	if _, _, ok := NextTurn(pos, route, turns, 2); ok {
		t.Fatalf("processed turn must not repeat")
	}

	// Standing on the turn: below the 20m floor.
	if _, _, ok := NextTurn(route[2], route, turns, 0); ok {
		t.Fatalf("turn under 20m away must not fire")
	}
}

func TestInstructionFor(t *testing.T) {
	cases := []struct {
		angle float64
		want  string
	}{
		{170, "Wende dich um"},
		{-160, "Wende dich um"},
		{110, "Scharf rechts abbiegen"},
		{-95, "Scharf links abbiegen"},
		{60, "Rechts abbiegen"},
		{-50, "Links abbiegen"},
		{30, "Leicht rechts halten"},
		{-35, "Leicht links halten"},
	}
	for _, tc := range cases {
		if got := InstructionFor(tc.angle); got != tc.want {
			t.Fatalf("InstructionFor(%v) = %q, want %q", tc.angle, got, tc.want)
		}
	}
}

func TestFormatTurnAnnouncement(t *testing.T) {
	text, ok := FormatTurnAnnouncement("Links abbiegen", 42)
	if !ok || text != "In 42 Metern: Links abbiegen" {
		t.Fatalf("unexpected precise phrasing: %q", text)
	}

	text, ok = FormatTurnAnnouncement("Links abbiegen", 78)
	if !ok || !strings.HasPrefix(text, "In etwa ") {
		t.Fatalf("unexpected approximate phrasing: %q", text)
	}

	if _, ok := FormatTurnAnnouncement("Links abbiegen", 150); ok {
		t.Fatalf("turns beyond 100m must not be announced")
	}
}
