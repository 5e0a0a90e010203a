package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"backend-laufcoach/internal/geo"
	"backend-laufcoach/internal/workout"
)

type fakeStore struct {
	mu      sync.Mutex
	entries []workout.Entry
	err     error
}

func (s *fakeStore) Save(_ context.Context, entry workout.Entry) (workout.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return workout.Entry{}, s.err
	}
	entry.ID = "saved"
	s.entries = append(s.entries, entry)
	return entry, nil
}

type fakeWeights struct{ kg float64 }

func (w fakeWeights) WeightKg(context.Context, string) float64 { return w.kg }

type fakeHub struct {
	mu       sync.Mutex
	payloads int
}

func (h *fakeHub) Broadcast(string, []byte) {
	h.mu.Lock()
	h.payloads++
	h.mu.Unlock()
}

func TestManagerLifecycle(t *testing.T) {
	store := &fakeStore{}
	hub := &fakeHub{}
	mgr := NewManager(ManagerOptions{
		Store:   store,
		Hub:     hub,
		Weights: fakeWeights{kg: 80},
	})

	state, err := mgr.Create(context.Background(), CreateRequest{UserID: "user-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if state.Status != StatusCountdown || state.WeightKg != 80 {
		t.Fatalf("unexpected initial state: %+v", state)
	}

	state, err = mgr.SkipCountdown(state.SessionID)
	if err != nil || state.Status != StatusActive {
		t.Fatalf("skip countdown: %v, status=%s", err, state.Status)
	}

	for _, fix := range fixesNorth(5, 50) {
		if _, err := mgr.OnFix(state.SessionID, fix); err != nil {
			t.Fatalf("fix: %v", err)
		}
	}
	state, err = mgr.State(state.SessionID)
	if err != nil {
		t.Fatalf("state: %v", err)
	}
	if state.DistanceKm <= 0 {
		t.Fatalf("fixes must accumulate distance")
	}

	hub.mu.Lock()
	broadcasts := hub.payloads
	hub.mu.Unlock()
	if broadcasts == 0 {
		t.Fatalf("accepted fixes must broadcast state")
	}

	entry, err := mgr.Stop(context.Background(), state.SessionID)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if entry.ID != "saved" || entry.DistanceKm != state.DistanceKm {
		t.Fatalf("unexpected entry: %+v", entry)
	}
	if len(store.entries) != 1 {
		t.Fatalf("store must hold one workout")
	}

	if _, err := mgr.State(state.SessionID); err == nil {
		t.Fatalf("stopped session must be unregistered")
	}
}

func TestManagerStopSwallowsStoreError(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	mgr := NewManager(ManagerOptions{Store: store, Weights: fakeWeights{kg: 70}})

	state, err := mgr.Create(context.Background(), CreateRequest{UserID: "user-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := mgr.SkipCountdown(state.SessionID); err != nil {
		t.Fatalf("skip: %v", err)
	}

	entry, err := mgr.Stop(context.Background(), state.SessionID)
	if err != nil {
		t.Fatalf("stop must not surface persist failure: %v", err)
	}
	if entry.UserID != "user-1" {
		t.Fatalf("entry still returned on persist failure")
	}
	if _, err := mgr.State(state.SessionID); err == nil {
		t.Fatalf("session must reset even when persist fails")
	}
}

func TestManagerCancelDiscards(t *testing.T) {
	store := &fakeStore{}
	mgr := NewManager(ManagerOptions{Store: store, Weights: fakeWeights{kg: 70}})

	state, err := mgr.Create(context.Background(), CreateRequest{UserID: "user-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := mgr.Cancel(state.SessionID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(store.entries) != 0 {
		t.Fatalf("cancel must not persist")
	}
	if _, err := mgr.State(state.SessionID); err == nil {
		t.Fatalf("cancelled session must be unregistered")
	}
}

func TestManagerStopDuringCountdownRejected(t *testing.T) {
	store := &fakeStore{}
	mgr := NewManager(ManagerOptions{Store: store, Weights: fakeWeights{kg: 70}})

	state, err := mgr.Create(context.Background(), CreateRequest{UserID: "user-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer func() { _ = mgr.Cancel(state.SessionID) }()

	if _, err := mgr.Stop(context.Background(), state.SessionID); err == nil {
		t.Fatalf("stop during countdown must fail")
	}
	if len(store.entries) != 0 {
		t.Fatalf("rejected stop must not persist a workout")
	}
	if _, err := mgr.State(state.SessionID); err != nil {
		t.Fatalf("session must stay registered after rejected stop: %v", err)
	}
}

func TestManagerReplayWalksTargetRoute(t *testing.T) {
	store := &fakeStore{}
	mgr := NewManager(ManagerOptions{Store: store, Weights: fakeWeights{kg: 70}})

	// ~400 m straight north.
	route := []geo.Point{
		{Lat: 52.0, Lng: 13.0},
		{Lat: 52.0018, Lng: 13.0},
		{Lat: 52.0036, Lng: 13.0},
	}
	state, err := mgr.Create(context.Background(), CreateRequest{UserID: "user-1", TargetRoute: route})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := mgr.SkipCountdown(state.SessionID); err != nil {
		t.Fatalf("skip: %v", err)
	}
	defer func() { _ = mgr.Cancel(state.SessionID) }()

	state, err = mgr.Replay(state.SessionID, 5.0)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if state.DistanceKm < 0.35 || state.DistanceKm > 0.45 {
		t.Fatalf("replay must cover the route, got %.3f km", state.DistanceKm)
	}
	// The tracker's clock advances with the simulated fixes, so the replay
	// yields real pace and calorie figures, not distance with zero duration.
	if state.DurationSec < 100 || state.DurationSec > 145 {
		t.Fatalf("replay duration = %d s, want ~120", state.DurationSec)
	}
	if state.AveragePace < 4.5 || state.AveragePace > 5.5 {
		t.Fatalf("replay pace = %.2f, want ~5.0", state.AveragePace)
	}
	if state.Calories <= 0 {
		t.Fatalf("replay must accumulate calories")
	}
}

func TestManagerReplayNeedsRoute(t *testing.T) {
	mgr := NewManager(ManagerOptions{Weights: fakeWeights{kg: 70}})
	state, err := mgr.Create(context.Background(), CreateRequest{UserID: "user-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer func() { _ = mgr.Cancel(state.SessionID) }()

	if _, err := mgr.Replay(state.SessionID, 5.0); err == nil {
		t.Fatalf("replay without a target route must fail")
	}
}

func TestManagerUnknownSession(t *testing.T) {
	mgr := NewManager(ManagerOptions{})
	if _, err := mgr.Pause("nope"); err == nil {
		t.Fatalf("expected not found")
	}
	if _, err := mgr.Stop(context.Background(), "nope"); err == nil {
		t.Fatalf("expected not found")
	}
	if err := mgr.Cancel("nope"); err == nil {
		t.Fatalf("expected not found")
	}
}

func TestManagerRejectsMissingUser(t *testing.T) {
	mgr := NewManager(ManagerOptions{})
	if _, err := mgr.Create(context.Background(), CreateRequest{}); err == nil {
		t.Fatalf("expected error without user_id")
	}
}

func TestManagerInvalidTransition(t *testing.T) {
	mgr := NewManager(ManagerOptions{Weights: fakeWeights{kg: 70}})
	state, err := mgr.Create(context.Background(), CreateRequest{UserID: "user-1"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer func() { _ = mgr.Cancel(state.SessionID) }()

	if _, err := mgr.Pause(state.SessionID); err == nil {
		t.Fatalf("pause during countdown must fail")
	}
}
