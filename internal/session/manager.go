package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"backend-laufcoach/internal/announce"
	"backend-laufcoach/internal/geo"
	"backend-laufcoach/internal/location"
	"backend-laufcoach/internal/workout"

	"github.com/google/uuid"
)

// Store persists finished workouts.
type Store interface {
	Save(ctx context.Context, entry workout.Entry) (workout.Entry, error)
}

// Broadcaster pushes live state to stream subscribers.
type Broadcaster interface {
	Broadcast(sessionID string, payload []byte)
}

// WeightSource looks up a runner's body weight for the calorie math.
type WeightSource interface {
	WeightKg(ctx context.Context, userID string) float64
}

// Manager owns all live sessions. Each session gets its own announcement
// queue, engine and dispatcher, plus a 1 Hz timer goroutine driving
// countdown and duration ticks.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*liveSession

	store   Store
	hub     Broadcaster
	weights WeightSource
	phrases announce.PhraseSource
	speaker announce.Speaker

	countdownSeconds  int
	recordWhilePaused bool
}

type liveSession struct {
	mu        sync.Mutex
	tracker   *Tracker
	queue     *announce.Queue
	engine    *announce.Engine
	snapshots chan announce.Snapshot
	cancel    context.CancelFunc
}

type ManagerOptions struct {
	Store             Store
	Hub               Broadcaster
	Weights           WeightSource
	Phrases           announce.PhraseSource
	Speaker           announce.Speaker
	CountdownSeconds  int
	RecordWhilePaused bool
}

func NewManager(opts ManagerOptions) *Manager {
	if opts.CountdownSeconds <= 0 {
		opts.CountdownSeconds = 10
	}
	return &Manager{
		sessions:          map[string]*liveSession{},
		store:             opts.Store,
		hub:               opts.Hub,
		weights:           opts.Weights,
		phrases:           opts.Phrases,
		speaker:           opts.Speaker,
		countdownSeconds:  opts.CountdownSeconds,
		recordWhilePaused: opts.RecordWhilePaused,
	}
}

// CreateRequest starts a session for a user, optionally against a target
// route and training targets.
type CreateRequest struct {
	UserID           string
	TargetPace       float64
	TargetDistanceKm float64
	TargetRoute      []geo.Point
}

// Create registers a new session in countdown state and spins up its
// announcement pipeline.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (State, error) {
	if req.UserID == "" {
		return State{}, fmt.Errorf("user_id required")
	}

	weight := 70.0
	if m.weights != nil {
		weight = m.weights.WeightKg(ctx, req.UserID)
	}

	id := uuid.NewString()
	tracker := NewTracker(id, req.UserID, Options{
		WeightKg:          weight,
		TargetPace:        req.TargetPace,
		TargetDistanceKm:  req.TargetDistanceKm,
		TargetRoute:       req.TargetRoute,
		CountdownSeconds:  m.countdownSeconds,
		RecordWhilePaused: m.recordWhilePaused,
	})
	tracker.BeginCountdown()

	queue := announce.NewQueue()
	engine := announce.NewEngine(queue, m.phrases)
	engine.SetRoute(req.TargetRoute)

	runCtx, cancel := context.WithCancel(context.Background())
	ls := &liveSession{
		tracker:   tracker,
		queue:     queue,
		engine:    engine,
		snapshots: make(chan announce.Snapshot, 16),
		cancel:    cancel,
	}

	go engine.Run(runCtx, ls.snapshots)
	if m.speaker != nil {
		go announce.NewDispatcher(queue, m.speaker).Run(runCtx)
	}
	go m.timerLoop(runCtx, id, ls)

	m.mu.Lock()
	m.sessions[id] = ls
	m.mu.Unlock()

	return tracker.State(), nil
}

// timerLoop is the session's 1 Hz clock: it burns the countdown and, once
// active, advances the duration.
func (m *Manager) timerLoop(ctx context.Context, id string, ls *liveSession) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ls.mu.Lock()
			switch ls.tracker.Status() {
			case StatusCountdown:
				ls.tracker.CountdownTick()
			case StatusActive:
				ls.tracker.Tick()
			}
			state := ls.tracker.State()
			ls.mu.Unlock()
			m.publish(id, state)
		}
	}
}

func (m *Manager) get(id string) (*liveSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ls, ok := m.sessions[id]
	return ls, ok
}

var errNotFound = fmt.Errorf("session not found")

// OnFix feeds one GPS sample into a session. The resulting state is
// copied into the announcement pipeline and broadcast to subscribers; a
// slow phrase or speech call never blocks this handler.
func (m *Manager) OnFix(id string, fix location.Fix) (State, error) {
	ls, ok := m.get(id)
	if !ok {
		return State{}, errNotFound
	}

	ls.mu.Lock()
	accepted := ls.tracker.OnFix(fix)
	state := ls.tracker.State()
	ls.mu.Unlock()

	if accepted {
		select {
		case ls.snapshots <- snapshotOf(state):
		default:
			// Engine is behind; skipping one snapshot is harmless.
		}
		m.publish(id, state)
	}
	return state, nil
}

func snapshotOf(s State) announce.Snapshot {
	snap := announce.Snapshot{
		DistanceKm:       s.DistanceKm,
		DurationSec:      s.DurationSec,
		AveragePace:      s.AveragePace,
		TargetPace:       s.TargetPace,
		HasTargetPace:    s.TargetPace > 0,
		TargetDistanceKm: s.TargetDistanceKm,
		HasTargetDist:    s.TargetDistanceKm > 0,
	}
	if s.Position != nil {
		snap.Position = *s.Position
		snap.HasPosition = true
	}
	return snap
}

func (m *Manager) publish(id string, state State) {
	if m.hub == nil {
		return
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return
	}
	m.hub.Broadcast(id, payload)
}

func (m *Manager) ExtendCountdown(id string) (State, error) {
	return m.mutate(id, func(t *Tracker) bool { return t.ExtendCountdown() })
}

func (m *Manager) SkipCountdown(id string) (State, error) {
	return m.mutate(id, func(t *Tracker) bool { return t.SkipCountdown() })
}

func (m *Manager) Pause(id string) (State, error) {
	return m.mutate(id, func(t *Tracker) bool { return t.Pause() })
}

func (m *Manager) Resume(id string) (State, error) {
	return m.mutate(id, func(t *Tracker) bool { return t.Resume() })
}

func (m *Manager) mutate(id string, op func(*Tracker) bool) (State, error) {
	ls, ok := m.get(id)
	if !ok {
		return State{}, errNotFound
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	if !op(ls.tracker) {
		return ls.tracker.State(), fmt.Errorf("invalid transition from %s", ls.tracker.Status())
	}
	return ls.tracker.State(), nil
}

// Replay walks the session's target route at the given pace and feeds
// the resulting fixes as if a device had sent them. Each fix carries one
// second of simulated travel, so the tracker's clock is advanced in step
// and pace and calories come out as if the route had been run in real
// time. The whole route is consumed in one call.
func (m *Manager) Replay(id string, paceMinPerKm float64) (State, error) {
	ls, ok := m.get(id)
	if !ok {
		return State{}, errNotFound
	}
	if paceMinPerKm <= 0 {
		paceMinPerKm = 6.0
	}

	ls.mu.Lock()
	routePoints := ls.tracker.TargetRoute()
	ls.mu.Unlock()
	if len(routePoints) < 2 {
		return State{}, fmt.Errorf("session has no target route to replay")
	}

	sim := location.NewSimulator(routePoints, paceMinPerKm, time.Now())
	for {
		fix, ok := sim.Next()
		if !ok {
			break
		}
		ls.mu.Lock()
		ls.tracker.Tick()
		ls.mu.Unlock()
		if _, err := m.OnFix(id, fix); err != nil {
			return State{}, err
		}
	}
	return m.State(id)
}

func (m *Manager) State(id string) (State, error) {
	ls, ok := m.get(id)
	if !ok {
		return State{}, errNotFound
	}
	ls.mu.Lock()
	defer ls.mu.Unlock()
	return ls.tracker.State(), nil
}

// Stop finalizes a session. The workout entry is persisted best-effort:
// a failing store is logged and the session still resets and unregisters,
// so the runner is never stuck in a stopped-but-live session.
func (m *Manager) Stop(ctx context.Context, id string) (workout.Entry, error) {
	ls, ok := m.get(id)
	if !ok {
		return workout.Entry{}, errNotFound
	}

	ls.mu.Lock()
	entry, stopped := ls.tracker.Stop()
	if !stopped {
		status := ls.tracker.Status()
		ls.mu.Unlock()
		return workout.Entry{}, fmt.Errorf("invalid transition from %s", status)
	}
	ls.queue.Reset()
	ls.mu.Unlock()

	m.teardown(id, ls)

	if m.store != nil {
		saved, err := m.store.Save(ctx, entry)
		if err != nil {
			log.Printf("workout persist failed for session %s: %v", id, err)
		} else {
			entry = saved
		}
	}
	return entry, nil
}

// Cancel discards a session without persisting anything.
func (m *Manager) Cancel(id string) error {
	ls, ok := m.get(id)
	if !ok {
		return errNotFound
	}

	ls.mu.Lock()
	ls.tracker.Cancel()
	ls.queue.Reset()
	ls.mu.Unlock()

	m.teardown(id, ls)
	return nil
}

func (m *Manager) teardown(id string, ls *liveSession) {
	ls.cancel()
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}
