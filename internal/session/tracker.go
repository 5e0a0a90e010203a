package session

import (
	"log"
	"time"

	"backend-laufcoach/internal/geo"
	"backend-laufcoach/internal/location"
	"backend-laufcoach/internal/route"
	"backend-laufcoach/internal/workout"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusCountdown Status = "countdown"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
)

const (
	countdownExtendSec = 10

	// Deviations beyond this are logged; snapping continues regardless.
	offRouteLogMeters = 75.0
)

// State is a copy of the tracking values at one instant.
type State struct {
	SessionID        string     `json:"session_id"`
	UserID           string     `json:"user_id"`
	Status           Status     `json:"status"`
	CountdownSec     int        `json:"countdown_sec,omitempty"`
	DistanceKm       float64    `json:"distance_km"`
	DurationSec      int        `json:"duration_sec"`
	AveragePace      float64    `json:"average_pace"`
	Calories         float64    `json:"calories"`
	WeightKg         float64    `json:"weight_kg"`
	TargetPace       float64    `json:"target_pace,omitempty"`
	TargetDistanceKm float64    `json:"target_distance_km,omitempty"`
	DeviationMeters  float64    `json:"deviation_meters,omitempty"`
	Position         *geo.Point `json:"position,omitempty"`
}

// Options configure a new tracker.
type Options struct {
	WeightKg          float64
	TargetPace        float64
	TargetDistanceKm  float64
	TargetRoute       []geo.Point
	CountdownSeconds  int
	RecordWhilePaused bool
}

// Tracker is the state machine of one workout. It is not safe for
// concurrent use; the owning manager serializes access.
type Tracker struct {
	id     string
	userID string
	opts   Options

	status       Status
	countdownSec int
	startedAt    time.Time

	path        []geo.Point
	distanceKm  float64
	durationSec int
	avgPace     float64
	calories    float64

	cursor     route.Cursor
	deviationM float64
	lastPos    geo.Point
	hasPos     bool

	filter *location.Filter
	now    func() time.Time
}

func NewTracker(id, userID string, opts Options) *Tracker {
	if opts.WeightKg <= 0 {
		opts.WeightKg = 70
	}
	if opts.CountdownSeconds <= 0 {
		opts.CountdownSeconds = 10
	}
	return &Tracker{
		id:     id,
		userID: userID,
		opts:   opts,
		status: StatusIdle,
		filter: location.NewFilter(),
		now:    time.Now,
	}
}

func (t *Tracker) ID() string               { return t.id }
func (t *Tracker) Status() Status           { return t.status }
func (t *Tracker) TargetRoute() []geo.Point { return t.opts.TargetRoute }

// BeginCountdown arms the lead-in timer. Only valid from idle.
func (t *Tracker) BeginCountdown() bool {
	if t.status != StatusIdle {
		return false
	}
	t.status = StatusCountdown
	t.countdownSec = t.opts.CountdownSeconds
	return true
}

// CountdownTick burns one second of the lead-in. Reaching zero activates
// the session and reports started=true.
func (t *Tracker) CountdownTick() (remaining int, started bool) {
	if t.status != StatusCountdown {
		return 0, false
	}
	t.countdownSec--
	if t.countdownSec <= 0 {
		t.activate()
		return 0, true
	}
	return t.countdownSec, false
}

func (t *Tracker) ExtendCountdown() bool {
	if t.status != StatusCountdown {
		return false
	}
	t.countdownSec += countdownExtendSec
	return true
}

func (t *Tracker) SkipCountdown() bool {
	if t.status != StatusCountdown {
		return false
	}
	t.activate()
	return true
}

func (t *Tracker) activate() {
	t.status = StatusActive
	t.countdownSec = 0
	t.startedAt = t.now()
}

// Tick adds one second of elapsed time. Suspended while paused.
func (t *Tracker) Tick() {
	if t.status != StatusActive {
		return
	}
	t.durationSec++
	t.recompute()
}

// OnFix ingests one GPS sample. The fix is snapped onto the target route
// when one is set, appended to the path, and the distance is recomputed
// from the full path. Recomputing from scratch is idempotent and
// self-correcting against a single bad append.
func (t *Tracker) OnFix(fix location.Fix) bool {
	recording := t.status == StatusActive ||
		(t.status == StatusPaused && t.opts.RecordWhilePaused)
	if !recording {
		return false
	}
	if !t.filter.Accept(fix) {
		return false
	}

	pos := fix.Point()
	if len(t.opts.TargetRoute) >= 2 {
		match := route.Advance(pos, t.opts.TargetRoute, &t.cursor)
		t.deviationM = match.DeviationMeters
		if t.deviationM > offRouteLogMeters {
			log.Printf("session %s: %.0fm off route", t.id, t.deviationM)
		}
		pos = route.Snap(pos, t.opts.TargetRoute)
	}

	t.path = append(t.path, pos)
	t.lastPos = pos
	t.hasPos = true
	t.distanceKm = geo.PathLengthKm(t.path)
	t.recompute()
	return true
}

func (t *Tracker) recompute() {
	t.avgPace = PaceMinPerKm(t.durationSec, t.distanceKm)
	t.calories = CaloriesKcal(METForPace(t.avgPace), t.opts.WeightKg, t.durationSec)
}

func (t *Tracker) Pause() bool {
	if t.status != StatusActive {
		return false
	}
	t.status = StatusPaused
	return true
}

func (t *Tracker) Resume() bool {
	if t.status != StatusPaused {
		return false
	}
	t.status = StatusActive
	return true
}

// Stop finalizes the workout: the accumulated values become a workout
// entry and the tracker resets to idle. Only valid from active or
// paused; a session that never started has nothing to persist.
func (t *Tracker) Stop() (workout.Entry, bool) {
	if t.status != StatusActive && t.status != StatusPaused {
		return workout.Entry{}, false
	}
	entry := workout.Entry{
		UserID:      t.userID,
		StartedAt:   t.startedAt,
		DistanceKm:  t.distanceKm,
		DurationSec: int64(t.durationSec),
		AveragePace: t.avgPace,
		Calories:    t.calories,
		Path:        t.path,
	}
	t.reset()
	return entry, true
}

// Cancel discards everything without producing an entry.
func (t *Tracker) Cancel() {
	t.reset()
}

func (t *Tracker) reset() {
	t.status = StatusIdle
	t.countdownSec = 0
	t.startedAt = time.Time{}
	t.path = nil
	t.distanceKm = 0
	t.durationSec = 0
	t.avgPace = 0
	t.calories = 0
	t.cursor = route.Cursor{}
	t.deviationM = 0
	t.hasPos = false
	t.filter.Reset()
}

// State copies the current values.
func (t *Tracker) State() State {
	s := State{
		SessionID:        t.id,
		UserID:           t.userID,
		Status:           t.status,
		CountdownSec:     t.countdownSec,
		DistanceKm:       t.distanceKm,
		DurationSec:      t.durationSec,
		AveragePace:      t.avgPace,
		Calories:         t.calories,
		WeightKg:         t.opts.WeightKg,
		TargetPace:       t.opts.TargetPace,
		TargetDistanceKm: t.opts.TargetDistanceKm,
		DeviationMeters:  t.deviationM,
	}
	if t.hasPos {
		pos := t.lastPos
		s.Position = &pos
	}
	return s
}
