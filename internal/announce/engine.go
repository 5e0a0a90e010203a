package announce

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"backend-laufcoach/internal/geo"
	"backend-laufcoach/internal/phrase"
	"backend-laufcoach/internal/route"
)

const (
	turnDedupeWindow = 10 * time.Second

	paceDeviationMinPerKm = 0.3
	maxPaceMessagesPerKm  = 2
	paceLeadInKm          = 0.1
	paceSpacingKm         = 0.5
)

// PhraseSource produces short motivational phrases. A failing source yields
// an empty string and the engine carries on without it.
type PhraseSource interface {
	Generate(ctx context.Context, req phrase.Request) (string, error)
}

// Snapshot is a copy of the tracking state at one location update. The
// engine never sees live session references.
type Snapshot struct {
	DistanceKm       float64
	DurationSec      int
	AveragePace      float64
	TargetPace       float64
	HasTargetPace    bool
	TargetDistanceKm float64
	HasTargetDist    bool
	Position         geo.Point
	HasPosition      bool
}

// Engine turns tracking-state transitions into queued announcements. Each
// trigger keeps its own already-announced memory so nothing repeats.
type Engine struct {
	queue   *Queue
	phrases PhraseSource
	now     func() time.Time

	targetRoute []geo.Point
	turns       []route.Turn
	lastTurnIdx int
	recent      map[string]time.Time

	lastAnnouncedKm int
	finalKmDone     bool
	final100mDone   bool
	paceMsgsThisKm  int
	lastPaceMsgAtKm float64
}

func NewEngine(queue *Queue, phrases PhraseSource) *Engine {
	return &Engine{
		queue:   queue,
		phrases: phrases,
		now:     time.Now,
		recent:  map[string]time.Time{},
	}
}

// SetRoute installs the target route and precomputes its turning points.
// Routes with fewer than two points disable navigation.
func (e *Engine) SetRoute(r []geo.Point) {
	e.targetRoute = r
	e.turns = route.DetectTurns(r, route.DefaultMinTurnAngle)
	e.lastTurnIdx = 0
}

// Reset clears all trigger memory for a fresh session.
func (e *Engine) Reset() {
	e.lastTurnIdx = 0
	e.recent = map[string]time.Time{}
	e.lastAnnouncedKm = 0
	e.finalKmDone = false
	e.final100mDone = false
	e.paceMsgsThisKm = 0
	e.lastPaceMsgAtKm = 0
}

// Run consumes snapshots until the context ends. Snapshots are evaluated one
// at a time, so a slow phrase call delays later evaluations but never the
// location handler feeding the channel.
func (e *Engine) Run(ctx context.Context, snapshots <-chan Snapshot) {
	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			e.Evaluate(ctx, snap)
		}
	}
}

// Evaluate applies all triggers to one snapshot and enqueues what fires.
func (e *Engine) Evaluate(ctx context.Context, snap Snapshot) []Announcement {
	var produced []Announcement

	produced = append(produced, e.evalKmSplit(ctx, snap)...)
	produced = append(produced, e.evalFinalCallouts(snap)...)
	produced = append(produced, e.evalPaceCoaching(ctx, snap)...)
	produced = append(produced, e.evalNavigation(snap)...)

	for _, a := range produced {
		e.queue.Enqueue(a)
	}
	return produced
}

func (e *Engine) evalKmSplit(ctx context.Context, snap Snapshot) []Announcement {
	km := int(math.Floor(snap.DistanceKm))
	if km <= e.lastAnnouncedKm || snap.AveragePace <= 0 {
		return nil
	}
	e.lastAnnouncedKm = km
	e.paceMsgsThisKm = 0
	e.lastPaceMsgAtKm = 0

	text := fmt.Sprintf("Kilometer %d. Durchschnittspace %.2f Minuten pro Kilometer.", km, snap.AveragePace)
	if e.phrases != nil {
		p, err := e.phrases.Generate(ctx, phrase.Request{Kind: phrase.KindSplit})
		if err != nil {
			log.Printf("split phrase unavailable: %v", err)
		} else if p != "" {
			text += " " + p
		}
	}
	return []Announcement{{Category: CategoryMilestone, Text: text, CreatedAt: e.now()}}
}

func (e *Engine) evalFinalCallouts(snap Snapshot) []Announcement {
	if !snap.HasTargetDist {
		return nil
	}
	var out []Announcement
	if !e.finalKmDone && snap.DistanceKm >= snap.TargetDistanceKm-1 && snap.DistanceKm < snap.TargetDistanceKm {
		e.finalKmDone = true
		out = append(out, Announcement{
			Category:  CategoryMilestone,
			Text:      "Letzter Kilometer! Gib nochmal alles!",
			CreatedAt: e.now(),
		})
	}
	if !e.final100mDone && snap.DistanceKm >= snap.TargetDistanceKm-0.1 && snap.DistanceKm < snap.TargetDistanceKm {
		e.final100mDone = true
		out = append(out, Announcement{
			Category:  CategoryMilestone,
			Text:      "Nur noch 100 Meter! Endspurt!",
			CreatedAt: e.now(),
		})
	}
	return out
}

func (e *Engine) evalPaceCoaching(ctx context.Context, snap Snapshot) []Announcement {
	if !snap.HasTargetPace || snap.AveragePace <= 0 {
		return nil
	}
	diff := snap.AveragePace - snap.TargetPace
	if math.Abs(diff) <= paceDeviationMinPerKm {
		return nil
	}
	if e.paceMsgsThisKm >= maxPaceMessagesPerKm {
		return nil
	}
	intoKm := snap.DistanceKm - math.Floor(snap.DistanceKm)
	if intoKm < paceLeadInKm {
		return nil
	}
	if e.paceMsgsThisKm > 0 && snap.DistanceKm-e.lastPaceMsgAtKm < paceSpacingKm {
		return nil
	}

	kind := phrase.KindTooFast
	if diff > 0 {
		kind = phrase.KindTooSlow
	}

	text := ""
	if e.phrases != nil {
		p, err := e.phrases.Generate(ctx, phrase.Request{Kind: kind, TargetPace: snap.TargetPace})
		if err != nil {
			log.Printf("pace phrase unavailable: %v", err)
		} else {
			text = p
		}
	}
	if text == "" {
		// Silence beats nagging when the generator is down.
		return nil
	}

	e.paceMsgsThisKm++
	e.lastPaceMsgAtKm = snap.DistanceKm
	return []Announcement{{Category: CategoryPaceCoaching, Text: text, CreatedAt: e.now()}}
}

func (e *Engine) evalNavigation(snap Snapshot) []Announcement {
	if len(e.targetRoute) < 2 || !snap.HasPosition {
		return nil
	}

	turn, dist, ok := route.NextTurn(snap.Position, e.targetRoute, e.turns, e.lastTurnIdx)
	if !ok {
		return nil
	}
	text, ok := route.FormatTurnAnnouncement(route.InstructionFor(turn.Angle), dist)
	if !ok {
		return nil
	}

	// One key per turn and phrasing tier: the meter count in the text moves
	// with every tick, the turn itself does not.
	key := fmt.Sprintf("%d|%t|%s", turn.Index, dist < 50, route.InstructionFor(turn.Angle))
	if at, seen := e.recent[key]; seen && e.now().Sub(at) < turnDedupeWindow {
		return nil
	}
	e.recent[key] = e.now()

	if dist < 50 {
		// Precise callout given, this turn is handled.
		e.lastTurnIdx = turn.Index
	}
	return []Announcement{{Category: CategoryNavigation, Text: text, CreatedAt: e.now()}}
}
