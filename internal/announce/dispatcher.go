package announce

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

const pollInterval = 500 * time.Millisecond

// Speaker renders one utterance and returns when playback finishes.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Dispatcher is the single consumer of the announcement queue. It polls
// every 500ms and guarantees at most one in-flight utterance.
type Dispatcher struct {
	queue    *Queue
	speaker  Speaker
	speaking atomic.Bool
}

func NewDispatcher(queue *Queue, speaker Speaker) *Dispatcher {
	return &Dispatcher{queue: queue, speaker: speaker}
}

// Run polls until the context ends. Speaking happens inline, so the next
// poll cannot start an utterance while one is playing.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.TrySpeakNext(ctx)
		}
	}
}

// TrySpeakNext speaks the front of the queue if the dispatcher is idle.
// Returns true when an utterance was rendered.
func (d *Dispatcher) TrySpeakNext(ctx context.Context) bool {
	if !d.speaking.CompareAndSwap(false, true) {
		return false
	}
	defer d.speaking.Store(false)

	a, ok := d.queue.Dequeue()
	if !ok {
		return false
	}
	if err := d.speaker.Speak(ctx, a.Text); err != nil {
		log.Printf("speech rendering failed: %v", err)
	}
	return true
}

// Speaking reports whether an utterance is currently in flight.
func (d *Dispatcher) Speaking() bool {
	return d.speaking.Load()
}
