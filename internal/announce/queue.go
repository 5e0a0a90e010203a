package announce

import (
	"sync"
	"time"
)

type Category string

const (
	CategoryNavigation   Category = "navigation"
	CategoryPaceCoaching Category = "pace_coaching"
	CategoryMilestone    Category = "milestone"
)

// Announcement is one voice message. Immutable once enqueued.
type Announcement struct {
	Category  Category  `json:"category"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Queue is a two-lane priority queue: navigation messages drain before
// everything else, FIFO within each lane. A turn instruction must not wait
// behind a motivational quip.
type Queue struct {
	mu   sync.Mutex
	nav  []Announcement
	rest []Announcement
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Enqueue(a Announcement) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if a.Category == CategoryNavigation {
		q.nav = append(q.nav, a)
	} else {
		q.rest = append(q.rest, a)
	}
}

func (q *Queue) Dequeue() (Announcement, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.nav) > 0 {
		a := q.nav[0]
		q.nav = q.nav[1:]
		return a, true
	}
	if len(q.rest) > 0 {
		a := q.rest[0]
		q.rest = q.rest[1:]
		return a, true
	}
	return Announcement{}, false
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.nav) + len(q.rest)
}

// Reset abandons all pending announcements; they refer to a session context
// that no longer exists.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nav = nil
	q.rest = nil
}
