package quiz

import (
	"sync"
	"time"
)

// AttemptState is where a (student, quiz) pair sits in the attempt machine.
type AttemptState string

const (
	StateNotStarted AttemptState = "not_started"
	StateInProgress AttemptState = "in_progress"
	StateSubmitted  AttemptState = "submitted"
)

type attemptKey struct {
	studentID string
	quizID    string
}

// attempt holds an in-progress attempt: answers selected so far and, for a
// timed quiz, the timer that force-submits on expiry.
type attempt struct {
	startedAt time.Time
	deadline  time.Time // zero for untimed quizzes
	answers   map[string]string
	timer     *time.Timer
}

type attemptTracker struct {
	mu     sync.Mutex
	active map[attemptKey]*attempt
}

func newAttemptTracker() *attemptTracker {
	return &attemptTracker{active: make(map[attemptKey]*attempt)}
}

func (t *attemptTracker) get(key attemptKey) (*attempt, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.active[key]
	return a, ok
}

func (t *attemptTracker) start(key attemptKey, startedAt, deadline time.Time) *attempt {
	t.mu.Lock()
	defer t.mu.Unlock()
	if a, ok := t.active[key]; ok {
		return a
	}
	a := &attempt{startedAt: startedAt, deadline: deadline, answers: make(map[string]string)}
	t.active[key] = a
	return a
}

func (t *attemptTracker) saveAnswer(key attemptKey, questionID, optionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.active[key]
	if !ok {
		return false
	}
	a.answers[questionID] = optionID
	return true
}

// finish removes the attempt and returns its answers. The timer is stopped so
// an expiry racing a manual submit cannot fire afterwards; the bool reports
// whether there was an attempt to finish, which makes the race single-winner.
func (t *attemptTracker) finish(key attemptKey) (map[string]string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.active[key]
	if !ok {
		return nil, false
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	delete(t.active, key)
	return a.answers, true
}

func (t *attemptTracker) arm(key attemptKey, d time.Duration, expire func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if a, ok := t.active[key]; ok && a.timer == nil {
		a.timer = time.AfterFunc(d, expire)
	}
}
