package app

import (
	"math"
	"sync"
	"time"
)

// Sequencer schedules the post-lock choreography: the feedback hold, the
// inter-question transition, the initial pause. Every timer is tagged with
// the generation it was armed for; Invalidate cancels everything older, so a
// rapid phase change can never fire a stale callback, and each armed callback
// runs at most once.
type Sequencer struct {
	mu     sync.Mutex
	gen    uint64
	timers []*time.Timer
}

// NewSequencer returns an empty sequencer.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// After arms fn to run once d elapses, tagged with gen. If the sequencer has
// been invalidated past gen, at arm time or by the time the timer fires, fn
// is dropped.
func (s *Sequencer) After(gen uint64, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.gen {
		return
	}
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		s.mu.Lock()
		stale := gen < s.gen
		s.mu.Unlock()
		if stale {
			return
		}
		fn()
	})
	s.timers = append(s.timers, t)
}

// Invalidate cancels all pending work armed for generations before gen.
// Called whenever a new question is presented or the run restarts.
func (s *Sequencer) Invalidate(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.gen {
		return
	}
	s.gen = gen
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = s.timers[:0]
}

// Stop cancels everything; the sequencer accepts no further work.
func (s *Sequencer) Stop() {
	s.Invalidate(math.MaxUint64)
}
