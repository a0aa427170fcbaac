package session

import (
	"strconv"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CountdownKey builds the composite key identifying one set's rest countdown.
func CountdownKey(exerciseID primitive.ObjectID, setIndex int) string {
	return exerciseID.Hex() + "-" + strconv.Itoa(setIndex)
}

// RestScheduler runs zero or more per-set rest countdowns off a single shared
// one-second tick. Independent interval timers per set would pile up during
// supersets, so all countdowns live in one map iterated once per tick.
type RestScheduler struct {
	mu         sync.Mutex
	remaining  map[string]int
	onComplete func(key string)

	ticker   *time.Ticker
	stop     chan struct{}
	done     chan struct{}
	runOnce  sync.Once
	stopOnce sync.Once
}

// NewRestScheduler creates a scheduler. onComplete fires once per countdown,
// on the tick that brings it to zero; it is invoked outside the scheduler
// lock and may be nil.
func NewRestScheduler(onComplete func(key string)) *RestScheduler {
	return &RestScheduler{
		remaining:  make(map[string]int),
		onComplete: onComplete,
		stop:       make(chan struct{}),
	}
}

// Run starts the shared one-second tick in a background goroutine.
// Callers that drive Tick manually (tests, embedding schedulers) can skip it.
func (s *RestScheduler) Run() {
	s.runOnce.Do(func() {
		s.ticker = time.NewTicker(time.Second)
		s.done = make(chan struct{})
		go func() {
			defer close(s.done)
			for {
				select {
				case <-s.ticker.C:
					s.Tick()
				case <-s.stop:
					return
				}
			}
		}()
	})
}

// Start inserts or overwrites the countdown for key. A non-positive duration
// means rest is disabled for the owning exercise and no countdown is created.
func (s *RestScheduler) Start(key string, seconds int) {
	if seconds <= 0 {
		return
	}
	s.mu.Lock()
	s.remaining[key] = seconds
	s.mu.Unlock()
}

// Tick decrements every active countdown by one second. Countdowns reaching
// zero are removed and their completion signal fired — exactly once, on the
// tick that brings them to zero.
func (s *RestScheduler) Tick() {
	var completed []string

	s.mu.Lock()
	for key, secs := range s.remaining {
		secs--
		if secs <= 0 {
			delete(s.remaining, key)
			completed = append(completed, key)
			continue
		}
		s.remaining[key] = secs
	}
	s.mu.Unlock()

	if s.onComplete != nil {
		for _, key := range completed {
			s.onComplete(key)
		}
	}
}

// Adjust shifts a running countdown by delta seconds, clamped at zero.
// A completed (absent) countdown is never resurrected.
func (s *RestScheduler) Adjust(key string, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	secs, ok := s.remaining[key]
	if !ok {
		return
	}
	secs += delta
	if secs < 0 {
		secs = 0
	}
	s.remaining[key] = secs
}

// Cancel removes a countdown immediately with no completion signal.
func (s *RestScheduler) Cancel(key string) {
	s.mu.Lock()
	delete(s.remaining, key)
	s.mu.Unlock()
}

// Active returns a snapshot of every running countdown.
func (s *RestScheduler) Active() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]int, len(s.remaining))
	for key, secs := range s.remaining {
		out[key] = secs
	}
	return out
}

// Stop tears the shared tick down, waiting for any in-flight tick to finish,
// and clears all countdowns. No callback fires after Stop returns. Safe to
// call more than once.
func (s *RestScheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		if s.ticker != nil {
			s.ticker.Stop()
			<-s.done
		}
	})
	s.mu.Lock()
	s.remaining = make(map[string]int)
	s.mu.Unlock()
}
