package refresh

import (
	"sync"
	"time"

	"github.com/jrsteele09/estate-client/token"
	"github.com/rs/zerolog"
)

// Timer is the part of *time.Timer the scheduler needs.
type Timer interface {
	Stop() bool
}

// AfterFunc arms a one-shot timer. time.AfterFunc in production, a fake in tests.
type AfterFunc func(d time.Duration, f func()) Timer

func stdAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Scheduler owns the single proactive-refresh timer. At most one timer is
// outstanding; arming a new one or cancelling invalidates the previous one
// even if it has already fired and is waiting on the lock.
type Scheduler struct {
	margin    time.Duration
	onDue     func()
	nowTime   func() time.Time
	afterFunc AfterFunc
	log       zerolog.Logger

	mu    sync.Mutex
	timer Timer
	gen   uint64
	dueAt time.Time
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Scheduler) { s.nowTime = nowFunc }
}

// WithAfterFunc replaces the timer factory (primarily for testing)
func WithAfterFunc(af AfterFunc) Option {
	return func(s *Scheduler) { s.afterFunc = af }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Scheduler) { s.log = l }
}

// NewScheduler creates a scheduler that calls onDue margin before each expiry
// it is given.
func NewScheduler(margin time.Duration, onDue func(), options ...Option) *Scheduler {
	s := &Scheduler{
		margin:    margin,
		onDue:     onDue,
		nowTime:   time.Now,
		afterFunc: stdAfterFunc,
		log:       zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Schedule replaces any outstanding timer with one for pair's expiry and
// returns the delay it was armed with.
func (s *Scheduler) Schedule(pair token.Pair) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()

	now := s.nowTime()
	delay := pair.RefreshDelay(now, s.margin)
	s.gen++
	gen := s.gen
	s.dueAt = now.Add(delay)
	s.timer = s.afterFunc(delay, func() { s.fire(gen) })

	s.log.Debug().Dur("delay", delay).Time("due_at", s.dueAt).Msg("token refresh scheduled")
	return delay
}

// Cancel discards the outstanding timer, if any.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopLocked() {
		s.log.Debug().Msg("token refresh cancelled")
	}
}

// Pending reports whether a timer is armed and has not fired.
func (s *Scheduler) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timer != nil
}

// DueAt returns when the outstanding timer fires.
func (s *Scheduler) DueAt() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer == nil {
		return time.Time{}, false
	}
	return s.dueAt, true
}

func (s *Scheduler) stopLocked() bool {
	if s.timer == nil {
		return false
	}
	s.timer.Stop()
	s.timer = nil
	s.dueAt = time.Time{}
	s.gen++
	return true
}

func (s *Scheduler) fire(gen uint64) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	s.dueAt = time.Time{}
	s.mu.Unlock()

	s.onDue()
}
