package refresh_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/estate-client/token"
	"github.com/jrsteele09/estate-client/token/refresh"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func expiring(at time.Time) token.Pair {
	return token.Pair{AccessToken: "access", RefreshToken: "refresh", ExpiresAt: at}
}

type fakeTimer struct {
	delay   time.Duration
	fire    func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	wasActive := !t.stopped
	t.stopped = true
	return wasActive
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) refresh.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{delay: d, fire: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) active() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped {
			out = append(out, t)
		}
	}
	return out
}

type testFixture struct {
	clock     *fakeClock
	scheduler *refresh.Scheduler
	fired     int
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()
	f := &testFixture{clock: &fakeClock{}}
	f.scheduler = refresh.NewScheduler(5*time.Minute, func() { f.fired++ },
		refresh.WithNowTime(func() time.Time { return testNow }),
		refresh.WithAfterFunc(f.clock.AfterFunc),
	)
	return f
}

func TestScheduler_Schedule(t *testing.T) {
	t.Run("delay is expiry minus margin", func(t *testing.T) {
		f := setupTestFixture(t)
		delay := f.scheduler.Schedule(expiring(testNow.Add(30 * time.Minute)))
		require.Equal(t, 25*time.Minute, delay)

		dueAt, ok := f.scheduler.DueAt()
		require.True(t, ok)
		require.Equal(t, testNow.Add(25*time.Minute), dueAt)
		require.True(t, f.scheduler.Pending())
	})

	t.Run("inside the margin fires immediately", func(t *testing.T) {
		f := setupTestFixture(t)
		require.Equal(t, time.Duration(0), f.scheduler.Schedule(expiring(testNow.Add(time.Minute))))
		require.Equal(t, time.Duration(0), f.scheduler.Schedule(expiring(testNow.Add(-time.Hour))))
	})
}

func TestScheduler_SingleTimer(t *testing.T) {
	f := setupTestFixture(t)

	f.scheduler.Schedule(expiring(testNow.Add(30 * time.Minute)))
	f.scheduler.Schedule(expiring(testNow.Add(60 * time.Minute)))
	f.scheduler.Schedule(expiring(testNow.Add(90 * time.Minute)))

	active := f.clock.active()
	require.Len(t, active, 1)
	require.Equal(t, 85*time.Minute, active[0].delay)
}

func TestScheduler_Fire(t *testing.T) {
	f := setupTestFixture(t)
	f.scheduler.Schedule(expiring(testNow.Add(30 * time.Minute)))

	f.clock.active()[0].fire()
	require.Equal(t, 1, f.fired)
	require.False(t, f.scheduler.Pending())
	_, ok := f.scheduler.DueAt()
	require.False(t, ok)
}

func TestScheduler_StaleFireIgnored(t *testing.T) {
	f := setupTestFixture(t)

	f.scheduler.Schedule(expiring(testNow.Add(30 * time.Minute)))
	stale := f.clock.timers[0]
	f.scheduler.Schedule(expiring(testNow.Add(60 * time.Minute)))

	// a timer that fired just before being replaced must not trigger a refresh
	stale.fire()
	require.Equal(t, 0, f.fired)
	require.True(t, f.scheduler.Pending())
}

func TestScheduler_Cancel(t *testing.T) {
	f := setupTestFixture(t)

	f.scheduler.Cancel()
	require.False(t, f.scheduler.Pending())

	f.scheduler.Schedule(expiring(testNow.Add(30 * time.Minute)))
	timer := f.clock.timers[0]
	f.scheduler.Cancel()

	require.True(t, timer.stopped)
	require.False(t, f.scheduler.Pending())
	timer.fire()
	require.Equal(t, 0, f.fired)
}

func TestScheduler_RealTimer(t *testing.T) {
	done := make(chan struct{})
	s := refresh.NewScheduler(time.Hour, func() { close(done) })
	s.Schedule(expiring(time.Now().Add(time.Hour + 10*time.Millisecond)))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("refresh did not fire")
	}
}
