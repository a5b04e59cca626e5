// Package authstate folds authentication events into the session's state.
package authstate

import (
	"sync"
)

// State is where the session lifecycle currently stands.
type State int

const (
	Loading State = iota
	LoggedIn
	LoggedOut

	numStates
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case LoggedIn:
		return "logged_in"
	case LoggedOut:
		return "logged_out"
	default:
		return "unknown"
	}
}

// Event is something that happened to the session.
type Event int

const (
	InitStarted Event = iota
	NoStoredCredentials
	SessionRestored
	SessionInvalid
	RefreshSucceeded
	RefreshFailed
	LoginStarted
	LoginSucceeded
	LoginFailed
	LogoutRequested
	ProfileUpdated

	numEvents
)

func (e Event) String() string {
	if e < 0 || e >= numEvents {
		return "unknown"
	}
	return eventNames[e]
}

var eventNames = [numEvents]string{
	InitStarted:         "init_started",
	NoStoredCredentials: "no_stored_credentials",
	SessionRestored:     "session_restored",
	SessionInvalid:      "session_invalid",
	RefreshSucceeded:    "refresh_succeeded",
	RefreshFailed:       "refresh_failed",
	LoginStarted:        "login_started",
	LoginSucceeded:      "login_succeeded",
	LoginFailed:         "login_failed",
	LogoutRequested:     "logout_requested",
	ProfileUpdated:      "profile_updated",
}

// transitions has an entry for every state and event. A refresh result that
// arrives after logout does not resurrect the session, and a failed login
// attempt does not end the session that is already established.
var transitions = [numStates][numEvents]State{
	Loading: {
		InitStarted:         Loading,
		NoStoredCredentials: LoggedOut,
		SessionRestored:     LoggedIn,
		SessionInvalid:      LoggedOut,
		RefreshSucceeded:    LoggedIn,
		RefreshFailed:       LoggedOut,
		LoginStarted:        Loading,
		LoginSucceeded:      LoggedIn,
		LoginFailed:         LoggedOut,
		LogoutRequested:     LoggedOut,
		ProfileUpdated:      Loading,
	},
	LoggedIn: {
		InitStarted:         Loading,
		NoStoredCredentials: LoggedOut,
		SessionRestored:     LoggedIn,
		SessionInvalid:      LoggedOut,
		RefreshSucceeded:    LoggedIn,
		RefreshFailed:       LoggedOut,
		LoginStarted:        LoggedIn,
		LoginSucceeded:      LoggedIn,
		LoginFailed:         LoggedIn,
		LogoutRequested:     LoggedOut,
		ProfileUpdated:      LoggedIn,
	},
	LoggedOut: {
		InitStarted:         Loading,
		NoStoredCredentials: LoggedOut,
		SessionRestored:     LoggedIn,
		SessionInvalid:      LoggedOut,
		RefreshSucceeded:    LoggedOut,
		RefreshFailed:       LoggedOut,
		LoginStarted:        Loading,
		LoginSucceeded:      LoggedIn,
		LoginFailed:         LoggedOut,
		LogoutRequested:     LoggedOut,
		ProfileUpdated:      LoggedOut,
	},
}

// Transition returns the state that follows s on ev. Unknown inputs leave the
// state unchanged.
func Transition(s State, ev Event) State {
	if s < 0 || s >= numStates || ev < 0 || ev >= numEvents {
		return s
	}
	return transitions[s][ev]
}

// States lists every state, for callers that need to enumerate the table.
func States() []State {
	return []State{Loading, LoggedIn, LoggedOut}
}

// Events lists every event.
func Events() []Event {
	events := make([]Event, 0, numEvents)
	for e := Event(0); e < numEvents; e++ {
		events = append(events, e)
	}
	return events
}

// Listener is told about every dispatched event.
type Listener func(from, to State, ev Event)

// Machine holds the current state. It starts in Loading.
type Machine struct {
	mu        sync.RWMutex
	state     State
	listeners []Listener
}

func NewMachine() *Machine {
	return &Machine{state: Loading}
}

// Subscribe registers l for every subsequent Dispatch.
func (m *Machine) Subscribe(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Dispatch applies ev and returns the new state.
func (m *Machine) Dispatch(ev Event) State {
	m.mu.Lock()
	from := m.state
	to := Transition(from, ev)
	m.state = to
	listeners := append([]Listener(nil), m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l(from, to, ev)
	}
	return to
}

func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *Machine) IsLoading() bool       { return m.Current() == Loading }
func (m *Machine) IsAuthenticated() bool { return m.Current() == LoggedIn }
