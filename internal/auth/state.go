package auth

import (
	"sync"
	"time"

	"fittrack/internal/core/model"
)

// Change is delivered to observers whenever the signed-in user changes.
type Change struct {
	User     model.User
	SignedIn bool
	At       time.Time
}

// State holds the current user. It starts unresolved until the first
// sign-in attempt or AutoLogin settles it.
type State struct {
	mu        sync.Mutex
	user      model.User
	signedIn  bool
	resolved  bool
	observers []chan Change
}

// NewState returns an unresolved State.
func NewState() *State {
	return &State{}
}

// Current returns the signed-in user, if any.
func (state *State) Current() (model.User, bool) {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.user, state.signedIn
}

// Resolved reports whether the initial auth state is known.
func (state *State) Resolved() bool {
	state.mu.Lock()
	defer state.mu.Unlock()
	return state.resolved
}

// Subscribe registers an observer. Once resolved, the current state is delivered first.
// A slow observer may skip intermediate changes but always sees the latest one.
func (state *State) Subscribe(buffer int) <-chan Change {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Change, buffer)
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.resolved {
		ch <- state.changeLocked()
	}
	state.observers = append(state.observers, ch)
	return ch
}

// Close closes all observer channels.
func (state *State) Close() {
	state.mu.Lock()
	observers := state.observers
	state.observers = nil
	state.mu.Unlock()
	for _, ch := range observers {
		close(ch)
	}
}

func (state *State) signIn(user model.User) {
	state.set(user, true)
}

func (state *State) signOut() {
	state.set(model.User{}, false)
}

func (state *State) set(user model.User, signedIn bool) {
	state.mu.Lock()
	defer state.mu.Unlock()
	if state.resolved && state.signedIn == signedIn && state.user == user {
		return
	}
	state.user = user
	state.signedIn = signedIn
	state.resolved = true
	change := state.changeLocked()
	for _, ch := range state.observers {
		deliverLatest(ch, change)
	}
}

// deliverLatest never blocks. A full observer loses its oldest pending change,
// so the newest state always reaches it. Callers hold state.mu, which makes
// them the only sender.
func deliverLatest(ch chan Change, change Change) {
	for {
		select {
		case ch <- change:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (state *State) changeLocked() Change {
	return Change{User: state.user, SignedIn: state.signedIn, At: time.Now()}
}
