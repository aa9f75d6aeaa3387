package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/internal/core/model"
)

func receive(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case change, ok := <-ch:
		require.True(t, ok, "channel closed")
		return change
	case <-time.After(time.Second):
		t.Fatal("no change delivered")
		return Change{}
	}
}

func TestStateUnresolvedDeliversNothing(t *testing.T) {
	state := NewState()
	ch := state.Subscribe(1)

	assert.False(t, state.Resolved())
	select {
	case change := <-ch:
		t.Fatalf("unexpected change %+v", change)
	default:
	}
}

func TestStateSubscribeAfterResolveGetsCurrent(t *testing.T) {
	state := NewState()
	user := model.User{UID: "u1", Email: "a@example.com"}
	state.signIn(user)

	change := receive(t, state.Subscribe(1))
	assert.True(t, change.SignedIn)
	assert.Equal(t, user, change.User)

	current, ok := state.Current()
	assert.True(t, ok)
	assert.Equal(t, user, current)
}

func TestStateFanOutAndDedup(t *testing.T) {
	state := NewState()
	first := state.Subscribe(4)
	second := state.Subscribe(4)
	user := model.User{UID: "u1"}

	state.signIn(user)
	state.signIn(user)
	state.signOut()

	for _, ch := range []<-chan Change{first, second} {
		assert.True(t, receive(t, ch).SignedIn)
		assert.False(t, receive(t, ch).SignedIn)
		select {
		case change := <-ch:
			t.Fatalf("duplicate change %+v", change)
		default:
		}
	}
}

func TestStateFullObserverGetsLatestChange(t *testing.T) {
	state := NewState()
	slow := state.Subscribe(1)

	state.signIn(model.User{UID: "u1"})
	state.signIn(model.User{UID: "u2"})
	state.signOut()

	change := receive(t, slow)
	assert.False(t, change.SignedIn, "sign-out must not be dropped")
	select {
	case extra := <-slow:
		t.Fatalf("stale change %+v", extra)
	default:
	}

	state.signIn(model.User{UID: "u3"})
	assert.Equal(t, "u3", receive(t, slow).User.UID)
}

func TestStateCloseClosesObservers(t *testing.T) {
	state := NewState()
	ch := state.Subscribe(1)
	state.Close()

	_, ok := <-ch
	assert.False(t, ok)
}
