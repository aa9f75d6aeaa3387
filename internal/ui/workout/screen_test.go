package workout

import (
	"context"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack/internal/core/model"
	"fittrack/internal/core/session"

	"fyne.io/fyne/v2/test"
)

type idleTicker struct{ ch chan time.Time }

func (ticker idleTicker) C() <-chan time.Time { return ticker.ch }
func (ticker idleTicker) Stop()               {}

type idleClock struct{}

func (idleClock) NewTicker(time.Duration) session.Ticker {
	return idleTicker{ch: make(chan time.Time)}
}

type memoryHistory struct {
	mu      sync.Mutex
	records []model.HistoryRecord
}

func (history *memoryHistory) AppendRecord(ctx context.Context, record model.HistoryRecord) error {
	history.mu.Lock()
	defer history.mu.Unlock()
	history.records = append(history.records, record)
	return nil
}

type announcements struct {
	mu    sync.Mutex
	texts []string
}

func (a *announcements) Announce(text string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.texts = append(a.texts, text)
}

func newWorkout(t *testing.T, total int) (*session.Session, *memoryHistory, *announcements) {
	t.Helper()
	test.NewTempApp(t)
	history := &memoryHistory{}
	announcer := &announcements{}
	sess, err := session.New(model.WorkoutSpec{ID: "1", Title: "Push Workout", TotalSeconds: total}, history, announcer, session.Config{
		Clock:  idleClock{},
		Logger: log.New(io.Discard, "", 0),
	})
	require.NoError(t, err)
	t.Cleanup(sess.Close)
	return sess, history, announcer
}

func tick(sess *session.Session, n int) {
	for i := 0; i < n; i++ {
		sess.Tick()
	}
}

func TestInitialRender(t *testing.T) {
	sess, _, _ := newWorkout(t, 30)
	screen := New(sess, nil, nil)

	assert.Equal(t, "Push Workout", screen.titleLabel.Text)
	assert.Equal(t, "30s", screen.timerLabel.Text)
	assert.Equal(t, "Start", screen.toggle.Text)
	assert.Equal(t, 0.0, screen.progress.Value)
	assert.Equal(t, "Ready", screen.statusText.Text)
}

func TestStartPauseResetDriveSession(t *testing.T) {
	sess, _, announcer := newWorkout(t, 30)
	var updates []session.Snapshot
	screen := New(sess, nil, func(snapshot session.Snapshot) { updates = append(updates, snapshot) })

	test.Tap(screen.toggle)
	assert.Equal(t, session.StatusRunning, sess.Status())
	assert.Equal(t, "Pause", screen.toggle.Text)

	tick(sess, 10)
	screen.Refresh()
	assert.Equal(t, "20s", screen.timerLabel.Text)
	assert.InDelta(t, 33.33, screen.progress.Value, 0.01)

	test.Tap(screen.toggle)
	assert.Equal(t, session.StatusPaused, sess.Status())
	assert.Equal(t, "Start", screen.toggle.Text)
	assert.Equal(t, "Paused", screen.statusText.Text)

	test.Tap(screen.reset)
	assert.Equal(t, session.StatusIdle, sess.Status())
	assert.Equal(t, "30s", screen.timerLabel.Text)
	assert.Equal(t, 0.0, screen.progress.Value)

	assert.Equal(t, []string{
		session.AnnounceStart,
		session.AnnouncePause,
		session.AnnounceReset,
	}, announcer.texts)
	require.NotEmpty(t, updates)
	assert.Equal(t, session.StatusIdle, updates[len(updates)-1].Status)
}

func TestCompletionDisablesToggle(t *testing.T) {
	sess, history, announcer := newWorkout(t, 3)
	screen := New(sess, nil, nil)

	screen.TogglePause()
	tick(sess, 3)
	screen.Refresh()

	assert.Equal(t, "0s", screen.timerLabel.Text)
	assert.Equal(t, 100.0, screen.progress.Value)
	assert.True(t, screen.toggle.Disabled())
	assert.Equal(t, "Workout complete!", screen.statusText.Text)
	assert.Contains(t, announcer.texts, "Push Workout complete!")

	sess.Close()
	require.Len(t, history.records, 1)
	assert.Equal(t, "Push Workout", history.records[0].Title)
}

func TestBackClosesSession(t *testing.T) {
	sess, _, _ := newWorkout(t, 30)
	backs := 0
	screen := New(sess, func() { backs++ }, nil)
	screen.TogglePause()

	test.Tap(screen.back)

	assert.Equal(t, 1, backs)
	waitClosed(t, screen.Close())
	assert.ErrorIs(t, sess.Start(), session.ErrClosed)
	assert.NotPanics(t, screen.TogglePause)
}

type slowController struct {
	release chan struct{}
	closes  int
	mu      sync.Mutex
}

func (controller *slowController) Start() error { return nil }
func (controller *slowController) Pause() error { return nil }
func (controller *slowController) Reset() error { return nil }

func (controller *slowController) Snapshot() session.Snapshot {
	return session.Snapshot{Title: "Push Workout", Total: 30, Remaining: 30, Status: session.StatusIdle}
}

func (controller *slowController) Close() {
	<-controller.release
	controller.mu.Lock()
	defer controller.mu.Unlock()
	controller.closes++
}

func TestBackDoesNotWaitForTeardown(t *testing.T) {
	test.NewTempApp(t)
	controller := &slowController{release: make(chan struct{})}
	backs := 0
	screen := New(controller, func() { backs++ }, nil)

	tapped := make(chan struct{})
	go func() {
		test.Tap(screen.back)
		close(tapped)
	}()
	select {
	case <-tapped:
	case <-time.After(time.Second):
		close(controller.release)
		t.Fatal("back blocked on session teardown")
	}
	assert.Equal(t, 1, backs)

	done := screen.Close()
	select {
	case <-done:
		t.Fatal("teardown finished before the session released")
	default:
	}
	close(controller.release)
	waitClosed(t, done)

	controller.mu.Lock()
	defer controller.mu.Unlock()
	assert.Equal(t, 1, controller.closes)
}

func waitClosed(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session teardown did not finish")
	}
}
