package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"fittrack/internal/core/model"
)

var (
	// ErrInvalidTransition indicates the operation is not allowed from the current status.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrClosed indicates the session was already torn down.
	ErrClosed = errors.New("session closed")
)

// HistoryAppender persists completed workouts.
type HistoryAppender interface {
	AppendRecord(ctx context.Context, record model.HistoryRecord) error
}

// Announcer speaks short prompts. Implementations must not block.
type Announcer interface {
	Announce(text string)
}

// Config contains runtime options for a Session.
type Config struct {
	TickInterval   time.Duration
	PersistTimeout time.Duration
	Clock          Clock
	// Dispatch runs tick handling on the caller's event loop. Nil runs it on the ticker goroutine.
	Dispatch func(func())
	Now      func() time.Time
	Logger   *log.Logger
}

// Session is the countdown state machine for a single workout attempt.
type Session struct {
	mu         sync.Mutex
	spec       model.WorkoutSpec
	options    Config
	history    HistoryAppender
	announcer  Announcer
	status     Status
	remaining  int
	events     []chan Event
	ticker     Ticker
	tickerStop chan struct{}
	generation uint64
	closed     bool
	persisting sync.WaitGroup
}

// New creates an idle Session for spec.
func New(spec model.WorkoutSpec, history HistoryAppender, announcer Announcer, options Config) (*Session, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	if options.TickInterval <= 0 {
		options.TickInterval = time.Second
	}
	if options.PersistTimeout <= 0 {
		options.PersistTimeout = 5 * time.Second
	}
	if options.Clock == nil {
		options.Clock = SystemClock{}
	}
	if options.Now == nil {
		options.Now = time.Now
	}
	if options.Logger == nil {
		options.Logger = log.Default()
	}

	return &Session{
		spec:      spec,
		options:   options,
		history:   history,
		announcer: announcer,
		status:    StatusIdle,
		remaining: spec.TotalSeconds,
	}, nil
}

// Spec returns the workout this session counts down.
func (session *Session) Spec() model.WorkoutSpec {
	return session.spec
}

// Subscribe registers a new observer channel. Channels are closed by Close.
func (session *Session) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	session.mu.Lock()
	if session.closed {
		session.mu.Unlock()
		close(ch)
		return ch
	}
	session.events = append(session.events, ch)
	session.mu.Unlock()
	return ch
}

// Start begins the countdown from Idle or resumes it from Paused.
func (session *Session) Start() error {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed {
		return ErrClosed
	}

	var message string
	switch session.status {
	case StatusIdle:
		message = AnnounceStart
	case StatusPaused:
		message = AnnounceResume
	default:
		return fmt.Errorf("%w: start while %s", ErrInvalidTransition, session.status)
	}

	session.status = StatusRunning
	session.startTickerLocked()
	session.announceLocked(message)
	session.emitStateLocked(message)
	return nil
}

// Pause freezes a running countdown.
func (session *Session) Pause() error {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed {
		return ErrClosed
	}
	if session.status != StatusRunning {
		return fmt.Errorf("%w: pause while %s", ErrInvalidTransition, session.status)
	}

	session.status = StatusPaused
	session.stopTickerLocked()
	session.announceLocked(AnnouncePause)
	session.emitStateLocked(AnnouncePause)
	return nil
}

// Reset rewinds to the full duration and stops the countdown.
// A completed workout stays in history.
func (session *Session) Reset() error {
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.closed {
		return ErrClosed
	}

	session.status = StatusIdle
	session.remaining = session.spec.TotalSeconds
	session.stopTickerLocked()
	session.announceLocked(AnnounceReset)
	session.emitStateLocked(AnnounceReset)
	return nil
}

// Tick advances a running countdown by one second. Ticks in any other status are ignored.
func (session *Session) Tick() {
	session.mu.Lock()
	defer session.mu.Unlock()
	session.tickLocked()
}

// tickFrom handles a tick from the ticker armed at generation. Ticks from a
// ticker released by Pause or Reset are dropped even if already queued.
func (session *Session) tickFrom(generation uint64) {
	session.mu.Lock()
	defer session.mu.Unlock()
	if generation != session.generation {
		return
	}
	session.tickLocked()
}

func (session *Session) tickLocked() {
	if session.closed || session.status != StatusRunning {
		return
	}

	if session.remaining > 0 {
		session.remaining--
	}
	if session.remaining > 0 {
		session.emitLocked(Event{
			Type:      EventProgress,
			Status:    session.status,
			Title:     session.spec.Title,
			Remaining: session.remaining,
			Progress:  session.progressLocked(),
			At:        session.options.Now(),
		})
		return
	}

	session.completeLocked()
}

// ProgressPercent returns the elapsed share of the countdown in [0,100].
func (session *Session) ProgressPercent() float64 {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.progressLocked()
}

// Status returns the current status.
func (session *Session) Status() Status {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.status
}

// Remaining returns the seconds left.
func (session *Session) Remaining() int {
	session.mu.Lock()
	defer session.mu.Unlock()
	return session.remaining
}

// Snapshot returns the current state for rendering.
func (session *Session) Snapshot() Snapshot {
	session.mu.Lock()
	defer session.mu.Unlock()
	return Snapshot{
		Title:     session.spec.Title,
		Total:     session.spec.TotalSeconds,
		Remaining: session.remaining,
		Status:    session.status,
		Progress:  session.progressLocked(),
	}
}

// Close releases the ticker, waits for pending history writes and closes observers.
func (session *Session) Close() {
	session.mu.Lock()
	if session.closed {
		session.mu.Unlock()
		return
	}
	session.closed = true
	session.stopTickerLocked()
	events := session.events
	session.events = nil
	session.mu.Unlock()

	session.persisting.Wait()
	for _, ch := range events {
		close(ch)
	}
}

// startTickerLocked arms a fresh ticker so every start or resume waits a full
// interval before the first decrement.
func (session *Session) startTickerLocked() {
	session.stopTickerLocked()
	session.generation++
	ticker := session.options.Clock.NewTicker(session.options.TickInterval)
	stop := make(chan struct{})
	session.ticker = ticker
	session.tickerStop = stop
	go session.run(ticker, stop, session.generation)
}

func (session *Session) stopTickerLocked() {
	if session.ticker == nil {
		return
	}
	close(session.tickerStop)
	session.ticker.Stop()
	session.ticker = nil
	session.tickerStop = nil
	session.generation++
}

func (session *Session) run(ticker Ticker, stop <-chan struct{}, generation uint64) {
	tick := func() { session.tickFrom(generation) }
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			if session.options.Dispatch != nil {
				session.options.Dispatch(tick)
			} else {
				tick()
			}
		}
	}
}

func (session *Session) completeLocked() {
	record := model.NewHistoryRecord(session.spec.Title, session.options.Now())
	session.persistLocked(record)

	message := CompletionAnnouncement(session.spec.Title)
	session.announceLocked(message)

	session.status = StatusCompleted
	session.stopTickerLocked()
	session.emitStateLocked(message)
}

func (session *Session) persistLocked(record model.HistoryRecord) {
	if session.history == nil {
		return
	}
	session.persisting.Add(1)
	go func() {
		defer session.persisting.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				session.options.Logger.Printf("workout session: save %q panicked: %v", record.Title, recovered)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), session.options.PersistTimeout)
		defer cancel()
		if err := session.history.AppendRecord(ctx, record); err != nil {
			session.options.Logger.Printf("workout session: save %q: %v", record.Title, err)
		}
	}()
}

func (session *Session) announceLocked(text string) {
	if session.announcer == nil {
		return
	}
	session.announcer.Announce(text)
}

func (session *Session) progressLocked() float64 {
	total := session.spec.TotalSeconds
	progress := float64(total-session.remaining) / float64(total) * 100
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}

func (session *Session) emitStateLocked(message string) {
	session.emitLocked(Event{
		Type:      EventStateChange,
		Status:    session.status,
		Title:     session.spec.Title,
		Remaining: session.remaining,
		Progress:  session.progressLocked(),
		Message:   message,
		At:        session.options.Now(),
	})
}

func (session *Session) emitLocked(event Event) {
	for _, ch := range session.events {
		select {
		case ch <- event:
		default:
		}
	}
}
