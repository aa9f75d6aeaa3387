package platform

import (
	"context"
	"errors"
	"log"
	"sync"
)

// ErrSpeechUnavailable indicates no speech synthesizer was found.
var ErrSpeechUnavailable = errors.New("speech synthesis unavailable")

const speechQueueSize = 4

// speakFunc speaks text and returns once it has been said.
type speakFunc func(ctx context.Context, voice, text string) error

// Speaker speaks prompts through the OS speech synthesizer, one at a time.
// Announce never blocks; prompts arriving while the queue is full are dropped.
type Speaker struct {
	mu      sync.Mutex
	voice   string
	enabled bool
	speak   speakFunc
	queue   chan string
	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	closed  bool
	logger  *log.Logger
}

// NewSpeaker finds the platform synthesizer and starts the speech worker.
func NewSpeaker(voice string, logger *log.Logger) (*Speaker, error) {
	speak, err := systemSpeaker()
	if err != nil {
		return nil, err
	}
	return newSpeaker(speak, voice, logger), nil
}

func newSpeaker(speak speakFunc, voice string, logger *log.Logger) *Speaker {
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	speaker := &Speaker{
		voice:   voice,
		enabled: true,
		speak:   speak,
		queue:   make(chan string, speechQueueSize),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
		logger:  logger,
	}
	go speaker.run()
	return speaker
}

// Announce queues text for speaking.
func (speaker *Speaker) Announce(text string) {
	speaker.mu.Lock()
	defer speaker.mu.Unlock()
	if speaker.closed || !speaker.enabled || text == "" {
		return
	}
	select {
	case speaker.queue <- text:
	default:
		speaker.logger.Printf("speech: queue full, dropped %q", text)
	}
}

// SetEnabled turns spoken prompts on or off.
func (speaker *Speaker) SetEnabled(enabled bool) {
	speaker.mu.Lock()
	defer speaker.mu.Unlock()
	speaker.enabled = enabled
}

// SetVoice selects the synthesizer voice. Empty uses the system default.
func (speaker *Speaker) SetVoice(voice string) {
	speaker.mu.Lock()
	defer speaker.mu.Unlock()
	speaker.voice = voice
}

// Close interrupts the current prompt and stops the worker.
func (speaker *Speaker) Close() {
	speaker.mu.Lock()
	if speaker.closed {
		speaker.mu.Unlock()
		return
	}
	speaker.closed = true
	close(speaker.queue)
	speaker.mu.Unlock()

	speaker.cancel()
	<-speaker.done
}

func (speaker *Speaker) run() {
	defer close(speaker.done)
	for text := range speaker.queue {
		if speaker.ctx.Err() != nil {
			continue
		}
		speaker.mu.Lock()
		voice := speaker.voice
		speaker.mu.Unlock()

		if err := speaker.speak(speaker.ctx, voice, text); err != nil && speaker.ctx.Err() == nil {
			speaker.logger.Printf("speech: %v", err)
		}
	}
}

// MutedAnnouncer discards prompts.
type MutedAnnouncer struct{}

// Announce does nothing.
func (MutedAnnouncer) Announce(string) {}
