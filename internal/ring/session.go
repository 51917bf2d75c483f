package ring

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State of an incoming-call notification session.
//
// Ringing is the only non-terminal state. The session is owned outside any
// UI framework: callers drive it with Start/Accept/Decline/Teardown and the
// ring timer drives the timeout path.
type State string

const (
	StateIdle     State = "idle"
	StateRinging  State = "ringing"
	StateResolved State = "resolved"
)

// Outcome records how a session resolved.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeDeclined Outcome = "declined"
	OutcomeExpired  Outcome = "expired"
)

// DeclineReasonUser is sent when the creator explicitly declines.
const DeclineReasonUser = "user declined"

// Actions is the backend contract the session invokes on resolution.
// Implementations issue the accept/decline REST calls.
type Actions interface {
	Accept(ctx context.Context, requestID string) error
	Decline(ctx context.Context, requestID, reason string) error
}

// Timer is a cancellable one-shot timer handle.
type Timer interface {
	Stop() bool
}

type stdTimer struct{ t *time.Timer }

func (s stdTimer) Stop() bool { return s.t.Stop() }

var (
	ErrNotRinging = errors.New("session is not ringing")
	// ErrResolved marks a late user action: a terminal transition has already
	// begun, so the action is a no-op and no network call was made.
	ErrResolved = errors.New("session already resolved")
)

// Config assembles a Session. Zero values get safe defaults.
type Config struct {
	RequestID string
	Actions   Actions

	// RingWindow is how long the session rings before auto-declining.
	// Defaults to 30 seconds.
	RingWindow time.Duration

	// Tone plays the ring tone. Optional; nil means silent.
	Tone Player

	// NewTimer is injectable for deterministic tests. Defaults to time.AfterFunc.
	NewTimer func(d time.Duration, fn func()) Timer

	// OnResolved is called exactly once, after teardown and the network call,
	// with the terminal outcome. Optional.
	OnResolved func(Outcome)
}

// Session is the incoming-call notifier state machine.
//
// Guarantees:
// - Exactly one of accept/decline is sent per session.
// - Tone and timer teardown always happen before the network call is issued,
//   so a hanging request cannot leave the ring tone playing.
// - Teardown is idempotent; the timer callback is a no-op after teardown,
//   so nothing fires after the owner has dismissed the session.
type Session struct {
	requestID string
	actions   Actions
	window    time.Duration
	tone      Player
	newTimer  func(time.Duration, func()) Timer
	onResolve func(Outcome)

	mu      sync.Mutex
	state   State
	outcome Outcome
	timer   Timer
}

func NewSession(cfg Config) (*Session, error) {
	if cfg.RequestID == "" {
		return nil, errors.New("request id is required")
	}
	if cfg.Actions == nil {
		return nil, errors.New("actions are required")
	}
	if cfg.RingWindow <= 0 {
		cfg.RingWindow = 30 * time.Second
	}
	if cfg.NewTimer == nil {
		cfg.NewTimer = func(d time.Duration, fn func()) Timer {
			return stdTimer{t: time.AfterFunc(d, fn)}
		}
	}
	return &Session{
		requestID: cfg.RequestID,
		actions:   cfg.Actions,
		window:    cfg.RingWindow,
		tone:      cfg.Tone,
		newTimer:  cfg.NewTimer,
		onResolve: cfg.OnResolved,
		state:     StateIdle,
	}, nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Outcome returns the terminal outcome, empty until resolved.
func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Start begins ringing: the tone starts and the countdown is armed.
// A tone that fails to start never blocks the ring.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return fmt.Errorf("cannot start from state %s", s.state)
	}
	s.state = StateRinging
	s.timer = s.newTimer(s.window, func() { s.timeout(ctx) })
	tone := s.tone
	s.mu.Unlock()

	if tone != nil {
		// Best-effort; Player implementations handle their own fallback.
		_ = tone.Start()
	}
	return nil
}

// Accept resolves the session by accepting the request.
// Late calls after any terminal transition began return ErrResolved.
func (s *Session) Accept(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	// Teardown precedes the network call by contract.
	err := s.actions.Accept(ctx, s.requestID)
	s.finish(OutcomeAccepted)
	return err
}

// Decline resolves the session by declining with the given reason.
func (s *Session) Decline(ctx context.Context, reason string) error {
	if reason == "" {
		reason = DeclineReasonUser
	}
	if err := s.begin(); err != nil {
		return err
	}
	err := s.actions.Decline(ctx, s.requestID, reason)
	s.finish(OutcomeDeclined)
	return err
}

// Teardown dismisses the session without sending anything, stopping the tone
// and the countdown. Safe to call multiple times and after resolution.
func (s *Session) Teardown() {
	s.mu.Lock()
	if s.state == StateResolved {
		s.mu.Unlock()
		return
	}
	s.state = StateResolved
	timer := s.timer
	s.timer = nil
	tone := s.tone
	s.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if tone != nil {
		tone.Stop()
	}
}

// timeout is the timer callback: an unanswered ring becomes an implicit
// decline with a timeout reason. This is a normal terminal transition,
// not an error.
func (s *Session) timeout(ctx context.Context) {
	if err := s.begin(); err != nil {
		// A user action won the race or the owner tore the session down.
		return
	}
	reason := fmt.Sprintf("timeout — no response after %d seconds", int(s.window.Seconds()))
	_ = s.actions.Decline(ctx, s.requestID, reason)
	s.finish(OutcomeExpired)
}

// begin claims the single terminal transition and tears down local side
// effects. It fails if the session is not ringing, which makes every
// subsequent accept/decline/timeout a no-op.
func (s *Session) begin() error {
	s.mu.Lock()
	switch s.state {
	case StateIdle:
		s.mu.Unlock()
		return ErrNotRinging
	case StateResolved:
		s.mu.Unlock()
		return ErrResolved
	case StateRinging:
		// claim it
	}
	s.state = StateResolved
	timer := s.timer
	s.timer = nil
	tone := s.tone
	s.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if tone != nil {
		tone.Stop()
	}
	return nil
}

func (s *Session) finish(out Outcome) {
	s.mu.Lock()
	s.outcome = out
	cb := s.onResolve
	s.mu.Unlock()
	if cb != nil {
		cb(out)
	}
}
