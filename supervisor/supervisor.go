// supervisor/supervisor.go
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/rustyeddy/termwatch/activity"
	"github.com/rustyeddy/termwatch/metrics"
	"github.com/rustyeddy/termwatch/pkg/id"
	"github.com/rustyeddy/termwatch/terminal"
)

// State names one phase of the connection cycle.
type State string

const (
	Waiting    State = "waiting"    // terminal process not detected
	Connecting State = "connecting" // attempting a session open
	Monitoring State = "monitoring" // session open, blocking on events
)

// Readiness gates connection attempts on the terminal process being alive.
type Readiness interface {
	Ready(ctx context.Context) bool
}

// Status is a point-in-time snapshot for the ops surface.
type Status struct {
	State           State  `json:"state"`
	SessionID       string `json:"session_id,omitempty"`
	LastError       string `json:"last_error,omitempty"`
	SessionsOpened  int    `json:"sessions_opened"`
	ConnectFailures int    `json:"connect_failures"`
	EventsSeen      int    `json:"events_seen"`
}

// Supervisor owns the waiting -> connecting -> monitoring cycle. It is the
// only writer to the activity stores; the mutex below guards nothing but
// the status snapshot read by the web goroutine.
type Supervisor struct {
	poller Readiness
	dialer terminal.Dialer
	logger *activity.Logger

	pollInterval  time.Duration
	retryInterval time.Duration

	mu     sync.Mutex
	status Status
}

func New(poller Readiness, dialer terminal.Dialer, logger *activity.Logger, pollInterval, retryInterval time.Duration) *Supervisor {
	return &Supervisor{
		poller:        poller,
		dialer:        dialer,
		logger:        logger,
		pollInterval:  pollInterval,
		retryInterval: retryInterval,
		status:        Status{State: Waiting},
	}
}

// Run drives the cycle until ctx is cancelled. No failure is fatal: a
// failed dial or a broken session is logged as an Error record and the
// cycle starts over from waiting.
func (s *Supervisor) Run(ctx context.Context) {
	log.Printf("supervisor: waiting for terminal process")

	for ctx.Err() == nil {
		if !s.poller.Ready(ctx) {
			metrics.TerminalReady.Set(0)
			s.setState(Waiting)
			if !sleep(ctx, s.pollInterval) {
				return
			}
			continue
		}
		metrics.TerminalReady.Set(1)

		s.setState(Connecting)
		log.Printf("supervisor: terminal detected, connecting")

		sess, err := s.dialer.Dial(ctx)
		if err != nil {
			s.recordFailure(ctx, err)
			metrics.ConnectFailures.Inc()
			s.mu.Lock()
			s.status.ConnectFailures++
			s.mu.Unlock()
			s.setState(Waiting)
			if !sleep(ctx, s.retryInterval) {
				return
			}
			continue
		}

		sid := id.New()
		metrics.SessionsOpened.Inc()
		s.mu.Lock()
		s.status.SessionID = sid
		s.status.SessionsOpened++
		s.mu.Unlock()
		s.setState(Monitoring)
		log.Printf("supervisor: session %s open, monitoring", sid)

		err = sess.Run(ctx, func(ev terminal.Event) { s.handleEvent(ctx, ev) })
		sess.Close()

		s.mu.Lock()
		s.status.SessionID = ""
		s.mu.Unlock()
		s.setState(Waiting)
		log.Printf("supervisor: session %s closed", sid)

		// A broken session backs off like a failed open; the terminal is
		// usually still running, so without the pause this would redial
		// immediately and forever.
		if err != nil && !errors.Is(err, context.Canceled) {
			s.recordFailure(ctx, err)
			if !sleep(ctx, s.retryInterval) {
				return
			}
		}
	}
}

// Status returns a copy of the current snapshot.
func (s *Supervisor) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Supervisor) handleEvent(ctx context.Context, ev terminal.Event) {
	typ, desc, raw := adapt(ev)

	s.mu.Lock()
	s.status.EventsSeen++
	s.mu.Unlock()

	if err := s.logger.Log(ctx, typ, desc, raw); err != nil {
		log.Printf("supervisor: record %s event: %v", typ, err)
	}
}

// recordFailure logs one Error record with an empty payload, matching the
// shape of every other record in the stores.
func (s *Supervisor) recordFailure(ctx context.Context, cause error) {
	s.mu.Lock()
	s.status.LastError = cause.Error()
	s.mu.Unlock()
	log.Printf("supervisor: %v", cause)

	desc := fmt.Sprintf("Failed to connect or monitor: %v", cause)
	if err := s.logger.Log(ctx, activity.Error, desc, map[string]any{}); err != nil {
		log.Printf("supervisor: record error event: %v", err)
	}
}

func (s *Supervisor) setState(st State) {
	s.mu.Lock()
	s.status.State = st
	s.mu.Unlock()

	for _, known := range []State{Waiting, Connecting, Monitoring} {
		v := 0.0
		if known == st {
			v = 1.0
		}
		metrics.SupervisorState.WithLabelValues(string(known)).Set(v)
	}
}

// sleep waits for d unless ctx is cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
