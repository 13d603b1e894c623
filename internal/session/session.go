// Package session hosts validation engines for interactive editors.
//
// A Session owns one core.Engine and serializes every call into it, so the
// engine's single-goroutine contract holds while HTTP handlers run
// concurrently. The Store tracks open sessions, enforces a cap and closes
// sessions left idle.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/JonMunkholm/gridcheck/internal/core"
)

// Session is one editor's validation state.
type Session struct {
	ID      string
	RuleSet string
	Created time.Time

	lastUsed atomic.Int64 // unix nanoseconds
	now      func() time.Time

	mu       sync.Mutex
	engine   *core.Engine
	revision uint64
}

// Info is a point-in-time view of a session.
type Info struct {
	ID       string       `json:"id"`
	RuleSet  string       `json:"ruleSet"`
	Enabled  bool         `json:"enabled"`
	Rows     int          `json:"rows"`
	Revision uint64       `json:"revision"`
	Summary  core.Summary `json:"summary"`
	Created  time.Time    `json:"created"`
	LastUsed time.Time    `json:"lastUsed"`
}

// Do runs fn with exclusive access to the session's engine.
func (s *Session) Do(fn func(e *core.Engine) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch(s.now())
	return fn(s.engine)
}

// Info returns the session's current state.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infoLocked()
}

func (s *Session) infoLocked() Info {
	return Info{
		ID:       s.ID,
		RuleSet:  s.RuleSet,
		Enabled:  s.engine.Enabled(),
		Rows:     s.engine.Len(),
		Revision: s.revision,
		Summary:  s.engine.Summary(),
		Created:  s.Created,
		LastUsed: time.Unix(0, s.lastUsed.Load()),
	}
}

// Revision counts the violation updates the engine has published. Clients
// poll it to decide whether to refetch violations.
func (s *Session) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// onViolations is the engine listener. The engine calls it synchronously
// from inside Do, so s.mu is already held.
func (s *Session) onViolations(core.Violations) {
	s.revision++
}

func (s *Session) touch(now time.Time) {
	s.lastUsed.Store(now.UnixNano())
}

func (s *Session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, s.lastUsed.Load()))
}
