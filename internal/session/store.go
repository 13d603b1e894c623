package session

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/gridcheck/internal/core"
)

var (
	// ErrNotFound is returned for unknown or expired session IDs.
	ErrNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when the store is at capacity.
	ErrTooManySessions = errors.New("too many sessions")
)

// DefaultMaxSessions is used when NewStore is given a non-positive max.
const DefaultMaxSessions = 100

// Store tracks open sessions by ID.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	max         int
	idleTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewStore creates a store holding at most max sessions. Sessions idle for
// longer than idleTimeout are removed by Sweep; zero disables expiry.
func NewStore(max int, idleTimeout time.Duration, logger *slog.Logger) *Store {
	if max <= 0 {
		max = DefaultMaxSessions
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions:    make(map[string]*Session),
		max:         max,
		idleTimeout: idleTimeout,
		logger:      logger,
		now:         time.Now,
	}
}

// clock reads st.now at call time so sessions follow a swapped clock.
func (st *Store) clock() time.Time { return st.now() }

// Create opens a session validating against def. Rule compile failures are
// returned as *core.ConfigError.
func (st *Store) Create(def core.RuleSetDefinition, enabled bool) (*Session, error) {
	rs, err := core.CompileRules(def)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	now := st.now()
	s := &Session{
		ID:      uuid.New().String(),
		RuleSet: def.Name,
		Created: now,
		now:     st.clock,
	}
	s.touch(now)
	s.engine = core.NewEngineWithRules(rs,
		core.WithLogger(st.logger.With("session_id", s.ID)),
		core.WithListener(s.onViolations),
		core.WithEnabled(enabled),
	)

	st.mu.Lock()
	defer st.mu.Unlock()

	if len(st.sessions) >= st.max {
		return nil, fmt.Errorf("create session: %w (limit %d)", ErrTooManySessions, st.max)
	}
	st.sessions[s.ID] = s

	st.logger.Debug("session created", "session_id", s.ID, "rule_set", def.Name, "enabled", enabled)
	return s, nil
}

// Get returns the session with id.
func (st *Store) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return s, nil
}

// Delete closes the session with id.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	delete(st.sessions, id)
	st.logger.Debug("session closed", "session_id", id)
	return nil
}

// Len returns the number of open sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// List returns every open session, oldest first.
func (st *Store) List() []Info {
	st.mu.RLock()
	sessions := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		sessions = append(sessions, s)
	}
	st.mu.RUnlock()

	infos := make([]Info, len(sessions))
	for i, s := range sessions {
		infos[i] = s.Info()
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Created.Before(infos[j].Created)
	})
	return infos
}

// Sweep removes sessions idle longer than the idle timeout and returns how
// many were removed.
func (st *Store) Sweep() int {
	if st.idleTimeout <= 0 {
		return 0
	}
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if s.idleSince(now) > st.idleTimeout {
			delete(st.sessions, id)
			removed++
			st.logger.Debug("session expired", "session_id", id, "rule_set", s.RuleSet)
		}
	}
	return removed
}
