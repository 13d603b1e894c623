package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/gridcheck/internal/core"
	"github.com/JonMunkholm/gridcheck/internal/logging"
)

func testDefinition() core.RuleSetDefinition {
	return core.RuleSetDefinition{
		Name: "test",
		Columns: []core.ColumnRule{
			{ID: "QueryID", Required: true},
			{ID: "Turn", Required: true, DataType: core.TypeNumber},
			{ID: "Answer", Required: true},
		},
	}
}

func newTestStore(max int, idle time.Duration) *Store {
	return NewStore(max, idle, logging.Discard())
}

func TestStore_CreateGetDelete(t *testing.T) {
	st := newTestStore(10, time.Minute)

	s, err := st.Create(testDefinition(), false)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if s.ID == "" || s.RuleSet != "test" {
		t.Errorf("session = %+v", s)
	}

	got, err := st.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get() = %v, %v", got, err)
	}
	if st.Len() != 1 {
		t.Errorf("Len() = %d, want 1", st.Len())
	}

	if err := st.Delete(s.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := st.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after Delete error = %v, want ErrNotFound", err)
	}
	if err := st.Delete(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestStore_GetMalformedID(t *testing.T) {
	st := newTestStore(10, time.Minute)
	if _, err := st.Get("../etc"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}
}

func TestStore_CreateConfigError(t *testing.T) {
	st := newTestStore(10, time.Minute)
	def := testDefinition()
	def.Columns[1].DataType = "integer"

	_, err := st.Create(def, false)
	var cfgErr *core.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("Create() error = %v, want *core.ConfigError", err)
	}
	if st.Len() != 0 {
		t.Errorf("Len() = %d, want 0", st.Len())
	}
}

func TestStore_Capacity(t *testing.T) {
	st := newTestStore(2, time.Minute)
	for i := 0; i < 2; i++ {
		if _, err := st.Create(testDefinition(), false); err != nil {
			t.Fatalf("Create() %d error = %v", i, err)
		}
	}

	_, err := st.Create(testDefinition(), false)
	if !errors.Is(err, ErrTooManySessions) {
		t.Fatalf("Create() error = %v, want ErrTooManySessions", err)
	}
	if got := core.MapError(err).Code; got != "SES002" {
		t.Errorf("MapError code = %q, want SES002", got)
	}
}

func TestStore_Sweep(t *testing.T) {
	st := newTestStore(10, time.Minute)
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return clock }

	stale, _ := st.Create(testDefinition(), false)
	fresh, _ := st.Create(testDefinition(), false)

	clock = clock.Add(2 * time.Minute)
	if err := fresh.Do(func(*core.Engine) error { return nil }); err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got := fresh.Info().LastUsed; !got.Equal(clock) {
		t.Errorf("LastUsed after Do = %v, want store clock %v", got, clock)
	}

	if removed := st.Sweep(); removed != 1 {
		t.Errorf("Sweep() removed %d, want 1", removed)
	}
	if _, err := st.Get(stale.ID); !errors.Is(err, ErrNotFound) {
		t.Error("stale session should be gone")
	}
	if _, err := st.Get(fresh.ID); err != nil {
		t.Errorf("fresh session should remain: %v", err)
	}
}

func TestStore_SweepDisabled(t *testing.T) {
	st := newTestStore(10, 0)
	st.now = func() time.Time { return time.Now().Add(24 * time.Hour) }
	if _, err := st.Create(testDefinition(), false); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if removed := st.Sweep(); removed != 0 {
		t.Errorf("Sweep() removed %d with expiry disabled", removed)
	}
}

func TestStore_RunJanitor(t *testing.T) {
	st := newTestStore(10, time.Millisecond)
	if _, err := st.Create(testDefinition(), false); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		st.RunJanitor(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(time.Second)
	for st.Len() > 0 {
		select {
		case <-deadline:
			t.Fatal("janitor did not expire the idle session")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("janitor did not stop after cancel")
	}
}

func TestSession_DoAndRevision(t *testing.T) {
	st := newTestStore(10, time.Minute)
	s, err := st.Create(testDefinition(), true)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err = s.Do(func(e *core.Engine) error {
		return e.LoadDataset([]core.Record{
			{"QueryID": "Q1", "Turn": "1", "Answer": "a"},
			{"QueryID": "Q1", "Turn": "1", "Answer": ""},
		})
	})
	if err != nil {
		t.Fatalf("Do(LoadDataset) error = %v", err)
	}

	info := s.Info()
	if !info.Enabled || info.Rows != 2 {
		t.Errorf("Info() = %+v", info)
	}
	if info.Summary.ByKind[core.KindDuplicateKey] != 2 || info.Summary.ByKind[core.KindRequired] != 1 {
		t.Errorf("Summary = %+v", info.Summary)
	}
	if info.Revision != 1 {
		t.Errorf("Revision = %d, want 1", info.Revision)
	}

	// A failed edit publishes nothing
	_ = s.Do(func(e *core.Engine) error { return e.SetCell(9, "Answer", "x") })
	if got := s.Revision(); got != 1 {
		t.Errorf("Revision after failed edit = %d, want 1", got)
	}
}

func TestSession_ConcurrentEdits(t *testing.T) {
	st := newTestStore(10, time.Minute)
	s, _ := st.Create(testDefinition(), true)

	records := make([]core.Record, 50)
	for i := range records {
		records[i] = core.Record{"QueryID": "Q1", "Turn": "1", "Answer": "a"}
	}
	if err := s.Do(func(e *core.Engine) error { return e.LoadDataset(records) }); err != nil {
		t.Fatalf("LoadDataset error = %v", err)
	}

	var wg sync.WaitGroup
	for i := range records {
		wg.Add(1)
		go func(row int) {
			defer wg.Done()
			err := s.Do(func(e *core.Engine) error {
				return e.SetCell(core.RowID(row), "Turn", strconv.Itoa(row+1))
			})
			if err != nil {
				t.Errorf("SetCell(%d) error = %v", row, err)
			}
		}(i)
	}
	wg.Wait()

	if n := s.Info().Summary.Errors; n != 0 {
		t.Errorf("expected a clean dataset after renumbering, got %d errors", n)
	}
}
