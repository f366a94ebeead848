package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openStore(t)

	base := time.Date(2026, 8, 30, 6, 0, 0, 0, time.UTC)
	runs := []*Run{
		{StartedAt: base, FinishedAt: base.Add(time.Minute), Outcome: OutcomeCommitted, Matches: 42, CommitHash: "abc123"},
		{StartedAt: base.Add(24 * time.Hour), FinishedAt: base.Add(24*time.Hour + time.Minute), Outcome: OutcomeNoChanges, Matches: 42},
		{StartedAt: base.Add(48 * time.Hour), FinishedAt: base.Add(48*time.Hour + 30*time.Second), Outcome: OutcomeProducerFailed, Error: "exit status 1"},
	}

	for _, r := range runs {
		id, err := s.Record(r)
		if err != nil {
			t.Fatalf("Record failed: %v", err)
		}
		if id == 0 {
			t.Error("expected a nonzero row ID")
		}
	}

	t.Run("newest first", func(t *testing.T) {
		got, err := s.Recent(10)
		if err != nil {
			t.Fatalf("Recent failed: %v", err)
		}
		if len(got) != 3 {
			t.Fatalf("expected 3 runs, got %d", len(got))
		}
		if got[0].Outcome != OutcomeProducerFailed {
			t.Errorf("expected newest run first, got %s", got[0].Outcome)
		}
		if got[0].Error != "exit status 1" {
			t.Errorf("unexpected error text: %q", got[0].Error)
		}
		if got[2].CommitHash != "abc123" {
			t.Errorf("unexpected commit hash: %q", got[2].CommitHash)
		}
		if !got[2].StartedAt.Equal(base) {
			t.Errorf("expected started_at %s, got %s", base, got[2].StartedAt)
		}
	})

	t.Run("limit", func(t *testing.T) {
		got, err := s.Recent(1)
		if err != nil {
			t.Fatalf("Recent failed: %v", err)
		}
		if len(got) != 1 {
			t.Errorf("expected 1 run, got %d", len(got))
		}
	})
}

func TestRecent_Empty(t *testing.T) {
	s := openStore(t)

	got, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no runs, got %d", len(got))
	}
}

func TestOpen_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	s.Close()
}

func TestOpen_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	now := time.Now()
	if _, err := s.Record(&Run{StartedAt: now, FinishedAt: now, Outcome: OutcomeLeaseHeld}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s2.Close()

	got, err := s2.Recent(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Outcome != OutcomeLeaseHeld {
		t.Errorf("expected persisted run to survive reopen, got %+v", got)
	}
}
