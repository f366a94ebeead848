package runlog

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestSuccessAndFailureFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrape_log.txt")
	l := New(path)

	if err := l.Success(42); err != nil {
		t.Fatalf("Success failed: %v", err)
	}
	if err := l.Failure("timeout after 3 attempts"); err != nil {
		t.Fatalf("Failure failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	successPattern := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2} GMT\] Success\. Scraped 42 matches\.$`)
	if !successPattern.MatchString(lines[0]) {
		t.Errorf("success line has wrong format: %q", lines[0])
	}

	failurePattern := regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2} GMT\] Failed\. Reason: timeout after 3 attempts$`)
	if !failurePattern.MatchString(lines[1]) {
		t.Errorf("failure line has wrong format: %q", lines[1])
	}
}

func TestTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scrape_log.txt")
	l := New(path)

	t.Run("missing file", func(t *testing.T) {
		entries, err := l.Tail(10)
		if err != nil {
			t.Fatalf("Tail failed: %v", err)
		}
		if len(entries) != 0 {
			t.Errorf("expected 0 entries for missing file, got %d", len(entries))
		}
	})

	// Write some entries
	for i := 0; i < 5; i++ {
		if err := l.Success(i); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Failure("no matches found or extracted"); err != nil {
		t.Fatal(err)
	}

	t.Run("limits to last n", func(t *testing.T) {
		entries, err := l.Tail(3)
		if err != nil {
			t.Fatalf("Tail failed: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}

		last := entries[2]
		if last.Success {
			t.Error("expected last entry to be a failure")
		}
		if last.Reason != "no matches found or extracted" {
			t.Errorf("unexpected reason: %q", last.Reason)
		}

		prev := entries[1]
		if !prev.Success {
			t.Error("expected second-to-last entry to be a success")
		}
		if prev.Matches != 4 {
			t.Errorf("expected 4 matches, got %d", prev.Matches)
		}
		if prev.Timestamp.IsZero() {
			t.Error("expected timestamp to be parsed")
		}
	})

	t.Run("zero limit returns all", func(t *testing.T) {
		entries, err := l.Tail(0)
		if err != nil {
			t.Fatalf("Tail failed: %v", err)
		}
		if len(entries) != 6 {
			t.Errorf("expected 6 entries, got %d", len(entries))
		}
	})
}

func TestParseLine_Unparseable(t *testing.T) {
	entry := parseLine("some stray diagnostic output")
	if entry.Raw != "some stray diagnostic output" {
		t.Errorf("expected raw line to be preserved, got %q", entry.Raw)
	}
	if entry.Success || entry.Matches != 0 {
		t.Error("unparseable line should have zero-value fields")
	}
}
