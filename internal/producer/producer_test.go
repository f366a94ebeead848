package producer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("tests use sh")
	}

	dir := t.TempDir()
	outPath := filepath.Join(dir, "producer_output.txt")

	t.Run("successful run captures output", func(t *testing.T) {
		p := New([]string{"sh", "-c", "echo scraping; echo done >&2"}, dir, outPath, time.Minute)

		result, err := p.Run(context.Background())
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		if result.ExitCode != 0 {
			t.Errorf("expected exit code 0, got %d", result.ExitCode)
		}

		data, err := os.ReadFile(outPath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "scraping") || !strings.Contains(string(data), "done") {
			t.Errorf("expected combined stdout/stderr, got %q", string(data))
		}
	})

	t.Run("nonzero exit is a producer failure", func(t *testing.T) {
		p := New([]string{"sh", "-c", "echo partial; exit 3"}, dir, outPath, time.Minute)

		result, err := p.Run(context.Background())
		if !errors.Is(err, ErrProducerFailed) {
			t.Fatalf("expected ErrProducerFailed, got %v", err)
		}
		if result == nil {
			t.Fatal("expected a result for a started process")
		}
		if result.ExitCode != 3 {
			t.Errorf("expected exit code 3, got %d", result.ExitCode)
		}
	})

	t.Run("missing command is a producer failure", func(t *testing.T) {
		p := New([]string{"/nonexistent/scraper"}, dir, outPath, time.Minute)

		_, err := p.Run(context.Background())
		if !errors.Is(err, ErrProducerFailed) {
			t.Fatalf("expected ErrProducerFailed, got %v", err)
		}
	})

	t.Run("timeout kills the scraper", func(t *testing.T) {
		p := New([]string{"sh", "-c", "sleep 10"}, dir, outPath, 100*time.Millisecond)

		start := time.Now()
		_, err := p.Run(context.Background())
		if !errors.Is(err, ErrProducerFailed) {
			t.Fatalf("expected ErrProducerFailed, got %v", err)
		}
		if elapsed := time.Since(start); elapsed > 5*time.Second {
			t.Errorf("timeout took too long: %s", elapsed)
		}
	})

	t.Run("runs in the working directory", func(t *testing.T) {
		p := New([]string{"sh", "-c", "echo '{}' > marker.json"}, dir, outPath, time.Minute)
		if _, err := p.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
		if _, err := os.Stat(filepath.Join(dir, "marker.json")); err != nil {
			t.Errorf("expected marker.json in work dir: %v", err)
		}
	})
}

func TestVerifyOutputs(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid snapshot", func(t *testing.T) {
		path := filepath.Join(dir, "today_matches.json")
		content := `{"scrape_info": {"timestamp": "2026-08-30T06:00:00+00:00", "total_matches": 0, "matches_with_odds": 0, "matches_without_odds": 0, "source_url": "x"}, "matches": []}`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		snap, warnings, err := VerifyOutputs(path)
		if err != nil {
			t.Fatalf("VerifyOutputs failed: %v", err)
		}
		if len(snap.Matches) != 0 {
			t.Errorf("expected empty snapshot, got %d matches", len(snap.Matches))
		}
		if len(warnings) != 0 {
			t.Errorf("expected no warnings, got %v", warnings)
		}
	})

	t.Run("missing snapshot", func(t *testing.T) {
		_, _, err := VerifyOutputs(filepath.Join(dir, "missing.json"))
		if !errors.Is(err, ErrProducerFailed) {
			t.Errorf("expected ErrProducerFailed, got %v", err)
		}
	})

	t.Run("corrupt snapshot", func(t *testing.T) {
		path := filepath.Join(dir, "corrupt.json")
		if err := os.WriteFile(path, []byte("{\"scrape_info\""), 0644); err != nil {
			t.Fatal(err)
		}
		_, _, err := VerifyOutputs(path)
		if !errors.Is(err, ErrProducerFailed) {
			t.Errorf("expected ErrProducerFailed, got %v", err)
		}
	})
}
