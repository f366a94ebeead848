package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{name: "text", input: "text", want: FormatText},
		{name: "json", input: "json", want: FormatJSON},
		{name: "invalid", input: "yaml", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFormat(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseFormat(%q) expected error, got %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFormat(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRunOutputWriteText(t *testing.T) {
	now := time.Date(2026, 3, 15, 6, 0, 0, 0, time.UTC)

	t.Run("committed run", func(t *testing.T) {
		out := &RunOutput{
			StartedAt:    now,
			FinishedAt:   now.Add(2 * time.Minute),
			Outcome:      "committed",
			Matches:      12,
			AddedCount:   3,
			RemovedCount: 1,
			CommitHash:   "a1b2c3d4e5f6a7b8c9d0a1b2c3d4e5f6a7b8c9d0",
			Message:      "🔄 Update matches data - 2026-03-15 06:02 UTC",
		}

		var buf bytes.Buffer
		out.writeText(&buf)
		text := buf.String()

		if !strings.Contains(text, "Scraped 12 matches") {
			t.Errorf("missing match count in output:\n%s", text)
		}
		if !strings.Contains(text, "(3 new, 1 gone since last commit)") {
			t.Errorf("missing diff summary in output:\n%s", text)
		}
		if !strings.Contains(text, "Committed a1b2c3d4:") {
			t.Errorf("missing short commit hash in output:\n%s", text)
		}
	})

	t.Run("no changes", func(t *testing.T) {
		out := &RunOutput{
			StartedAt:  now,
			FinishedAt: now.Add(time.Minute),
			Outcome:    "no_changes",
			Matches:    12,
		}

		var buf bytes.Buffer
		out.writeText(&buf)
		text := buf.String()

		if !strings.Contains(text, "No changes to commit") {
			t.Errorf("expected no-change line, got:\n%s", text)
		}
		if strings.Contains(text, "since last commit") {
			t.Errorf("unexpected diff summary for unchanged run:\n%s", text)
		}
	})
}

func TestShortHash(t *testing.T) {
	if got := shortHash("a1b2c3d4e5f6"); got != "a1b2c3d4" {
		t.Errorf("shortHash() = %q, want %q", got, "a1b2c3d4")
	}
	if got := shortHash("abc"); got != "abc" {
		t.Errorf("shortHash() = %q, want %q", got, "abc")
	}
}
