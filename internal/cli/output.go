package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// parseFormat validates a --format flag value.
func parseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(s) {
	case FormatText, FormatJSON:
		return OutputFormat(s), nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'text' or 'json')", s)
	}
}

// writeJSON outputs a value as indented JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// RunOutput contains the result of one run for display
type RunOutput struct {
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Outcome      string    `json:"outcome"`
	Matches      int       `json:"matches"`
	AddedCount   int       `json:"added_count"`
	RemovedCount int       `json:"removed_count"`
	CommitHash   string    `json:"commit_hash,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// writeText outputs a run result as human-readable text
func (o *RunOutput) writeText(w io.Writer) {
	fmt.Fprintf(w, "Scraped %d matches", o.Matches)
	if o.AddedCount > 0 || o.RemovedCount > 0 {
		fmt.Fprintf(w, " (%d new, %d gone since last commit)", o.AddedCount, o.RemovedCount)
	}
	fmt.Fprintln(w)

	if o.CommitHash != "" {
		fmt.Fprintf(w, "Committed %s: %s\n", shortHash(o.CommitHash), o.Message)
	} else {
		fmt.Fprintln(w, "No changes to commit")
	}
}

func shortHash(hash string) string {
	if len(hash) > 8 {
		return hash[:8]
	}
	return hash
}
