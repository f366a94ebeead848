package runlog

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TimeFormat is the timestamp layout used in log entries, matching the
// scraper's own log_result output.
const TimeFormat = "2006-01-02 15:04 GMT"

// Entry is a single parsed run log line.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Success   bool      `json:"success"`
	Matches   int       `json:"matches,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Raw       string    `json:"raw"`
}

// Log appends entries to a scrape log file.
type Log struct {
	path string
}

// New creates a Log writing to the given path.
func New(path string) *Log {
	return &Log{path: path}
}

// Path returns the log file path.
func (l *Log) Path() string {
	return l.path
}

// Success appends a success entry recording the number of scraped matches.
func (l *Log) Success(matches int) error {
	return l.append(fmt.Sprintf("[%s] Success. Scraped %d matches.\n",
		time.Now().UTC().Format(TimeFormat), matches))
}

// Failure appends a failure entry with the given reason.
func (l *Log) Failure(reason string) error {
	return l.append(fmt.Sprintf("[%s] Failed. Reason: %s\n",
		time.Now().UTC().Format(TimeFormat), reason))
}

func (l *Log) append(line string) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("writing run log: %w", err)
	}
	return nil
}

var entryPattern = regexp.MustCompile(`^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}) GMT\] (Success|Failed)\.\s*(.*)$`)
var matchesPattern = regexp.MustCompile(`Scraped (\d+) matches`)

// Tail reads the last n entries from the log file. Lines that don't parse
// are returned with only the Raw field populated. A missing file yields an
// empty slice.
func (l *Log) Tail(n int) ([]*Entry, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Entry{}, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	var entries []*Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entries = append(entries, parseLine(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading run log: %w", err)
	}

	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

func parseLine(line string) *Entry {
	entry := &Entry{Raw: line}

	m := entryPattern.FindStringSubmatch(line)
	if m == nil {
		return entry
	}

	if ts, err := time.Parse("2006-01-02 15:04", m[1]); err == nil {
		entry.Timestamp = ts.UTC()
	}
	entry.Success = m[2] == "Success"

	if entry.Success {
		if mm := matchesPattern.FindStringSubmatch(m[3]); mm != nil {
			entry.Matches, _ = strconv.Atoi(mm[1])
		}
	} else {
		entry.Reason = strings.TrimPrefix(m[3], "Reason: ")
	}

	return entry
}
