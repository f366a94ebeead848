package lease

import (
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrHeld is returned when an unexpired lease for the same key already exists.
var ErrHeld = errors.New("lease already held")

// Lease represents a held run lease.
type Lease struct {
	path  string
	token string
}

// record is the on-disk lease content.
type record struct {
	Key        string    `json:"key"`
	Token      string    `json:"token"`
	PID        int       `json:"pid"`
	Hostname   string    `json:"hostname"`
	AcquiredAt time.Time `json:"acquired_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Key builds a lease key from the repository path and branch.
func Key(repoDir, branch string) string {
	abs, err := filepath.Abs(repoDir)
	if err != nil {
		abs = repoDir
	}
	return abs + "#" + branch
}

// Acquire takes the lease for key, storing the lease file under dir. It
// returns ErrHeld if another unexpired lease exists. An expired lease is
// broken and re-acquired.
func Acquire(dir, key string, ttl time.Duration) (*Lease, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating lease directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%x.lease", sha1.Sum([]byte(key))))

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			return writeLease(f, path, key, ttl)
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("creating lease file: %w", err)
		}

		existing, readErr := readRecord(path)
		if readErr != nil {
			// Corrupt or vanished lease file; remove and retry once.
			os.Remove(path)
			continue
		}
		if time.Now().Before(existing.ExpiresAt) {
			return nil, fmt.Errorf("%w by pid %d on %s until %s",
				ErrHeld, existing.PID, existing.Hostname,
				existing.ExpiresAt.UTC().Format(time.RFC3339))
		}
		// Expired: break the lease and retry.
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("breaking expired lease: %w", err)
		}
	}

	return nil, fmt.Errorf("acquiring lease for %s: retries exhausted", key)
}

func writeLease(f *os.File, path, key string, ttl time.Duration) (*Lease, error) {
	defer f.Close()

	hostname, _ := os.Hostname()
	now := time.Now().UTC()
	rec := record{
		Key:        key,
		Token:      fmt.Sprintf("%d-%d", os.Getpid(), now.UnixNano()),
		PID:        os.Getpid(),
		Hostname:   hostname,
		AcquiredAt: now,
		ExpiresAt:  now.Add(ttl),
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&rec); err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing lease: %w", err)
	}

	return &Lease{path: path, token: rec.Token}, nil
}

func readRecord(path string) (*record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Release removes the lease file if this lease still owns it. Releasing a
// lease that was broken by another run is a no-op.
func (l *Lease) Release() error {
	rec, err := readRecord(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading lease: %w", err)
	}
	if rec.Token != l.token {
		// Someone broke our expired lease and took over.
		return nil
	}
	if err := os.Remove(l.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing lease: %w", err)
	}
	return nil
}
