package match

import "sort"

// DiffResult contains the matches added and removed between two snapshots.
// The diff is informational: whether a commit happens is decided byte-wise
// by the reconciler, not by this comparison.
type DiffResult struct {
	Added   []*Match
	Removed []*Match
}

// HasChanges reports whether the diff found any added or removed matches.
func (d *DiffResult) HasChanges() bool {
	return len(d.Added) > 0 || len(d.Removed) > 0
}

// Diff compares the current snapshot against a previous one and returns the
// matches that appeared and disappeared, keyed by Match.Key. A nil previous
// snapshot means every current match is new.
func Diff(previous, current *Snapshot) *DiffResult {
	result := &DiffResult{
		Added:   make([]*Match, 0),
		Removed: make([]*Match, 0),
	}

	prevKeys := make(map[string]*Match)
	if previous != nil {
		for _, m := range previous.Matches {
			prevKeys[m.Key()] = m
		}
	}

	currKeys := make(map[string]bool)
	if current != nil {
		for _, m := range current.Matches {
			key := m.Key()
			currKeys[key] = true
			if _, exists := prevKeys[key]; !exists {
				result.Added = append(result.Added, m)
			}
		}
	}

	for key, m := range prevKeys {
		if !currKeys[key] {
			result.Removed = append(result.Removed, m)
		}
	}

	// Sort for consistent output
	sort.Slice(result.Added, func(i, j int) bool {
		return result.Added[i].Label() < result.Added[j].Label()
	})
	sort.Slice(result.Removed, func(i, j int) bool {
		return result.Removed[i].Label() < result.Removed[j].Label()
	})

	return result
}
