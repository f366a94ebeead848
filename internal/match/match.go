package match

import (
	"crypto/sha1"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// Snapshot is the complete, self-contained output of one scrape run.
// It fully replaces the previous snapshot file on disk; there are no
// partial-update semantics.
type Snapshot struct {
	ScrapeInfo ScrapeInfo `json:"scrape_info"`
	Matches    []*Match   `json:"matches"`
}

// ScrapeInfo summarizes a scrape run.
type ScrapeInfo struct {
	Timestamp          string `json:"timestamp"`
	TotalMatches       int    `json:"total_matches"`
	MatchesWithOdds    int    `json:"matches_with_odds"`
	MatchesWithoutOdds int    `json:"matches_without_odds"`
	SourceURL          string `json:"source_url"`
}

// Match represents a single predicted match for today.
type Match struct {
	Teams      Teams      `json:"teams"`
	Fixture    string     `json:"fixture"`
	League     string     `json:"league"`
	Prediction Prediction `json:"prediction"`
	Odds       Odds       `json:"odds"`
	Form       Form       `json:"form"`
	HasOdds    bool       `json:"has_odds"`
	MatchURL   string     `json:"match_url"`
}

// Teams holds the home and away team names.
type Teams struct {
	Home string `json:"home"`
	Away string `json:"away"`
}

// Prediction holds the predicted outcome for a match.
type Prediction struct {
	Type  string `json:"type"`
	Stake string `json:"stake"`
	Score string `json:"score"`
}

// Odds holds all odds markets for a match.
type Odds struct {
	MatchOdds MatchOdds `json:"match_odds"`
	OverUnder OverUnder `json:"over_under"`
	BTTS      BTTS      `json:"btts"`
}

// MatchOdds holds 1X2 odds.
type MatchOdds struct {
	Home string `json:"home"`
	Draw string `json:"draw"`
	Away string `json:"away"`
}

// OverUnder holds over/under 2.5 goals odds.
type OverUnder struct {
	Over  string `json:"over"`
	Under string `json:"under"`
}

// BTTS holds both-teams-to-score odds.
type BTTS struct {
	Yes string `json:"yes"`
	No  string `json:"no"`
}

// Form holds the last five results for each team (W/D/L).
type Form struct {
	Home []string `json:"home"`
	Away []string `json:"away"`
}

// Key returns a deterministic identifier for a match based on stable fields.
// The key stays the same across runs as long as the teams and fixture do.
func (m *Match) Key() string {
	h := sha1.New()
	h.Write([]byte(strings.ToLower(m.Teams.Home) + "|" + strings.ToLower(m.Teams.Away) + "|" + m.Fixture))
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Label returns a short human-readable description of the match.
func (m *Match) Label() string {
	if m.Prediction.Type != "" {
		return fmt.Sprintf("%s vs %s (%s)", m.Teams.Home, m.Teams.Away, m.Prediction.Type)
	}
	return fmt.Sprintf("%s vs %s", m.Teams.Home, m.Teams.Away)
}

// Decode parses a snapshot from r.
func Decode(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("parsing snapshot: %w", err)
	}
	if snap.Matches == nil {
		snap.Matches = make([]*Match, 0)
	}
	return &snap, nil
}

// Load reads a snapshot from a file on disk.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// Validate checks internal consistency of the snapshot and returns a list of
// human-readable warnings. Warnings are diagnostic only; a snapshot with
// warnings is still usable.
func (s *Snapshot) Validate() []string {
	var warnings []string

	if s.ScrapeInfo.TotalMatches != len(s.Matches) {
		warnings = append(warnings, fmt.Sprintf(
			"scrape_info.total_matches is %d but %d matches are present",
			s.ScrapeInfo.TotalMatches, len(s.Matches)))
	}

	withOdds := 0
	for _, m := range s.Matches {
		if m.HasOdds {
			withOdds++
		}
	}
	if s.ScrapeInfo.MatchesWithOdds != withOdds {
		warnings = append(warnings, fmt.Sprintf(
			"scrape_info.matches_with_odds is %d but %d matches have odds",
			s.ScrapeInfo.MatchesWithOdds, withOdds))
	}

	if s.ScrapeInfo.Timestamp == "" {
		warnings = append(warnings, "scrape_info.timestamp is empty")
	}

	for i, m := range s.Matches {
		if m.Teams.Home == "" || m.Teams.Away == "" {
			warnings = append(warnings, fmt.Sprintf("match %d is missing a team name", i))
		}
	}

	return warnings
}

// Summary returns a one-line description of the snapshot for display.
func (s *Snapshot) Summary() string {
	return fmt.Sprintf("%d matches (%d with odds) scraped at %s",
		len(s.Matches), s.ScrapeInfo.MatchesWithOdds, s.ScrapeInfo.Timestamp)
}
