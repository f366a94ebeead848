package match

import (
	"strings"
	"testing"
)

func sampleMatch(home, away, fixture string) *Match {
	return &Match{
		Teams:   Teams{Home: home, Away: away},
		Fixture: fixture,
		Prediction: Prediction{
			Type:  "Home Win",
			Stake: "Small Stake",
			Score: "2-1",
		},
		HasOdds: true,
	}
}

func TestLoad(t *testing.T) {
	snap, err := Load("../../testdata/fixtures/today_matches.json")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(snap.Matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(snap.Matches))
	}

	if snap.ScrapeInfo.SourceURL != "https://www.windrawwin.com/predictions/today/" {
		t.Errorf("unexpected source URL: %s", snap.ScrapeInfo.SourceURL)
	}

	first := snap.Matches[0]
	if first.Teams.Home != "KTP" || first.Teams.Away != "Haka" {
		t.Errorf("unexpected first match teams: %s vs %s", first.Teams.Home, first.Teams.Away)
	}
	if first.Odds.MatchOdds.Home != "2.10" {
		t.Errorf("expected home odds 2.10, got %s", first.Odds.MatchOdds.Home)
	}
	if len(first.Form.Home) != 5 {
		t.Errorf("expected 5 home form entries, got %d", len(first.Form.Home))
	}

	last := snap.Matches[2]
	if last.HasOdds {
		t.Error("expected third match to have no odds")
	}
}

func TestDecode(t *testing.T) {
	t.Run("empty matches", func(t *testing.T) {
		snap, err := Decode(strings.NewReader(`{"scrape_info": {"total_matches": 0}, "matches": []}`))
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if len(snap.Matches) != 0 {
			t.Errorf("expected 0 matches, got %d", len(snap.Matches))
		}
	})

	t.Run("missing matches key", func(t *testing.T) {
		snap, err := Decode(strings.NewReader(`{"scrape_info": {}}`))
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if snap.Matches == nil {
			t.Error("expected Matches to be initialized")
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		_, err := Decode(strings.NewReader(`{"scrape_info"`))
		if err == nil {
			t.Error("expected error for truncated JSON")
		}
	})
}

func TestMatchKey(t *testing.T) {
	m1 := sampleMatch("KTP", "Haka", "KTP v Haka")
	m2 := sampleMatch("KTP", "Haka", "KTP v Haka")
	m3 := sampleMatch("Haka", "KTP", "Haka v KTP")

	if m1.Key() != m2.Key() {
		t.Error("identical matches should have the same key")
	}
	if m1.Key() == m3.Key() {
		t.Error("reversed fixture should have a different key")
	}

	// Key should be stable when prediction changes
	m2.Prediction.Score = "3-0"
	if m1.Key() != m2.Key() {
		t.Error("key should not depend on prediction fields")
	}

	// Case differences in team names should not change the key
	m4 := sampleMatch("ktp", "HAKA", "KTP v Haka")
	if m1.Key() != m4.Key() {
		t.Error("key should be case-insensitive on team names")
	}
}

func TestValidate(t *testing.T) {
	t.Run("consistent snapshot", func(t *testing.T) {
		snap, err := Load("../../testdata/fixtures/today_matches.json")
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if warnings := snap.Validate(); len(warnings) != 0 {
			t.Errorf("expected no warnings, got %v", warnings)
		}
	})

	t.Run("counter mismatch", func(t *testing.T) {
		snap := &Snapshot{
			ScrapeInfo: ScrapeInfo{Timestamp: "2026-08-30T06:00:00+00:00", TotalMatches: 5},
			Matches:    []*Match{sampleMatch("A", "B", "A v B")},
		}
		warnings := snap.Validate()
		if len(warnings) == 0 {
			t.Fatal("expected warnings for counter mismatch")
		}
	})

	t.Run("missing team name", func(t *testing.T) {
		snap := &Snapshot{
			ScrapeInfo: ScrapeInfo{Timestamp: "2026-08-30T06:00:00+00:00", TotalMatches: 1, MatchesWithOdds: 1},
			Matches:    []*Match{sampleMatch("A", "", "A v ?")},
		}
		warnings := snap.Validate()
		found := false
		for _, w := range warnings {
			if strings.Contains(w, "missing a team name") {
				found = true
			}
		}
		if !found {
			t.Errorf("expected a missing-team warning, got %v", warnings)
		}
	})
}

func TestSummary(t *testing.T) {
	snap := &Snapshot{
		ScrapeInfo: ScrapeInfo{Timestamp: "2026-08-30T06:00:00+00:00", MatchesWithOdds: 2},
		Matches:    []*Match{sampleMatch("A", "B", "A v B"), sampleMatch("C", "D", "C v D")},
	}
	s := snap.Summary()
	if !strings.Contains(s, "2 matches") {
		t.Errorf("expected summary to mention match count, got %q", s)
	}
}
