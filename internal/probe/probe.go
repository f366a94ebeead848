package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	// UserAgent identifies probe requests to the target site.
	UserAgent = "lolopal/1.0 (github.com/pfrederiksen/lolopal)"

	// matchRowSelector is the CSS class the predictions page uses for one
	// match row. The probe only counts these rows.
	matchRowSelector = ".wttr"

	// challengeMarker appears in the Cloudflare browser-check interstitial.
	challengeMarker = "Checking your browser"
)

// Probe checks the scrape target.
type Probe struct {
	client *http.Client
	url    string
}

// Report is the result of one preflight check.
type Report struct {
	URL        string        `json:"url"`
	StatusCode int           `json:"status_code"`
	Challenge  bool          `json:"cloudflare_challenge"`
	MatchRows  int           `json:"match_rows"`
	Title      string        `json:"title,omitempty"`
	Elapsed    time.Duration `json:"elapsed_ns"`
}

// Healthy reports whether the target looks scrapeable: a 2xx response, no
// bot challenge, and at least one match row.
func (r *Report) Healthy() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300 && !r.Challenge && r.MatchRows > 0
}

// Describe returns a one-line human-readable summary of the report.
func (r *Report) Describe() string {
	switch {
	case r.Challenge:
		return fmt.Sprintf("HTTP %d with Cloudflare challenge", r.StatusCode)
	case r.StatusCode < 200 || r.StatusCode >= 300:
		return fmt.Sprintf("HTTP %d", r.StatusCode)
	case r.MatchRows == 0:
		return fmt.Sprintf("HTTP %d but no match rows found", r.StatusCode)
	default:
		return fmt.Sprintf("HTTP %d, %d match rows", r.StatusCode, r.MatchRows)
	}
}

// New creates a Probe for the given target URL.
func New(url string, timeout time.Duration) *Probe {
	return &Probe{
		client: &http.Client{
			Timeout: timeout,
		},
		url: url,
	}
}

// Check fetches the target page and inspects it. Non-2xx responses still
// produce a report; only transport-level failures return an error.
func (p *Probe) Check(ctx context.Context) (*Report, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	report := &Report{
		URL:        p.url,
		StatusCode: resp.StatusCode,
		Elapsed:    time.Since(start),
	}

	if err := inspect(resp.Body, report); err != nil {
		return nil, err
	}
	return report, nil
}

// inspect fills the DOM-derived fields of the report.
func inspect(r io.Reader, report *Report) error {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return fmt.Errorf("parsing HTML: %w", err)
	}

	report.Title = strings.TrimSpace(doc.Find("title").First().Text())
	report.MatchRows = doc.Find(matchRowSelector).Length()
	report.Challenge = strings.Contains(doc.Text(), challengeMarker)

	return nil
}
