// Package producer invokes the external scraper process.
//
// The scraper is an opaque collaborator: it is run as a single blocking
// command with no arguments, writes today_matches.json and scrape_log.txt to
// the repository directory, and signals failure through a nonzero exit
// status. This package captures the process output for diagnostics and
// verifies that a usable snapshot exists after a successful exit; it never
// inspects the scraper's internal behavior.
package producer
