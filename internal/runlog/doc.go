// Package runlog appends and reads scrape_log.txt entries.
//
// The run log is an append-only diagnostic record, one line per run, in the
// same format the scraper itself writes:
//
//	[2026-08-30 06:12 GMT] Success. Scraped 42 matches.
//	[2026-08-31 06:14 GMT] Failed. Reason: timeout after 3 attempts
//
// The log is never part of the reconciled data set; staging it would create
// vacuous commits on every run.
package runlog
