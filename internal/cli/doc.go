// Package cli implements the lolopal command line interface.
//
// The CLI wraps one daily scrape run: the run command executes the external
// scraper and reconciles its snapshot into the repository, while reconcile,
// probe, and history expose the individual pieces for manual operation and
// inspection.
package cli
