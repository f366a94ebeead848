// Package history keeps a local ledger of scrape runs in SQLite.
//
// One row is recorded per run: when it started and finished, its outcome,
// the number of matches scraped, the commit hash when one was produced, and
// the error text otherwise. The ledger lives in the data directory, outside
// the reconciled repository, and exists purely for operator inspection via
// the history command.
package history
