// Package reconcile keeps the committed repository state in sync with the
// scraper's latest snapshot.
//
// Reconciliation stages only the designated data artifact paths, compares
// them against HEAD, and produces at most one commit per invocation: a
// byte-identical snapshot is an explicit no-op, a changed snapshot becomes a
// single commit with a fixed automation author and a timestamped message,
// pushed to the remote. Incidental working-tree changes (logs, caches) are
// never staged, so no vacuous history entries are created.
package reconcile
