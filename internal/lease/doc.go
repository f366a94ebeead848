// Package lease provides run-level mutual exclusion for scrape runs.
//
// A lease is a small JSON file keyed by repository path and branch. Acquiring
// the lease before a run prevents two overlapping scheduled invocations from
// racing on the same working tree. Leases carry a TTL so a crashed run cannot
// block the schedule forever: an expired lease is broken and re-acquired.
package lease
