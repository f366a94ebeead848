// Package reporter surfaces run failures to the operator.
//
// On any Producer or Reconciler failure the reporter preserves the
// designated diagnostic files as a timestamped tar.gz bundle with bounded
// retention, and emits an error annotation: a GitHub Actions workflow
// command when running under Actions, a plain stderr line otherwise. The
// success path never invokes the reporter.
package reporter
