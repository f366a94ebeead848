package reporter

// Failure describes a failed run stage for reporting.
type Failure struct {
	// Stage names the component that failed ("producer", "reconcile").
	Stage string
	// Err is the terminal error.
	Err error
	// Diagnostics lists files to preserve. Missing files are skipped.
	Diagnostics []string
}

// Reporter defines the interface for surfacing run failures
type Reporter interface {
	// Report preserves diagnostics and emits an error annotation
	Report(f *Failure) error
}
