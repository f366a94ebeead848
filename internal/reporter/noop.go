package reporter

// NoopReporter discards failures. Used in dry runs and tests.
type NoopReporter struct{}

// NewNoopReporter creates a new no-op reporter
func NewNoopReporter() *NoopReporter {
	return &NoopReporter{}
}

// Report does nothing
func (n *NoopReporter) Report(f *Failure) error {
	return nil
}
