package reporter

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ActionsReporter preserves diagnostics locally and annotates the run.
// Under GitHub Actions it emits workflow commands; elsewhere it prints a
// plain error line to stderr.
type ActionsReporter struct {
	artifactsDir string
	retention    time.Duration
	out          io.Writer
	onActions    bool
	now          func() time.Time
}

// NewActionsReporter creates a reporter writing bundles under artifactsDir
// and pruning bundles older than retention.
func NewActionsReporter(artifactsDir string, retention time.Duration) *ActionsReporter {
	return &ActionsReporter{
		artifactsDir: artifactsDir,
		retention:    retention,
		out:          os.Stdout,
		onActions:    os.Getenv("GITHUB_ACTIONS") == "true",
		now:          time.Now,
	}
}

// Report bundles the diagnostic files and emits the error annotation.
// Bundling problems are reported but never mask the original failure.
func (r *ActionsReporter) Report(f *Failure) error {
	bundle, bundleErr := r.bundle(f.Diagnostics)

	message := fmt.Sprintf("%s failed: %v", f.Stage, f.Err)
	if bundle != "" {
		message += fmt.Sprintf(" (diagnostics: %s)", filepath.Base(bundle))
	}
	r.annotate(message)

	if err := r.prune(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: pruning old diagnostic bundles: %v\n", err)
	}
	if bundleErr != nil {
		return fmt.Errorf("preserving diagnostics: %w", bundleErr)
	}
	return nil
}

// annotate writes the error in the format the host platform understands.
func (r *ActionsReporter) annotate(message string) {
	if r.onActions {
		// Workflow command data must be single-line.
		fmt.Fprintf(r.out, "::error title=Scrape run failed::%s\n",
			strings.ReplaceAll(message, "\n", " "))
		return
	}
	fmt.Fprintf(r.out, "ERROR: %s\n", message)
}

// bundle writes the existing diagnostic files into a timestamped tar.gz.
// It returns empty with no error when nothing exists to preserve.
func (r *ActionsReporter) bundle(paths []string) (string, error) {
	var present []string
	for _, p := range paths {
		if info, err := os.Stat(p); err == nil && info.Mode().IsRegular() {
			present = append(present, p)
		}
	}
	if len(present) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(r.artifactsDir, 0755); err != nil {
		return "", fmt.Errorf("creating artifacts directory: %w", err)
	}

	name := fmt.Sprintf("run-%s.tar.gz", r.now().UTC().Format("20060102-150405"))
	bundlePath := filepath.Join(r.artifactsDir, name)

	out, err := os.Create(bundlePath)
	if err != nil {
		return "", fmt.Errorf("creating bundle: %w", err)
	}
	defer out.Close()

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	for _, p := range present {
		if err := addFile(tw, p); err != nil {
			tw.Close()
			gz.Close()
			os.Remove(bundlePath)
			return "", err
		}
	}

	if err := tw.Close(); err != nil {
		return "", fmt.Errorf("finalizing bundle: %w", err)
	}
	if err := gz.Close(); err != nil {
		return "", fmt.Errorf("finalizing bundle: %w", err)
	}
	return bundlePath, nil
}

func addFile(tw *tar.Writer, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("inspecting %s: %w", path, err)
	}

	hdr, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return fmt.Errorf("describing %s: %w", path, err)
	}
	hdr.Name = filepath.Base(path)

	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("writing header for %s: %w", path, err)
	}
	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("archiving %s: %w", path, err)
	}
	return nil
}

// prune removes bundles older than the retention period.
func (r *ActionsReporter) prune() error {
	entries, err := os.ReadDir(r.artifactsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	cutoff := r.now().Add(-r.retention)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".tar.gz") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(r.artifactsDir, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}
