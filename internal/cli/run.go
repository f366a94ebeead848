package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pfrederiksen/lolopal/internal/config"
	"github.com/pfrederiksen/lolopal/internal/history"
	"github.com/pfrederiksen/lolopal/internal/lease"
	"github.com/pfrederiksen/lolopal/internal/logger"
	"github.com/pfrederiksen/lolopal/internal/match"
	"github.com/pfrederiksen/lolopal/internal/probe"
	"github.com/pfrederiksen/lolopal/internal/producer"
	"github.com/pfrederiksen/lolopal/internal/reconcile"
	"github.com/pfrederiksen/lolopal/internal/reporter"
	"github.com/pfrederiksen/lolopal/internal/runlog"
	"github.com/spf13/cobra"
)

var (
	flagPreflight bool
	flagNoReport  bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the scraper and reconcile its output into the repository",
		Long: `Run executes one full scrape run: acquire the run lease, invoke the
external scraper, verify its snapshot output, and commit and push the
snapshot if and only if it differs from the last committed state.`,
		RunE: runRun,
	}

	cmd.Flags().BoolVar(&flagPreflight, "preflight", false, "Probe the scrape target before running the scraper")
	cmd.Flags().BoolVar(&flagNoReport, "no-report", false, "Skip failure reporting (diagnostics bundling and annotations)")

	return cmd
}

// pipeline bundles everything one run needs.
type pipeline struct {
	cfg      *config.Config
	rec      *reconcile.Reconciler
	rep      reporter.Reporter
	log      *runlog.Log
	ledger   *history.Store // nil when the ledger could not be opened
	started  time.Time
	producer *producer.Result
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}

	p := newPipeline(cfg)
	defer func() {
		if p.ledger != nil {
			p.ledger.Close()
		}
	}()

	ctx := context.Background()

	// Run-level mutual exclusion: refuse to overlap a slow previous run.
	branch, err := reconcile.CurrentBranch(cfg.RepoDir)
	if err != nil {
		return err
	}
	l, err := lease.Acquire(cfg.LeaseDir(), lease.Key(cfg.RepoDir, branch), cfg.Lease.TTL.Std())
	if err != nil {
		if errors.Is(err, lease.ErrHeld) {
			p.record(history.OutcomeLeaseHeld, 0, "", err.Error())
			return fmt.Errorf("another run is in progress: %w", err)
		}
		return err
	}
	defer l.Release()

	if flagPreflight {
		p.preflight(ctx)
	}

	snap, err := p.produce(ctx)
	if err != nil {
		p.fail("producer", err)
		p.record(history.OutcomeProducerFailed, 0, "", err.Error())
		return err
	}

	out, err := p.reconcile(ctx, snap)
	if err != nil {
		p.fail("reconcile", err)
		p.record(history.OutcomeReconcileFailed, len(snap.Matches), "", err.Error())
		return err
	}

	outcome := history.OutcomeNoChanges
	if out.CommitHash != "" {
		outcome = history.OutcomeCommitted
	}
	p.record(outcome, out.Matches, out.CommitHash, "")

	if format == FormatJSON {
		return writeJSON(os.Stdout, out)
	}
	out.writeText(os.Stdout)
	return nil
}

func newPipeline(cfg *config.Config) *pipeline {
	p := &pipeline{
		cfg:     cfg,
		log:     runlog.New(cfg.LogPath()),
		started: time.Now().UTC(),
		rec: reconcile.New(reconcile.Options{
			RepoDir:       cfg.RepoDir,
			Paths:         cfg.Git.Paths,
			Author:        reconcile.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail},
			MessagePrefix: cfg.Git.MessagePrefix,
			RemoteName:    cfg.Git.Remote,
			Token:         cfg.Git.Token,
		}),
	}

	if flagNoReport {
		p.rep = reporter.NewNoopReporter()
	} else {
		p.rep = reporter.NewActionsReporter(cfg.ArtifactsDir(), cfg.Artifacts.Retention.Std())
	}

	ledger, err := history.Open(cfg.HistoryPath())
	if err != nil {
		logger.Warn("Run ledger unavailable", logger.Fields{"path": cfg.HistoryPath(), "error": err.Error()})
	} else {
		p.ledger = ledger
	}

	return p
}

// preflight probes the scrape target. A sick target is logged but does not
// abort the run; the scraper has its own retry policy.
func (p *pipeline) preflight(ctx context.Context) {
	report, err := probe.New(p.cfg.Probe.URL, p.cfg.Probe.Timeout.Std()).Check(ctx)
	if err != nil {
		logger.Warn("Preflight probe failed", logger.Fields{"url": p.cfg.Probe.URL, "error": err.Error()})
		return
	}
	if !report.Healthy() {
		logger.Warn("Scrape target looks unhealthy", logger.Fields{"url": report.URL, "detail": report.Describe()})
		return
	}
	logger.Debug("Preflight probe passed", logger.Fields{"detail": report.Describe()})
}

// produce runs the scraper and verifies its outputs.
func (p *pipeline) produce(ctx context.Context) (*match.Snapshot, error) {
	if err := os.MkdirAll(p.cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	outputPath := filepath.Join(p.cfg.DataDir, "producer_output.txt")
	prod := producer.New(p.cfg.Producer.Command, p.cfg.RepoDir, outputPath, p.cfg.Producer.Timeout.Std())

	logger.Info("Starting producer", logger.Fields{"command": p.cfg.Producer.Command})
	result, err := prod.Run(ctx)
	p.producer = result
	if err != nil {
		// The scraper logs its own outcomes while it is alive; record the
		// terminal reason for runs it could not log itself.
		if logErr := p.log.Failure(err.Error()); logErr != nil {
			logger.Warn("Could not append run log entry", logger.Fields{"error": logErr.Error()})
		}
		return nil, err
	}
	logger.Info("Producer finished", logger.Fields{
		"exit_code": result.ExitCode,
		"duration":  result.Duration.String(),
	})

	snap, warnings, err := producer.VerifyOutputs(p.cfg.SnapshotPath())
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		logger.Warn("Snapshot inconsistency", logger.Fields{"detail": w})
	}
	logger.Info("Snapshot verified", logger.Fields{"summary": snap.Summary()})

	return snap, nil
}

// reconcile diffs the snapshot against HEAD and commits when changed.
func (p *pipeline) reconcile(ctx context.Context, snap *match.Snapshot) (*RunOutput, error) {
	previous, err := p.rec.HeadSnapshot(p.cfg.SnapshotFile)
	if err != nil {
		return nil, err
	}
	diff := match.Diff(previous, snap)
	for _, m := range diff.Added {
		logger.Debug("New match", logger.Fields{"match": m.Label()})
	}
	for _, m := range diff.Removed {
		logger.Debug("Match gone", logger.Fields{"match": m.Label()})
	}

	result, err := p.rec.Reconcile(ctx, false)
	if err != nil {
		return nil, err
	}

	out := &RunOutput{
		StartedAt:    p.started,
		FinishedAt:   time.Now().UTC(),
		Matches:      len(snap.Matches),
		AddedCount:   len(diff.Added),
		RemovedCount: len(diff.Removed),
	}
	if result.Committed {
		out.Outcome = string(history.OutcomeCommitted)
		out.CommitHash = result.Hash
		out.Message = result.Message
		logger.Info("Published commit", logger.Fields{"hash": result.Hash, "message": result.Message})
	} else {
		out.Outcome = string(history.OutcomeNoChanges)
		logger.Info("No changes to commit", nil)
	}
	return out, nil
}

// fail routes a terminal error through the failure reporter.
func (p *pipeline) fail(stage string, err error) {
	diagnostics := []string{
		p.cfg.LogPath(),
		p.cfg.SnapshotPath(),
	}
	if p.producer != nil {
		diagnostics = append(diagnostics, p.producer.OutputPath)
	}

	if repErr := p.rep.Report(&reporter.Failure{
		Stage:       stage,
		Err:         err,
		Diagnostics: diagnostics,
	}); repErr != nil {
		logger.Warn("Failure reporting incomplete", logger.Fields{"error": repErr.Error()})
	}
}

// record writes the run to the ledger when it is available.
func (p *pipeline) record(outcome history.Outcome, matches int, hash, errText string) {
	if p.ledger == nil {
		return
	}
	_, err := p.ledger.Record(&history.Run{
		StartedAt:  p.started,
		FinishedAt: time.Now().UTC(),
		Outcome:    outcome,
		Matches:    matches,
		CommitHash: hash,
		Error:      errText,
	})
	if err != nil {
		logger.Warn("Could not record run", logger.Fields{"error": err.Error()})
	}
}
