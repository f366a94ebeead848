package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pfrederiksen/lolopal/internal/reconcile"
	"github.com/spf13/cobra"
)

var flagDryRun bool

func newReconcileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Commit and push the snapshot if it changed",
		Long: `Reconcile compares the designated data artifacts in the working tree
against the last commit. If they differ it creates exactly one commit with
the fixed automation identity and pushes it; otherwise it is a no-op.
Assumes the scraper has already written its output.`,
		RunE: runReconcile,
	}

	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Report pending changes without committing or pushing")

	return cmd
}

func runReconcile(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}

	rec := reconcile.New(reconcile.Options{
		RepoDir:       cfg.RepoDir,
		Paths:         cfg.Git.Paths,
		Author:        reconcile.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail},
		MessagePrefix: cfg.Git.MessagePrefix,
		RemoteName:    cfg.Git.Remote,
		Token:         cfg.Git.Token,
	})

	result, err := rec.Reconcile(context.Background(), flagDryRun)
	if err != nil {
		return err
	}

	if format == FormatJSON {
		if err := writeJSON(os.Stdout, result); err != nil {
			return err
		}
	} else {
		switch {
		case result.Committed:
			fmt.Printf("Committed %s: %s\n", shortHash(result.Hash), result.Message)
		case result.Pending:
			fmt.Printf("Changes pending in: %s\n", strings.Join(result.ChangedPaths, ", "))
		default:
			fmt.Println("No changes to commit")
		}
	}

	// Dry runs signal pending changes through the exit code so CI steps
	// can branch on it.
	if result.Pending {
		os.Exit(ExitChangesPending)
	}
	return nil
}
