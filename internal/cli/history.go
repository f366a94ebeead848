package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/pfrederiksen/lolopal/internal/history"
	"github.com/pfrederiksen/lolopal/internal/runlog"
	"github.com/spf13/cobra"
)

var (
	flagLimit     int
	flagScrapeLog bool
)

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs from the local run ledger",
		RunE:  runHistory,
	}

	cmd.Flags().IntVar(&flagLimit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().BoolVar(&flagScrapeLog, "scrape-log", false, "Show the scraper's own log entries instead of the run ledger")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}

	if flagScrapeLog {
		return showScrapeLog(cfg.LogPath(), format)
	}

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		return fmt.Errorf("opening run ledger: %w", err)
	}
	defer store.Close()

	runs, err := store.Recent(flagLimit)
	if err != nil {
		return err
	}

	if format == FormatJSON {
		return writeJSON(os.Stdout, runs)
	}
	writeHistoryText(os.Stdout, runs)
	return nil
}

// showScrapeLog prints the tail of scrape_log.txt, the log the scraper
// writes for itself.
func showScrapeLog(path string, format OutputFormat) error {
	entries, err := runlog.New(path).Tail(flagLimit)
	if err != nil {
		return err
	}

	if format == FormatJSON {
		return writeJSON(os.Stdout, entries)
	}
	if len(entries) == 0 {
		fmt.Println("No scrape log entries.")
		return nil
	}
	for _, e := range entries {
		fmt.Println(e.Raw)
	}
	return nil
}

func writeHistoryText(w io.Writer, runs []*history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	for _, r := range runs {
		line := fmt.Sprintf("%s  %-16s", r.StartedAt.Format("2006-01-02 15:04"), r.Outcome)
		switch r.Outcome {
		case history.OutcomeCommitted:
			line += fmt.Sprintf("  %d matches  %s", r.Matches, shortHash(r.CommitHash))
		case history.OutcomeNoChanges:
			line += fmt.Sprintf("  %d matches", r.Matches)
		default:
			if r.Error != "" {
				line += "  " + r.Error
			}
		}
		fmt.Fprintln(w, line)
	}
	fmt.Fprintf(w, "\nTotal: %d runs\n", len(runs))
}
