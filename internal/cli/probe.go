package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/pfrederiksen/lolopal/internal/probe"
	"github.com/spf13/cobra"
)

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check whether the scrape target looks scrapeable",
		Long: `Probe fetches the predictions page and reports the HTTP status, whether
a Cloudflare browser check is being served, and how many match rows are
present. It extracts no match data. Exits nonzero when the target looks
unhealthy.`,
		RunE: runProbe,
	}
}

func runProbe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	format, err := parseFormat(flagFormat)
	if err != nil {
		return err
	}

	report, err := probe.New(cfg.Probe.URL, cfg.Probe.Timeout.Std()).Check(context.Background())
	if err != nil {
		return fmt.Errorf("probing %s: %w", cfg.Probe.URL, err)
	}

	if format == FormatJSON {
		if err := writeJSON(os.Stdout, report); err != nil {
			return err
		}
	} else {
		fmt.Printf("%s: %s\n", report.URL, report.Describe())
		if flagVerbose && report.Title != "" {
			fmt.Printf("  Title: %s\n", report.Title)
			fmt.Printf("  Elapsed: %s\n", report.Elapsed)
		}
	}

	if !report.Healthy() {
		os.Exit(ExitError)
	}
	return nil
}
