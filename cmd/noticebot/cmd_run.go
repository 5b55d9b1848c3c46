package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"NoticeBot/internal/domain"
)

var runFlags struct {
	manual bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scan boards once and deliver the digest",
	Long:  "Scan every board once and deliver new notices. Scheduled runs record what was sent;\nmanual runs ignore and never update the sent history.",
	RunE:  runOnce,
}

func init() {
	runCmd.Flags().BoolVar(&runFlags.manual, "manual", false, "Test run: at most 3 notices, sent history ignored")
}

func runOnce(cmd *cobra.Command, _ []string) error {
	var mode domain.Mode
	if runFlags.manual {
		mode = domain.ModeManual
	}

	application, logger, err := openApp(cmd.Context(), mode)
	if err != nil {
		return err
	}
	defer application.Close()

	report, err := application.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("run %s: %w", report.RunID, err)
	}

	logger.Info("run finished",
		"run_id", report.RunID,
		"status", string(report.Status),
		"found", report.Found(),
		"selected", report.Selected,
		"committed", report.Committed)
	return nil
}
