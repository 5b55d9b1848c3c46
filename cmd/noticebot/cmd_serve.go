package main

import (
	"github.com/spf13/cobra"

	"NoticeBot/internal/domain"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the digest every weekday at the configured time",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	application, _, err := openApp(cmd.Context(), domain.ModeScheduled)
	if err != nil {
		return err
	}
	defer application.Close()

	return application.Serve(cmd.Context())
}
