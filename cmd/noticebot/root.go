// noticebot scans university notice boards and mails a digest of new notices.
//
// Usage:
//
//	noticebot run [--manual] [--config=<path>]
//	noticebot serve [--config=<path>]
//	noticebot boards [--config=<path>]
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	config string
}

var rootCmd = &cobra.Command{
	Use:   "noticebot",
	Short: "Daily digest of new university notices",
	Long:  "noticebot scans the configured notice boards and delivers one digest of\nrecent notices that have not been sent before.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.config, "config", "", "YAML config path (default $NOTICEBOT_CONFIG)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(boardsCmd)
	rootCmd.Version = version
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
