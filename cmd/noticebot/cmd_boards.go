package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"NoticeBot/internal/app"
)

var boardsCmd = &cobra.Command{
	Use:   "boards",
	Short: "Scan boards and print what the next run would send",
	RunE:  runBoards,
}

func runBoards(cmd *cobra.Command, _ []string) error {
	application, _, err := openApp(cmd.Context(), "")
	if err != nil {
		return err
	}
	defer application.Close()

	printPreview(cmd.OutOrStdout(), application.Preview(cmd.Context()))
	return nil
}

func printPreview(out io.Writer, p app.Preview) {
	for i, r := range p.Reports {
		status := "ok"
		if r.Err != nil {
			status = r.Err.Error()
		}
		fmt.Fprintf(out, "%s: rows=%d recent=%d (%s)\n", r.Board, r.Rows, r.Accepted, status)
		if i < len(p.PerBoard) {
			for _, n := range p.PerBoard[i] {
				fmt.Fprintf(out, "  %s  %s\n    %s\n", n.Date.Format("2006.01.02"), n.Title, n.Link)
			}
		}
	}

	fmt.Fprintf(out, "\nWould send %d notice(s)\n", len(p.Selected))
	for _, n := range p.Selected {
		fmt.Fprintf(out, "  [%s] %s\n", n.Source, n.Title)
	}
}
