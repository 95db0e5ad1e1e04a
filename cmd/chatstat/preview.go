package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatstat/internal/analyze"
	"github.com/Zuo-Peng/chatstat/internal/render"
)

func previewCmd() *cobra.Command {
	var line, context int
	var query, dateOrder string

	cmd := &cobra.Command{
		Use:   "preview <path>",
		Short: "Preview the messages of an export around a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			opts, err := analyzeOptions(cfg, logger, dateOrder)
			if err != nil {
				return err
			}
			opts.KeepMessages = true

			report, err := analyze.AnalyzeFile(args[0], opts)
			if err != nil {
				return err
			}

			out, _ := render.Conversation(filepath.Base(args[0]), report.Messages, render.Options{
				HitLine: line,
				Context: context,
				Query:   query,
				NoColor: !isTerminal(),
			})
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&line, "line", 0, "Export line of the message to highlight")
	cmd.Flags().IntVar(&context, "context", 10, "Messages before/after the highlighted one")
	cmd.Flags().StringVar(&query, "query", "", "Search query for keyword highlighting")
	cmd.Flags().StringVar(&dateOrder, "date-order", "", "Ambiguous date order: day-first or month-first")

	return cmd
}
