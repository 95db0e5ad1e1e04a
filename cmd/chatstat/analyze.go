package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatstat/internal/analyze"
	"github.com/Zuo-Peng/chatstat/internal/errs"
	"github.com/Zuo-Peng/chatstat/internal/render"
	"github.com/Zuo-Peng/chatstat/internal/stats"
)

type analyzeOutput struct {
	Path       string              `json:"path"`
	Report     *analyze.Report     `json:"report,omitempty"`
	TopSenders []stats.SenderCount `json:"top_senders,omitempty"`
	Error      string              `json:"error,omitempty"`
	Kind       string              `json:"kind,omitempty"`
}

func analyzeCmd() *cobra.Command {
	var dateOrder string
	var top int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze <path>...",
		Short: "Summarize one or more chat exports",
		Long: `Parses each export and prints message totals, top participants and busiest days.
A file that fails is reported and the remaining files are still analyzed.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			opts, err := analyzeOptions(cfg, logger, dateOrder)
			if err != nil {
				return err
			}

			results := analyze.AnalyzeBatch(args, opts)

			failed := 0
			var out []analyzeOutput
			for i, r := range results {
				if r.Err != nil {
					failed++
					if asJSON {
						out = append(out, analyzeOutput{Path: r.Path, Error: r.Err.Error(), Kind: string(errs.KindOf(r.Err))})
					} else {
						fmt.Fprintf(os.Stderr, "error: %v\n", r.Err)
					}
					continue
				}
				if asJSON {
					out = append(out, analyzeOutput{Path: r.Path, Report: r.Report, TopSenders: r.Report.Stats.TopSenders(top)})
					continue
				}
				if i > 0 {
					fmt.Println()
				}
				fmt.Print(render.Stats(filepath.Base(r.Path), r.Report.Stats, render.StatsOptions{
					Top:     top,
					NoColor: !isTerminal(),
				}))
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(out); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d exports failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dateOrder, "date-order", "", "Ambiguous date order: day-first or month-first (default from config)")
	cmd.Flags().IntVar(&top, "top", 5, "Number of top participants and busiest days to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print full statistics as JSON")

	return cmd
}
