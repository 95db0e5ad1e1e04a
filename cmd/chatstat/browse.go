package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatstat/internal/tui"
)

func browseCmd() *cobra.Command {
	var root, dateOrder string
	var top int

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse discovered exports with a statistics preview",
		Long:  `Opens a TUI panel listing every discovered export. Type to filter by path; the right panel shows the selected export's summary. Enter copies the path to the clipboard.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			opts, err := analyzeOptions(cfg, logger, dateOrder)
			if err != nil {
				return err
			}
			// slog output would corrupt the alt screen
			opts.Logger = nil

			files, warnings, err := discover(cfg, nil, root)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}

			return tui.RunBrowse(files, tui.Options{Analyze: opts, Top: top})
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Directory to browse (default: configured roots)")
	cmd.Flags().StringVar(&dateOrder, "date-order", "", "Ambiguous date order: day-first or month-first")
	cmd.Flags().IntVar(&top, "top", 5, "Number of top participants to show")

	return cmd
}
