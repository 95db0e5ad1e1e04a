package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatstat/internal/index"
	"github.com/Zuo-Peng/chatstat/internal/search"
	"github.com/Zuo-Peng/chatstat/internal/tui"
)

const (
	sColorReset   = "\033[0m"
	sColorBoldRed = "\033[1;31m"
	sColorBlue    = "\033[1;34m"
	sColorDim     = "\033[2m"
)

func colorizeSnippet(snippet string) string {
	snippet = strings.ReplaceAll(snippet, ">>>", sColorBoldRed)
	snippet = strings.ReplaceAll(snippet, "<<<", sColorReset)
	return snippet
}

func searchCmd() *cobra.Command {
	var root, sender, since, dateOrder string
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Full-text search across the messages of discovered exports",
		Long: `Parses every discovered export into a throwaway in-memory index and searches it
with FTS5. Output is TSV for fzf integration:
  path, line, timestamp, sender, snippet

Recommended shell function (add to .zshrc):
  chatf() {
    chatstat search "$*" | fzf \
      --ansi \
      --delimiter='\t' --with-nth=3.. \
      --preview 'chatstat preview {1} --line {2} --context 5 --query {q}' \
      --preview-window=right:60%:wrap \
      --bind 'enter:execute(chatstat open {1} --line {2})'
  }`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			opts, err := analyzeOptions(cfg, logger, dateOrder)
			if err != nil {
				return err
			}

			files, _, err := discover(cfg, logger, root)
			if err != nil {
				return err
			}

			db, err := index.OpenMemory()
			if err != nil {
				return fmt.Errorf("open index: %w", err)
			}
			defer db.Close()

			stats, err := index.IndexAll(db, files, opts, logger)
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			logger.Debug("indexed exports", "stats", stats.String())

			sopts := search.Options{
				Sender: sender,
				Since:  since,
				Limit:  limit,
			}

			// Interactive TUI when stdout is a terminal; TSV output for pipes
			if isTerminal() {
				opts.Logger = nil
				return tui.RunSearch(db, args[0], tui.Options{Search: sopts, Analyze: opts})
			}

			sopts.Query = args[0]
			results, err := search.Search(db, sopts)
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(os.Stderr, "No results found.")
				return nil
			}

			for _, r := range results {
				snippet := strings.ReplaceAll(r.Snippet, "\t", " ")
				snippet = strings.ReplaceAll(snippet, "\n", " ")
				snippet = colorizeSnippet(snippet)
				who := r.Sender
				if who == "" {
					who = "-"
				}
				// first two fields (path, line) stay plain for fzf {1} {2}
				fmt.Printf("%s\t%d\t%s%s%s\t%s%s%s\t%s\n",
					r.FilePath,
					r.LineNumber,
					sColorDim, r.Ts, sColorReset,
					sColorBlue, who, sColorReset,
					snippet,
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Directory to search (default: configured roots)")
	cmd.Flags().StringVar(&sender, "sender", "", "Only messages from this sender")
	cmd.Flags().StringVar(&since, "since", "", "Only messages on or after this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&dateOrder, "date-order", "", "Ambiguous date order: day-first or month-first")
	cmd.Flags().IntVar(&limit, "limit", 100, "Max results")

	return cmd
}
