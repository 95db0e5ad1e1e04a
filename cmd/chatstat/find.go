package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func findCmd() *cobra.Command {
	var root string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "find",
		Short: "List chat exports under a directory or the configured roots",
		Long: `Walks the given directory (or every configured root) and prints one line per export:
  path, variant, size, modified

Directories that cannot be read are reported on stderr and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			files, warnings, err := discover(cfg, logger, root)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(files)
			}

			if len(files) == 0 {
				fmt.Fprintln(os.Stderr, "No chat exports found.")
				return nil
			}
			for _, f := range files {
				fmt.Printf("%s\t%s\t%s\t%s\n",
					f.Path,
					f.Variant,
					humanize.Bytes(uint64(f.Size)),
					humanize.Time(time.Unix(f.Mtime, 0)),
				)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Directory to search (default: configured roots)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print descriptors as JSON")

	return cmd
}
