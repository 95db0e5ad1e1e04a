package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatstat/internal/analyze"
	"github.com/Zuo-Peng/chatstat/internal/errs"
)

func readCmd() *cobra.Command {
	var maxMB int

	cmd := &cobra.Command{
		Use:   "read <path>",
		Short: "Print the raw text of an export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("max-size-mb") {
				maxMB = cfg.MaxReadMB
			}
			if maxMB <= 0 {
				return errs.New(errs.InvalidArgument, args[0], "--max-size-mb must be positive")
			}

			text, err := analyze.ReadExport(args[0], int64(maxMB)*1024*1024, cfg.Encoding)
			if err != nil {
				return err
			}
			fmt.Print(text)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxMB, "max-size-mb", 10, "Refuse files larger than this many megabytes")

	return cmd
}
