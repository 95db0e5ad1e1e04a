package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatstat/internal/open"
)

func openCmd() *cobra.Command {
	var line int

	cmd := &cobra.Command{
		Use:   "open <path>",
		Short: "Open an export in $EDITOR at a line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return open.Export(args[0], line)
		},
	}

	cmd.Flags().IntVar(&line, "line", 1, "Line to jump to")

	return cmd
}
