package main

import (
	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatstat/internal/mcpserver"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat tools over MCP on stdin/stdout",
		Long: `Runs an MCP server exposing find_chats, analyze_chat, read_chat and search_chats.
Logs go to stderr; stdout carries protocol frames only.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			logger.Info("serving MCP on stdio", "version", version, "roots", cfg.Roots)
			return mcpserver.Serve(version, mcpserver.Deps{Config: cfg, Logger: logger})
		},
	}
}
