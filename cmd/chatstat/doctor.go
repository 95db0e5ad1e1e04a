package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Zuo-Peng/chatstat/internal/config"
	"github.com/Zuo-Peng/chatstat/internal/index"
	"github.com/Zuo-Peng/chatstat/internal/parse"
	"github.com/Zuo-Peng/chatstat/internal/scan"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify config, roots, export discovery and FTS5",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("home dir: %w", err)
			}
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			fmt.Println("=== Config ===")
			cfgPath := config.Path(home)
			if _, err := os.Stat(cfgPath); err != nil {
				fmt.Printf("  File: %s (not present, using defaults)\n", cfgPath)
			} else {
				fmt.Printf("  File: %s (OK)\n", cfgPath)
			}
			fmt.Printf("  Date order: %s\n", cfg.DateOrder)
			encoding := cfg.Encoding
			if encoding == "" {
				encoding = "utf-8"
			}
			fmt.Printf("  Encoding:   %s\n", encoding)
			fmt.Printf("  Read limit: %d MB\n", cfg.MaxReadMB)

			fmt.Println("\n=== Roots ===")
			for _, r := range cfg.Roots {
				checkDir(r)
			}

			fmt.Println("\n=== Export Scan ===")
			files, warnings, err := scan.ScanRoots(cfg.Roots, scanOptions(cfg, logger))
			if err != nil {
				fmt.Printf("  scan error: %v\n", err)
				return nil
			}
			counts := map[parse.Variant]int{}
			for _, f := range files {
				counts[f.Variant]++
			}
			fmt.Printf("  Exports: %d\n", len(files))
			fmt.Printf("    dash:    %d\n", counts[parse.VariantDash])
			fmt.Printf("    bracket: %d\n", counts[parse.VariantBracket])
			fmt.Printf("    unknown: %d\n", counts[parse.VariantUnknown])
			fmt.Printf("  Skipped paths: %d\n", len(warnings))

			fmt.Println("\n=== FTS5 ===")
			db, err := index.OpenMemory()
			if err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
				return nil
			}
			defer db.Close()

			if _, err := db.FTSCount(); err != nil {
				fmt.Printf("  FTS5 error: %v\n", err)
			} else {
				fmt.Println("  Status: OK")
			}
			return nil
		},
	}
}

func checkDir(path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Printf("  %s (NOT FOUND)\n", path)
	} else if !info.IsDir() {
		fmt.Printf("  %s (NOT A DIRECTORY)\n", path)
	} else {
		fmt.Printf("  %s (OK)\n", path)
	}
}
