package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Syzygyx/StealthOCR/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "stealthocr",
	Short: "Extract appropriation records from reprogramming action documents",
	Long:  "Runs OCR over DD 1415 reprogramming PDFs, extracts structured appropriation records, and exports them to CSV, XLSX, or JSON.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
