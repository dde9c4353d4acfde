package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Syzygyx/StealthOCR/internal/export"
	"github.com/Syzygyx/StealthOCR/internal/reprog"
)

var (
	extractOut    string
	extractFormat string
	extractStore  bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract appropriation records from a single document",
	Long:  "Runs OCR on a PDF (or reads a .txt of already-extracted text), extracts appropriation records, and writes them in the chosen format.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("extract"); err != nil {
			return err
		}

		engine, err := newEngine()
		if err != nil {
			return err
		}

		result, err := extractFile(ctx, engine, args[0])
		if err != nil {
			return err
		}

		if extractStore {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			run, err := st.CreateRun(ctx, filepath.Base(args[0]))
			if err != nil {
				return err
			}
			if err := st.CompleteRun(ctx, run.ID, result); err != nil {
				return err
			}
			zap.L().Info("run stored", zap.String("run_id", run.ID))
		}

		return writeResult(result, args[0], extractOut, extractFormat)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractOut, "out", "", "output path (default derived from input file)")
	extractCmd.Flags().StringVar(&extractFormat, "format", "xlsx", "output format: csv, xlsx, or json")
	extractCmd.Flags().BoolVar(&extractStore, "store", false, "persist the run and its records to the store")
	rootCmd.AddCommand(extractCmd)
}

// writeResult writes the extraction result to out in the given format. An
// empty out derives the path from the input file name.
func writeResult(result reprog.Result, inputPath, out, format string) error {
	format = strings.ToLower(format)
	if out == "" {
		base := strings.TrimSuffix(inputPath, filepath.Ext(inputPath))
		out = base + "." + format
	}

	switch format {
	case "csv":
		return export.WriteCSVFile(out, result.Records)
	case "xlsx":
		return export.WriteXLSXFile(out, result)
	case "json":
		f, err := os.Create(out)
		if err != nil {
			return eris.Wrapf(err, "create %s", out)
		}
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			f.Close()
			return eris.Wrap(err, "encode result")
		}
		return eris.Wrapf(f.Close(), "close %s", out)
	default:
		return eris.Errorf("unsupported format: %s", format)
	}
}
