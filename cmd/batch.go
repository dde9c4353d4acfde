package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Syzygyx/StealthOCR/internal/reprog"
	"github.com/Syzygyx/StealthOCR/internal/store"
)

var (
	batchOutDir string
	batchFormat string
	batchStore  bool
	batchLimit  int
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Extract records from every document in a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("batch"); err != nil {
			return err
		}

		engine, err := newEngine()
		if err != nil {
			return err
		}

		var st store.Store
		if batchStore {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		files, err := listInputFiles(args[0])
		if err != nil {
			return err
		}

		outDir := batchOutDir
		if outDir == "" {
			outDir = args[0]
		}

		return processBatch(ctx, engine, st, files, outDir, batchFormat, batchLimit, cfg.Batch.MaxConcurrentFiles)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "output directory (default alongside inputs)")
	batchCmd.Flags().StringVar(&batchFormat, "format", "xlsx", "output format: csv, xlsx, or json")
	batchCmd.Flags().BoolVar(&batchStore, "store", false, "persist each run and its records to the store")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max number of files to process (0 = all)")
	rootCmd.AddCommand(batchCmd)
}

// listInputFiles returns the PDF and text documents in dir, sorted by name.
func listInputFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "read dir %s", dir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".pdf", ".txt":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

// processBatch extracts each file concurrently. Individual failures are
// logged (and recorded against the run when a store is set) without
// aborting the batch.
func processBatch(ctx context.Context, engine *reprog.Engine, st store.Store, files []string, outDir, format string, limit, concurrency int) error {
	if len(files) == 0 {
		zap.L().Info("no input documents found")
		return nil
	}

	if limit > 0 && len(files) > limit {
		files = files[:limit]
	}

	zap.L().Info("processing batch",
		zap.Int("files", len(files)),
		zap.Int("concurrency", concurrency),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	var succeeded, failed atomic.Int64

	for _, path := range files {
		g.Go(func() error {
			log := zap.L().With(zap.String("file", filepath.Base(path)))

			var runID string
			if st != nil {
				run, err := st.CreateRun(gctx, filepath.Base(path))
				if err != nil {
					failed.Add(1)
					log.Error("create run failed", zap.Error(err))
					return nil
				}
				runID = run.ID
				if err := st.StartRun(gctx, runID); err != nil {
					log.Warn("start run failed", zap.Error(err))
				}
			}

			result, err := extractFile(gctx, engine, path)
			if err != nil {
				failed.Add(1)
				log.Error("extraction failed", zap.Error(err))
				if st != nil {
					if sErr := st.FailRun(gctx, runID, err); sErr != nil {
						log.Warn("fail run update failed", zap.Error(sErr))
					}
				}
				return nil // don't abort batch on individual failure
			}

			if st != nil {
				if err := st.CompleteRun(gctx, runID, result); err != nil {
					log.Warn("complete run failed", zap.Error(err))
				}
			}

			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			out := filepath.Join(outDir, base+"."+strings.ToLower(format))
			if err := writeResult(result, path, out, format); err != nil {
				failed.Add(1)
				log.Error("write output failed", zap.Error(err))
				return nil
			}

			succeeded.Add(1)
			log.Info("file complete", zap.Int("records", len(result.Records)))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return nil
}
