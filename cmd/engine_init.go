package main

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Syzygyx/StealthOCR/internal/ocr"
	"github.com/Syzygyx/StealthOCR/internal/reprog"
	"github.com/Syzygyx/StealthOCR/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.New(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

func newEngine() (*reprog.Engine, error) {
	opts := []reprog.Option{
		reprog.WithDefaultFiscalYears(cfg.Extract.DefaultFiscalStart, cfg.Extract.DefaultFiscalEnd),
	}
	if cfg.Extract.TemplatesPath != "" {
		templates, err := reprog.LoadTemplates(cfg.Extract.TemplatesPath)
		if err != nil {
			return nil, eris.Wrap(err, "load templates")
		}
		opts = append(opts, reprog.WithTemplates(templates))
	}
	return reprog.NewEngine(opts...), nil
}

// readDocument turns an input file into OCR text. PDFs go through the
// configured extractor; .txt files are read as already-extracted text.
func readDocument(ctx context.Context, path string) (ocr.Document, error) {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return ocr.ReadTextFile(path)
	}

	extractor, err := ocr.NewExtractor(cfg.OCR)
	if err != nil {
		return ocr.Document{}, err
	}
	return extractor.Extract(ctx, path)
}

// extractFile runs the full OCR and extraction pipeline for one input file.
func extractFile(ctx context.Context, engine *reprog.Engine, path string) (reprog.Result, error) {
	start := time.Now()

	doc, err := readDocument(ctx, path)
	if err != nil {
		return reprog.Result{}, eris.Wrapf(err, "read document %s", path)
	}

	result := engine.Extract(reprog.RawDocument{
		Text:           doc.Text,
		PagesProcessed: doc.Pages,
		CharacterCount: doc.Characters,
		WordCount:      doc.Words,
	}, filepath.Base(path))

	zap.L().Info("extraction complete",
		zap.String("file", filepath.Base(path)),
		zap.Int("records", len(result.Records)),
		zap.Int("pages", result.PagesProcessed),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result, nil
}
