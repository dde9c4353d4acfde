// Package ocr turns PDF and plain-text inputs into page-marked documents for
// the extraction engine.
package ocr

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/Syzygyx/StealthOCR/internal/config"
)

// Document is OCR output normalized for extraction: full text with one
// "=== PAGE n ===" marker per page boundary, plus basic size counts.
type Document struct {
	Text       string
	Pages      int
	Characters int
	Words      int
}

// Extractor extracts a Document from a PDF file.
type Extractor interface {
	Extract(ctx context.Context, pdfPath string) (Document, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.OCRConfig) (Extractor, error) {
	switch cfg.Provider {
	case "local", "":
		return NewPdfToText(cfg.PdfToTextPath), nil
	case "mistral":
		if cfg.MistralKey == "" {
			return nil, eris.New("ocr: mistral provider requires mistral_api_key")
		}
		return NewMistralOCR(cfg.MistralKey, cfg.MistralModel, cfg.RequestsPerMinute), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}

var pageMarker = regexp.MustCompile(`(?m)^=== PAGE \d+ ===$`)

// NewDocument assembles a Document from per-page text, inserting one page
// marker before each page.
func NewDocument(pages []string) Document {
	var sb strings.Builder
	for i, page := range pages {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "=== PAGE %d ===\n", i+1)
		sb.WriteString(page)
	}
	text := sb.String()
	return Document{
		Text:       text,
		Pages:      len(pages),
		Characters: len(text),
		Words:      len(strings.Fields(text)),
	}
}

// ReadTextFile loads an already-OCRed text file as a Document. Existing page
// markers are counted rather than re-inserted; unmarked text is one page.
func ReadTextFile(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, eris.Wrapf(err, "ocr: read text file %s", path)
	}
	text := string(data)

	pages := len(pageMarker.FindAllString(text, -1))
	if pages == 0 {
		pages = 1
	}
	return Document{
		Text:       text,
		Pages:      pages,
		Characters: len(text),
		Words:      len(strings.Fields(text)),
	}, nil
}
