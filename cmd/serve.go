package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Syzygyx/StealthOCR/internal/reprog"
	"github.com/Syzygyx/StealthOCR/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the extraction HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		engine, err := newEngine()
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(engine, st),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func newRouter(engine *reprog.Engine, st store.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/extract", handleExtract(engine, st))
	r.Get("/api/runs", handleListRuns(st))
	r.Get("/api/runs/{id}", handleGetRun(st))

	return r
}

// extractRequest carries either already-extracted text or a base64 PDF.
type extractRequest struct {
	Text       string `json:"text"`
	PDFBase64  string `json:"pdf_base64"`
	SourceFile string `json:"source_file"`
	Store      bool   `json:"store"`
}

func handleExtract(engine *reprog.Engine, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req extractRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Text == "" && req.PDFBase64 == "" {
			writeError(w, http.StatusBadRequest, "text or pdf_base64 is required")
			return
		}

		sourceFile := req.SourceFile
		if sourceFile == "" {
			sourceFile = "upload"
		}

		text := req.Text
		if text == "" {
			pdf, err := base64.StdEncoding.DecodeString(req.PDFBase64)
			if err != nil {
				writeError(w, http.StatusBadRequest, "pdf_base64 is not valid base64")
				return
			}
			text, err = extractUploadedPDF(r, pdf, sourceFile)
			if err != nil {
				zap.L().Error("pdf extraction failed",
					zap.String("source_file", sourceFile),
					zap.Error(err),
				)
				writeError(w, http.StatusUnprocessableEntity, "pdf extraction failed")
				return
			}
		}

		result := engine.Extract(reprog.RawDocument{Text: text}, sourceFile)

		if req.Store {
			run, err := st.CreateRun(r.Context(), sourceFile)
			if err == nil {
				err = st.CompleteRun(r.Context(), run.ID, result)
			}
			if err != nil {
				zap.L().Warn("store run failed",
					zap.String("source_file", sourceFile),
					zap.Error(err),
				)
			}
		}

		writeJSON(w, http.StatusOK, result)
	}
}

// extractUploadedPDF writes the uploaded bytes to a temp file and runs the
// configured OCR extractor over it.
func extractUploadedPDF(r *http.Request, pdf []byte, sourceFile string) (string, error) {
	tmp, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		return "", eris.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(pdf); err != nil {
		tmp.Close()
		return "", eris.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return "", eris.Wrap(err, "close temp file")
	}

	doc, err := readDocument(r.Context(), tmp.Name())
	if err != nil {
		return "", eris.Wrapf(err, "extract %s", filepath.Base(sourceFile))
	}
	return doc.Text, nil
}

func handleListRuns(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.RunFilter{
			Status:     store.RunStatus(r.URL.Query().Get("status")),
			SourceFile: r.URL.Query().Get("source_file"),
		}

		runs, err := st.ListRuns(r.Context(), filter)
		if err != nil {
			zap.L().Error("list runs failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "list runs failed")
			return
		}
		if runs == nil {
			runs = []store.Run{}
		}
		writeJSON(w, http.StatusOK, runs)
	}
}

func handleGetRun(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := st.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
