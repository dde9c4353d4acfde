package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Syzygyx/StealthOCR/internal/reprog"
	"github.com/Syzygyx/StealthOCR/internal/store"
)

func writeInputFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestListInputFiles(t *testing.T) {
	dir := t.TempDir()
	writeInputFile(t, dir, "b.pdf", "%PDF")
	writeInputFile(t, dir, "a.txt", "text")
	writeInputFile(t, dir, "notes.md", "skip me")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.pdf"), 0o755))

	files, err := listInputFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join(dir, "a.txt"), files[0])
	assert.Equal(t, filepath.Join(dir, "b.pdf"), files[1])
}

func TestListInputFiles_MissingDir(t *testing.T) {
	_, err := listInputFiles(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestProcessBatch_TextFiles(t *testing.T) {
	dir := t.TempDir()
	writeInputFile(t, dir, "navy.txt", "FY 2025 REPROGRAMMING action transfers $5,000,000 to the Navy account.\n")
	writeInputFile(t, dir, "empty.txt", "Nothing relevant here.\n")

	outDir := t.TempDir()
	engine := reprog.NewEngine()

	files, err := listInputFiles(dir)
	require.NoError(t, err)

	err = processBatch(context.Background(), engine, nil, files, outDir, "csv", 0, 2)
	require.NoError(t, err)

	for _, name := range []string{"navy.csv", "empty.csv"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestProcessBatch_LimitApplied(t *testing.T) {
	dir := t.TempDir()
	writeInputFile(t, dir, "a.txt", "no records\n")
	writeInputFile(t, dir, "b.txt", "no records\n")

	outDir := t.TempDir()
	files, err := listInputFiles(dir)
	require.NoError(t, err)

	err = processBatch(context.Background(), reprog.NewEngine(), nil, files, outDir, "csv", 1, 2)
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestProcessBatch_StoresRuns(t *testing.T) {
	dir := t.TempDir()
	writeInputFile(t, dir, "navy.txt", "FY 2025 REPROGRAMMING action transfers $5,000,000 to the Navy account.\n")

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "batch.db"))
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate(context.Background()))

	files, err := listInputFiles(dir)
	require.NoError(t, err)

	err = processBatch(context.Background(), reprog.NewEngine(), st, files, t.TempDir(), "json", 0, 1)
	require.NoError(t, err)

	runs, err := st.ListRuns(context.Background(), store.RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, store.RunStatusComplete, runs[0].Status)
	assert.Equal(t, "navy.txt", runs[0].SourceFile)
	assert.Equal(t, 1, runs[0].RecordCount)
}

func TestProcessBatch_NoFiles(t *testing.T) {
	err := processBatch(context.Background(), reprog.NewEngine(), nil, nil, t.TempDir(), "csv", 0, 2)
	assert.NoError(t, err)
}
