package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Syzygyx/StealthOCR/internal/reprog"
)

func writableResult() reprog.Result {
	return reprog.Result{
		Records: []reprog.Record{{
			AppropriationCategory: "Operation and Maintenance",
			Branch:                "Army",
			ReprogrammingAmount:   "118600",
			File:                  "input.pdf",
		}},
		Source:      "input.pdf",
		ExtractedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestWriteResult_CSV(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.csv")

	require.NoError(t, writeResult(writableResult(), "input.pdf", out, "csv"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "appropriation_category"), "csv should start with the header row")
	assert.Contains(t, string(data), "118600")
}

func TestWriteResult_JSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.json")

	require.NoError(t, writeResult(writableResult(), "input.pdf", out, "json"))

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	var got reprog.Result
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Records, 1)
	assert.Equal(t, "118600", got.Records[0].ReprogrammingAmount)
}

func TestWriteResult_XLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.xlsx")

	require.NoError(t, writeResult(writableResult(), "input.pdf", out, "xlsx"))

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestWriteResult_DerivesOutputPath(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "input.pdf")

	require.NoError(t, writeResult(writableResult(), input, "", "csv"))

	_, err := os.Stat(filepath.Join(dir, "input.csv"))
	assert.NoError(t, err)
}

func TestWriteResult_UnsupportedFormat(t *testing.T) {
	err := writeResult(writableResult(), "input.pdf", filepath.Join(t.TempDir(), "out.yml"), "yml")
	assert.ErrorContains(t, err, "unsupported format")
}
