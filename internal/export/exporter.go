// Package export projects the canonical catalog into the downstream
// formats: a lossless JSON archive, a Goodreads import CSV, a flattened
// master CSV and a JSONL record stream for recommendation tooling.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jdebolt/fable-export/internal/entities"
)

// Exporter writes catalog projections into a single output directory.
// None of its methods mutate the input; any I/O failure is returned
// immediately, there is no retry or partial-success recovery.
type Exporter struct {
	OutputDir string
}

func NewExporter(outputDir string) *Exporter {
	return &Exporter{OutputDir: outputDir}
}

func (e *Exporter) ensureOutputDir() error {
	if err := os.MkdirAll(e.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// ToJSON writes the full field-for-field archive of every book, in catalog
// order. This is the canonical lossless backup.
func (e *Exporter) ToJSON(books []entities.Book) (string, error) {
	if err := e.ensureOutputDir(); err != nil {
		return "", err
	}

	path := filepath.Join(e.OutputDir, "fable_library.json")

	if books == nil {
		books = []entities.Book{}
	}
	data, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal library: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write library archive: %w", err)
	}
	return path, nil
}

// truncate shortens a string to at most n bytes; dates arrive as RFC 3339
// timestamps and are cut to their 10-character date prefix this way.
func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func formatFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}

func formatBool(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}

func formatInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
