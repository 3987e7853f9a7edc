// Package writer serializes course records to the supported output formats.
// Files are written to a temp file in the target directory and renamed into
// place, so a crashed run never leaves a truncated output behind.
package writer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/lionpath-labs/coursecrawl/pkg/models"
)

type Format string

const (
	FormatJSONL    Format = "jsonl"
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// Detect resolves the output format from an explicit flag value or, when
// that is empty, the output path's extension. JSONL is the default.
func Detect(format, path string) (Format, error) {
	switch strings.ToLower(format) {
	case "jsonl":
		return FormatJSONL, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "":
	default:
		return "", fmt.Errorf("unknown format %q (jsonl, json, csv, markdown)", format)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".csv":
		return FormatCSV, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	default:
		return FormatJSONL, nil
	}
}

// Write serializes records to path in the given format. "-" writes to
// stdout; anything else is written atomically.
func Write(path string, format Format, records []*models.CourseRecord) error {
	if path == "-" {
		return encode(os.Stdout, format, records)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := encode(tmp, format, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("finalize output: %w", err)
	}

	log.Info().
		Str("path", path).
		Str("format", string(format)).
		Int("courses", len(records)).
		Msg("Wrote output")
	return nil
}

func encode(w io.Writer, format Format, records []*models.CourseRecord) error {
	switch format {
	case FormatJSONL:
		return encodeJSONL(w, records)
	case FormatJSON:
		return encodeJSON(w, records)
	case FormatCSV:
		return encodeCSV(w, records)
	case FormatMarkdown:
		return encodeMarkdown(w, records)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
