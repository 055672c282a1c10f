// Package export writes preview results to CSV or JSON files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rebeliceyang/lazyexplorer/internal/db/query"
)

// Format is an export file format
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
)

// ErrUnknownFormat is returned for formats other than CSV and JSON
var ErrUnknownFormat = errors.New("unknown export format")

// WriteCSV writes the columns as a header row followed by every row
func WriteCSV(w io.Writer, res query.Result) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(res.Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range res.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteJSON writes the rows as an array of objects keyed by column
func WriteJSON(w io.Writer, res query.Result) error {
	records := make([]map[string]string, 0, len(res.Rows))
	for _, row := range res.Rows {
		rec := make(map[string]string, len(res.Columns))
		for i, col := range res.Columns {
			if i < len(row) {
				rec[col] = row[i]
			}
		}
		records = append(records, rec)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// ToFile writes res into dir under a name derived from object and the
// current time, and returns the file path
func ToFile(dir, object string, format Format, res query.Result) (string, error) {
	var write func(io.Writer, query.Result) error
	switch format {
	case CSV:
		write = WriteCSV
	case JSON:
		write = WriteJSON
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(object, format, time.Now()))

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	if err := write(file, res); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}
	return path, nil
}

// FileName builds "<object>-<timestamp>.<ext>" with path separators
// and other unsafe characters in object replaced
func FileName(object string, format Format, at time.Time) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, object)
	if safe == "" {
		safe = "preview"
	}
	return fmt.Sprintf("%s-%s.%s", safe, at.Format("20060102-150405"), format)
}
