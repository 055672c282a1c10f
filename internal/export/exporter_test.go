package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rebeliceyang/lazyexplorer/internal/db/query"
)

func testResult() query.Result {
	return query.Result{
		Columns: []string{"id", "note"},
		Rows: [][]string{
			{"1", `commas, quotes "and" special chars`},
			{"2", "multi\nline"},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, testResult()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("Failed to read CSV: %v", err)
	}
	if len(records) != 3 { // header + 2 rows
		t.Fatalf("Expected 3 records, got %d", len(records))
	}
	if records[0][0] != "id" || records[0][1] != "note" {
		t.Errorf("Unexpected header %v", records[0])
	}
	if records[1][1] != `commas, quotes "and" special chars` {
		t.Errorf("Special characters not preserved: %q", records[1][1])
	}
	if records[2][1] != "multi\nline" {
		t.Errorf("Newline not preserved: %q", records[2][1])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, testResult()); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var records []map[string]string
	if err := json.Unmarshal(buf.Bytes(), &records); err != nil {
		t.Fatalf("Failed to parse JSON: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0]["id"] != "1" || records[1]["note"] != "multi\nline" {
		t.Errorf("Unexpected records %v", records)
	}
}

func TestWriteJSON_EmptyResult(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, query.Result{Columns: []string{"id"}}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("Expected empty array, got %q", got)
	}
}

func TestToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")

	path, err := ToFile(dir, "public.users", CSV, testResult())
	if err != nil {
		t.Fatalf("ToFile failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("Expected file in %s, got %s", dir, path)
	}
	if !strings.HasPrefix(filepath.Base(path), "public.users-") || !strings.HasSuffix(path, ".csv") {
		t.Errorf("Unexpected file name %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	if !strings.HasPrefix(string(data), "id,note\n") {
		t.Errorf("Unexpected content %q", data)
	}
}

func TestToFile_UnknownFormat(t *testing.T) {
	if _, err := ToFile(t.TempDir(), "x", Format("xml"), testResult()); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		object string
		format Format
		want   string
	}{
		{"public.users", CSV, "public.users-20240102-030405.csv"},
		{"main.orders.total", JSON, "main.orders.total-20240102-030405.json"},
		{"../etc/passwd", CSV, ".._etc_passwd-20240102-030405.csv"},
		{"", JSON, "preview-20240102-030405.json"},
	}
	for _, tt := range tests {
		if got := FileName(tt.object, tt.format, at); got != tt.want {
			t.Errorf("FileName(%q) = %q, want %q", tt.object, got, tt.want)
		}
	}
}
