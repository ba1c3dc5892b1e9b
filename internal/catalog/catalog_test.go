package catalog

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func writeCorpusFile(t *testing.T, root string, parts ...string) string {
	t.Helper()
	path := filepath.Join(append([]string{root}, parts...)...)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("The quarterly review covers monetary policy."), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCollectFindsSupportedDocuments(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "jpe", "2021", "Mar-Apr", "macro.txt")
	writeCorpusFile(t, root, "jpe", "2021", "Mar-Apr", "notes.md")
	writeCorpusFile(t, root, "aer", "2019", "Jan-Feb", "trade.html")

	docs, err := Collect(root, discardLogger())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("got %d documents, want 3", len(docs))
	}

	// Sorted by path, so aer comes first.
	first := docs[0]
	if first.Journal != "aer" || first.Year != 2019 || first.MonthRange != "Jan-Feb" {
		t.Fatalf("first doc context = %+v", first)
	}
	if first.Name != "trade.html" || first.Kind != "html" {
		t.Fatalf("first doc identity = %+v", first)
	}
}

func TestCollectSkipsUnsupportedAndTemporary(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "jpe", "2021", "Mar-Apr", "keep.txt")
	writeCorpusFile(t, root, "jpe", "2021", "Mar-Apr", "~$lock.docx")
	writeCorpusFile(t, root, "jpe", "2021", "Mar-Apr", "slides.pptx")

	docs, err := Collect(root, discardLogger())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1: %+v", len(docs), docs)
	}
	if docs[0].Name != "keep.txt" {
		t.Fatalf("kept %q, want keep.txt", docs[0].Name)
	}
}

func TestCollectAcceptsShallowLayout(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "jpe", "essay.txt")

	docs, err := Collect(root, discardLogger())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1 journal-only document", len(docs))
	}
	doc := docs[0]
	if doc.Journal != "jpe" || doc.Name != "essay.txt" {
		t.Fatalf("doc = %+v", doc)
	}
	if doc.Year != 0 || doc.MonthRange != "" {
		t.Fatalf("shallow layout should leave year and months unset: %+v", doc)
	}
}

func TestCollectNonNumericYearFillsJournalOnly(t *testing.T) {
	root := t.TempDir()
	writeCorpusFile(t, root, "aer", "unknown-year", "Mar-Apr", "odd.txt")

	docs, err := Collect(root, discardLogger())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d documents, want 1", len(docs))
	}
	if docs[0].Journal != "aer" || docs[0].Year != 0 || docs[0].MonthRange != "" {
		t.Fatalf("doc = %+v", docs[0])
	}
}

func TestCollectMissingRoot(t *testing.T) {
	if _, err := Collect(filepath.Join(t.TempDir(), "absent"), discardLogger()); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestDateHints(t *testing.T) {
	doc := Document{Year: 2021, MonthRange: "Mar-Apr"}
	hints, err := doc.DateHints()
	if err != nil {
		t.Fatalf("DateHints: %v", err)
	}

	var decoded struct {
		Year       int    `json:"year"`
		MonthRange string `json:"month_range"`
	}
	if err := json.Unmarshal([]byte(hints), &decoded); err != nil {
		t.Fatalf("hints are not JSON: %v", err)
	}
	if decoded.Year != 2021 || decoded.MonthRange != "Mar-Apr" {
		t.Fatalf("decoded hints = %+v", decoded)
	}
}

func TestReadText(t *testing.T) {
	root := t.TempDir()
	path := writeCorpusFile(t, root, "jpe", "2021", "Mar-Apr", "macro.txt")

	doc := Document{Path: path, Kind: "txt"}
	text, err := doc.ReadText()
	if err != nil {
		t.Fatalf("ReadText: %v", err)
	}
	if text != "The quarterly review covers monetary policy." {
		t.Fatalf("text = %q", text)
	}
}
