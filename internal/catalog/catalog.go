// Package catalog discovers journal documents on disk. The corpus layout is
// <root>/<journal>/<year>/<month range>/<file>, e.g.
// journals/jpe/2021/Mar-Apr/macro-trends.pdf. Files outside that depth or
// with unsupported extensions are skipped.
package catalog

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/jackzampolin/paperdex/internal/parser"
)

// Document is one discovered file plus the publication context encoded in
// its directory path.
type Document struct {
	Path       string `json:"path"`
	Name       string `json:"name"`
	Journal    string `json:"journal"`
	Year       int    `json:"year"`
	MonthRange string `json:"month_range"`
	Kind       string `json:"kind"`
	PageCount  int    `json:"page_count,omitempty"`
}

// DateHints renders the publication context as the JSON snippet fed to the
// date extraction task.
func (d Document) DateHints() (string, error) {
	hints := map[string]any{
		"year":        d.Year,
		"month_range": d.MonthRange,
	}
	b, err := json.Marshal(hints)
	if err != nil {
		return "", fmt.Errorf("encode date hints for %s: %w", d.Path, err)
	}
	return string(b), nil
}

// ReadText extracts the document's full text.
func (d Document) ReadText() (string, error) {
	return parser.Parse(d.Path)
}

// Collect walks root and returns every supported document in stable path
// order. Directory levels that do not parse (non-numeric year) and
// temporary files are skipped with a log line rather than failing the run.
func Collect(root string, logger *slog.Logger) ([]Document, error) {
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("catalog root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog root %s is not a directory", root)
	}

	var docs []Document
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		if parser.IsTemporary(path) || !parser.IsSupported(path) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		doc := documentFromRel(path, rel)
		if doc.Year == 0 {
			logger.Warn("file outside journal/year/months layout, publication context limited to journal",
				"path", rel)
		}

		if doc.Kind == "pdf" {
			if n, err := pageCount(path); err != nil {
				logger.Warn("could not read pdf page count", "path", rel, "error", err)
			} else {
				doc.PageCount = n
			}
		}

		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	logger.Info("collected documents", "root", root, "count", len(docs))
	return docs, nil
}

// documentFromRel derives publication context from the path. Paths of
// exactly journal/year/months/file depth carry the full context; anything
// shallower, deeper, or with a non-numeric year still yields a document,
// with only Journal filled from the first path segment.
func documentFromRel(path, rel string) Document {
	parts := strings.Split(filepath.ToSlash(rel), "/")
	doc := Document{
		Path:    path,
		Name:    parts[len(parts)-1],
		Journal: parts[0],
		Kind:    strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")),
	}

	if len(parts) == 4 {
		if year, err := strconv.Atoi(parts[1]); err == nil {
			doc.Year = year
			doc.MonthRange = parts[2]
		}
	}
	return doc
}

func pageCount(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return api.PageCount(f, nil)
}
