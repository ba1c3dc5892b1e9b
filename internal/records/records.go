// Package records persists batch outcomes as JSON Lines logs. Each run
// appends to the existing logs, which is what makes interrupted batches
// resumable: a document whose path already appears in the success log is
// never reprocessed.
package records

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jackzampolin/paperdex/internal/catalog"
)

// Success is one fully extracted document: its metadata plus every
// extracted field.
type Success struct {
	Document    catalog.Document `json:"document"`
	Authors     []string         `json:"authors"`
	Title       string           `json:"title"`
	Abstract    string           `json:"abstract"`
	StartDate   string           `json:"start_date"`
	EndDate     string           `json:"end_date"`
	ProcessedAt time.Time        `json:"processed_at"`
}

// Failure is a document that could not be processed. Only the document
// metadata is persisted; the cause goes to the run's structured logs.
type Failure struct {
	Document catalog.Document `json:"document"`
	FailedAt time.Time        `json:"failed_at"`
}

// Writer appends JSON Lines to a log file. Writes are serialized so
// concurrent workers never interleave partial lines.
type Writer struct {
	mu   sync.Mutex
	file *os.File
}

// NewWriter opens path for appending, creating parent directories as
// needed.
func NewWriter(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory for %s: %w", path, err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}
	return &Writer{file: f}, nil
}

// Append marshals v and writes it as one line.
func (w *Writer) Append(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.file.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

// Close syncs and closes the underlying file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// ReadProcessedPaths returns the set of document paths already present in
// the success log. A missing log means a fresh run.
func ReadProcessedPaths(successLog string) (map[string]bool, error) {
	processed := make(map[string]bool)

	f, err := os.Open(successLog)
	if err != nil {
		if os.IsNotExist(err) {
			return processed, nil
		}
		return nil, fmt.Errorf("open success log %s: %w", successLog, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec Success
		if err := json.Unmarshal(raw, &rec); err != nil {
			return nil, fmt.Errorf("success log %s line %d: %w", successLog, line, err)
		}
		if rec.Document.Path != "" {
			processed[rec.Document.Path] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan success log %s: %w", successLog, err)
	}
	return processed, nil
}

// ReadSuccesses loads every record from a success log.
func ReadSuccesses(path string) ([]Success, error) {
	var out []Success
	err := readLines(path, func(raw []byte) error {
		var rec Success
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

// ReadFailures loads every record from a failure log.
func ReadFailures(path string) ([]Failure, error) {
	var out []Failure
	err := readLines(path, func(raw []byte) error {
		var rec Failure
		if err := json.Unmarshal(raw, &rec); err != nil {
			return err
		}
		out = append(out, rec)
		return nil
	})
	return out, err
}

func readLines(path string, fn func(raw []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open log %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		if err := fn(raw); err != nil {
			return fmt.Errorf("log %s line %d: %w", path, line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan log %s: %w", path, err)
	}
	return nil
}
