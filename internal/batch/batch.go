// Package batch orchestrates extraction across a whole document corpus.
// Documents are processed by a bounded worker pool, outcomes land in
// append-only success and failure logs, and documents already present in
// the success log are skipped so interrupted runs can resume.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackzampolin/paperdex/internal/catalog"
	"github.com/jackzampolin/paperdex/internal/extract"
	"github.com/jackzampolin/paperdex/internal/prompts/dates"
	"github.com/jackzampolin/paperdex/internal/prompts/paper"
	"github.com/jackzampolin/paperdex/internal/records"
)

// Config wires a Runner.
type Config struct {
	Completer   extract.Completer
	SummaryTask extract.Task
	DatesTask   extract.Task
	Workers     int
	Logger      *slog.Logger
}

// Stats summarizes one batch run.
type Stats struct {
	Scanned   int
	Skipped   int
	Succeeded int
	Failed    int
}

// Runner processes documents through both extraction tasks and records
// the outcomes.
type Runner struct {
	engine      *extract.Engine
	summaryTask extract.Task
	datesTask   extract.Task
	workers     int
	logger      *slog.Logger
}

// NewRunner builds a Runner. Workers defaults to 4.
func NewRunner(cfg Config) (*Runner, error) {
	if cfg.Completer == nil {
		return nil, fmt.Errorf("batch: completer is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 4
	}
	return &Runner{
		engine:      extract.NewEngine(cfg.Completer, logger),
		summaryTask: cfg.SummaryTask,
		datesTask:   cfg.DatesTask,
		workers:     workers,
		logger:      logger,
	}, nil
}

// Run processes every document not already present in the success log.
// Document failures are recorded and absorbed; Run itself only fails on
// context cancellation or log I/O errors.
func (r *Runner) Run(ctx context.Context, docs []catalog.Document, successLog, failureLog string) (Stats, error) {
	processed, err := records.ReadProcessedPaths(successLog)
	if err != nil {
		return Stats{}, err
	}

	successes, err := records.NewWriter(successLog)
	if err != nil {
		return Stats{}, err
	}
	defer successes.Close()

	failures, err := records.NewWriter(failureLog)
	if err != nil {
		return Stats{}, err
	}
	defer failures.Close()

	stats := Stats{Scanned: len(docs)}
	var pending []catalog.Document
	for _, doc := range docs {
		if processed[doc.Path] {
			stats.Skipped++
			r.logger.Debug("skipping processed document", "path", doc.Path)
			continue
		}
		pending = append(pending, doc)
	}
	r.logger.Info("starting batch",
		"documents", stats.Scanned,
		"skipped", stats.Skipped,
		"workers", r.workers,
	)

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		jobs = make(chan catalog.Document)
	)

	// First log write error stops the batch; losing records silently is
	// worse than an aborted run.
	errCh := make(chan error, 1)
	reportErr := func(err error) {
		select {
		case errCh <- err:
		default:
		}
	}

	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				rec, docErr := r.processDocument(ctx, doc)
				if docErr != nil {
					if ctx.Err() != nil {
						return
					}
					if IsDocumentError(docErr) {
						r.logger.Warn("document rejected", "path", doc.Path, "error", docErr)
					} else {
						r.logger.Error("document failed", "path", doc.Path, "error", docErr)
					}
					if err := failures.Append(records.Failure{Document: doc, FailedAt: time.Now().UTC()}); err != nil {
						reportErr(err)
						return
					}
					mu.Lock()
					stats.Failed++
					mu.Unlock()
					continue
				}
				if err := successes.Append(*rec); err != nil {
					reportErr(err)
					return
				}
				mu.Lock()
				stats.Succeeded++
				mu.Unlock()
				r.logger.Info("document processed", "path", doc.Path, "title", rec.Title)
			}
		}()
	}

dispatch:
	for _, doc := range pending {
		select {
		case jobs <- doc:
		case <-ctx.Done():
			break dispatch
		case err := <-errCh:
			close(jobs)
			wg.Wait()
			return stats, err
		}
	}
	close(jobs)
	wg.Wait()

	select {
	case err := <-errCh:
		return stats, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return stats, err
	}

	r.logger.Info("batch complete",
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
	)
	return stats, nil
}

// processDocument runs both extraction tasks for one document. Any error,
// including a record left incomplete after the chunk budget, classifies
// the document as a failure.
func (r *Runner) processDocument(ctx context.Context, doc catalog.Document) (*records.Success, error) {
	text, err := doc.ReadText()
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	summaryRec, err := r.engine.Extract(ctx, text, r.summaryTask)
	if err != nil {
		return nil, fmt.Errorf("summary extraction: %w", err)
	}
	if !summaryRec.Complete() {
		return nil, fmt.Errorf("summary extraction incomplete: missing %v", summaryRec.Missing)
	}
	summary, err := paper.ParseResult(summaryRec)
	if err != nil {
		return nil, fmt.Errorf("decode summary: %w", err)
	}

	hints, err := doc.DateHints()
	if err != nil {
		return nil, err
	}
	datesRec, err := r.engine.Extract(ctx, hints, r.datesTask)
	if err != nil {
		return nil, fmt.Errorf("date extraction: %w", err)
	}
	if !datesRec.Complete() {
		return nil, fmt.Errorf("date extraction incomplete: missing %v", datesRec.Missing)
	}
	span, err := dates.ParseResult(datesRec)
	if err != nil {
		return nil, fmt.Errorf("decode dates: %w", err)
	}

	return &records.Success{
		Document:    doc,
		Authors:     summary.Authors,
		Title:       summary.Title,
		Abstract:    summary.Abstract,
		StartDate:   span.StartDate,
		EndDate:     span.EndDate,
		ProcessedAt: time.Now().UTC(),
	}, nil
}

// IsDocumentError reports whether err is an expected per-document failure
// rather than an infrastructure fault.
func IsDocumentError(err error) bool {
	var precondition *extract.PreconditionError
	var validation *extract.ValidationError
	return errors.As(err, &precondition) || errors.As(err, &validation)
}
