package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"
)

// PreconditionError reports input that is not worth attempting: text shorter
// than the task's minimum. The completer is never invoked for such input.
type PreconditionError struct {
	Chars int
	Min   int
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("text too short for extraction: %d chars (minimum %d)", e.Chars, e.Min)
}

// ValidationError reports a completion that could not be parsed or validated
// against the requested schema within the retry budget. The engine skips the
// attempt and moves on to the next chunk.
type ValidationError struct {
	Attempts int
	Err      error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("structured output invalid after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// CompletionRequest asks a completer for JSON conforming to a schema.
type CompletionRequest struct {
	Prompt      string
	SchemaName  string
	Schema      map[string]any
	RetryBudget int
}

// Completer is the structured-completion capability the engine drives.
// Implementations must retry malformed responses internally, up to the
// request's retry budget, before surfacing a *ValidationError. Fields the
// model omits are absent from the result, not an error.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (json.RawMessage, error)
}

// Task bundles everything one extraction needs: the schema, the prompt
// template, and the chunking and retry budgets.
type Task struct {
	Schema   Schema
	Template *template.Template // rendered with PromptData

	ChunkStep    int // words added per attempt
	MaxChunks    int // attempt budget
	RetryBudget  int // completer-internal retries per attempt
	MinTextChars int // precondition threshold on the input text
}

// PromptData is the data rendered into a task's prompt template.
type PromptData struct {
	Chunk           string // cumulative word prefix for this attempt
	FieldsToExtract string // bulleted human-readable list of missing fields
	JSONKeys        string // comma-joined JSON keys of missing fields
}

// Engine runs the progressive-chunk loop: plan a cumulative word prefix, ask
// the completer for the still-missing fields, merge first-write-wins, and
// stop as soon as the tracker is complete or the budget runs out. An engine
// holds no state across calls; each Extract is independent.
type Engine struct {
	completer Completer
	logger    *slog.Logger
}

// NewEngine creates an engine driving the given completer.
func NewEngine(completer Completer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{completer: completer, logger: logger}
}

// Extract runs the task over text. The returned record may be partial:
// exhausting the chunk budget with required fields unset is a degraded
// success, not an error, and the caller classifies it. Errors are limited to
// precondition failures, context cancellation, prompt rendering, and
// completer errors other than validation failures.
//
// Each attempt re-sends everything seen so far plus chunkStep more words.
// The cumulative prefix trades token cost for recall: the model always has
// growing context rather than disjoint fragments. When chunkStep*maxChunks
// is smaller than the document, the tail is never seen; that is a cost cap,
// not a defect.
func (e *Engine) Extract(ctx context.Context, text string, task Task) (*Record, error) {
	if n := len(strings.TrimSpace(text)); n < task.MinTextChars {
		return nil, &PreconditionError{Chars: n, Min: task.MinTextChars}
	}

	words := strings.Fields(text)
	totalWords := len(words)
	tracker := NewTracker(task.Schema)
	start := time.Now()

	for step := 1; step <= task.MaxChunks; step++ {
		if tracker.Complete() {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cutoff := Cutoff(step, totalWords, task.ChunkStep)
		chunk := strings.Join(words[:cutoff], " ")
		missing := tracker.Missing()

		prompt, err := renderPrompt(task, chunk, missing)
		if err != nil {
			return nil, fmt.Errorf("render prompt: %w", err)
		}

		attemptStart := time.Now()
		raw, err := e.completer.Complete(ctx, CompletionRequest{
			Prompt:      prompt,
			SchemaName:  task.Schema.Name,
			Schema:      task.Schema.JSONSchema(missing),
			RetryBudget: task.RetryBudget,
		})
		if err != nil {
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				return nil, err
			}
			e.logger.Warn("chunk attempt failed validation",
				"schema", task.Schema.Name,
				"step", step,
				"chunk_words", cutoff,
				"error", err)
			if cutoff == totalWords {
				break
			}
			continue
		}

		var attempt map[string]any
		if err := json.Unmarshal(raw, &attempt); err != nil {
			return nil, fmt.Errorf("decode attempt response: %w", err)
		}
		tracker.Merge(attempt)

		e.logger.Info("chunk attempt processed",
			"schema", task.Schema.Name,
			"step", step,
			"chunk_words", cutoff,
			"missing", tracker.Missing(),
			"elapsed", time.Since(attemptStart).Round(time.Millisecond))

		// The whole document has been sent; later steps cannot add words.
		if cutoff == totalWords {
			break
		}
	}

	rec, err := tracker.Finalize()
	if err != nil {
		if !errors.Is(err, ErrIncomplete) {
			return nil, err
		}
		e.logger.Error("extraction exhausted chunk budget",
			"schema", task.Schema.Name,
			"missing", rec.Missing,
			"elapsed", time.Since(start).Round(time.Millisecond))
		return rec, nil
	}

	e.logger.Info("extraction complete",
		"schema", task.Schema.Name,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return rec, nil
}

func renderPrompt(task Task, chunk string, missing []string) (string, error) {
	labels := make([]string, 0, len(missing))
	for _, key := range missing {
		label := key
		if f, ok := task.Schema.Field(key); ok && f.Label != "" {
			label = f.Label
		}
		labels = append(labels, "- "+label)
	}

	var buf bytes.Buffer
	err := task.Template.Execute(&buf, PromptData{
		Chunk:           chunk,
		FieldsToExtract: strings.Join(labels, "\n"),
		JSONKeys:        strings.Join(missing, ", "),
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
