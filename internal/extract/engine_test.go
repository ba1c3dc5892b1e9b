package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"text/template"
)

var testTemplate = template.Must(template.New("test").Parse(
	"Extract:\n{{.FieldsToExtract}}\nKeys: {{.JSONKeys}}\n<document>\n{{.Chunk}}\n</document>"))

// scripted is one canned completer response.
type scripted struct {
	raw json.RawMessage
	err error
}

// scriptedCompleter plays back canned responses in order, returning an empty
// object once the script runs out.
type scriptedCompleter struct {
	script  []scripted
	calls   int
	prompts []string
}

func (c *scriptedCompleter) Complete(_ context.Context, req CompletionRequest) (json.RawMessage, error) {
	c.calls++
	c.prompts = append(c.prompts, req.Prompt)
	if c.calls > len(c.script) {
		return json.RawMessage(`{}`), nil
	}
	s := c.script[c.calls-1]
	if s.err != nil {
		return nil, s.err
	}
	return s.raw, nil
}

func summaryTask(chunkStep, maxChunks, minChars int) Task {
	return Task{
		Schema:       summarySchema(),
		Template:     testTemplate,
		ChunkStep:    chunkStep,
		MaxChunks:    maxChunks,
		RetryBudget:  3,
		MinTextChars: minChars,
	}
}

func wordsOfText(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(words, " ")
}

func TestExtractShortTextSkipsCompleter(t *testing.T) {
	completer := &scriptedCompleter{}
	engine := NewEngine(completer, nil)

	text := strings.Repeat("x", 42)
	_, err := engine.Extract(context.Background(), text, summaryTask(300, 20, 100))

	var pErr *PreconditionError
	if !errors.As(err, &pErr) {
		t.Fatalf("Extract() error = %v, want *PreconditionError", err)
	}
	if completer.calls != 0 {
		t.Fatalf("completer called %d times for text below the threshold", completer.calls)
	}
}

func TestExtractSingleAttemptForShortDocument(t *testing.T) {
	// 50 words, chunk step 300: cutoff(1) == 50 covers the whole document,
	// so exactly one attempt is issued regardless of the chunk budget.
	completer := &scriptedCompleter{script: []scripted{
		{raw: json.RawMessage(`{"authors":["Jane Doe"],"title":"A","abstract":"B"}`)},
	}}
	engine := NewEngine(completer, nil)

	rec, err := engine.Extract(context.Background(), wordsOfText(50), summaryTask(300, 20, 10))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if completer.calls != 1 {
		t.Fatalf("completer called %d times, want 1", completer.calls)
	}
	if !rec.Complete() {
		t.Fatalf("record incomplete, missing %v", rec.Missing)
	}
}

func TestExtractSingleAttemptEvenWhenUnanswered(t *testing.T) {
	// The single saturated attempt yields nothing; re-sending the same full
	// text cannot add words, so the loop still stops after one call.
	completer := &scriptedCompleter{script: []scripted{
		{raw: json.RawMessage(`{}`)},
	}}
	engine := NewEngine(completer, nil)

	rec, err := engine.Extract(context.Background(), wordsOfText(50), summaryTask(300, 20, 10))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if completer.calls != 1 {
		t.Fatalf("completer called %d times, want 1", completer.calls)
	}
	if rec.Complete() {
		t.Fatalf("record should be incomplete")
	}
}

func TestExtractStopsOnceComplete(t *testing.T) {
	completer := &scriptedCompleter{script: []scripted{
		{raw: json.RawMessage(`{"title":"A"}`)},
		{raw: json.RawMessage(`{"authors":["X"],"abstract":"Y"}`)},
	}}
	engine := NewEngine(completer, nil)

	rec, err := engine.Extract(context.Background(), wordsOfText(10000), summaryTask(300, 20, 10))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if completer.calls != 2 {
		t.Fatalf("completer called %d times, want 2", completer.calls)
	}
	if !rec.Complete() {
		t.Fatalf("record incomplete, missing %v", rec.Missing)
	}
}

func TestExtractFirstWriteWinsAcrossChunks(t *testing.T) {
	// Mirrors the escalation over a 10000-word document: step 5 yields the
	// title, step 6 re-sends a different title alongside the authors, and
	// the abstract never arrives within the budget.
	script := []scripted{
		{raw: json.RawMessage(`{}`)},
		{raw: json.RawMessage(`{}`)},
		{raw: json.RawMessage(`{}`)},
		{raw: json.RawMessage(`{}`)},
		{raw: json.RawMessage(`{"title":"A"}`)},
		{raw: json.RawMessage(`{"title":"B","authors":["Jane Doe"]}`)},
	}
	completer := &scriptedCompleter{script: script}
	engine := NewEngine(completer, nil)

	rec, err := engine.Extract(context.Background(), wordsOfText(10000), summaryTask(300, 20, 10))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if completer.calls != 20 {
		t.Fatalf("completer called %d times, want the full budget of 20", completer.calls)
	}
	if rec.Values["title"] != "A" {
		t.Fatalf("title = %v, want the step-5 value %q", rec.Values["title"], "A")
	}
	if _, ok := rec.Values["authors"]; !ok {
		t.Fatalf("authors missing, should have merged at step 6")
	}
	if rec.Complete() {
		t.Fatalf("abstract never returned, record should be incomplete")
	}
	if len(rec.Missing) != 1 || rec.Missing[0] != "abstract" {
		t.Fatalf("Missing = %v, want [abstract]", rec.Missing)
	}
}

func TestExtractValidationFailureSkipsAttempt(t *testing.T) {
	completer := &scriptedCompleter{script: []scripted{
		{err: &ValidationError{Attempts: 3, Err: errors.New("not json")}},
		{raw: json.RawMessage(`{"authors":["X"],"title":"A","abstract":"B"}`)},
	}}
	engine := NewEngine(completer, nil)

	rec, err := engine.Extract(context.Background(), wordsOfText(10000), summaryTask(300, 20, 10))
	if err != nil {
		t.Fatalf("Extract() error = %v, validation failures should be absorbed", err)
	}
	if completer.calls != 2 {
		t.Fatalf("completer called %d times, want 2", completer.calls)
	}
	if !rec.Complete() {
		t.Fatalf("record incomplete, missing %v", rec.Missing)
	}
}

func TestExtractUnexpectedErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	completer := &scriptedCompleter{script: []scripted{{err: boom}}}
	engine := NewEngine(completer, nil)

	_, err := engine.Extract(context.Background(), wordsOfText(10000), summaryTask(300, 20, 10))
	if !errors.Is(err, boom) {
		t.Fatalf("Extract() error = %v, want the completer error", err)
	}
}

func TestExtractPromptNamesMissingFields(t *testing.T) {
	completer := &scriptedCompleter{script: []scripted{
		{raw: json.RawMessage(`{"title":"A"}`)},
		{raw: json.RawMessage(`{"authors":["X"],"abstract":"B"}`)},
	}}
	engine := NewEngine(completer, nil)

	if _, err := engine.Extract(context.Background(), wordsOfText(10000), summaryTask(300, 20, 10)); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	first := completer.prompts[0]
	for _, want := range []string{"- Authors", "- Title", "- Abstract", "authors, title, abstract"} {
		if !strings.Contains(first, want) {
			t.Fatalf("first prompt missing %q:\n%s", want, first)
		}
	}

	// Title was filled on the first attempt, so the second prompt only asks
	// for what is still missing.
	second := completer.prompts[1]
	if strings.Contains(second, "- Title") {
		t.Fatalf("second prompt still asks for the title:\n%s", second)
	}
	if !strings.Contains(second, "authors, abstract") {
		t.Fatalf("second prompt keys wrong:\n%s", second)
	}
}

func TestExtractChunksGrowCumulatively(t *testing.T) {
	completer := &scriptedCompleter{script: []scripted{
		{raw: json.RawMessage(`{}`)},
		{raw: json.RawMessage(`{"authors":["X"],"title":"A","abstract":"B"}`)},
	}}
	engine := NewEngine(completer, nil)

	if _, err := engine.Extract(context.Background(), wordsOfText(10000), summaryTask(300, 20, 10)); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	// The second chunk is a strict superset of the first: same prefix, more
	// words.
	if !strings.Contains(completer.prompts[0], "w299") || strings.Contains(completer.prompts[0], "w300") {
		t.Fatalf("first chunk should end at word 300")
	}
	if !strings.Contains(completer.prompts[1], "w299 w300") || !strings.Contains(completer.prompts[1], "w599") {
		t.Fatalf("second chunk should extend the first to word 600")
	}
}
