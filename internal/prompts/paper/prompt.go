// Package paper defines the research-paper summary task: authors, title,
// and abstract extracted from the document text.
package paper

import (
	_ "embed"
	"fmt"
	"text/template"

	"github.com/jackzampolin/paperdex/internal/extract"
)

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("paper").Parse(userPromptTmpl))

// Default budgets for the summary task.
const (
	DefaultChunkStep = 300
	DefaultMaxChunks = 20
	DefaultRetries   = 10

	// MinTextChars is the precondition threshold: shorter document text is
	// rejected before any completion is attempted.
	MinTextChars = 100
)

// Schema lists the summary fields. All three are required; authors is a
// list because papers routinely carry more than one.
func Schema() extract.Schema {
	return extract.Schema{
		Name: "research_paper_summary",
		Fields: []extract.FieldSpec{
			{Key: "authors", Label: "Authors", Required: true, Type: extract.FieldStringList},
			{Key: "title", Label: "Title", Required: true, Type: extract.FieldString},
			{Key: "abstract", Label: "Abstract", Required: true, Type: extract.FieldString},
		},
	}
}

// Task builds the summary extraction task. Non-positive budgets fall back to
// the defaults.
func Task(chunkStep, maxChunks, retries int) extract.Task {
	if chunkStep <= 0 {
		chunkStep = DefaultChunkStep
	}
	if maxChunks <= 0 {
		maxChunks = DefaultMaxChunks
	}
	if retries <= 0 {
		retries = DefaultRetries
	}
	return extract.Task{
		Schema:       Schema(),
		Template:     userTemplate,
		ChunkStep:    chunkStep,
		MaxChunks:    maxChunks,
		RetryBudget:  retries,
		MinTextChars: MinTextChars,
	}
}

// Summary is the typed result of the task.
type Summary struct {
	Authors  []string `json:"authors"`
	Title    string   `json:"title"`
	Abstract string   `json:"abstract"`
}

// ParseResult decodes a finished record into a Summary.
func ParseResult(rec *extract.Record) (*Summary, error) {
	var s Summary
	if err := rec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse summary result: %w", err)
	}
	return &s, nil
}
