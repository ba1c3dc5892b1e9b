// Package dates defines the publication date-range task. Its input is not
// the document text but the small JSON hint block the catalog renders from
// the archive directory convention (year and month range), so the chunk step
// and precondition threshold are tiny.
package dates

import (
	_ "embed"
	"fmt"
	"text/template"

	"github.com/jackzampolin/paperdex/internal/extract"
)

//go:embed user.tmpl
var userPromptTmpl string

var userTemplate = template.Must(template.New("dates").Parse(userPromptTmpl))

// Default budgets for the date-range task.
const (
	DefaultChunkStep = 30
	DefaultMaxChunks = 20
	DefaultRetries   = 10

	MinTextChars = 2
)

// Schema lists the date-range fields, both required.
func Schema() extract.Schema {
	return extract.Schema{
		Name: "research_paper_dates",
		Fields: []extract.FieldSpec{
			{Key: "start_date", Label: "Start date (first day of the starting month)", Required: true, Type: extract.FieldDate},
			{Key: "end_date", Label: "End date (last day of the ending month)", Required: true, Type: extract.FieldDate},
		},
	}
}

// Task builds the date-range extraction task. Non-positive budgets fall back
// to the defaults.
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

// Dates is the typed result of the task.
type Dates struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// ParseResult decodes a finished record into Dates.
func ParseResult(rec *extract.Record) (*Dates, error) {
	var d Dates
	if err := rec.Decode(&d); err != nil {
		return nil, fmt.Errorf("parse dates result: %w", err)
	}
	return &d, nil
}
