package dates

import (
	"bytes"
	"strings"
	"testing"

	"github.com/jackzampolin/paperdex/internal/extract"
	"github.com/jackzampolin/paperdex/internal/prompts"
)

func TestTemplateVariables(t *testing.T) {
	got := prompts.Vars(userPromptTmpl)
	want := []string{"Chunk", "FieldsToExtract", "JSONKeys"}
	if len(got) != len(want) {
		t.Fatalf("Vars() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Vars()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRenderedPromptCarriesInstructions(t *testing.T) {
	task := Task(0, 0, 0)

	var buf bytes.Buffer
	err := task.Template.Execute(&buf, extract.PromptData{
		Chunk:    `{"year":2017,"month_range":"JAN-FEB"}`,
		JSONKeys: "start_date, end_date",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"`YYYY-MM-DD` format",
		"first day of the starting month",
		"last day of the ending month",
		`{"year":2017,"month_range":"JAN-FEB"}`,
		"start_date, end_date",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("rendered prompt missing %q:\n%s", want, out)
		}
	}
}

func TestSchemaUsesDatePattern(t *testing.T) {
	doc := Schema().JSONSchema([]string{"start_date", "end_date"})
	props, ok := doc["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties: %v", doc)
	}
	for _, key := range []string{"start_date", "end_date"} {
		prop, ok := props[key].(map[string]any)
		if !ok {
			t.Fatalf("missing property %q", key)
		}
		if prop["pattern"] != `^\d{4}-\d{2}-\d{2}$` {
			t.Fatalf("property %q pattern = %v", key, prop["pattern"])
		}
	}
}
