package providers

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseStructuredJSONPlain(t *testing.T) {
	raw, err := parseStructuredJSON(`{"title": "Deep Learning", "year": 2015}`)
	if err != nil {
		t.Fatalf("parseStructuredJSON: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if got["title"] != "Deep Learning" {
		t.Fatalf("title = %v, want Deep Learning", got["title"])
	}
}

func TestParseStructuredJSONCodeFence(t *testing.T) {
	content := "```json\n{\"title\": \"fenced\"}\n```"
	raw, err := parseStructuredJSON(content)
	if err != nil {
		t.Fatalf("parseStructuredJSON: %v", err)
	}
	if !strings.Contains(string(raw), "fenced") {
		t.Fatalf("result = %s, want fenced title", raw)
	}
}

func TestParseStructuredJSONSurroundingProse(t *testing.T) {
	content := `Here is the extraction you asked for:

{"start_date": "2021-03-01", "end_date": "2021-03-31"}

Let me know if you need anything else.`
	raw, err := parseStructuredJSON(content)
	if err != nil {
		t.Fatalf("parseStructuredJSON: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal result: %v", err)
	}
	if got["start_date"] != "2021-03-01" {
		t.Fatalf("start_date = %q", got["start_date"])
	}
}

func TestParseStructuredJSONRejectsProseOnly(t *testing.T) {
	if _, err := parseStructuredJSON("I could not find any dates in this document."); err == nil {
		t.Fatal("expected error for output with no JSON")
	}
}

func TestParseStructuredJSONRejectsEmpty(t *testing.T) {
	if _, err := parseStructuredJSON("   \n  "); err == nil {
		t.Fatal("expected error for empty output")
	}
}

func TestValidateStructuredJSON(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"start_date": map[string]any{
				"type":    "string",
				"pattern": `^\d{4}-\d{2}-\d{2}$`,
			},
		},
		"additionalProperties": true,
	}

	good := json.RawMessage(`{"start_date": "2021-03-01"}`)
	if err := validateStructuredJSON(schema, good); err != nil {
		t.Fatalf("valid document rejected: %v", err)
	}

	bad := json.RawMessage(`{"start_date": "March 2021"}`)
	if err := validateStructuredJSON(schema, bad); err == nil {
		t.Fatal("expected validation error for malformed date")
	}
}

func TestValidateStructuredJSONEmptySchema(t *testing.T) {
	if err := validateStructuredJSON(nil, json.RawMessage(`{"anything": true}`)); err != nil {
		t.Fatalf("nil schema should validate anything: %v", err)
	}
}

func TestRepairPromptMentionsIssueAndOutput(t *testing.T) {
	schema := map[string]any{"type": "object"}
	got := repairPrompt("Extract the title.", schema, `{"title": 7}`, jsonError("title must be a string"))

	for _, want := range []string{"Extract the title.", `{"title": 7}`, "title must be a string", `"type":"object"`} {
		if !strings.Contains(got, want) {
			t.Fatalf("repair prompt missing %q:\n%s", want, got)
		}
	}
}

type jsonError string

func (e jsonError) Error() string { return string(e) }
