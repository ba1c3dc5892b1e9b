package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// parseStructuredJSON parses JSON from model output, with lightweight
// recovery for markdown code fences and surrounding commentary.
func parseStructuredJSON(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("empty structured output")
	}

	candidates := []string{content}
	if stripped := stripCodeFences(content); stripped != "" && stripped != content {
		candidates = append(candidates, stripped)
	}
	if extracted := extractJSONCandidate(content); extracted != "" && extracted != content {
		candidates = append(candidates, extracted)
	}

	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		var parsed any
		if err := json.Unmarshal([]byte(candidate), &parsed); err == nil {
			normalized, mErr := json.Marshal(parsed)
			if mErr != nil {
				return nil, fmt.Errorf("normalize structured output: %w", mErr)
			}
			return normalized, nil
		}
	}

	return nil, fmt.Errorf("no JSON found in structured output")
}

func stripCodeFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return ""
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return ""
	}
	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// extractJSONCandidate pulls the outermost JSON object or array out of text
// that surrounds it with prose.
func extractJSONCandidate(content string) string {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	closeChar := "}"
	if arrayStart := strings.Index(trimmed, "["); arrayStart >= 0 && (start < 0 || arrayStart < start) {
		start = arrayStart
		closeChar = "]"
	}
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(trimmed, closeChar)
	if end < start {
		return ""
	}
	return strings.TrimSpace(trimmed[start : end+1])
}

// validateStructuredJSON validates parsed JSON against the task's schema
// document. The endpoint may enforce the schema already; local validation
// catches backends that only honor it as a hint.
func validateStructuredJSON(schemaDoc map[string]any, parsed json.RawMessage) error {
	if len(schemaDoc) == 0 || len(parsed) == 0 {
		return nil
	}

	raw, err := json.Marshal(schemaDoc)
	if err != nil {
		return fmt.Errorf("serialize schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(parsed, &doc); err != nil {
		return fmt.Errorf("decode structured JSON for validation: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("structured output does not match schema: %w", err)
	}
	return nil
}

// repairPrompt asks the model to fix its previous output, quoting the
// validation issue.
func repairPrompt(original string, schemaDoc map[string]any, lastOutput string, issue error) string {
	schemaText := "{}"
	if b, err := json.Marshal(schemaDoc); err == nil {
		schemaText = string(b)
	}
	lastOutput = strings.TrimSpace(lastOutput)
	if len(lastOutput) > 12000 {
		lastOutput = lastOutput[:12000] + "\n...[truncated]"
	}

	return fmt.Sprintf(`%s

Your previous output could not be used. Return ONLY valid JSON (no markdown, no commentary) that conforms to this schema.

Schema:
%s

Previous output:
%s

Issue:
%v`, original, schemaText, lastOutput, issue)
}
