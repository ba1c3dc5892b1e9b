// Package prompts holds the template helpers shared by the extraction task
// packages. Each task package embeds its .tmpl file and exposes a ready-made
// extract.Task; the helpers here let tests pin down the variables a template
// uses and let callers log which prompt version produced a completion.
package prompts

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
)

// variablePattern matches Go template references like {{.Chunk}} or
// {{ .JSONKeys }}, including nested fields.
var variablePattern = regexp.MustCompile(`\{\{\s*\.([a-zA-Z_][a-zA-Z0-9_.]*)\s*\}\}`)

// Vars returns the variable names referenced by a template body, sorted and
// deduplicated. "Extract {{.FieldsToExtract}} from {{.Chunk}}" yields
// ["Chunk", "FieldsToExtract"].
func Vars(text string) []string {
	matches := variablePattern.FindAllStringSubmatch(text, -1)
	seen := make(map[string]bool)
	var vars []string
	for _, m := range matches {
		if len(m) > 1 && !seen[m[1]] {
			seen[m[1]] = true
			vars = append(vars, m[1])
		}
	}
	sort.Strings(vars)
	return vars
}

// Hash returns the SHA256 hex digest of a prompt body. Completion logs carry
// it so a recorded call can be tied to the exact prompt text that produced it.
func Hash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
