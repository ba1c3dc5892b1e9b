package extract

// FieldType is the semantic type of an extracted field. It drives the JSON
// Schema property generated for the field and the emptiness check used when
// merging attempt results.
type FieldType int

const (
	FieldString FieldType = iota
	FieldStringList
	FieldDate // YYYY-MM-DD
)

// FieldSpec describes a single output field. Fields are declared as an
// explicit static list; the engine never inspects Go types at runtime.
type FieldSpec struct {
	Key      string // JSON key, e.g. "authors"
	Label    string // human-readable name used in prompts, e.g. "Authors"
	Required bool
	Type     FieldType
}

// Schema is an ordered set of fields for one extraction task.
type Schema struct {
	Name   string
	Fields []FieldSpec
}

// Field returns the spec for a key.
func (s Schema) Field(key string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// RequiredKeys returns the keys of all required fields, in schema order.
func (s Schema) RequiredKeys() []string {
	keys := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Required {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

// JSONSchema builds a JSON-Schema document requesting only the given keys.
// Nothing is marked required: the model may omit fields it cannot find in
// the current chunk, and omission is not a validation failure.
func (s Schema) JSONSchema(keys []string) map[string]any {
	props := make(map[string]any, len(keys))
	for _, key := range keys {
		f, ok := s.Field(key)
		if !ok {
			continue
		}
		props[f.Key] = f.property()
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": true,
	}
}

func (f FieldSpec) property() map[string]any {
	switch f.Type {
	case FieldStringList:
		return map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		}
	case FieldDate:
		return map[string]any{
			"type":    "string",
			"pattern": `^\d{4}-\d{2}-\d{2}$`,
		}
	default:
		return map[string]any{"type": "string"}
	}
}
