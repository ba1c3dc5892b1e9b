package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrIncomplete reports that required fields remained unset when the chunk
// budget ran out. Callers decide whether the partial record still counts as
// a success.
var ErrIncomplete = errors.New("extraction incomplete")

// Tracker holds the extraction state for one schema: field key → value,
// unset until filled. Once a field is set it is never overwritten, so the
// count of set fields only grows.
type Tracker struct {
	schema Schema
	values map[string]any
}

// NewTracker creates an empty tracker for the schema.
func NewTracker(schema Schema) *Tracker {
	return &Tracker{
		schema: schema,
		values: make(map[string]any, len(schema.Fields)),
	}
}

// Missing returns the required fields that are still unset, in schema order.
// Optional fields never appear here and never block termination.
func (t *Tracker) Missing() []string {
	var missing []string
	for _, key := range t.schema.RequiredKeys() {
		if _, ok := t.values[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// Complete reports whether every required field has a value.
func (t *Tracker) Complete() bool {
	return len(t.Missing()) == 0
}

// Filled returns the number of fields currently set.
func (t *Tracker) Filled() int {
	return len(t.values)
}

// Merge folds one attempt's values into the state. Only fields missing at
// call time are eligible, and empty values never fill a slot, so the first
// successful extraction of a field wins.
func (t *Tracker) Merge(attempt map[string]any) {
	for _, key := range t.Missing() {
		v, ok := attempt[key]
		if !ok || isEmpty(v) {
			continue
		}
		t.values[key] = v
	}
}

// Finalize builds the final record from the current state. The record is
// returned even when required fields remain unset; in that case the error
// wraps ErrIncomplete and names the missing fields.
func (t *Tracker) Finalize() (*Record, error) {
	rec := &Record{
		Values:  make(map[string]any, len(t.values)),
		Missing: t.Missing(),
	}
	for k, v := range t.values {
		rec.Values[k] = v
	}
	if len(rec.Missing) > 0 {
		return rec, fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(rec.Missing, ", "))
	}
	return rec, nil
}

// Record is the outcome of one extraction: the filled values plus any
// required fields that never arrived.
type Record struct {
	Values  map[string]any
	Missing []string
}

// Complete reports whether all required fields were filled.
func (r *Record) Complete() bool {
	return len(r.Missing) == 0
}

// Decode unmarshals the record values into a typed struct via a JSON
// round-trip.
func (r *Record) Decode(v any) error {
	b, err := json.Marshal(r.Values)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case []string:
		return len(val) == 0
	default:
		return false
	}
}
