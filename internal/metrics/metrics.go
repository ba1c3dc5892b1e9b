// Package metrics tracks token usage across completion calls so a batch
// run can report what it spent.
package metrics

import "sync"

// Usage is the token accounting for one completion call.
type Usage struct {
	PromptTokens     int64
	CompletionTokens int64
}

// Recorder accumulates usage across concurrent workers.
type Recorder struct {
	mu               sync.Mutex
	requests         int64
	failures         int64
	promptTokens     int64
	completionTokens int64
}

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record adds one successful call's usage.
func (r *Recorder) Record(u Usage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests++
	r.promptTokens += u.PromptTokens
	r.completionTokens += u.CompletionTokens
}

// RecordFailure counts a call that returned no usable output.
func (r *Recorder) RecordFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests++
	r.failures++
}

// Snapshot is a point-in-time copy of the accumulated totals.
type Snapshot struct {
	Requests         int64 `json:"requests"`
	Failures         int64 `json:"failures"`
	PromptTokens     int64 `json:"prompt_tokens"`
	CompletionTokens int64 `json:"completion_tokens"`
}

// Snapshot returns the current totals.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		Requests:         r.requests,
		Failures:         r.failures,
		PromptTokens:     r.promptTokens,
		CompletionTokens: r.completionTokens,
	}
}
