package metrics

import (
	"sync"
	"testing"
)

func TestRecorderAccumulates(t *testing.T) {
	r := NewRecorder()
	r.Record(Usage{PromptTokens: 120, CompletionTokens: 30})
	r.Record(Usage{PromptTokens: 80, CompletionTokens: 20})
	r.RecordFailure()

	snap := r.Snapshot()
	if snap.Requests != 3 {
		t.Fatalf("requests = %d, want 3", snap.Requests)
	}
	if snap.Failures != 1 {
		t.Fatalf("failures = %d, want 1", snap.Failures)
	}
	if snap.PromptTokens != 200 || snap.CompletionTokens != 50 {
		t.Fatalf("tokens = %d/%d, want 200/50", snap.PromptTokens, snap.CompletionTokens)
	}
}

func TestRecorderConcurrent(t *testing.T) {
	r := NewRecorder()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Record(Usage{PromptTokens: 1, CompletionTokens: 1})
		}()
	}
	wg.Wait()

	snap := r.Snapshot()
	if snap.Requests != 100 || snap.PromptTokens != 100 {
		t.Fatalf("snapshot = %+v", snap)
	}
}
