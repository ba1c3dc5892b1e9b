package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jackzampolin/paperdex/internal/extract"
)

// MockCompleter returns canned responses keyed by schema name, in order.
// When a schema's queue is exhausted it keeps returning the final entry,
// which mirrors a model that has said all it can say.
type MockCompleter struct {
	mu        sync.Mutex
	responses map[string][]json.RawMessage
	served    map[string]int
	Err       error

	// Calls records every request for assertions.
	Calls []extract.CompletionRequest
}

// NewMockCompleter builds an empty mock. Queue responses with Respond.
func NewMockCompleter() *MockCompleter {
	return &MockCompleter{
		responses: make(map[string][]json.RawMessage),
		served:    make(map[string]int),
	}
}

// Respond queues a JSON response for requests using the given schema name.
func (m *MockCompleter) Respond(schemaName string, raw string) *MockCompleter {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[schemaName] = append(m.responses[schemaName], json.RawMessage(raw))
	return m
}

func (m *MockCompleter) Complete(_ context.Context, req extract.CompletionRequest) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if m.Err != nil {
		return nil, m.Err
	}

	queue := m.responses[req.SchemaName]
	if len(queue) == 0 {
		return nil, fmt.Errorf("mock: no responses queued for schema %q", req.SchemaName)
	}
	idx := m.served[req.SchemaName]
	if idx >= len(queue) {
		idx = len(queue) - 1
	} else {
		m.served[req.SchemaName]++
	}
	return queue[idx], nil
}
