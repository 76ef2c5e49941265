package ssh

import (
	"context"
	"sync"
)

// MockRunner is a test double that records invocations and returns configured results.
type MockRunner struct {
	RunFunc     func(ctx context.Context, inv Invocation) error
	Invocations []Invocation

	mu sync.Mutex
}

// Run records the invocation and delegates to RunFunc.
func (m *MockRunner) Run(ctx context.Context, inv Invocation) error {
	m.mu.Lock()
	m.Invocations = append(m.Invocations, inv)
	m.mu.Unlock()
	if m.RunFunc != nil {
		return m.RunFunc(ctx, inv)
	}
	return nil
}
