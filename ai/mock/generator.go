package mock

import (
	"context"
	"strings"
	"sync"
)

// MockGenerator is a test double for ai.Generator.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, Generate echoes the first line of the prompt.
	GenerateFunc func(ctx context.Context, system, prompt string) (string, error)

	mu         sync.Mutex
	callCount  int
	lastSystem string
	lastPrompt string
}

// NewMockGenerator creates a mock generator with default behavior.
// Note: Returns concrete type to allow test assertions via GetMockGenerator().
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate records its input and returns a canned answer.
func (m *MockGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.lastSystem = system
	m.lastPrompt = prompt
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, system, prompt)
	}

	first, _, _ := strings.Cut(prompt, "\n")
	return "mock answer to " + first, nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastPrompt returns the system instruction and prompt of the latest call.
func (m *MockGenerator) LastPrompt() (system, prompt string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSystem, m.lastPrompt
}

// Reset clears the call count, recorded prompts and custom function.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.lastSystem = ""
	m.lastPrompt = ""
	m.GenerateFunc = nil
}
