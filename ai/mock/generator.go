package mock

import (
	"context"
	"strings"
	"sync"
)

// MockGenerator is a test double for ai.Generator.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	GenerateFunc func(ctx context.Context, system, prompt string) (string, error)

	// DescribeFunc is called by Describe if set.
	DescribeFunc func(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)

	mu        sync.Mutex
	callCount int
	prompts   []string
}

// NewMockGenerator creates a mock generator with default echo behavior.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns "Summary: " followed by the first line of the prompt
// body, truncated to a few words.
func (m *MockGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	m.record(prompt)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, system, prompt)
	}
	return "Summary: " + firstWords(prompt, 24), nil
}

// Describe returns a fixed caption naming the image type.
func (m *MockGenerator) Describe(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	m.record(prompt)

	if m.DescribeFunc != nil {
		return m.DescribeFunc(ctx, prompt, image, mimeType)
	}
	return "An image of type " + mimeType + ".", nil
}

// CallCount returns the number of times any method was called.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Prompts returns every prompt received, in call order.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

// Reset clears recorded calls and injected behavior.
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.prompts = nil
	m.GenerateFunc = nil
	m.DescribeFunc = nil
}

func (m *MockGenerator) record(prompt string) {
	m.mu.Lock()
	m.callCount++
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
}

func firstWords(text string, n int) string {
	if i := strings.Index(text, ": "); i >= 0 {
		text = text[i+2:]
	}
	words := strings.Fields(text)
	if len(words) > n {
		words = words[:n]
	}
	return strings.Join(words, " ")
}
