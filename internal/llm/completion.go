package llm

import (
	"context"
	"strings"
)

// Completion describes a single-turn chat completion.
type Completion struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
	Schema      *Schema
}

// Complete sends c as one system plus one user message and returns the
// reply text with surrounding whitespace removed. An empty reply is not
// an error; callers decide what an empty reply means for them.
func Complete(ctx context.Context, p Provider, c Completion) (string, error) {
	resp, err := p.Generate(ctx, Request{
		System:      c.System,
		Messages:    []Message{{Role: RoleUser, Content: c.User}},
		Schema:      c.Schema,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text()), nil
}
