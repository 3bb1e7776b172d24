package llm

import (
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-lite", "gemini-2.5-flash-lite"},
		{"gemini-2.0-flash", "gemini-2.0-flash"},
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema_Quiz(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{"type": "string"},
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":   map[string]any{"type": "integer"},
						"type": map[string]any{"type": "string", "enum": []string{"multiple-choice", "short-answer"}},
						"options": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
					"required": []any{"id", "type"},
				},
			},
		},
		"required": []string{"title", "questions"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(schema.Properties))
	}
	questions := schema.Properties["questions"]
	if questions.Type != "ARRAY" {
		t.Fatalf("expected ARRAY for questions, got %s", questions.Type)
	}
	item := questions.Items
	if item.Properties["id"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for id, got %s", item.Properties["id"].Type)
	}
	if len(item.Properties["type"].Enum) != 2 {
		t.Fatalf("expected 2 enum values, got %d", len(item.Properties["type"].Enum))
	}
	if item.Properties["options"].Items.Type != "STRING" {
		t.Fatalf("expected STRING option items, got %s", item.Properties["options"].Items.Type)
	}
	if len(item.Required) != 2 {
		t.Fatalf("expected 2 required item fields, got %d", len(item.Required))
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected []string required list to be kept, got %v", schema.Required)
	}
}

func TestNewGeminiProvider_PlaceholderKey(t *testing.T) {
	_, err := NewGeminiProvider(t.Context(), GeminiConfig{APIKey: "changeme"})
	if _, ok := err.(*ErrConfig); !ok {
		t.Fatalf("expected *ErrConfig, got %T (%v)", err, err)
	}
}

func TestClassifyGeminiError(t *testing.T) {
	quota := fmt.Errorf("generate: %w", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"})
	var rl *ErrRateLimit
	if !errors.As(classifyGeminiError(quota), &rl) {
		t.Fatalf("expected *ErrRateLimit for 429, got %T", classifyGeminiError(quota))
	}

	down := genai.APIError{Code: 503, Status: "UNAVAILABLE"}
	var unavail *ErrProviderUnavailable
	if !errors.As(classifyGeminiError(down), &unavail) {
		t.Fatalf("expected *ErrProviderUnavailable for 503, got %T", classifyGeminiError(down))
	}
}

func TestGeminiConfig(t *testing.T) {
	cfg := geminiConfig(Request{System: "You are a helpful tutor.", MaxTokens: 300, Temperature: 0.5})
	if cfg.MaxOutputTokens != 300 || cfg.Temperature == nil || *cfg.Temperature != 0.5 {
		t.Fatalf("budget not mapped: %+v", cfg)
	}
	if cfg.ResponseSchema != nil || cfg.ResponseMIMEType != "" {
		t.Fatal("explanations must not request JSON")
	}
	if cfg.SystemInstruction == nil || cfg.SystemInstruction.Parts[0].Text != "You are a helpful tutor." {
		t.Fatalf("system instruction = %+v", cfg.SystemInstruction)
	}

	quiz := geminiConfig(Request{Schema: &Schema{Name: "quiz", Definition: map[string]any{"type": "object"}}})
	if quiz.ResponseMIMEType != "application/json" || quiz.ResponseSchema.Type != genai.TypeObject {
		t.Fatalf("quiz request not schema-constrained: %+v", quiz)
	}
}
