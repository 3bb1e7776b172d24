package quizgen

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Kind is where quiz content came from.
type Kind string

const (
	KindText Kind = "text"
	KindFile Kind = "file"
)

// Mode selects the style of questions to ask.
type Mode string

const (
	// ModeGeneral asks recall and definition questions.
	ModeGeneral Mode = "general"

	// ModeDeep asks causal and analytical questions with harder distractors.
	ModeDeep Mode = "deep"
)

// ParseKind maps a user-supplied string to a Kind. Unknown values are text.
func ParseKind(s string) Kind {
	if Kind(strings.ToLower(strings.TrimSpace(s))) == KindFile {
		return KindFile
	}
	return KindText
}

// ParseMode maps a user-supplied string to a Mode. Unknown values are general.
func ParseMode(s string) Mode {
	if Mode(strings.ToLower(strings.TrimSpace(s))) == ModeDeep {
		return ModeDeep
	}
	return ModeGeneral
}

// MaxContentChars bounds the content embedded in a generation prompt, in
// runes. It is applied to the final content string, after normalization
// and after the file framing line is prepended, so the framing line
// counts against the budget.
const MaxContentChars = 3000

// UnsupportedFilePrefix opens the placeholder text produced when a file
// could not be read. Content starting with it carries only a file name.
const UnsupportedFilePrefix = "File Name:"

// GenerationSystemPrompt is the persona for quiz generation.
const GenerationSystemPrompt = "You are a strict JSON generator. Output only valid JSON."

const fileFraming = "Generate a quiz based on the following file content:\n"

// Prompt is a built generation request.
type Prompt struct {
	System string
	User   string
}

var modeInstructions = map[Mode]string{
	ModeGeneral: `Focus on general understanding: key facts, definitions, terminology and
main ideas stated in the content. Distractors should be plausible but clearly
wrong to someone who read the material.`,
	ModeDeep: `Focus on deep understanding: causes and effects, how ideas relate, why
things happen, and applying concepts to new situations. Prefer questions that
require reasoning over recall. Distractors should reflect common
misconceptions and be hard to rule out without understanding the material.`,
}

var generationTemplate = template.Must(template.New("quiz").Parse(`You are a helpful AI teacher. Create a quiz with 9-12 questions based on the following content.

{{.Instructions}}

Return ONLY a valid JSON object with this structure:
{
  "title": "Quiz Title",
  "questions": [
    {
      "id": 1,
      "type": "multiple-choice" | "short-answer",
      "question": "Question text",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "answer": "Correct Answer",
      "explanation": "Why this is the correct answer"
    }
  ]
}

Rules:
- Output raw JSON only. No markdown, no code fences, no text before or after the object.
- "options" is required for multiple-choice questions and omitted for short-answer questions.
- For multiple-choice, "answer" must be exactly one of the "options" strings.
- Write exponents with a caret, for example x^2.
- Reduce every fraction to lowest terms, for example 1/2 rather than 2/4.
- Do not wrap expressions in redundant parentheses.
- A short-answer question must have exactly one correct answer, fully simplified.

Content:
"""
{{.Content}}
"""
`))

// BuildPrompt assembles the generation prompt for content of the given
// kind in the given mode.
func BuildPrompt(kind Kind, mode Mode, content string) Prompt {
	body := promptContent(kind, content)

	instructions, ok := modeInstructions[mode]
	if !ok {
		instructions = modeInstructions[ModeGeneral]
	}

	var buf bytes.Buffer
	err := generationTemplate.Execute(&buf, struct {
		Instructions string
		Content      string
	}{instructions, truncateRunes(body, MaxContentChars)})
	if err != nil {
		// The template only interpolates strings.
		panic(fmt.Sprintf("quizgen: execute prompt template: %v", err))
	}

	return Prompt{System: GenerationSystemPrompt, User: buf.String()}
}

// promptContent produces the content string before truncation.
func promptContent(kind Kind, content string) string {
	if kind != KindFile {
		return Normalize(content)
	}
	if strings.HasPrefix(content, UnsupportedFilePrefix) {
		return "Generate a general quiz based on the topic implied by this filename: " + content
	}
	return Normalize(fileFraming + content)
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
