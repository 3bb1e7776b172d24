package quizgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/quizrr/quizrr/internal/quiz"
)

// DecodeKind classifies why a reply could not be decoded.
type DecodeKind int

const (
	// EmptyReply means the reply was empty or whitespace.
	EmptyReply DecodeKind = iota + 1

	// MalformedJSON means no JSON object could be parsed from the reply.
	MalformedJSON

	// MissingFields means the object lacks a non-empty questions array.
	MissingFields
)

func (k DecodeKind) String() string {
	switch k {
	case EmptyReply:
		return "empty reply"
	case MalformedJSON:
		return "malformed JSON"
	case MissingFields:
		return "missing fields"
	default:
		return "unknown"
	}
}

// DecodeError reports a reply that could not be turned into a quiz.
// Reply holds the raw model text for operator logs; it must not be shown
// to end users.
type DecodeError struct {
	Kind   DecodeKind
	Reply  string
	Detail string
}

func (e *DecodeError) Error() string {
	if e.Detail == "" {
		return "decode quiz: " + e.Kind.String()
	}
	return fmt.Sprintf("decode quiz: %s: %s", e.Kind, e.Detail)
}

// parseStage tries to recover a JSON object from a reply.
type parseStage func(reply string) (map[string]any, bool)

// parseStages run in order until one succeeds.
var parseStages = []parseStage{
	parseDirect,
	parseBraceSpan,
}

// Decode recovers a quiz from a raw model reply. It is deterministic:
// decoding the same reply twice yields equal quizzes.
func Decode(reply string) (*quiz.Quiz, error) {
	if strings.TrimSpace(reply) == "" {
		return nil, &DecodeError{Kind: EmptyReply, Reply: reply}
	}

	var obj map[string]any
	for _, stage := range parseStages {
		if parsed, ok := stage(reply); ok {
			obj = parsed
			break
		}
	}
	if obj == nil {
		return nil, &DecodeError{Kind: MalformedJSON, Reply: reply}
	}

	return buildQuiz(obj, reply)
}

// parseDirect strips a surrounding code fence and parses what remains.
func parseDirect(reply string) (map[string]any, bool) {
	return parseObject(stripFence(reply))
}

// parseBraceSpan parses the span from the first '{' to the last '}'.
func parseBraceSpan(reply string) (map[string]any, bool) {
	start := strings.IndexByte(reply, '{')
	end := strings.LastIndexByte(reply, '}')
	if start < 0 || end <= start {
		return nil, false
	}
	return parseObject(reply[start : end+1])
}

func parseObject(s string) (map[string]any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var obj map[string]any
	if err := dec.Decode(&obj); err != nil || obj == nil {
		return nil, false
	}
	// Anything after the object means this stage did not parse the reply.
	if _, err := dec.Token(); err != io.EOF {
		return nil, false
	}
	return obj, true
}

// stripFence removes a leading ``` or ```json line and a trailing ```.
func stripFence(reply string) string {
	s := strings.TrimSpace(reply)
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		if len(rest) >= 4 && strings.EqualFold(rest[:4], "json") {
			rest = rest[4:]
		}
		s = rest
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func buildQuiz(obj map[string]any, reply string) (*quiz.Quiz, error) {
	title, _ := obj["title"].(string)
	if title == "" {
		title = quiz.DefaultTitle
	}

	items, ok := obj["questions"].([]any)
	if !ok {
		return nil, &DecodeError{Kind: MissingFields, Reply: reply, Detail: "questions is not an array"}
	}
	if len(items) == 0 {
		return nil, &DecodeError{Kind: MissingFields, Reply: reply, Detail: "questions is empty"}
	}

	q := &quiz.Quiz{Title: title, Questions: make([]quiz.Question, 0, len(items))}
	for i, item := range items {
		fields, ok := item.(map[string]any)
		if !ok {
			return nil, &DecodeError{
				Kind:   MissingFields,
				Reply:  reply,
				Detail: fmt.Sprintf("question %d is not an object", i+1),
			}
		}
		q.Questions = append(q.Questions, buildQuestion(i+1, fields))
	}
	return q, nil
}

func buildQuestion(id int, fields map[string]any) quiz.Question {
	q := quiz.Question{
		ID:          id,
		Type:        quiz.QuestionType(stringField(fields["type"])),
		Question:    stringField(fields["question"]),
		Answer:      strings.TrimSpace(scalarText(fields["answer"])),
		Explanation: stringField(fields["explanation"]),
	}

	if opts, ok := fields["options"].([]any); ok {
		q.Options = make([]string, 0, len(opts))
		for _, o := range opts {
			q.Options = append(q.Options, scalarText(o))
		}
	}

	if q.Type == "" {
		q.Type = quiz.TypeShortAnswer
		if len(q.Options) > 0 {
			q.Type = quiz.TypeMultipleChoice
		}
	}
	return q
}

func stringField(v any) string {
	s, _ := v.(string)
	return s
}

// scalarText renders a decoded JSON scalar as text. Numbers keep their
// literal form, so an answer of 0.50 stays "0.50".
func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(t); err != nil {
			return fmt.Sprint(t)
		}
		return strings.TrimSpace(buf.String())
	}
}
