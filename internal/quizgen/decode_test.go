package quizgen

import (
	"errors"
	"reflect"
	"testing"

	"github.com/quizrr/quizrr/internal/quiz"
)

const embeddedQuiz = `{"title":"Cells","questions":[` +
	`{"id":7,"type":"multiple-choice","question":"Powerhouse of the cell?","options":["Nucleus","Mitochondria","Ribosome","Golgi"],"answer":"Mitochondria","explanation":"It makes ATP."},` +
	`{"id":7,"type":"short-answer","question":"Simplify 2/4","answer":"1/2"}]}`

func wantEmbeddedQuiz() *quiz.Quiz {
	return &quiz.Quiz{
		Title: "Cells",
		Questions: []quiz.Question{
			{
				ID:          1,
				Type:        quiz.TypeMultipleChoice,
				Question:    "Powerhouse of the cell?",
				Options:     []string{"Nucleus", "Mitochondria", "Ribosome", "Golgi"},
				Answer:      "Mitochondria",
				Explanation: "It makes ATP.",
			},
			{
				ID:       2,
				Type:     quiz.TypeShortAnswer,
				Question: "Simplify 2/4",
				Answer:   "1/2",
			},
		},
	}
}

func TestDecode_RecoversEmbeddedQuiz(t *testing.T) {
	replies := map[string]string{
		"bare":               embeddedQuiz,
		"json fence":         "```json\n" + embeddedQuiz + "\n```",
		"plain fence":        "```\n" + embeddedQuiz + "\n```",
		"uppercase tag":      "```JSON\n" + embeddedQuiz + "\n```",
		"leading prose":      "Here is your quiz:\n" + embeddedQuiz,
		"trailing prose":     embeddedQuiz + "\nHope this helps!",
		"prose around fence": "Sure!\n```json\n" + embeddedQuiz + "\n```\nEnjoy.",
		"surrounding space":  "\n\n   " + embeddedQuiz + "   \n",
	}
	for name, reply := range replies {
		t.Run(name, func(t *testing.T) {
			got, err := Decode(reply)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, wantEmbeddedQuiz()) {
				t.Fatalf("got %+v\nwant %+v", got, wantEmbeddedQuiz())
			}
		})
	}
}

func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		kind  DecodeKind
	}{
		{"empty", "", EmptyReply},
		{"whitespace", " \n\t ", EmptyReply},
		{"no braces", "I cannot help with that.", MalformedJSON},
		{"broken json", `{"title": "x", "questions": [}`, MalformedJSON},
		{"reversed braces", "} nothing {", MalformedJSON},
		{"missing questions", `{"title":"x"}`, MissingFields},
		{"questions not array", `{"title":"x","questions":"many"}`, MissingFields},
		{"empty questions", `{"title":"x","questions":[]}`, MissingFields},
		{"question not object", `{"title":"x","questions":["What?"]}`, MissingFields},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.reply)
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DecodeError, got %T (%v)", err, err)
			}
			if de.Kind != tt.kind {
				t.Fatalf("kind = %s, want %s", de.Kind, tt.kind)
			}
			if de.Reply != tt.reply {
				t.Errorf("raw reply not kept for logging")
			}
		})
	}
}

func TestDecode_ErrorMessageOmitsReply(t *testing.T) {
	_, err := Decode("secret model chatter without json")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != "decode quiz: malformed JSON" {
		t.Errorf("error = %q", got)
	}
}

func TestDecode_DefaultTitle(t *testing.T) {
	for _, reply := range []string{
		`{"questions":[{"type":"short-answer","question":"q","answer":"a"}]}`,
		`{"title":"","questions":[{"type":"short-answer","question":"q","answer":"a"}]}`,
		`{"title":42,"questions":[{"type":"short-answer","question":"q","answer":"a"}]}`,
	} {
		q, err := Decode(reply)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if q.Title != quiz.DefaultTitle {
			t.Errorf("title = %q, want %q", q.Title, quiz.DefaultTitle)
		}
	}
}

func TestDecode_AnswerNormalization(t *testing.T) {
	reply := `{"title":"t","questions":[
		{"type":"short-answer","question":"a","answer":"  Paris \n"},
		{"type":"short-answer","question":"b","answer":0.50},
		{"type":"short-answer","question":"c","answer":true},
		{"type":"short-answer","question":"d"}
	]}`
	q, err := Decode(reply)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"Paris", "0.50", "true", ""}
	for i, w := range want {
		if q.Questions[i].Answer != w {
			t.Errorf("question %d answer = %q, want %q", i+1, q.Questions[i].Answer, w)
		}
	}
}

func TestDecode_InfersMissingType(t *testing.T) {
	q, err := Decode(`{"title":"t","questions":[{"question":"a","options":["x","y"],"answer":"x"},{"question":"b","answer":"z"}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Questions[0].Type != quiz.TypeMultipleChoice {
		t.Errorf("type = %q", q.Questions[0].Type)
	}
	if q.Questions[1].Type != quiz.TypeShortAnswer {
		t.Errorf("type = %q", q.Questions[1].Type)
	}
}

func TestDecode_IdsContiguous(t *testing.T) {
	q, err := Decode(`{"title":"t","questions":[{"id":9,"question":"a"},{"id":9,"question":"b"},{"question":"c"}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, question := range q.Questions {
		if question.ID != i+1 {
			t.Errorf("question %d has id %d", i, question.ID)
		}
	}
}

func TestDecode_Deterministic(t *testing.T) {
	reply := "Intro text " + embeddedQuiz + " outro"
	a, errA := Decode(reply)
	b, errB := Decode(reply)
	if errA != nil || errB != nil {
		t.Fatalf("unexpected errors: %v, %v", errA, errB)
	}
	if !reflect.DeepEqual(a, b) {
		t.Fatal("decoding the same reply twice differed")
	}
}
