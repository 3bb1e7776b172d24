package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizrr/quizrr/internal/auth"
	"github.com/quizrr/quizrr/internal/llm"
	"github.com/quizrr/quizrr/internal/quiz"
	"github.com/quizrr/quizrr/internal/quizgen"
	"github.com/quizrr/quizrr/internal/quizzes"
)

const fractionsReply = `{"title":"**Fractions**","questions":[` +
	`{"type":"multiple-choice","question":"What is 1/2 + 1/4?","options":["3/4","2/6"],"answer":"3/4"},` +
	`{"type":"short-answer","question":"Simplify x^2 * x","answer":"x^3"}]}`

type testEnv struct {
	handler http.Handler
	mock    *llm.MockProvider
	auth    *auth.Service
}

func newTestEnv(t *testing.T, provider bool) *testEnv {
	t.Helper()
	log, _ := test.NewNullLogger()
	env := &testEnv{}

	deps := quizzes.Deps{Generation: quizgen.DefaultConfig(), Log: log}
	if provider {
		env.mock = llm.NewMockProvider()
		deps.Provider = env.mock
	}
	a, err := auth.New(auth.Config{JWTSecret: "server-test-secret"})
	require.NoError(t, err)
	env.auth = a

	env.handler = NewRouter(Options{
		Service: quizzes.New(deps),
		Auth:    a,
		Log:     log,
		Version: "test",
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	r := httptest.NewRequest(method, path, &buf)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.handler.ServeHTTP(w, r)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, false, body["llm_configured"])
}

func TestGenerate_NotConfigured(t *testing.T) {
	env := newTestEnv(t, false)
	w := env.do(t, http.MethodPost, "/api/quizzes", quizzes.GenerateRequest{Kind: quizgen.KindText, Content: "x"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	res := decode[quizzes.GenerateResult](t, w)
	assert.False(t, res.Success)
	assert.Equal(t, "Hugging Face API Key is not configured.", res.Error)
}

func TestQuizLifecycle(t *testing.T) {
	env := newTestEnv(t, true)
	env.mock.AddResponse(llm.MockText(fractionsReply))

	w := env.do(t, http.MethodPost, "/api/quizzes", map[string]string{"type": "text", "mode": "deep", "content": "Fractions"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	gen := decode[quizzes.GenerateResult](t, w)
	require.True(t, gen.Success)
	id := gen.Quiz.ID
	assert.True(t, strings.HasPrefix(id, "quiz-"))

	w = env.do(t, http.MethodGet, "/api/quizzes/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "**Fractions**", decode[quiz.Quiz](t, w).Title)

	w = env.do(t, http.MethodGet, "/api/quizzes/"+id+"/results", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPost, "/api/quizzes/"+id+"/results", map[string]any{"answers": map[string]string{"1": "3/4", "2": "x^2"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode[quiz.Result](t, w)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 2, res.Total)

	w = env.do(t, http.MethodGet, "/api/quizzes/"+id+"/results", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "x^2", decode[quiz.Result](t, w).Answers[2])

	env.mock.AddResponse(llm.MockText("x times x squared is x cubed."))
	w = env.do(t, http.MethodPost, "/api/quizzes/"+id+"/questions/2/explanation", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "x times x squared is x cubed.", decode[quizzes.ExplainResult](t, w).Explanation)

	w = env.do(t, http.MethodPost, "/api/quizzes/"+id+"/questions/7/explanation", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRenderQuiz(t *testing.T) {
	env := newTestEnv(t, true)
	env.mock.AddResponse(llm.MockText(fractionsReply))
	gen := decode[quizzes.GenerateResult](t, env.do(t, http.MethodPost, "/api/quizzes", map[string]string{"content": "Fractions"}))
	require.True(t, gen.Success)

	w := env.do(t, http.MethodGet, "/api/quizzes/"+gen.Quiz.ID+"/render", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `"kind":"bold"`)
	assert.Contains(t, body, `"kind":"fraction"`)
	assert.Contains(t, body, `"kind":"superscript"`)
	assert.Contains(t, body, `"numerator":"3"`)
}

func TestGetQuiz_NotFound(t *testing.T) {
	env := newTestEnv(t, true)
	w := env.do(t, http.MethodGet, "/api/quizzes/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, quizzes.MsgQuizNotFound, decode[map[string]string](t, w)["error"])
}

func TestGenerate_InvalidModelReply(t *testing.T) {
	env := newTestEnv(t, true)
	env.mock.AddResponse(llm.MockText("I am not JSON"))
	w := env.do(t, http.MethodPost, "/api/quizzes", map[string]string{"content": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	res := decode[quizzes.GenerateResult](t, w)
	assert.Equal(t, "Quiz generation failed: invalid JSON.", res.Error)
	assert.NotContains(t, w.Body.String(), "I am not JSON")
}

func TestGenerate_BadJSONBody(t *testing.T) {
	env := newTestEnv(t, true)
	r := httptest.NewRequest(http.MethodPost, "/api/quizzes", strings.NewReader("{"))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerate_Multipart(t *testing.T) {
	env := newTestEnv(t, true)
	env.mock.AddResponse(llm.MockText(fractionsReply))

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("mode", "general"))
	fw, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	fmt.Fprint(fw, "1. Halves\n2. Quarters")
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/api/quizzes", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	req, _ := env.mock.LastCall()
	assert.Contains(t, req.Messages[0].Content, "Generate a quiz based on the following file content:\nHalves\nQuarters")
}

func TestHistoryRequiresSession(t *testing.T) {
	env := newTestEnv(t, true)
	w := env.do(t, http.MethodGet, "/api/quizzes", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok, err := env.auth.IssueToken(auth.User{ID: "user-1"})
	require.NoError(t, err)
	r := httptest.NewRequest(http.MethodGet, "/api/quizzes", nil)
	r.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestMe(t *testing.T) {
	env := newTestEnv(t, false)
	tok, err := env.auth.IssueToken(auth.User{ID: "user-1", Email: "ada@example.com"})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: tok})
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, r)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ada@example.com", decode[auth.User](t, w).Email)
}

func TestGenerateExplanationEndpoint(t *testing.T) {
	env := newTestEnv(t, true)
	env.mock.AddResponse(llm.MockText(""))

	w := env.do(t, http.MethodPost, "/api/generate-explanation", map[string]string{
		"question": "Capital of France?", "userAnswer": "paris", "correctAnswer": "Paris",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "No explanation generated.", decode[quizzes.ExplainResult](t, w).Explanation)

	req, _ := env.mock.LastCall()
	assert.Contains(t, req.Messages[0].Content, `Student Answer: "paris"`)
}

func TestNoAuthConfigured(t *testing.T) {
	log, _ := test.NewNullLogger()
	h := NewRouter(Options{Service: quizzes.New(quizzes.Deps{Log: log}), Log: log})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/quizzes", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
