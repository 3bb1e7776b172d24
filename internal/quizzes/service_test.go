package quizzes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizrr/quizrr/internal/cache"
	"github.com/quizrr/quizrr/internal/extract"
	"github.com/quizrr/quizrr/internal/llm"
	"github.com/quizrr/quizrr/internal/quiz"
	"github.com/quizrr/quizrr/internal/quizgen"
	"github.com/quizrr/quizrr/internal/store"
)

const bioReply = "```json\n" +
	`{"title":"Bio Quiz","questions":[` +
	`{"type":"short-answer","question":"What does photosynthesis convert?","answer":"light into chemical energy"},` +
	`{"type":"multiple-choice","question":"Where does it happen?","options":["Chloroplast","Nucleus"],"answer":"Chloroplast"}]}` +
	"\n```"

var fixedNow = time.UnixMilli(1700000000000)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), store.Config{
		DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_")),
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func newTestService(t *testing.T, provider llm.Provider, withStore bool) (*Service, *cache.Memory) {
	t.Helper()
	log, _ := test.NewNullLogger()
	mem := cache.NewMemory()
	deps := Deps{
		Provider:   provider,
		Cache:      mem,
		Generation: quizgen.DefaultConfig(),
		Log:        log,
		Now:        func() time.Time { return fixedNow },
	}
	if withStore {
		s := openTestStore(t)
		deps.Quizzes = s.QuizRepo()
		deps.Results = s.ResultRepo()
	}
	return New(deps), mem
}

func TestGenerate_NotConfigured(t *testing.T) {
	svc, _ := newTestService(t, nil, false)
	res := svc.Generate(context.Background(), "", GenerateRequest{Kind: quizgen.KindText, Content: "x"})
	assert.False(t, res.Success)
	assert.Equal(t, "Hugging Face API Key is not configured.", res.Error)

	other := New(Deps{ConfigErr: &llm.ErrConfig{Provider: llm.ProviderGemini}})
	assert.Equal(t, "Gemini API Key is not configured.", other.Generate(context.Background(), "", GenerateRequest{Content: "x"}).Error)
}

func TestGenerate_EmptyContent(t *testing.T) {
	mock := llm.NewMockProvider()
	svc, _ := newTestService(t, mock, false)
	res := svc.Generate(context.Background(), "", GenerateRequest{Content: "   "})
	assert.Equal(t, MsgEmptyContent, res.Error)
	assert.Zero(t, mock.CallCount())
}

func TestGenerate_AnonymousUsesLocalID(t *testing.T) {
	svc, mem := newTestService(t, llm.NewMockProvider(llm.MockText(bioReply)), true)

	res := svc.Generate(context.Background(), "", GenerateRequest{Kind: quizgen.KindText, Mode: quizgen.ModeGeneral,
		Content: "Photosynthesis converts light into chemical energy."})
	require.True(t, res.Success, res.Error)
	assert.True(t, strings.HasPrefix(res.Quiz.ID, "quiz-1700000000000-"), res.Quiz.ID)
	assert.Equal(t, "Bio Quiz", res.Quiz.Title)
	assert.Equal(t, 1, res.Quiz.Questions[0].ID)

	var cached quiz.Quiz
	ok, err := cache.GetJSON(context.Background(), mem, res.Quiz.ID, &cached)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Bio Quiz", cached.Title)

	assert.Empty(t, svc.History(context.Background(), ""))
}

func TestGenerate_AuthenticatedPersists(t *testing.T) {
	svc, mem := newTestService(t, llm.NewMockProvider(llm.MockText(bioReply)), true)
	ctx := context.Background()

	res := svc.Generate(ctx, "user-1", GenerateRequest{Content: "Photosynthesis"})
	require.True(t, res.Success, res.Error)
	assert.False(t, strings.HasPrefix(res.Quiz.ID, "quiz-"), res.Quiz.ID)

	_, ok, _ := mem.Get(ctx, res.Quiz.ID)
	assert.True(t, ok)

	history := svc.History(ctx, "user-1")
	require.Len(t, history, 1)
	assert.Equal(t, res.Quiz.ID, history[0].ID)
}

type failingQuizRepo struct{ store.QuizRepo }

func (failingQuizRepo) SaveQuiz(context.Context, string, *quiz.Quiz) (string, error) {
	return "", errors.New("connection refused")
}

func (failingQuizRepo) GetQuiz(context.Context, string) (*store.SavedQuiz, error) {
	return nil, errors.New("connection refused")
}

func (failingQuizRepo) ListQuizzes(context.Context, string) ([]store.SavedQuiz, error) {
	return nil, errors.New("connection refused")
}

func TestGenerate_StoreFailureFallsBackToLocal(t *testing.T) {
	log, hook := test.NewNullLogger()
	svc := New(Deps{
		Provider:   llm.NewMockProvider(llm.MockText(bioReply)),
		Quizzes:    failingQuizRepo{},
		Generation: quizgen.DefaultConfig(),
		Log:        log,
		Now:        func() time.Time { return fixedNow },
	})

	res := svc.Generate(context.Background(), "user-1", GenerateRequest{Content: "Photosynthesis"})
	require.True(t, res.Success)
	assert.True(t, strings.HasPrefix(res.Quiz.ID, "quiz-1700000000000-"), res.Quiz.ID)

	q, err := svc.Quiz(context.Background(), res.Quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bio Quiz", q.Title)

	assert.Empty(t, svc.History(context.Background(), "user-1"))

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && strings.Contains(e.Message, "failed to save quiz") {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestGenerate_ErrorMessages(t *testing.T) {
	tests := []struct {
		name  string
		reply llm.MockResponse
		want  string
	}{
		{"empty reply", llm.MockText("  "), MsgInvalidJSON},
		{"no json", llm.MockText("Sorry, I cannot help with that."), MsgInvalidJSON},
		{"missing questions", llm.MockText(`{"title":"t"}`), MsgIncomplete},
		{"transport", llm.MockResponse{Err: &llm.ErrProviderUnavailable{Err: errors.New("503")}}, MsgGenerateFailed},
		{"config", llm.MockResponse{Err: &llm.ErrConfig{Provider: llm.ProviderHuggingFace}}, MsgNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, llm.NewMockProvider(tt.reply), false)
			res := svc.Generate(context.Background(), "", GenerateRequest{Content: "x"})
			assert.False(t, res.Success)
			assert.Nil(t, res.Quiz)
			assert.Equal(t, tt.want, res.Error)
		})
	}
}

func TestGenerateFromFile(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText(bioReply))
	svc, _ := newTestService(t, mock, false)

	res := svc.GenerateFromFile(context.Background(), "", quizgen.ModeDeep, extract.File{Name: "slides.key", Data: []byte{0}})
	require.True(t, res.Success, res.Error)

	req, _ := mock.LastCall()
	assert.Contains(t, req.Messages[0].Content, "implied by this filename: File Name: slides.key")
}

func TestGenerateFromFile_TooLarge(t *testing.T) {
	mock := llm.NewMockProvider()
	svc, _ := newTestService(t, mock, false)

	res := svc.GenerateFromFile(context.Background(), "", quizgen.ModeGeneral,
		extract.File{Name: "big.txt", Data: make([]byte, extract.MaxUploadBytes+1)})
	assert.Equal(t, MsgFileTooLarge, res.Error)
	assert.Zero(t, mock.CallCount())
}

func TestQuiz_FallsBackToStoreAndRecaches(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	id, err := st.QuizRepo().SaveQuiz(ctx, "user-1", &quiz.Quiz{Title: "Saved", Questions: []quiz.Question{{ID: 1, Type: quiz.TypeShortAnswer, Question: "q", Answer: "a"}}})
	require.NoError(t, err)

	mem := cache.NewMemory()
	svc := New(Deps{Quizzes: st.QuizRepo(), Cache: mem})

	q, err := svc.Quiz(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Saved", q.Title)
	assert.Equal(t, 1, mem.Len())

	_, err = svc.Quiz(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmitAndResult(t *testing.T) {
	svc, mem := newTestService(t, llm.NewMockProvider(llm.MockText(bioReply)), true)
	ctx := context.Background()

	gen := svc.Generate(ctx, "user-1", GenerateRequest{Content: "Photosynthesis"})
	require.True(t, gen.Success)
	id := gen.Quiz.ID

	res, err := svc.Submit(ctx, "user-1", id, map[int]string{1: "light into chemical energy", 2: "nucleus"})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Score)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, id, res.QuizID)

	_, ok, _ := mem.Get(ctx, "user-1:"+id+"-result")
	assert.True(t, ok)

	got, err := svc.Result(ctx, "user-1", id)
	require.NoError(t, err)
	assert.Equal(t, res, got)

	// A fresh cache recovers the result from the store.
	require.NoError(t, mem.Delete(ctx, "user-1:"+id+"-result"))
	got, err = svc.Result(ctx, "user-1", id)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Score)

	_, err = svc.Submit(ctx, "user-1", "unknown", nil)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Result(ctx, "user-1", "unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExplain(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText(bioReply), llm.MockText("  Chloroplasts host photosynthesis.  "))
	svc, _ := newTestService(t, mock, false)
	ctx := context.Background()

	gen := svc.Generate(ctx, "", GenerateRequest{Content: "Photosynthesis"})
	require.True(t, gen.Success)
	_, err := svc.Submit(ctx, "", gen.Quiz.ID, map[int]string{2: "Nucleus"})
	require.NoError(t, err)

	res := svc.Explain(ctx, "", gen.Quiz.ID, 2)
	require.True(t, res.Success, res.Error)
	assert.Equal(t, "Chloroplasts host photosynthesis.", res.Explanation)

	req, _ := mock.LastCall()
	assert.Equal(t, quizgen.ExplanationSystemPrompt, req.System)
	assert.Contains(t, req.Messages[0].Content, `Student Answer: "Nucleus"`)
	assert.Contains(t, req.Messages[0].Content, `Correct Answer: "Chloroplast"`)
	assert.Equal(t, 300, req.MaxTokens)

	assert.Equal(t, MsgQuestionNotFound, svc.Explain(ctx, "", gen.Quiz.ID, 9).Error)
	assert.Equal(t, MsgQuizNotFound, svc.Explain(ctx, "", "nope", 1).Error)
}

func TestGenerate_SameMillisecondIDsDoNotCollide(t *testing.T) {
	mock := llm.NewMockProvider(
		llm.MockText(`{"title":"A","questions":[{"question":"qa","answer":"a"}]}`),
		llm.MockText(`{"title":"B","questions":[{"question":"qb","answer":"b"}]}`),
	)
	svc, _ := newTestService(t, mock, false)
	ctx := context.Background()

	a := svc.Generate(ctx, "", GenerateRequest{Content: "first"})
	b := svc.Generate(ctx, "", GenerateRequest{Content: "second"})
	require.True(t, a.Success, a.Error)
	require.True(t, b.Success, b.Error)
	assert.NotEqual(t, a.Quiz.ID, b.Quiz.ID)

	q, err := svc.Quiz(ctx, a.Quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", q.Title)
}

func TestResultAndExplain_ScopedByUser(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockText(bioReply))
	svc, mem := newTestService(t, mock, true)
	ctx := context.Background()

	gen := svc.Generate(ctx, "alice", GenerateRequest{Content: "Photosynthesis"})
	require.True(t, gen.Success, gen.Error)
	id := gen.Quiz.ID

	_, err := svc.Submit(ctx, "alice", id, map[int]string{1: "alice answer"})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "bob", id, map[int]string{1: "bob answer"})
	require.NoError(t, err)

	got, err := svc.Result(ctx, "alice", id)
	require.NoError(t, err)
	assert.Equal(t, "alice answer", got.Answers[1])

	// Same from the store once the cache is gone.
	require.NoError(t, mem.Delete(ctx, quiz.ResultKey("alice", id)))
	got, err = svc.Result(ctx, "alice", id)
	require.NoError(t, err)
	assert.Equal(t, "alice answer", got.Answers[1])

	_, err = svc.Result(ctx, "carol", id)
	assert.ErrorIs(t, err, ErrNotFound)

	mock.AddResponse(llm.MockText("Because."))
	res := svc.Explain(ctx, "alice", id, 1)
	require.True(t, res.Success, res.Error)
	req, _ := mock.LastCall()
	assert.Contains(t, req.Messages[0].Content, `Student Answer: "alice answer"`)
}

func TestExplainText_CancelledCallerDoesNotFailOthers(t *testing.T) {
	p := &gatedProvider{started: make(chan struct{}), release: make(chan struct{})}
	svc, _ := newTestService(t, p, false)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leader := make(chan ExplainResult, 1)
	go func() { leader <- svc.ExplainText(leaderCtx, "q", "a", "b") }()
	<-p.started

	follower := make(chan ExplainResult, 1)
	go func() { follower <- svc.ExplainText(context.Background(), "q", "a", "b") }()
	time.Sleep(50 * time.Millisecond)

	cancel()
	assert.Equal(t, MsgExplainFailed, (<-leader).Error)

	close(p.release)
	assert.Equal(t, ExplainResult{Success: true, Explanation: "Because."}, <-follower)
	assert.Equal(t, int32(1), p.calls.Load())
}

func TestExplainText_Failures(t *testing.T) {
	svc, _ := newTestService(t, llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}}), false)
	res := svc.ExplainText(context.Background(), "q", "a", "b")
	assert.False(t, res.Success)
	assert.Equal(t, "Failed to generate explanation.", res.Error)

	unconfigured, _ := newTestService(t, nil, false)
	assert.Equal(t, MsgNotConfigured, unconfigured.ExplainText(context.Background(), "q", "a", "b").Error)
}

func TestExplainText_EmptyReplyFallback(t *testing.T) {
	svc, _ := newTestService(t, llm.NewMockProvider(llm.MockText("")), false)
	res := svc.ExplainText(context.Background(), "q", "a", "b")
	require.True(t, res.Success)
	assert.Equal(t, "No explanation generated.", res.Explanation)
}

// gatedProvider blocks every call until release is closed.
type gatedProvider struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (g *gatedProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if g.calls.Add(1) == 1 {
		close(g.started)
	}
	<-g.release
	return &llm.Response{Content: []byte("Because."), Model: "gated"}, nil
}

func (g *gatedProvider) ModelID() string { return "gated" }

func TestExplainText_DuplicateRequestsShareOneCall(t *testing.T) {
	p := &gatedProvider{started: make(chan struct{}), release: make(chan struct{})}
	svc, _ := newTestService(t, p, false)

	const n = 5
	results := make([]ExplainResult, n)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = svc.ExplainText(context.Background(), "q", "a", "b")
	}()
	<-p.started
	for i := 1; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = svc.ExplainText(context.Background(), "q", "a", "b")
		}()
	}
	// Give the followers time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(p.release)
	wg.Wait()

	assert.Equal(t, int32(1), p.calls.Load())
	for _, r := range results {
		assert.Equal(t, ExplainResult{Success: true, Explanation: "Because."}, r)
	}
}
