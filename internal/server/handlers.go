package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/quizrr/quizrr/internal/auth"
	"github.com/quizrr/quizrr/internal/extract"
	"github.com/quizrr/quizrr/internal/quiz"
	"github.com/quizrr/quizrr/internal/quizgen"
	"github.com/quizrr/quizrr/internal/quizzes"
	"github.com/quizrr/quizrr/internal/store"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

type handlers struct {
	svc     *quizzes.Service
	log     logrus.FieldLogger
	version string
}

type errorBody struct {
	Error string `json:"error"`
}

func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        h.version,
		"llm_configured": h.svc.Configured(),
	})
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, auth.UserFromContext(r.Context()))
}

// generate accepts either a JSON GenerateRequest or a multipart upload
// with a "file" part and an optional "mode" field.
func (h *handlers) generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := auth.UserID(ctx)

	var res quizzes.GenerateResult
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		r.Body = http.MaxBytesReader(w, r.Body, extract.MaxUploadBytes+maxJSONBody)
		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				respondJSON(w, http.StatusRequestEntityTooLarge, quizzes.GenerateResult{Error: quizzes.MsgFileTooLarge})
				return
			}
			respondJSON(w, http.StatusBadRequest, errorBody{Error: "missing file"})
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			respondJSON(w, http.StatusBadRequest, quizzes.GenerateResult{Error: quizzes.MsgFileUnreadable})
			return
		}
		res = h.svc.GenerateFromFile(ctx, userID, quizgen.ParseMode(r.FormValue("mode")), extract.File{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		})
	} else {
		var req quizzes.GenerateRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		res = h.svc.Generate(ctx, userID, req)
	}

	respondJSON(w, generateStatus(h.svc, res), res)
}

func generateStatus(svc *quizzes.Service, res quizzes.GenerateResult) int {
	switch {
	case res.Success:
		return http.StatusCreated
	case !svc.Configured():
		return http.StatusServiceUnavailable
	case res.Error == quizzes.MsgFileTooLarge:
		return http.StatusRequestEntityTooLarge
	case res.Error == quizzes.MsgEmptyContent:
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	list := h.svc.History(r.Context(), auth.UserID(r.Context()))
	if list == nil {
		list = []store.SavedQuiz{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (h *handlers) getQuiz(w http.ResponseWriter, r *http.Request) {
	q, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, q)
}

func (h *handlers) renderQuiz(w http.ResponseWriter, r *http.Request) {
	q, ok := h.loadQuiz(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, renderQuiz(q))
}

func (h *handlers) loadQuiz(w http.ResponseWriter, r *http.Request) (*quiz.Quiz, bool) {
	q, err := h.svc.Quiz(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		respondJSON(w, http.StatusNotFound, errorBody{Error: quizzes.MsgQuizNotFound})
		return nil, false
	}
	return q, true
}

type submitRequest struct {
	Answers map[int]string `json:"answers"`
}

func (h *handlers) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	ctx := r.Context()
	res, err := h.svc.Submit(ctx, auth.UserID(ctx), chi.URLParam(r, "quizID"), req.Answers)
	if errors.Is(err, quizzes.ErrNotFound) {
		respondJSON(w, http.StatusNotFound, errorBody{Error: quizzes.MsgQuizNotFound})
		return
	}
	if err != nil {
		h.log.WithError(err).Error("submit quiz")
		respondJSON(w, http.StatusInternalServerError, errorBody{Error: "Failed to submit quiz."})
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *handlers) latestResult(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	res, err := h.svc.Result(ctx, auth.UserID(ctx), chi.URLParam(r, "quizID"))
	if err != nil {
		respondJSON(w, http.StatusNotFound, errorBody{Error: "No result for this quiz."})
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (h *handlers) explain(w http.ResponseWriter, r *http.Request) {
	qid, err := strconv.Atoi(chi.URLParam(r, "questionID"))
	if err != nil {
		respondJSON(w, http.StatusBadRequest, quizzes.ExplainResult{Error: quizzes.MsgQuestionNotFound})
		return
	}
	ctx := r.Context()
	res := h.svc.Explain(ctx, auth.UserID(ctx), chi.URLParam(r, "quizID"), qid)
	respondJSON(w, explainStatus(h.svc, res), res)
}

type explainTextRequest struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
}

func (h *handlers) explainText(w http.ResponseWriter, r *http.Request) {
	var req explainTextRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res := h.svc.ExplainText(r.Context(), req.Question, req.UserAnswer, req.CorrectAnswer)
	respondJSON(w, explainStatus(h.svc, res), res)
}

func explainStatus(svc *quizzes.Service, res quizzes.ExplainResult) int {
	switch {
	case res.Success:
		return http.StatusOK
	case !svc.Configured():
		return http.StatusServiceUnavailable
	case res.Error == quizzes.MsgQuizNotFound, res.Error == quizzes.MsgQuestionNotFound:
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

// decodeJSON reads a bounded JSON body into v, writing 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		respondJSON(w, http.StatusUnsupportedMediaType, errorBody{Error: "expected application/json"})
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody{Error: "invalid JSON body"})
		return false
	}
	return true
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
