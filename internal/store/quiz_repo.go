package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/quizrr/quizrr/internal/quiz"
)

var quizColumns = []string{"id", "user_id", "title", "questions", "created_at"}

// quizRepo implements QuizRepo with ent's dialect-aware SQL builder.
type quizRepo struct {
	db *sql.DB
	b  *entsql.DialectBuilder
}

func (r *quizRepo) SaveQuiz(ctx context.Context, userID string, q *quiz.Quiz) (string, error) {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return "", fmt.Errorf("marshal questions: %w", err)
	}

	id := uuid.NewString()
	query, args := r.b.Insert("quizzes").
		Columns(quizColumns...).
		Values(id, userID, q.Title, string(questions), time.Now().UnixMilli()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("save quiz: %w", err)
	}
	return id, nil
}

func (r *quizRepo) ListQuizzes(ctx context.Context, userID string) ([]SavedQuiz, error) {
	query, args := r.b.Select(quizColumns...).
		From(entsql.Table("quizzes")).
		Where(entsql.EQ("user_id", userID)).
		OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var out []SavedQuiz
	for rows.Next() {
		sq, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sq)
	}
	return out, rows.Err()
}

func (r *quizRepo) GetQuiz(ctx context.Context, id string) (*SavedQuiz, error) {
	query, args := r.b.Select(quizColumns...).
		From(entsql.Table("quizzes")).
		Where(entsql.EQ("id", id)).
		Query()

	sq, err := scanQuiz(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return sq, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuiz(row rowScanner) (*SavedQuiz, error) {
	var (
		sq        SavedQuiz
		questions string
		createdAt int64
	)
	if err := row.Scan(&sq.ID, &sq.UserID, &sq.Title, &questions, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan quiz: %w", err)
	}
	if err := json.Unmarshal([]byte(questions), &sq.Questions); err != nil {
		return nil, fmt.Errorf("unmarshal questions for quiz %s: %w", sq.ID, err)
	}
	sq.CreatedAt = time.UnixMilli(createdAt).UTC()
	return &sq, nil
}
