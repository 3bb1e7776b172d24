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

// resultRepo implements ResultRepo.
type resultRepo struct {
	db  *sql.DB
	b   *entsql.DialectBuilder
	seq *sequenceCounter
}

func (r *resultRepo) SaveResult(ctx context.Context, userID string, res *quiz.Result) (string, error) {
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return "", fmt.Errorf("marshal answers: %w", err)
	}

	seq, err := r.seq.Next(ctx)
	if err != nil {
		return "", err
	}

	id := uuid.NewString()
	query, args := r.b.Insert("results").
		Columns("id", "sequence", "quiz_id", "user_id", "score", "total", "answers", "created_at").
		Values(id, seq, res.QuizID, userID, res.Score, res.Total, string(answers), time.Now().UnixMilli()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("save result: %w", err)
	}
	return id, nil
}

func (r *resultRepo) LatestResult(ctx context.Context, userID, quizID string) (*quiz.Result, error) {
	query, args := r.b.Select("quiz_id", "score", "total", "answers").
		From(entsql.Table("results")).
		Where(entsql.And(entsql.EQ("quiz_id", quizID), entsql.EQ("user_id", userID))).
		OrderBy(entsql.Desc("sequence")).
		Limit(1).
		Query()

	var (
		res     quiz.Result
		answers string
	)
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&res.QuizID, &res.Score, &res.Total, &answers)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest result: %w", err)
	}
	if err := json.Unmarshal([]byte(answers), &res.Answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers: %w", err)
	}
	return &res, nil
}
