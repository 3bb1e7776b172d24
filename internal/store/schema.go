package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// schemaDDL is portable between SQLite and Postgres. Timestamps are
// unix milliseconds; JSON payloads are stored as TEXT.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS quizzes (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	title      TEXT NOT NULL,
	questions  TEXT NOT NULL,
	created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS quizzes_user_created ON quizzes (user_id, created_at);

CREATE TABLE IF NOT EXISTS results (
	id         TEXT PRIMARY KEY,
	sequence   BIGINT NOT NULL UNIQUE,
	quiz_id    TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	score      INTEGER NOT NULL,
	total      INTEGER NOT NULL,
	answers    TEXT NOT NULL,
	created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS results_quiz_user_seq ON results (quiz_id, user_id, sequence);

CREATE TABLE IF NOT EXISTS llm_events (
	sequence      BIGINT PRIMARY KEY,
	created_at    BIGINT NOT NULL,
	provider      TEXT NOT NULL,
	model         TEXT NOT NULL,
	purpose       TEXT NOT NULL,
	input_tokens  INTEGER NOT NULL,
	output_tokens INTEGER NOT NULL,
	latency_ms    BIGINT NOT NULL,
	success       BOOLEAN NOT NULL,
	error_message TEXT NOT NULL,
	request_body  TEXT NOT NULL,
	response_body TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS llm_events_purpose ON llm_events (purpose);

CREATE TABLE IF NOT EXISTS global_sequence (
	id       INTEGER PRIMARY KEY CHECK (id = 1),
	next_val BIGINT NOT NULL DEFAULT 1
);
`

// migrate applies schemaDDL one statement at a time.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range strings.Split(schemaDDL, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
