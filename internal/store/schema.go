package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const (
	tableKV           = "kv"
	tableLLMEvents    = "llm_events"
	tableAnswerEvents = "answer_events"
	tableQuizEvents   = "quiz_events"
)

// DDL for every table. Timestamps are unix milliseconds.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS llm_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence      INTEGER NOT NULL UNIQUE,
		created_at    INTEGER NOT NULL,
		provider      TEXT NOT NULL DEFAULT '',
		model         TEXT NOT NULL DEFAULT '',
		purpose       TEXT NOT NULL DEFAULT '',
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       BOOLEAN NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS answer_events (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence        INTEGER NOT NULL UNIQUE,
		created_at      INTEGER NOT NULL,
		session_id      TEXT NOT NULL,
		module_id       TEXT NOT NULL,
		question_id     TEXT NOT NULL,
		question_text   TEXT NOT NULL DEFAULT '',
		topic           TEXT NOT NULL DEFAULT '',
		difficulty      TEXT NOT NULL DEFAULT '',
		selected_answer TEXT NOT NULL,
		correct_answer  TEXT NOT NULL,
		correct         BOOLEAN NOT NULL,
		time_spent_secs INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS answer_events_module ON answer_events (module_id)`,
	`CREATE TABLE IF NOT EXISTS quiz_events (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		sequence           INTEGER NOT NULL UNIQUE,
		created_at         INTEGER NOT NULL,
		session_id         TEXT NOT NULL,
		module_id          TEXT NOT NULL,
		action             TEXT NOT NULL,
		questions_answered INTEGER NOT NULL DEFAULT 0,
		accuracy           REAL NOT NULL DEFAULT 0,
		elapsed_secs       INTEGER NOT NULL DEFAULT 0,
		passed             BOOLEAN NOT NULL DEFAULT 0
	)`,
}

func migrate(ctx context.Context, drv *entsql.Driver) error {
	for _, stmt := range schema {
		if err := drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
