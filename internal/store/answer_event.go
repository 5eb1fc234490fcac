package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var answerEventColumns = []string{
	"id", "sequence", "created_at", "session_id", "module_id", "question_id",
	"question_text", "topic", "difficulty", "selected_answer", "correct_answer",
	"correct", "time_spent_secs",
}

type answerEventRow struct {
	ID             int    `sql:"id"`
	Sequence       int64  `sql:"sequence"`
	CreatedAt      int64  `sql:"created_at"`
	SessionID      string `sql:"session_id"`
	ModuleID       string `sql:"module_id"`
	QuestionID     string `sql:"question_id"`
	QuestionText   string `sql:"question_text"`
	Topic          string `sql:"topic"`
	Difficulty     string `sql:"difficulty"`
	SelectedAnswer string `sql:"selected_answer"`
	CorrectAnswer  string `sql:"correct_answer"`
	Correct        bool   `sql:"correct"`
	TimeSpentSecs  int    `sql:"time_spent_secs"`
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableAnswerEvents).
		Columns(answerEventColumns[1:]...).
		Values(
			seqNum, time.Now().UnixMilli(), data.SessionID, data.ModuleID, data.QuestionID,
			data.QuestionText, data.Topic, data.Difficulty, data.SelectedAnswer,
			data.CorrectAnswer, data.Correct, data.TimeSpentSecs,
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendQuizEvent(ctx context.Context, data QuizEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := entsql.Dialect(dialect.SQLite).
		Insert(tableQuizEvents).
		Columns("sequence", "created_at", "session_id", "module_id", "action",
			"questions_answered", "accuracy", "elapsed_secs", "passed").
		Values(seqNum, time.Now().UnixMilli(), data.SessionID, data.ModuleID, data.Action,
			data.QuestionsAnswered, data.Accuracy, data.ElapsedSecs, data.Passed).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save quiz event: %w", err)
	}
	return nil
}

// QueryAnswerEvents returns answers newest first. An empty moduleID
// matches every module.
func (r *eventRepo) QueryAnswerEvents(ctx context.Context, moduleID string, opts QueryOpts) ([]AnswerEvent, error) {
	sel := entsql.Dialect(dialect.SQLite).
		Select(answerEventColumns...).
		From(entsql.Table(tableAnswerEvents)).
		OrderBy(entsql.Desc("sequence"))
	if moduleID != "" {
		sel.Where(entsql.EQ("module_id", moduleID))
	}
	applyOpts(sel, opts)

	rows, err := queryRows[answerEventRow](ctx, r.drv, sel)
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	out := make([]AnswerEvent, len(rows))
	for i, row := range rows {
		out[i] = AnswerEvent{
			ID:        row.ID,
			Sequence:  row.Sequence,
			Timestamp: time.UnixMilli(row.CreatedAt),
			AnswerEventData: AnswerEventData{
				SessionID:      row.SessionID,
				ModuleID:       row.ModuleID,
				QuestionID:     row.QuestionID,
				QuestionText:   row.QuestionText,
				Topic:          row.Topic,
				Difficulty:     row.Difficulty,
				SelectedAnswer: row.SelectedAnswer,
				CorrectAnswer:  row.CorrectAnswer,
				Correct:        row.Correct,
				TimeSpentSecs:  row.TimeSpentSecs,
			},
		}
	}
	return out, nil
}

// ModuleStats aggregates answers and finished quizzes per module.
func (r *eventRepo) ModuleStats(ctx context.Context) ([]ModuleStats, error) {
	type answerAgg struct {
		ModuleID string `sql:"module_id"`
		Answered int    `sql:"answered"`
		Correct  int    `sql:"correct"`
	}
	answers, err := queryRows[answerAgg](ctx, r.drv, entsql.Dialect(dialect.SQLite).
		Select(
			"module_id",
			entsql.As(entsql.Count("*"), "answered"),
			entsql.As(entsql.Sum("correct"), "correct"),
		).
		From(entsql.Table(tableAnswerEvents)).
		GroupBy("module_id").
		OrderBy("module_id"))
	if err != nil {
		return nil, fmt.Errorf("aggregate answers: %w", err)
	}

	type quizAgg struct {
		ModuleID string  `sql:"module_id"`
		Attempts int     `sql:"attempts"`
		Best     float64 `sql:"best"`
	}
	quizzes, err := queryRows[quizAgg](ctx, r.drv, entsql.Dialect(dialect.SQLite).
		Select(
			"module_id",
			entsql.As(entsql.Count("*"), "attempts"),
			entsql.As(entsql.Max("accuracy"), "best"),
		).
		From(entsql.Table(tableQuizEvents)).
		Where(entsql.EQ("action", QuizActionFinish)).
		GroupBy("module_id"))
	if err != nil {
		return nil, fmt.Errorf("aggregate quizzes: %w", err)
	}

	finished := make(map[string]quizAgg, len(quizzes))
	for _, q := range quizzes {
		finished[q.ModuleID] = q
	}

	out := make([]ModuleStats, 0, len(answers))
	for _, a := range answers {
		q := finished[a.ModuleID]
		out = append(out, ModuleStats{
			ModuleID:  a.ModuleID,
			Answered:  a.Answered,
			Correct:   a.Correct,
			Attempts:  q.Attempts,
			BestScore: q.Best,
		})
	}
	return out, nil
}
