package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nayidisha/disha/internal/quiz"
)

type questionRequest struct {
	SessionID   string   `json:"sessionId"`
	ModuleID    string   `json:"moduleId"`
	ModuleTitle string   `json:"moduleTitle"`
	Topics      []string `json:"topics"`
}

// questionPayload covers both response shapes: a flat question, or a
// wrapper whose "question" field holds the question object. In the flat
// shape "question" is the question text.
type questionPayload struct {
	ID                string          `json:"id"`
	Question          json.RawMessage `json:"question"`
	Topic             string          `json:"topic"`
	Difficulty        string          `json:"difficulty"`
	Options           json.RawMessage `json:"options"`
	CorrectIndex      *int            `json:"correctIndex"`
	Explanation       string          `json:"explanation"`
	CurrentDifficulty string          `json:"currentDifficulty"`
}

// NextQuestion fetches the next adaptive question for a module.
func (c *Client) NextQuestion(ctx context.Context, req quiz.QuestionRequest) (quiz.RawQuestion, error) {
	sid, err := c.SessionID(ctx)
	if err != nil {
		return quiz.RawQuestion{}, err
	}
	topics := req.Topics
	if len(topics) == 0 {
		topics = []string{"General"}
	}
	data, err := c.call(ctx, "generate question", http.MethodPost, "/quiz/question", questionRequest{
		SessionID:   sid,
		ModuleID:    req.ModuleID,
		ModuleTitle: req.ModuleTitle,
		Topics:      topics,
	})
	if err != nil {
		return quiz.RawQuestion{}, err
	}
	return decodeQuestion(data)
}

func decodeQuestion(data json.RawMessage) (quiz.RawQuestion, error) {
	var outer questionPayload
	if err := json.Unmarshal(data, &outer); err != nil {
		return quiz.RawQuestion{}, &quiz.ValidationError{Field: "question", Reason: err.Error()}
	}

	info := outer
	if isObject(outer.Question) {
		if err := json.Unmarshal(outer.Question, &info); err != nil {
			return quiz.RawQuestion{}, &quiz.ValidationError{Field: "question", Reason: err.Error()}
		}
	}

	var options []string
	if !isArray(info.Options) || json.Unmarshal(info.Options, &options) != nil {
		return quiz.RawQuestion{}, &quiz.ValidationError{Field: "options", Reason: "missing or not an array of strings"}
	}

	var text string
	if len(info.Question) > 0 {
		_ = json.Unmarshal(info.Question, &text)
	}

	id := info.ID
	if id == "" {
		id = outer.ID
	}
	return quiz.RawQuestion{
		ID:               id,
		Text:             text,
		Topic:            info.Topic,
		Difficulty:       info.Difficulty,
		Options:          options,
		CorrectIndex:     info.CorrectIndex,
		Explanation:      info.Explanation,
		ServedDifficulty: outer.CurrentDifficulty,
	}, nil
}

func isObject(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '{'
}

func isArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

type evaluateRequest struct {
	SessionID  string `json:"sessionId"`
	ModuleID   string `json:"moduleId"`
	QuestionID string `json:"questionId"`
	UserAnswer int    `json:"userAnswer"`
}

type evaluateResponse struct {
	IsCorrect     bool   `json:"isCorrect"`
	ShouldEndQuiz bool   `json:"shouldEndQuiz"`
	EndReason     string `json:"endReason"`
}

// Evaluate asks the backend to judge an answer. The backend also updates
// its own adaptive state for the session.
func (c *Client) Evaluate(ctx context.Context, req quiz.EvaluationRequest) (quiz.Evaluation, error) {
	sid, err := c.SessionID(ctx)
	if err != nil {
		return quiz.Evaluation{}, err
	}
	var out evaluateResponse
	err = c.do(ctx, "evaluate answer", http.MethodPost, "/quiz/evaluate", evaluateRequest{
		SessionID:  sid,
		ModuleID:   req.ModuleID,
		QuestionID: req.QuestionID,
		UserAnswer: req.AnswerIndex,
	}, &out)
	if err != nil {
		return quiz.Evaluation{}, err
	}
	return quiz.Evaluation{
		IsCorrect:     out.IsCorrect,
		ShouldEndQuiz: out.ShouldEndQuiz,
		EndReason:     out.EndReason,
	}, nil
}

// ModuleReport is the backend's free-form completion report for a module.
type ModuleReport map[string]any

// Report fetches the completion report for a module.
func (c *Client) Report(ctx context.Context, moduleID, moduleTitle string) (ModuleReport, error) {
	sid, err := c.SessionID(ctx)
	if err != nil {
		return nil, err
	}
	var out ModuleReport
	err = c.do(ctx, "module report", http.MethodPost, "/quiz/report", map[string]string{
		"sessionId":   sid,
		"moduleId":    moduleID,
		"moduleTitle": moduleTitle,
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ModuleProgress is the backend's view of a module attempt.
type ModuleProgress map[string]any

// ModuleProgress fetches the backend's progress for a module. It returns
// nil without error when the backend has none.
func (c *Client) ModuleProgress(ctx context.Context, moduleID string) (ModuleProgress, error) {
	sid, err := c.SessionID(ctx)
	if err != nil {
		return nil, err
	}
	var out ModuleProgress
	path := fmt.Sprintf("/quiz/progress/%s/%s", url.PathEscape(sid), url.PathEscape(moduleID))
	err = c.do(ctx, "module progress", http.MethodGet, path, nil, &out)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}
