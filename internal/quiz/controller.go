package quiz

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nayidisha/disha/internal/logging"
	"github.com/nayidisha/disha/internal/progress"
	"github.com/nayidisha/disha/internal/sessionstore"
	"github.com/nayidisha/disha/internal/store"
)

// DefaultFeedbackDelay is how long answer feedback stays visible.
const DefaultFeedbackDelay = 3 * time.Second

var (
	// ErrClosed is returned by operations on a finished or exited quiz.
	ErrClosed = errors.New("quiz is closed")
	// ErrSuperseded is returned when a fetch or evaluation completed after
	// a later action made its result irrelevant. The result is discarded.
	ErrSuperseded = errors.New("result superseded")
)

// Options configures a Controller.
type Options struct {
	ModuleID    string
	ModuleTitle string
	Topics      []string

	// UserID is the signed-in user, empty when anonymous.
	UserID string
	// SessionID tags answer events; optional.
	SessionID string

	Questions QuestionSource
	// Evaluator is optional; without one answers are checked locally.
	Evaluator Evaluator
	// Progress is optional; it receives module completion for signed-in users.
	Progress ProgressRecorder
	// Store holds snapshots. Defaults to an in-memory store.
	Store sessionstore.Store
	// Answers is an optional local answer log.
	Answers AnswerLog
	// Bank defaults to DefaultBank().
	Bank *Bank

	FeedbackDelay time.Duration
	Now           func() time.Time
	Logger        *logging.Logger
}

// Controller owns one module quiz. All methods are safe for concurrent
// use; collaborator calls are made without holding the state lock.
type Controller struct {
	opts Options
	log  *logging.Logger
	now  func() time.Time

	mu            sync.Mutex
	s             Session
	epoch         uint64
	evaluating    bool
	questionStart time.Time
	feedback      *Feedback
	cancelFetch   context.CancelFunc
	done          chan struct{}
}

// New validates opts and returns an idle controller.
func New(opts Options) (*Controller, error) {
	if opts.ModuleID == "" {
		return nil, errors.New("quiz: module id is required")
	}
	if opts.Questions == nil {
		return nil, errors.New("quiz: question source is required")
	}
	if opts.Store == nil {
		opts.Store = sessionstore.NewMemory()
	}
	if opts.Bank == nil {
		opts.Bank = DefaultBank()
	}
	if opts.FeedbackDelay <= 0 {
		opts.FeedbackDelay = DefaultFeedbackDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if len(opts.Topics) == 0 {
		opts.Topics = []string{defaultTopic}
	}

	c := &Controller{
		opts: opts,
		log:  logging.OrNop(opts.Logger).With("module_id", opts.ModuleID),
		now:  opts.Now,
		done: make(chan struct{}),
	}
	c.s = Session{
		ModuleID:    opts.ModuleID,
		ModuleTitle: opts.ModuleTitle,
		Topics:      append([]string(nil), opts.Topics...),
		Difficulty:  DifficultyMedium,
		Phase:       PhaseIdle,
	}
	return c, nil
}

// Start restores any saved in-progress snapshot for the module and loads
// the first question.
func (c *Controller) Start(ctx context.Context) error {
	var snap ProgressSnapshot
	found, err := sessionstore.GetJSON(ctx, c.opts.Store, sessionstore.QuizProgressKey(c.opts.ModuleID), &snap)
	if err != nil {
		c.log.Warn("ignoring unreadable quiz snapshot", "error", err)
		found = false
	}

	c.mu.Lock()
	if c.s.Phase == PhaseClosed {
		c.mu.Unlock()
		return ErrClosed
	}
	if found {
		c.restoreLocked(snap)
		c.log.Info("quiz resumed", "answered", len(c.s.Completed), "elapsed_secs", c.s.ElapsedSeconds)
	}
	answered, acc, elapsed := len(c.s.Completed), c.s.Accuracy(), c.s.ElapsedSeconds
	// A snapshot saved after the deciding answer leaves nothing to serve;
	// the quiz waits for FinishQuiz.
	complete := c.s.IsLastQuestion()
	if complete {
		c.s.Phase = PhaseSubmitted
	}
	c.mu.Unlock()

	c.logQuizEvent(ctx, store.QuizActionStart, answered, acc, elapsed, false)
	if complete {
		c.log.Info("resumed quiz is already complete", "answered", answered)
		return nil
	}
	return c.LoadNextQuestion(ctx)
}

func (c *Controller) restoreLocked(snap ProgressSnapshot) {
	c.s.Completed = append([]AnswerRecord(nil), snap.CompletedQuestions...)
	if snap.TimeElapsed > 0 {
		c.s.ElapsedSeconds = snap.TimeElapsed
	}
	if snap.StreakCount > 0 {
		c.s.Streak = snap.StreakCount
	}
	w := RollingWindow(snap.RollingWindow)
	if len(w) > WindowSize {
		w = w[len(w)-WindowSize:]
	}
	c.s.Window = append(RollingWindow(nil), w...)
	if d, ok := ParseDifficulty(string(snap.CurrentDifficulty)); ok {
		c.s.Difficulty = d
	}
}

// LoadNextQuestion clears the per-question state and fetches a question
// from the source. When the fetch fails or the payload is malformed, the
// local bank entry for the current serving position is used instead and
// the failure is kept as a recoverable error. If the bank has no entry, ErrFallbackExhausted is
// returned and no question is set; calling again retries.
func (c *Controller) LoadNextQuestion(ctx context.Context) error {
	c.mu.Lock()
	if c.s.Phase == PhaseClosed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	c.epoch++
	epoch := c.epoch
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancelFetch = cancel
	c.s.Current = nil
	c.s.SelectedAnswer = ""
	c.s.Submitted = false
	c.s.HintVisible = false
	c.feedback = nil
	c.s.LastError = nil
	c.s.UsedFallback = false
	c.s.Phase = PhaseLoading
	served := len(c.s.History)
	req := QuestionRequest{
		ModuleID:    c.s.ModuleID,
		ModuleTitle: c.s.ModuleTitle,
		Topics:      append([]string(nil), c.s.Topics...),
		Difficulty:  c.s.Difficulty,
		Prior:       questionTexts(c.s.History),
	}
	c.mu.Unlock()
	defer cancel()

	raw, err := c.opts.Questions.NextQuestion(fetchCtx, req)
	var q Question
	if err == nil {
		q, err = ParseQuestion(raw)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if epoch != c.epoch || c.s.Phase == PhaseClosed {
		c.log.Debug("discarding superseded question fetch", "epoch", epoch)
		return ErrSuperseded
	}
	c.cancelFetch = nil

	if err != nil {
		c.s.LastError = err
		fb, ok := c.opts.Bank.At(served)
		if !ok {
			c.s.Phase = PhaseUnavailable
			c.log.Warn("question fetch failed, fallback bank exhausted", "served", served, "error", err)
			return fmt.Errorf("%w: %v", ErrFallbackExhausted, err)
		}
		c.log.Warn("question fetch failed, using fallback question", "served", served, "error", err)
		q = fb
		c.s.UsedFallback = true
	}

	c.s.History = append(c.s.History, q)
	c.s.Current = &q
	c.s.Phase = PhaseAnswering
	c.questionStart = c.now()
	return nil
}

func questionTexts(qs []Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.Text
	}
	return out
}

// SelectAnswer records the learner's choice. It is ignored once the
// answer is submitted, when no question is shown, or for unknown ids.
func (c *Controller) SelectAnswer(optionID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s.Phase == PhaseClosed || c.s.Submitted || c.evaluating || c.s.Current == nil {
		return
	}
	if _, ok := c.s.Current.Option(optionID); !ok {
		return
	}
	c.s.SelectedAnswer = optionID
}

// SubmitAnswer evaluates the selected answer and applies its effects. It
// returns nil feedback without error when there is nothing to submit.
// Evaluator failures fall back to comparing against the question's
// correct letter, so a submission always produces exactly one record.
func (c *Controller) SubmitAnswer(ctx context.Context) (*Feedback, error) {
	c.mu.Lock()
	if c.s.Phase == PhaseClosed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.s.SelectedAnswer == "" || c.s.Submitted || c.evaluating || c.s.Current == nil {
		c.mu.Unlock()
		return nil, nil
	}
	c.evaluating = true
	q := *c.s.Current
	selected := c.s.SelectedAnswer
	epoch := c.epoch
	c.mu.Unlock()

	localCorrect := selected == q.CorrectAnswer
	correct := localCorrect
	var signal *Evaluation
	if c.opts.Evaluator != nil {
		ev, err := c.opts.Evaluator.Evaluate(ctx, EvaluationRequest{
			ModuleID:    c.opts.ModuleID,
			QuestionID:  q.ID,
			AnswerIndex: AnswerIndex(selected),
		})
		if err != nil {
			c.log.Warn("answer evaluation failed, checking locally", "question_id", q.ID, "error", err)
		} else {
			correct = ev.IsCorrect
			if ev.ShouldEndQuiz {
				signal = &ev
				c.log.Info("evaluator signalled quiz end", "reason", ev.EndReason)
			}
		}
	}

	c.mu.Lock()
	c.evaluating = false
	if epoch != c.epoch || c.s.Phase == PhaseClosed {
		c.mu.Unlock()
		return nil, ErrSuperseded
	}

	now := c.now()
	rec := AnswerRecord{
		QuestionID:       q.ID,
		SelectedAnswer:   selected,
		CorrectAnswer:    q.CorrectAnswer,
		IsCorrect:        correct,
		TimeSpentSeconds: int(now.Sub(c.questionStart) / time.Second),
		Difficulty:       q.Difficulty,
	}
	c.s.Completed = append(c.s.Completed, rec)

	if correct {
		c.s.Streak++
	} else {
		c.s.Streak = 0
	}

	c.s.Window = c.s.Window.Push(correct)
	var change DifficultyChange
	c.s.Difficulty, change = NextDifficulty(c.s.Window, c.s.Difficulty)

	c.s.Submitted = true
	c.s.Phase = PhaseSubmitted
	if signal != nil {
		c.s.EndSignal = signal
	}

	fb := &Feedback{
		IsCorrect:        correct,
		CorrectAnswer:    q.CorrectAnswer,
		Explanation:      q.Explanation,
		Streak:           c.s.Streak,
		Accuracy:         c.s.Accuracy(),
		DifficultyChange: change,
		Difficulty:       c.s.Difficulty,
		Until:            now.Add(c.opts.FeedbackDelay),
	}
	c.feedback = fb
	snap := c.snapshotLocked(now)
	out := *fb
	c.mu.Unlock()

	c.saveSnapshot(ctx, snap)
	c.logAnswer(ctx, q, rec)
	return &out, nil
}

// AdvanceToNextQuestion clears the per-question state, saves a snapshot
// and loads the next question. It does nothing until the current answer
// has been submitted.
func (c *Controller) AdvanceToNextQuestion(ctx context.Context) error {
	c.mu.Lock()
	if c.s.Phase == PhaseClosed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !c.s.Submitted {
		c.mu.Unlock()
		return nil
	}
	c.s.SelectedAnswer = ""
	c.s.Submitted = false
	c.s.HintVisible = false
	c.feedback = nil
	snap := c.snapshotLocked(c.now())
	c.mu.Unlock()

	c.saveSnapshot(ctx, snap)
	return c.LoadNextQuestion(ctx)
}

// IsLastQuestion reports whether the answers so far end the quiz.
func (c *Controller) IsLastQuestion() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.IsLastQuestion()
}

// CanRetry reports whether no question could be served and
// LoadNextQuestion may be tried again.
func (c *Controller) CanRetry() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.Phase == PhaseUnavailable
}

// Accuracy is the running accuracy percentage, 0 before any answer.
func (c *Controller) Accuracy() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.Accuracy()
}

// FinishQuiz closes the quiz and records its results. Results are always
// saved locally. A passing score for a signed-in user is also reported
// to the progress recorder; failure there is logged, not returned.
func (c *Controller) FinishQuiz(ctx context.Context) (Results, error) {
	c.mu.Lock()
	if c.s.Phase == PhaseClosed {
		c.mu.Unlock()
		return Results{}, ErrClosed
	}
	now := c.now()
	acc := c.s.Accuracy()
	res := Results{
		ModuleID:           c.s.ModuleID,
		ModuleTitle:        c.s.ModuleTitle,
		CompletedQuestions: append([]AnswerRecord(nil), c.s.Completed...),
		FinalAccuracy:      acc,
		TotalTime:          c.s.ElapsedSeconds,
		CompletedAt:        now,
		Passed:             Passed(acc),
	}
	c.closeLocked()
	c.mu.Unlock()

	if err := sessionstore.SetJSON(ctx, c.opts.Store, sessionstore.QuizResultsKey(res.ModuleID), res); err != nil {
		c.log.Warn("failed to save quiz results", "error", err)
	}
	if err := c.opts.Store.Delete(ctx, sessionstore.QuizProgressKey(res.ModuleID)); err != nil {
		c.log.Warn("failed to clear quiz snapshot", "error", err)
	}

	if c.opts.UserID != "" && res.Passed && c.opts.Progress != nil {
		score := res.FinalAccuracy
		_, err := c.opts.Progress.UpdateModuleProgress(ctx, c.opts.UserID, res.ModuleID, progress.ModuleUpdate{QuizScore: &score})
		if err != nil {
			c.log.Warn("failed to save module progress", "user_id", c.opts.UserID, "error", err)
		} else {
			c.log.Info("module progress saved", "user_id", c.opts.UserID, "score", score)
		}
	}

	c.logQuizEvent(ctx, store.QuizActionFinish, len(res.CompletedQuestions), res.FinalAccuracy, res.TotalTime, res.Passed)
	c.log.Info("quiz finished", "answered", len(res.CompletedQuestions), "accuracy", res.FinalAccuracy, "passed", res.Passed)
	return res, nil
}

// Exit saves a snapshot so the quiz can be resumed, cancels any in-flight
// fetch and stops the clock. Calling Exit on a closed quiz is a no-op.
func (c *Controller) Exit(ctx context.Context) error {
	c.mu.Lock()
	if c.s.Phase == PhaseClosed {
		c.mu.Unlock()
		return nil
	}
	snap := c.snapshotLocked(c.now())
	answered, acc, elapsed := len(c.s.Completed), c.s.Accuracy(), c.s.ElapsedSeconds
	c.closeLocked()
	c.mu.Unlock()

	c.saveSnapshot(ctx, snap)
	c.logQuizEvent(ctx, store.QuizActionExit, answered, acc, elapsed, false)
	c.log.Info("quiz exited", "answered", answered)
	return nil
}

func (c *Controller) closeLocked() {
	c.epoch++
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}
	c.feedback = nil
	c.s.Phase = PhaseClosed
	close(c.done)
}

// ToggleHint flips hint visibility for the current question.
func (c *Controller) ToggleHint() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s.Current != nil {
		c.s.HintVisible = !c.s.HintVisible
	}
}

// Feedback returns the pending feedback until it is dismissed or its
// display period has passed.
func (c *Controller) Feedback() (Feedback, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.feedback == nil {
		return Feedback{}, false
	}
	if !c.now().Before(c.feedback.Until) {
		c.feedback = nil
		return Feedback{}, false
	}
	return *c.feedback, true
}

// DismissFeedback hides the pending feedback early.
func (c *Controller) DismissFeedback() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.feedback = nil
}

// ReviewQuestion returns the i-th served question (0-based) with its
// answer record. It reports false for questions not yet answered.
func (c *Controller) ReviewQuestion(i int) (Review, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.s.History) {
		return Review{}, false
	}
	q := c.s.History[i]
	for j := len(c.s.Completed) - 1; j >= 0; j-- {
		if c.s.Completed[j].QuestionID == q.ID {
			return Review{Number: i + 1, Question: q, Record: c.s.Completed[j]}, true
		}
	}
	return Review{}, false
}

// Tick advances the session clock by one second.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s.Phase != PhaseClosed {
		c.s.ElapsedSeconds++
	}
}

// RunClock ticks the session clock every second until ctx is done or the
// quiz is closed.
func (c *Controller) RunClock(ctx context.Context) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.done:
			return
		case <-t.C:
			c.Tick()
		}
	}
}

// Done is closed when the quiz finishes or exits.
func (c *Controller) Done() <-chan struct{} { return c.done }

// State returns a copy of the session state.
func (c *Controller) State() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.clone()
}

func (c *Controller) snapshotLocked(now time.Time) ProgressSnapshot {
	return ProgressSnapshot{
		CurrentQuestionIndex: len(c.s.Completed),
		CompletedQuestions:   append([]AnswerRecord(nil), c.s.Completed...),
		TimeElapsed:          c.s.ElapsedSeconds,
		StreakCount:          c.s.Streak,
		RollingWindow:        append([]bool(nil), c.s.Window...),
		CurrentDifficulty:    c.s.Difficulty,
		LastUpdated:          now,
	}
}

func (c *Controller) saveSnapshot(ctx context.Context, snap ProgressSnapshot) {
	if err := sessionstore.SetJSON(ctx, c.opts.Store, sessionstore.QuizProgressKey(c.opts.ModuleID), snap); err != nil {
		c.log.Warn("failed to save quiz snapshot", "error", err)
	}
}

func (c *Controller) logAnswer(ctx context.Context, q Question, rec AnswerRecord) {
	if c.opts.Answers == nil {
		return
	}
	err := c.opts.Answers.AppendAnswerEvent(ctx, store.AnswerEventData{
		SessionID:      c.opts.SessionID,
		ModuleID:       c.opts.ModuleID,
		QuestionID:     rec.QuestionID,
		QuestionText:   q.Text,
		Topic:          q.Topic,
		Difficulty:     string(rec.Difficulty),
		SelectedAnswer: rec.SelectedAnswer,
		CorrectAnswer:  rec.CorrectAnswer,
		Correct:        rec.IsCorrect,
		TimeSpentSecs:  rec.TimeSpentSeconds,
	})
	if err != nil {
		c.log.Warn("failed to log answer", "error", err)
	}
}

func (c *Controller) logQuizEvent(ctx context.Context, action string, answered int, acc float64, elapsed int, passed bool) {
	if c.opts.Answers == nil {
		return
	}
	err := c.opts.Answers.AppendQuizEvent(ctx, store.QuizEventData{
		SessionID:         c.opts.SessionID,
		ModuleID:          c.opts.ModuleID,
		Action:            action,
		QuestionsAnswered: answered,
		Accuracy:          acc,
		ElapsedSecs:       elapsed,
		Passed:            passed,
	})
	if err != nil {
		c.log.Warn("failed to log quiz event", "action", action, "error", err)
	}
}
