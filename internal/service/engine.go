package service

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Engine runs quiz sessions over a fixed question bank. It owns a single
// SessionState and is not safe for concurrent use; callers drive it from one
// event loop.
type Engine struct {
	bank  []QuestionRecord
	rng   *rand.Rand
	log   *zap.Logger
	state SessionState
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for session events.
func WithLogger(log *zap.Logger) EngineOption {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithRand sets the random source used to pick questions.
func WithRand(r *rand.Rand) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// NewEngine validates the whole bank up front and returns an engine in the
// not-started state. Letter-coded records are rewritten to literal form.
func NewEngine(bank []QuestionRecord, opts ...EngineOption) (*Engine, error) {
	normalized, err := NormalizeBank(bank)
	if err != nil {
		return nil, err
	}
	e := &Engine{
		bank: normalized,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = newRand()
	}
	return e, nil
}

// Start picks min(requestedCount, available) random questions from the
// topics in selectedTopics (all topics when empty) and begins a new session.
func (e *Engine) Start(requestedCount int, selectedTopics []string) error {
	if requestedCount <= 0 {
		return fmt.Errorf("%w: question count must be positive, got %d", ErrInvalidInput, requestedCount)
	}
	pool := FilterByTopics(e.bank, selectedTopics)
	active := ShuffleQuestionsWithLimit(pool, requestedCount, e.rng)

	e.state = SessionState{
		SessionID:       uuid.NewString(),
		SelectedTopics:  slices.Clone(selectedTopics),
		RequestedCount:  requestedCount,
		ActiveQuestions: active,
		Answers:         make([]string, len(active)),
		Started:         true,
	}
	e.log.Info("quiz started",
		zap.String("session_id", e.state.SessionID),
		zap.Int("requested", requestedCount),
		zap.Int("selected", len(active)),
		zap.Strings("topics", selectedTopics),
	)
	return nil
}

// Answer records option as the answer to the current question, replacing any
// earlier answer. Answers are frozen once the session is finished.
func (e *Engine) Answer(option string) error {
	if !e.state.Started {
		return ErrNotStarted
	}
	if e.state.Finished {
		return ErrSessionFinished
	}
	question, ok := e.CurrentQuestion()
	if !ok {
		return fmt.Errorf("%w: no questions in this session", ErrOutOfRange)
	}
	if !slices.Contains(question.Options, option) {
		return fmt.Errorf("%w: %q is not an option of question %d", ErrInvalidInput, option, e.state.CurrentIndex+1)
	}
	e.state.Answers[e.state.CurrentIndex] = option
	e.state.SelectedOption = option
	e.log.Debug("answer recorded",
		zap.String("session_id", e.state.SessionID),
		zap.Int("index", e.state.CurrentIndex),
		zap.String("option", option),
	)
	return nil
}

// GoToQuestion moves to index and restores its recorded answer as the selection.
func (e *Engine) GoToQuestion(index int) error {
	if !e.state.Started {
		return ErrNotStarted
	}
	if index < 0 || index >= len(e.state.ActiveQuestions) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, index, len(e.state.ActiveQuestions))
	}
	e.state.CurrentIndex = index
	e.state.SelectedOption = e.state.Answers[index]
	e.log.Debug("moved to question",
		zap.String("session_id", e.state.SessionID),
		zap.Int("index", index),
	)
	return nil
}

// NextQuestion advances one question; it does nothing on the last one.
func (e *Engine) NextQuestion() error {
	if !e.state.Started {
		return ErrNotStarted
	}
	if e.state.CurrentIndex >= len(e.state.ActiveQuestions)-1 {
		return nil
	}
	return e.GoToQuestion(e.state.CurrentIndex + 1)
}

// PrevQuestion goes back one question; it does nothing on the first one.
func (e *Engine) PrevQuestion() error {
	if !e.state.Started {
		return ErrNotStarted
	}
	if e.state.CurrentIndex <= 0 {
		return nil
	}
	return e.GoToQuestion(e.state.CurrentIndex - 1)
}

// Finish switches the session to review mode. Unanswered questions count as
// incorrect. Calling it again has no effect.
func (e *Engine) Finish() error {
	if !e.state.Started {
		return ErrNotStarted
	}
	if e.state.Finished {
		return nil
	}
	e.state.Finished = true
	result := e.Result()
	e.log.Info("quiz finished",
		zap.String("session_id", e.state.SessionID),
		zap.Int("total", result.Total),
		zap.Int("answered", result.Answered),
		zap.Int("correct", result.Correct),
		zap.Int("percentage", result.Percentage),
	)
	return nil
}

// Reset discards the current session.
func (e *Engine) Reset() {
	if e.state.Started {
		e.log.Info("quiz reset", zap.String("session_id", e.state.SessionID))
	}
	e.state = SessionState{}
}

// State returns a copy of the session state.
func (e *Engine) State() SessionState {
	state := e.state
	state.SelectedTopics = slices.Clone(e.state.SelectedTopics)
	state.ActiveQuestions = e.Questions()
	state.Answers = slices.Clone(e.state.Answers)
	return state
}

// Questions returns a copy of the active question set.
func (e *Engine) Questions() []QuestionRecord {
	if e.state.ActiveQuestions == nil {
		return nil
	}
	questions := make([]QuestionRecord, len(e.state.ActiveQuestions))
	for i, question := range e.state.ActiveQuestions {
		question.Options = slices.Clone(question.Options)
		questions[i] = question
	}
	return questions
}

// Answers returns a copy of the recorded answers, aligned with Questions.
func (e *Engine) Answers() []string {
	return slices.Clone(e.state.Answers)
}

func (e *Engine) CurrentIndex() int      { return e.state.CurrentIndex }
func (e *Engine) SelectedOption() string { return e.state.SelectedOption }
func (e *Engine) Started() bool          { return e.state.Started }
func (e *Engine) Finished() bool         { return e.state.Finished }
func (e *Engine) SessionID() string      { return e.state.SessionID }
func (e *Engine) Len() int               { return len(e.state.ActiveQuestions) }

// Phase reports where the session is in its lifecycle.
func (e *Engine) Phase() Phase {
	switch {
	case !e.state.Started:
		return PhaseNotStarted
	case e.state.Finished:
		return PhaseFinished
	default:
		return PhaseActive
	}
}

// CurrentQuestion returns the question at the current index, if any.
func (e *Engine) CurrentQuestion() (QuestionRecord, bool) {
	if !e.state.Started || e.state.CurrentIndex >= len(e.state.ActiveQuestions) {
		return QuestionRecord{}, false
	}
	question := e.state.ActiveQuestions[e.state.CurrentIndex]
	question.Options = slices.Clone(question.Options)
	return question, true
}

// BankSize is the number of records in the bank.
func (e *Engine) BankSize() int {
	return len(e.bank)
}

// AvailableCount is the number of questions Start can draw from for topics.
func (e *Engine) AvailableCount(topics []string) int {
	return len(FilterByTopics(e.bank, topics))
}

// Topics lists the distinct non-empty topics in the bank, sorted.
func (e *Engine) Topics() []string {
	seen := make(map[string]struct{})
	var topics []string
	for _, record := range e.bank {
		if record.Topic == "" {
			continue
		}
		if _, ok := seen[record.Topic]; ok {
			continue
		}
		seen[record.Topic] = struct{}{}
		topics = append(topics, record.Topic)
	}
	sort.Strings(topics)
	return topics
}
