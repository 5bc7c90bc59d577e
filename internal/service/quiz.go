package service

import (
	"errors"
	"fmt"
	"strings"
)

// QuestionRecord is one entry of the question bank. Correct holds either the
// literal text of the right option or a letter code a-d.
type QuestionRecord struct {
	Prompt      string   `json:"question" yaml:"question"`
	Options     []string `json:"options" yaml:"options"`
	Correct     string   `json:"correct" yaml:"correct"`
	Explanation string   `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Topic       string   `json:"topic,omitempty" yaml:"topic,omitempty"`
}

// QuestionBank is the on-disk document shape of a question bank.
type QuestionBank struct {
	Questions []QuestionRecord `json:"questions" yaml:"questions"`
}

// SessionState holds everything that changes during one quiz run.
// An empty string in Answers or SelectedOption means "not answered".
type SessionState struct {
	SessionID       string
	SelectedTopics  []string
	RequestedCount  int
	ActiveQuestions []QuestionRecord
	Answers         []string
	CurrentIndex    int
	SelectedOption  string
	Started         bool
	Finished        bool
}

// Phase is the coarse state of a session.
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseActive
	PhaseFinished
)

func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseActive:
		return "active"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

var (
	// ErrMalformedRecord marks a record whose correct indicator cannot be resolved.
	ErrMalformedRecord = errors.New("malformed question record")
	// ErrInvalidInput marks caller input that is not acceptable for the current state.
	ErrInvalidInput = errors.New("invalid input")
	// ErrOutOfRange marks a question index outside the active set.
	ErrOutOfRange = errors.New("question index out of range")
	// ErrNotStarted is returned by session operations before Start.
	ErrNotStarted = errors.New("quiz not started")
	// ErrSessionFinished is returned when answering after Finish.
	ErrSessionFinished = errors.New("quiz already finished")
)

// MalformedRecordError identifies the record that failed to resolve.
type MalformedRecordError struct {
	Index  int
	Prompt string
	Reason string
}

func (err *MalformedRecordError) Error() string {
	if err.Index < 0 {
		return fmt.Sprintf("%s %q: %s", ErrMalformedRecord, err.Prompt, err.Reason)
	}
	return fmt.Sprintf("%s #%d %q: %s", ErrMalformedRecord, err.Index, err.Prompt, err.Reason)
}

func (err *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

// Issue captures a validation problem in the question bank.
type Issue struct {
	Field   string
	Message string
	Err     error
}

// ValidationError reports one or more problems found in a question bank.
type ValidationError struct {
	Issues []Issue
}

func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return ""
	}
	parts := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return fmt.Sprintf("question bank validation failed: %s", strings.Join(parts, "; "))
}

// Unwrap exposes the per-issue causes to errors.Is and errors.As.
func (err *ValidationError) Unwrap() []error {
	if err == nil {
		return nil
	}
	causes := make([]error, 0, len(err.Issues))
	for _, issue := range err.Issues {
		if issue.Err != nil {
			causes = append(causes, issue.Err)
		}
	}
	return causes
}

type issueCollector struct {
	issues []Issue
}

func (collector *issueCollector) add(field, message string, cause error) {
	collector.issues = append(collector.issues, Issue{Field: field, Message: message, Err: cause})
}

func (collector *issueCollector) result() error {
	if len(collector.issues) == 0 {
		return nil
	}
	return &ValidationError{Issues: collector.issues}
}
