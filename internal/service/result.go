package service

import "fmt"

// Result summarizes a session. Unanswered questions count as incorrect.
type Result struct {
	Total      int
	Answered   int
	Correct    int
	Percentage int
}

// OptionState is the highlight an option gets when a question is shown.
type OptionState int

const (
	OptionNeutral OptionState = iota
	// OptionSelected marks the chosen option while the quiz is still running.
	OptionSelected
	// OptionCorrect marks the right option in review mode.
	OptionCorrect
	// OptionWrong marks a given answer that was not the right one.
	OptionWrong
)

func (s OptionState) String() string {
	switch s {
	case OptionNeutral:
		return "neutral"
	case OptionSelected:
		return "selected"
	case OptionCorrect:
		return "correct"
	case OptionWrong:
		return "wrong"
	default:
		return fmt.Sprintf("option_state(%d)", int(s))
	}
}

// QuestionStatus is the state of one entry in the question navigation strip.
type QuestionStatus int

const (
	StatusUnanswered QuestionStatus = iota
	StatusAnswered
	StatusCurrent
	StatusCorrect
	StatusIncorrect
)

func (s QuestionStatus) String() string {
	switch s {
	case StatusUnanswered:
		return "unanswered"
	case StatusAnswered:
		return "answered"
	case StatusCurrent:
		return "current"
	case StatusCorrect:
		return "correct"
	case StatusIncorrect:
		return "incorrect"
	default:
		return fmt.Sprintf("question_status(%d)", int(s))
	}
}

// Result scores the session as it stands.
func (e *Engine) Result() Result {
	result := Result{Total: len(e.state.ActiveQuestions)}
	for i, question := range e.state.ActiveQuestions {
		answer := e.state.Answers[i]
		if answer == "" {
			continue
		}
		result.Answered++
		if IsAnswerCorrect(question, answer) {
			result.Correct++
		}
	}
	if result.Total > 0 {
		result.Percentage = (result.Correct * 100) / result.Total
	}
	return result
}

// IsCorrect reports whether the question at index was answered correctly.
func (e *Engine) IsCorrect(index int) (bool, error) {
	if !e.state.Started {
		return false, ErrNotStarted
	}
	if index < 0 || index >= len(e.state.ActiveQuestions) {
		return false, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, index, len(e.state.ActiveQuestions))
	}
	return IsAnswerCorrect(e.state.ActiveQuestions[index], e.state.Answers[index]), nil
}

// OptionFeedback returns the highlight for each option of the question at
// index. Correctness is only revealed once the session is finished.
func (e *Engine) OptionFeedback(index int) ([]OptionState, error) {
	if !e.state.Started {
		return nil, ErrNotStarted
	}
	if index < 0 || index >= len(e.state.ActiveQuestions) {
		return nil, fmt.Errorf("%w: %d not in [0, %d)", ErrOutOfRange, index, len(e.state.ActiveQuestions))
	}
	question := e.state.ActiveQuestions[index]
	answer := e.state.Answers[index]
	selected := answer
	if index == e.state.CurrentIndex {
		selected = e.state.SelectedOption
	}

	states := make([]OptionState, len(question.Options))
	for i, option := range question.Options {
		switch {
		case e.state.Finished && option == question.Correct:
			states[i] = OptionCorrect
		case e.state.Finished && option == answer:
			states[i] = OptionWrong
		case !e.state.Finished && option == selected:
			states[i] = OptionSelected
		}
	}
	return states, nil
}

// QuestionStatuses returns one status per active question. The current
// question always shows as current.
func (e *Engine) QuestionStatuses() []QuestionStatus {
	statuses := make([]QuestionStatus, len(e.state.ActiveQuestions))
	for i, question := range e.state.ActiveQuestions {
		answer := e.state.Answers[i]
		switch {
		case i == e.state.CurrentIndex:
			statuses[i] = StatusCurrent
		case answer == "":
			statuses[i] = StatusUnanswered
		case !e.state.Finished:
			statuses[i] = StatusAnswered
		case IsAnswerCorrect(question, answer):
			statuses[i] = StatusCorrect
		default:
			statuses[i] = StatusIncorrect
		}
	}
	return statuses
}
