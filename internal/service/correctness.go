package service

import (
	"fmt"
	"slices"
	"strings"
)

// letterCodes maps the letter form of a correct indicator to an option position.
var letterCodes = map[string]int{"a": 0, "b": 1, "c": 2, "d": 3}

// ResolveCorrectOption returns the option text that answers record correctly.
// A literal option wins over a letter code, so an option literally named "a"
// is never reinterpreted.
func ResolveCorrectOption(record QuestionRecord) (string, error) {
	return resolveCorrectOption(record, -1)
}

func resolveCorrectOption(record QuestionRecord, index int) (string, error) {
	if record.Correct != "" && slices.Contains(record.Options, record.Correct) {
		return record.Correct, nil
	}
	position, ok := letterCodes[strings.ToLower(strings.TrimSpace(record.Correct))]
	if !ok {
		return "", &MalformedRecordError{
			Index:  index,
			Prompt: record.Prompt,
			Reason: fmt.Sprintf("correct indicator %q is neither an option nor a letter a-d", record.Correct),
		}
	}
	if position >= len(record.Options) {
		return "", &MalformedRecordError{
			Index:  index,
			Prompt: record.Prompt,
			Reason: fmt.Sprintf("letter %q points past the %d available options", record.Correct, len(record.Options)),
		}
	}
	return record.Options[position], nil
}

// IsAnswerCorrect reports whether given is the correct option of record.
// An empty answer is never correct.
func IsAnswerCorrect(record QuestionRecord, given string) bool {
	if given == "" {
		return false
	}
	correct, err := ResolveCorrectOption(record)
	if err != nil {
		return false
	}
	return given == correct
}

// NormalizeRecord trims a record, validates it and rewrites Correct to the
// literal option text.
func NormalizeRecord(record QuestionRecord) (QuestionRecord, error) {
	collector := &issueCollector{}
	normalized := normalizeRecord(record, -1, "question", collector)
	if err := collector.result(); err != nil {
		return QuestionRecord{}, err
	}
	return normalized, nil
}

// NormalizeBank normalizes every record and reports all problems at once.
func NormalizeBank(records []QuestionRecord) ([]QuestionRecord, error) {
	collector := &issueCollector{}
	normalized := make([]QuestionRecord, 0, len(records))
	for i, record := range records {
		normalized = append(normalized, normalizeRecord(record, i, fmt.Sprintf("questions[%d]", i), collector))
	}
	if err := collector.result(); err != nil {
		return nil, err
	}
	return normalized, nil
}

func normalizeRecord(record QuestionRecord, index int, prefix string, collector *issueCollector) QuestionRecord {
	out := QuestionRecord{
		Prompt:      strings.TrimSpace(record.Prompt),
		Options:     make([]string, 0, len(record.Options)),
		Correct:     strings.TrimSpace(record.Correct),
		Explanation: strings.TrimSpace(record.Explanation),
		Topic:       strings.TrimSpace(record.Topic),
	}
	if out.Prompt == "" {
		collector.add(prefix+".question", "is required", ErrInvalidInput)
	}

	seen := make(map[string]struct{}, len(record.Options))
	for i, option := range record.Options {
		option = strings.TrimSpace(option)
		field := fmt.Sprintf("%s.options[%d]", prefix, i)
		if option == "" {
			collector.add(field, "is required", ErrInvalidInput)
			continue
		}
		if _, dup := seen[option]; dup {
			collector.add(field, fmt.Sprintf("duplicate option %q", option), ErrInvalidInput)
			continue
		}
		seen[option] = struct{}{}
		out.Options = append(out.Options, option)
	}
	if len(record.Options) < 2 {
		collector.add(prefix+".options", "must include at least two entries", ErrInvalidInput)
		return out
	}

	correct, err := resolveCorrectOption(out, index)
	if err != nil {
		collector.add(prefix+".correct", err.Error(), err)
		return out
	}
	out.Correct = correct
	return out
}
