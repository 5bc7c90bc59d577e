package service

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ParseQuizQuestions reads a question bank from a YAML or JSON file. The
// records are returned as written; NewEngine validates them.
func ParseQuizQuestions(filename string) ([]QuestionRecord, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read question bank: %w", err)
	}

	var bank QuestionBank
	if strings.EqualFold(filepath.Ext(filename), ".json") {
		bank, err = parseJSONBank(data)
	} else {
		bank, err = parseYAMLBank(data)
	}
	if err != nil {
		return nil, err
	}

	if len(bank.Questions) == 0 {
		return nil, fmt.Errorf("no questions found in %s", filename)
	}
	return bank.Questions, nil
}

func parseJSONBank(data []byte) (QuestionBank, error) {
	var bank QuestionBank
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&bank); err != nil {
		return QuestionBank{}, fmt.Errorf("parse json: %w", err)
	}
	if err := decoder.Decode(new(json.RawMessage)); !errors.Is(err, io.EOF) {
		if err == nil {
			return QuestionBank{}, fmt.Errorf("parse json: multiple documents are not supported")
		}
		return QuestionBank{}, fmt.Errorf("parse json: %w", err)
	}
	return bank, nil
}

func parseYAMLBank(data []byte) (QuestionBank, error) {
	var bank QuestionBank
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&bank); err != nil {
		return QuestionBank{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(new(yaml.Node)); !errors.Is(err, io.EOF) {
		if err == nil {
			return QuestionBank{}, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return QuestionBank{}, fmt.Errorf("parse yaml: %w", err)
	}
	return bank, nil
}

// LoadQuizQuestions loads the bank at filename, falling back to the built-in
// questions when the file is missing or unreadable.
func LoadQuizQuestions(filename string, log *zap.Logger) []QuestionRecord {
	if log == nil {
		log = zap.NewNop()
	}
	questions, err := ParseQuizQuestions(filename)
	if err != nil {
		log.Warn("failed to load question bank, using default questions",
			zap.String("path", filename),
			zap.Error(err),
		)
		return DefaultQuizQuestions()
	}

	log.Info("question bank loaded",
		zap.String("path", filename),
		zap.Int("questions", len(questions)),
	)
	return questions
}

// DefaultQuizQuestions is the built-in bank. It mixes literal and letter-coded
// correct indicators.
func DefaultQuizQuestions() []QuestionRecord {
	return []QuestionRecord{
		{
			Prompt:  "Which keyword starts a goroutine?",
			Options: []string{"go", "async", "spawn", "thread"},
			Correct: "go",
			Topic:   "go",
		},
		{
			Prompt:      "What does a nil map do on write?",
			Options:     []string{"Grows automatically", "Panics", "Ignores the write", "Returns an error"},
			Correct:     "b",
			Explanation: "Writing to a nil map panics; reading from it returns the zero value.",
			Topic:       "go",
		},
		{
			Prompt:  "Which HTTP status code means Not Found?",
			Options: []string{"200", "301", "404", "500"},
			Correct: "c",
			Topic:   "web",
		},
		{
			Prompt:  "Which port does HTTPS use by default?",
			Options: []string{"80", "443", "8080", "22"},
			Correct: "443",
			Topic:   "web",
		},
	}
}

// CountChoices returns the question counts offered before a quiz: the presets
// that fit in the bank plus the full bank size, ascending and without repeats.
func CountChoices(presets []int, bankSize int) []int {
	choices := make([]int, 0, len(presets)+1)
	for _, preset := range presets {
		if preset > 0 && preset <= bankSize {
			choices = append(choices, preset)
		}
	}
	if bankSize > 0 {
		choices = append(choices, bankSize)
	}
	slices.Sort(choices)
	return slices.Compact(choices)
}
