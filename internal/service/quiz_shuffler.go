package service

import (
	"math/rand/v2"
)

// newRand returns a PCG generator seeded from the runtime's random source.
func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

// ShuffleQuestions returns a shuffled copy of questions; the input is left untouched.
func ShuffleQuestions(questions []QuestionRecord, r *rand.Rand) []QuestionRecord {
	shuffled := make([]QuestionRecord, len(questions))
	copy(shuffled, questions)

	if r == nil {
		r = newRand()
	}

	// Fisher-Yates
	for i := len(shuffled) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	return shuffled
}

// ShuffleQuestionsWithLimit shuffles questions and keeps at most limit of them.
// A non-positive limit keeps everything.
func ShuffleQuestionsWithLimit(questions []QuestionRecord, limit int, r *rand.Rand) []QuestionRecord {
	shuffled := ShuffleQuestions(questions, r)

	if limit <= 0 || limit > len(shuffled) {
		limit = len(shuffled)
	}

	return shuffled[:limit]
}

// FilterByTopics keeps the records whose topic is in topics. An empty topic
// list keeps the whole bank.
func FilterByTopics(questions []QuestionRecord, topics []string) []QuestionRecord {
	if len(topics) == 0 {
		return questions
	}
	wanted := make(map[string]struct{}, len(topics))
	for _, topic := range topics {
		wanted[topic] = struct{}{}
	}
	filtered := make([]QuestionRecord, 0, len(questions))
	for _, question := range questions {
		if _, ok := wanted[question.Topic]; ok {
			filtered = append(filtered, question)
		}
	}
	return filtered
}
