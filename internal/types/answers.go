package types

import (
	"encoding/json"
	"fmt"
)

// AnswerMap accumulates user answers keyed by round-scoped question index,
// e.g. "answer_0", "generalized_answer_2", "follow_up_answer_4". Entries are
// never removed; each round writes under its own prefix.
type AnswerMap map[string]string

// AnswerKey builds the round-scoped key for a question index.
func AnswerKey(round Round, index int) string {
	return fmt.Sprintf("%s%d", round.AnswerPrefix(), index)
}

// Set stores an answer under the round-scoped key for index.
func (am AnswerMap) Set(round Round, index int, answer string) {
	am[AnswerKey(round, index)] = answer
}

// Merged returns a new AnswerMap covering index ranges [0, count) for each
// round in counts. Indices that were never answered (skipped questions,
// abandoned rounds) are filled with the empty string so every index remains
// representable in the merged view.
func (am AnswerMap) Merged(counts map[Round]int) AnswerMap {
	merged := make(AnswerMap)
	for round, count := range counts {
		for i := 0; i < count; i++ {
			key := AnswerKey(round, i)
			merged[key] = am[key]
		}
	}
	return merged
}

// ToJSON returns the pretty-printed serialization used in prompts. Keys are
// sorted, which groups each round's answers together by prefix.
func (am AnswerMap) ToJSON() string {
	data, err := json.MarshalIndent(am, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}
