package session

import (
	"context"
	"strings"

	"github.com/jonathan/jd-refiner/internal/extraction"
	"github.com/jonathan/jd-refiner/internal/questions"
	"github.com/jonathan/jd-refiner/internal/refinement"
	"github.com/jonathan/jd-refiner/internal/types"
)

// SubmitDescription starts (or restarts) the workflow: extract entities from
// the job description and open the gap round. Recoverable extraction
// failures leave the sentinel FieldSet in place and the session usable; the
// failure text is exposed via Notice. Resubmitting discards the previous
// run's questions and answers.
func (s *Session) SubmitDescription(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyDescription
	}

	entities, err := extraction.Extract(ctx, s.client, text)
	if entities == nil {
		// Missing template variable: contract defect, not recoverable.
		return err
	}
	s.recordFailure(err)

	s.jobDescription = text
	s.entities = entities
	s.generalized = nil
	s.final = nil
	s.answers = make(types.AnswerMap)
	s.questionCounts = make(map[types.Round]int)

	s.installRound(types.RoundGap, questions.Gap(ctx, s.client, entities))
	return nil
}

// ActiveQuestion applies the skip policy and returns the question awaiting
// an answer together with its index. ok is false when the round is complete
// (or no answer round is active). Empty questions are skipped repeatedly,
// not just once, so the cursor always rests on a non-empty question or at
// the end of the list.
func (s *Session) ActiveQuestion() (question string, index int, ok bool) {
	if !s.inAnswerRound() {
		return "", 0, false
	}
	s.skipBlank()
	if s.cursor >= len(s.questions) {
		return "", s.cursor, false
	}
	return s.questions[s.cursor], s.cursor, true
}

// SubmitAnswer stores one answer for the active question under the round's
// scoped key and advances the cursor.
func (s *Session) SubmitAnswer(text string) error {
	if s.round == types.RoundFinal {
		return ErrFinalized
	}
	if !s.inAnswerRound() {
		return ErrNoDescription
	}
	s.skipBlank()
	if s.cursor >= len(s.questions) {
		return ErrRoundComplete
	}

	s.answers.Set(s.round, s.cursor, text)
	s.cursor++
	s.skipBlank()
	return nil
}

// RoundComplete reports whether every question in the active round has been
// answered or skipped.
func (s *Session) RoundComplete() bool {
	if !s.inAnswerRound() {
		return false
	}
	s.skipBlank()
	return s.cursor >= len(s.questions)
}

// AdvanceRound moves to the next question round. Gap -> Generalized runs the
// refinement synthesizer over the gap answers and generates generalized
// questions from the refined document; Generalized -> FollowUp generates
// follow-up questions from all accumulated answers. Unanswered indices are
// zero-filled; previously entered answers are retained (round prefixes are
// disjoint).
func (s *Session) AdvanceRound(ctx context.Context) error {
	switch s.round {
	case types.RoundGap:
		merged := s.answers.Merged(s.countsThrough(types.RoundGap))
		refined, err := refinement.Refine(ctx, s.client, s.jobDescription, s.entities, merged)
		if refined == nil {
			return err
		}
		s.recordFailure(err)
		s.generalized = refined
		s.installRound(types.RoundGeneralized, questions.Generalized(ctx, s.client, refined.ToJSON()))
		return nil

	case types.RoundGeneralized:
		merged := s.answers.Merged(s.countsThrough(types.RoundGeneralized))
		s.installRound(types.RoundFollowUp, questions.FollowUp(ctx, s.client, merged))
		return nil

	case types.RoundNone:
		return ErrNoDescription
	case types.RoundFinal:
		return ErrFinalized
	default:
		return ErrNoNextRound
	}
}

// Finalize merges all three rounds' answers (zero-filling unanswered
// indices) and synthesizes the final document against the original job
// description and the extracted entities.
func (s *Session) Finalize(ctx context.Context) error {
	if s.round == types.RoundNone {
		return ErrNoDescription
	}
	if s.round == types.RoundFinal {
		return ErrFinalized
	}

	merged := s.answers.Merged(s.countsThrough(types.RoundFollowUp))
	final, err := refinement.Refine(ctx, s.client, s.jobDescription, s.entities, merged)
	if final == nil {
		return err
	}
	s.recordFailure(err)

	s.final = final
	s.round = types.RoundFinal
	s.questions = nil
	s.cursor = 0
	return nil
}

// installRound resets the cursor and installs a new question list for round.
func (s *Session) installRound(round types.Round, list []string) {
	s.round = round
	s.questions = list
	s.questionCounts[round] = len(list)
	s.cursor = 0
}

// skipBlank advances the cursor past empty questions. Empty entries mean
// "no input required" and must never block the collection loop.
func (s *Session) skipBlank() {
	for s.cursor < len(s.questions) && strings.TrimSpace(s.questions[s.cursor]) == "" {
		s.cursor++
	}
}

// countsThrough returns the question counts for every round up to and
// including through, so merged answer maps cover each round's full index
// range.
func (s *Session) countsThrough(through types.Round) map[types.Round]int {
	counts := make(map[types.Round]int)
	for _, round := range []types.Round{types.RoundGap, types.RoundGeneralized, types.RoundFollowUp} {
		if round > through {
			break
		}
		counts[round] = s.questionCounts[round]
	}
	return counts
}

// recordFailure captures a recoverable gateway/parse failure for the
// presentation layer and clears any previous notice on success.
func (s *Session) recordFailure(err error) {
	if err == nil {
		s.notice = ""
		return
	}
	s.notice = err.Error()
}
