// Package session implements the multi-round conversational state machine
// driving job description refinement: extraction, gap questions, generalized
// questions, follow-up questions, and final synthesis. All transitions are
// triggered by explicit user actions; there are no timers and no background
// work. A Session is owned by exactly one caller at a time.
package session

import (
	"errors"

	"github.com/jonathan/jd-refiner/internal/llm"
	"github.com/jonathan/jd-refiner/internal/types"
)

// State-machine errors returned for out-of-order user actions.
var (
	// ErrNoDescription is returned when an action requires a submitted
	// job description and none exists yet.
	ErrNoDescription = errors.New("no job description submitted")
	// ErrRoundComplete is returned when an answer is submitted after the
	// current round's question list is exhausted.
	ErrRoundComplete = errors.New("current round is already complete")
	// ErrNoNextRound is returned when AdvanceRound is called past the
	// follow-up round.
	ErrNoNextRound = errors.New("no further question rounds")
	// ErrFinalized is returned for answer or advance actions after the
	// session has produced its final document.
	ErrFinalized = errors.New("session is finalized")
	// ErrEmptyDescription is returned for a blank description submission.
	ErrEmptyDescription = errors.New("job description is empty")
)

// Session holds the full state of one refinement workflow. Lifecycle:
// created empty, mutated only by its own methods in response to user
// actions, discarded at session end. No durable storage.
type Session struct {
	client llm.Client

	jobDescription string
	entities       types.FieldSet
	generalized    types.FieldSet
	final          types.FieldSet

	round     types.Round
	questions []string
	cursor    int
	answers   types.AnswerMap

	// questionCounts records each round's question list length so merged
	// answer views can zero-fill never-answered indices.
	questionCounts map[types.Round]int

	// notice carries the most recent recoverable failure (gateway or parse)
	// for the presentation layer to surface; cleared on the next success.
	notice string
}

// New creates an empty session backed by the given completion client.
func New(client llm.Client) *Session {
	return &Session{
		client:         client,
		round:          types.RoundNone,
		answers:        make(types.AnswerMap),
		questionCounts: make(map[types.Round]int),
	}
}

// Snapshot is an immutable view of session state for presentation layers.
type Snapshot struct {
	Round          string          `json:"round"`
	JobDescription string          `json:"job_description,omitempty"`
	Entities       types.FieldSet  `json:"entities,omitempty"`
	Generalized    types.FieldSet  `json:"generalized,omitempty"`
	Final          types.FieldSet  `json:"final,omitempty"`
	Questions      []string        `json:"questions"`
	Cursor         int             `json:"cursor"`
	ActiveQuestion string          `json:"active_question,omitempty"`
	RoundComplete  bool            `json:"round_complete"`
	Answers        types.AnswerMap `json:"answers"`
	Notice         string          `json:"notice,omitempty"`
}

// Snapshot returns a copy of the session state for rendering. Taking a
// snapshot applies the skip policy, so the reported cursor never rests on an
// empty question.
func (s *Session) Snapshot() Snapshot {
	active, _, ok := s.ActiveQuestion()

	questions := make([]string, len(s.questions))
	copy(questions, s.questions)

	answers := make(types.AnswerMap, len(s.answers))
	for k, v := range s.answers {
		answers[k] = v
	}

	snap := Snapshot{
		Round:          s.round.Tag(),
		JobDescription: s.jobDescription,
		Entities:       s.entities,
		Generalized:    s.generalized,
		Final:          s.final,
		Questions:      questions,
		Cursor:         s.cursor,
		RoundComplete:  !ok && s.inAnswerRound(),
		Answers:        answers,
		Notice:         s.notice,
	}
	if ok {
		snap.ActiveQuestion = active
	}
	return snap
}

// Round returns the current workflow round.
func (s *Session) Round() types.Round { return s.round }

// Entities returns the latest extracted FieldSet.
func (s *Session) Entities() types.FieldSet { return s.entities }

// Generalized returns the refined document produced after the gap round.
func (s *Session) Generalized() types.FieldSet { return s.generalized }

// Final returns the finalized document, nil until Finalize succeeds.
func (s *Session) Final() types.FieldSet { return s.final }

// Questions returns the active question list.
func (s *Session) Questions() []string { return s.questions }

// Cursor returns the zero-based position in the active question list.
// Invariant: 0 <= Cursor() <= len(Questions()).
func (s *Session) Cursor() int { return s.cursor }

// Answers returns the accumulated answer map. Entries are never pruned.
func (s *Session) Answers() types.AnswerMap { return s.answers }

// Notice returns the most recent recoverable failure message, if any.
func (s *Session) Notice() string { return s.notice }

// inAnswerRound reports whether the session is in one of the three
// answer-collection rounds.
func (s *Session) inAnswerRound() bool {
	switch s.round {
	case types.RoundGap, types.RoundGeneralized, types.RoundFollowUp:
		return true
	default:
		return false
	}
}
