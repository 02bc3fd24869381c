package types

import "fmt"

// Round identifies one phase of the question/answer workflow.
type Round int

// Workflow rounds, in order. RoundNone precedes description submission;
// RoundFinal follows finalization.
const (
	RoundNone Round = iota
	RoundGap
	RoundGeneralized
	RoundFollowUp
	RoundFinal
)

// Tag returns the wire tag for the round, used in API payloads.
func (r Round) Tag() string {
	switch r {
	case RoundNone:
		return "none"
	case RoundGap:
		return "gap"
	case RoundGeneralized:
		return "generalized"
	case RoundFollowUp:
		return "follow_up"
	case RoundFinal:
		return "final"
	default:
		return "unknown"
	}
}

// ParseRound converts a wire tag back into a Round.
func ParseRound(tag string) (Round, error) {
	switch tag {
	case "none":
		return RoundNone, nil
	case "gap":
		return RoundGap, nil
	case "generalized":
		return RoundGeneralized, nil
	case "follow_up":
		return RoundFollowUp, nil
	case "final":
		return RoundFinal, nil
	default:
		return RoundNone, fmt.Errorf("unknown round tag: %q", tag)
	}
}

// AnswerPrefix returns the AnswerMap key prefix for the round's answers.
// Prefixes are disjoint, so merging answers across rounds never collides.
func (r Round) AnswerPrefix() string {
	switch r {
	case RoundGap:
		return "answer_"
	case RoundGeneralized:
		return "generalized_answer_"
	case RoundFollowUp:
		return "follow_up_answer_"
	default:
		return ""
	}
}

func (r Round) String() string { return r.Tag() }
