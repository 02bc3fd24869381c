// Package questions generates clarifying questions for a job description
// refinement session. Gap analysis lives in the prompt contract: the model is
// instructed to enumerate only the missing fields, so no local field checks
// are performed here.
package questions

import (
	"context"
	"strings"

	"github.com/jonathan/jd-refiner/internal/extraction"
	"github.com/jonathan/jd-refiner/internal/llm"
	"github.com/jonathan/jd-refiner/internal/prompts"
	"github.com/jonathan/jd-refiner/internal/types"
)

// ErrorNotice is returned as a single-element question list when the gateway
// fails. Surfacing the notice as a question keeps the state machine
// progressing instead of stalling.
const ErrorNotice = "An error occurred while generating questions."

// emptyListToken is what the gap template asks the model to emit when no
// canonical field is missing.
const emptyListToken = "[]"

// Gap generates one question per missing or incomplete field in the
// extracted entities. Returns an empty list when nothing is missing.
func Gap(ctx context.Context, client llm.Client, entities types.FieldSet) []string {
	return generate(ctx, client, "question", map[string]string{
		"Entities": entities.ToJSON(),
	})
}

// Generalized generates five improvement questions (numbered from 0) over a
// refined job description document.
func Generalized(ctx context.Context, client llm.Client, jobDescription string) []string {
	return generate(ctx, client, "generalized", map[string]string{
		"JobDescription": jobDescription,
	})
}

// FollowUp generates the top five follow-up questions over the accumulated
// answers from earlier rounds.
func FollowUp(ctx context.Context, client llm.Client, answers types.AnswerMap) []string {
	return generate(ctx, client, "follow_up", map[string]string{
		"Answers": answers.ToJSON(),
	})
}

// generate renders the template, calls the gateway, and splits the reply
// into a question list.
func generate(ctx context.Context, client llm.Client, templateKey string, vars map[string]string) []string {
	prompt := mustRender(templateKey, vars)

	reply, err := client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return []string{ErrorNotice}
	}

	return SplitQuestions(reply)
}

// SplitQuestions turns a raw model reply into an ordered question list.
// The contract is deliberately line-based (one question per line, numbered
// list formatting); interior empty lines are preserved as empty entries,
// which the collection loop treats as auto-skip. A blank reply or the
// empty-list token yields an empty list.
func SplitQuestions(reply string) []string {
	trimmed := strings.TrimSpace(reply)
	if trimmed == "" || trimmed == emptyListToken {
		return nil
	}
	return strings.Split(trimmed, "\n")
}

// mustRender renders a catalog template, panicking on an unbound
// placeholder. A missing variable is a defect in this package's hard-wired
// bindings, not a runtime condition.
func mustRender(templateKey string, vars map[string]string) string {
	template := prompts.MustGet(extraction.PromptFile, templateKey)
	prompt, err := prompts.Render(templateKey, template, vars)
	if err != nil {
		panic(err)
	}
	return prompt
}
