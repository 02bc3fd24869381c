// Package refinement synthesizes an enhanced job description document from
// the original text, the extracted entities, and the user's answers.
package refinement

import (
	"context"

	"github.com/jonathan/jd-refiner/internal/extraction"
	"github.com/jonathan/jd-refiner/internal/llm"
	"github.com/jonathan/jd-refiner/internal/prompts"
	"github.com/jonathan/jd-refiner/internal/types"
)

// Refine combines the original job description, extracted entities, and
// collected answers into a refined structured document. Failure policy
// matches extraction: the returned FieldSet is never nil, and on gateway or
// parse failure it is the sentinel error FieldSet alongside the typed error.
func Refine(ctx context.Context, client llm.Client, jobDesc string, entities types.FieldSet, answers types.AnswerMap) (types.FieldSet, error) {
	template := prompts.MustGet(extraction.PromptFile, "refine")
	prompt, err := prompts.Render("refine", template, map[string]string{
		"JobDesc":  jobDesc,
		"Entities": entities.ToJSON(),
		"Answers":  answers.ToJSON(),
	})
	if err != nil {
		return nil, err
	}

	reply, err := client.GenerateContent(ctx, prompt, llm.TierAdvanced)
	if err != nil {
		return types.NewErrorFieldSet(), &extraction.GatewayError{Message: "refinement call failed", Cause: err}
	}

	cleaned := llm.CleanJSONBlock(reply)
	fs, err := types.ParseFieldSet([]byte(cleaned))
	if err != nil {
		return types.NewErrorFieldSet(), &extraction.ParseError{
			Message: "response is not valid JSON",
			Raw:     reply,
			Cause:   err,
		}
	}
	return fs, nil
}
