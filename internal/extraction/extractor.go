// Package extraction turns free-text job descriptions into structured
// FieldSets via LLM extraction.
package extraction

import (
	"context"

	"github.com/jonathan/jd-refiner/internal/llm"
	"github.com/jonathan/jd-refiner/internal/prompts"
	"github.com/jonathan/jd-refiner/internal/types"
)

// PromptFile is the embedded catalog holding the workflow's templates.
const PromptFile = "refinement.json"

// Extract maps a job description onto the twelve canonical fields. The
// returned FieldSet is never nil: on gateway or parse failure it is the
// sentinel error FieldSet, accompanied by the typed error, so the workflow
// can surface the failure and continue.
func Extract(ctx context.Context, client llm.Client, jobDesc string) (types.FieldSet, error) {
	prompt, err := renderExtract(jobDesc)
	if err != nil {
		// Missing template variable is a contract defect, not a model failure.
		return nil, err
	}

	reply, err := client.GenerateContent(ctx, prompt, llm.TierStandard)
	if err != nil {
		return types.NewErrorFieldSet(), &GatewayError{Message: "extraction call failed", Cause: err}
	}

	return parseReply(reply)
}

// renderExtract binds the job description into the extract template.
func renderExtract(jobDesc string) (string, error) {
	template := prompts.MustGet(PromptFile, "extract")
	return prompts.Render("extract", template, map[string]string{
		"JobDesc": jobDesc,
	})
}

// parseReply strips code fences and parses the reply into a FieldSet,
// substituting the sentinel on invalid JSON.
func parseReply(reply string) (types.FieldSet, error) {
	cleaned := llm.CleanJSONBlock(reply)
	fs, err := types.ParseFieldSet([]byte(cleaned))
	if err != nil {
		return types.NewErrorFieldSet(), &ParseError{
			Message: "response is not valid JSON",
			Raw:     reply,
			Cause:   err,
		}
	}
	return fs, nil
}
