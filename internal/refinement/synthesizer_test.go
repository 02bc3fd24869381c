package refinement

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/jd-refiner/internal/extraction"
	"github.com/jonathan/jd-refiner/internal/llm"
	"github.com/jonathan/jd-refiner/internal/types"
)

// stubClient scripts model replies for tests and records prompts.
type stubClient struct {
	reply   string
	err     error
	prompts []string
}

func (c *stubClient) GenerateContent(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
	c.prompts = append(c.prompts, prompt)
	if c.err != nil {
		return "", c.err
	}
	return c.reply, nil
}

func (c *stubClient) GetModel(llm.ModelTier) string { return "stub-model" }
func (c *stubClient) Close() error                  { return nil }

func TestRefine(t *testing.T) {
	client := &stubClient{reply: "```json\n{\"Job Title\": \"Senior Go Engineer\", \"Salary and Benefits\": \"$180k\"}\n```"}

	entities := types.FieldSet{"Job Title": "Go Engineer"}
	answers := make(types.AnswerMap)
	answers.Set(types.RoundGap, 0, "$180k base")

	fs, err := Refine(context.Background(), client, "original posting text", entities, answers)
	require.NoError(t, err)
	assert.Equal(t, "Senior Go Engineer", fs["Job Title"])
	assert.Equal(t, "$180k", fs["Salary and Benefits"])

	require.Len(t, client.prompts, 1)
	prompt := client.prompts[0]
	assert.Contains(t, prompt, "original posting text")
	assert.Contains(t, prompt, "Go Engineer")
	assert.Contains(t, prompt, "$180k base")
	assert.NotContains(t, prompt, "{{.")
}

func TestRefineGatewayFailure(t *testing.T) {
	client := &stubClient{err: errors.New("connection reset")}

	fs, err := Refine(context.Background(), client, "posting", types.FieldSet{}, make(types.AnswerMap))
	require.Error(t, err)

	var gwErr *extraction.GatewayError
	require.ErrorAs(t, err, &gwErr)

	require.NotNil(t, fs)
	assert.True(t, fs.IsError())
}

func TestRefineInvalidJSON(t *testing.T) {
	client := &stubClient{reply: "Here is your improved job description: ..."}

	fs, err := Refine(context.Background(), client, "posting", types.FieldSet{}, make(types.AnswerMap))
	require.Error(t, err)

	var parseErr *extraction.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "Here is your improved job description: ...", parseErr.Raw)

	require.NotNil(t, fs)
	assert.True(t, fs.IsError())
}
