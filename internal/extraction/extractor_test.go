package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

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

func TestExtract(t *testing.T) {
	client := &stubClient{reply: `{"Job Title": "Senior Go Engineer", "Experience Required": "5 years"}`}

	fs, err := Extract(context.Background(), client, "Senior Go Engineer, remote, 5 yrs exp")
	require.NoError(t, err)
	assert.Equal(t, "Senior Go Engineer", fs["Job Title"])
	assert.Equal(t, "5 years", fs["Experience Required"])

	require.Len(t, client.prompts, 1)
	assert.Contains(t, client.prompts[0], "Senior Go Engineer, remote, 5 yrs exp")
	assert.NotContains(t, client.prompts[0], "{{.", "all placeholders bound")
}

func TestExtractStripsCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"Lowercase fence", "```json\n{\"Job Title\": \"Engineer\"}\n```"},
		{"Uppercase fence", "```JSON\n{\"Job Title\": \"Engineer\"}\n```"},
		{"Bare fence", "```\n{\"Job Title\": \"Engineer\"}\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubClient{reply: tt.reply}
			fs, err := Extract(context.Background(), client, "posting")
			require.NoError(t, err)
			assert.Equal(t, "Engineer", fs["Job Title"])
		})
	}
}

func TestExtractInvalidJSON(t *testing.T) {
	client := &stubClient{reply: "I could not produce JSON, sorry."}

	fs, err := Extract(context.Background(), client, "posting")
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "I could not produce JSON, sorry.", parseErr.Raw)

	require.NotNil(t, fs)
	assert.True(t, fs.IsError())
	assert.Equal(t, types.ErrorValue, fs[types.ErrorKey])
}

func TestExtractGatewayFailure(t *testing.T) {
	client := &stubClient{err: errors.New("deadline exceeded")}

	fs, err := Extract(context.Background(), client, "posting")
	require.Error(t, err)

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.ErrorContains(t, errors.Unwrap(gwErr), "deadline exceeded")

	require.NotNil(t, fs)
	assert.True(t, fs.IsError())
}

func TestExtractIdempotent(t *testing.T) {
	client := &stubClient{reply: `{"Job Title": "Engineer"}`}

	first, err := Extract(context.Background(), client, "posting")
	require.NoError(t, err)
	second, err := Extract(context.Background(), client, "posting")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, client.prompts, 2)
	assert.Equal(t, client.prompts[0], client.prompts[1], "same input renders the same prompt")
}
