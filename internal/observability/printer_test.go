package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/jd-refiner/internal/types"
)

func TestPrintFieldSet(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	fs := types.FieldSet{
		"Job Title":           "Senior Go Engineer",
		"Experience Required": "5 years",
	}
	p.PrintFieldSet("Extracted entities", fs)

	out := buf.String()
	assert.Contains(t, out, "Extracted entities")
	assert.Contains(t, out, "Senior Go Engineer")
	assert.Contains(t, out, "(missing)")
	assert.Contains(t, out, "2/12 fields populated")
}

func TestPrintFieldSetError(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintFieldSet("Extracted entities", types.NewErrorFieldSet())

	assert.Contains(t, buf.String(), types.ErrorValue)
}

func TestPrintFieldSetNil(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintFieldSet("title", nil)
	assert.Empty(t, buf.String())
}

func TestPrintFieldSetTruncatesLongValues(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	long := ""
	for i := 0; i < 20; i++ {
		long += "0123456789"
	}
	p.PrintFieldSet("title", types.FieldSet{"Job Summary": long})

	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), long)
}

func TestPrintQuestions(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintQuestions(types.RoundGap, []string{"What is the salary?", "", "Where is the office?"})

	out := buf.String()
	assert.Contains(t, out, "gap round")
	assert.Contains(t, out, "What is the salary?")
	assert.Contains(t, out, "(skipped)")
	assert.Contains(t, out, "Where is the office?")
}

func TestPrintQuestionsEmpty(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf).PrintQuestions(types.RoundGeneralized, nil)
	assert.Contains(t, buf.String(), "(no questions)")
}

func TestPrintAnswers(t *testing.T) {
	var buf bytes.Buffer
	answers := make(types.AnswerMap)
	answers.Set(types.RoundGap, 0, "Remote only")

	NewPrinter(&buf).PrintAnswers(answers)

	out := buf.String()
	assert.Contains(t, out, "answer_0")
	assert.Contains(t, out, "Remote only")
}
