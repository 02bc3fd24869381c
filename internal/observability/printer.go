// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/jd-refiner/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxValueLen is the length at which field values are truncated
	maxValueLen = 48
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintFieldSet outputs a human-readable summary of a field set under the
// given title, canonical fields first.
func (p *Printer) PrintFieldSet(title string, fs types.FieldSet) {
	if fs == nil {
		return
	}

	var sb strings.Builder
	if fs.IsError() {
		sb.WriteString("⚠ " + fs[types.ErrorKey])
		p.printBox(title, sb.String())
		return
	}

	for _, name := range types.CanonicalFields {
		value := strings.TrimSpace(fs[name])
		if value == "" {
			sb.WriteString(fmt.Sprintf("%-32s (missing)\n", name+":"))
			continue
		}
		value = strings.ReplaceAll(value, "\n", " / ")
		if len(value) > maxValueLen {
			value = value[:maxValueLen-3] + "..."
		}
		sb.WriteString(fmt.Sprintf("%-32s %s\n", name+":", value))
	}
	sb.WriteString("\n" + fs.Summary())

	p.printBox(title, sb.String())
}

// PrintQuestions outputs a question list, marking empty entries as skipped.
func (p *Printer) PrintQuestions(round types.Round, questions []string) {
	var sb strings.Builder
	if len(questions) == 0 {
		sb.WriteString("(no questions)")
	}
	for i, q := range questions {
		if strings.TrimSpace(q) == "" {
			sb.WriteString(fmt.Sprintf("%2d. (skipped)\n", i))
			continue
		}
		sb.WriteString(fmt.Sprintf("%2d. %s\n", i, q))
	}
	p.printBox(fmt.Sprintf("Questions (%s round)", round.Tag()), sb.String())
}

// PrintAnswers outputs the accumulated answers keyed by round-scoped index.
func (p *Printer) PrintAnswers(answers types.AnswerMap) {
	p.printBox("Collected answers", answers.ToJSON())
}
