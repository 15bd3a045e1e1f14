package castlet

import (
	"fmt"
	"strconv"
	"strings"
)

// Diagnostic kinds reported by the semantic pass. Every one of these aborts
// the program before any statement executes.
const (
	DuplicateClass   = "DuplicateClass"
	DuplicateField   = "DuplicateField"
	UnknownBase      = "UnknownBase"
	InheritanceCycle = "InheritanceCycle"
	UnknownClass     = "UnknownClass"
	UnknownVariable  = "UnknownVariable"
	UnknownMethod    = "UnknownMethod"
	UnknownField     = "UnknownField"
	ArityMismatch    = "ArityMismatch"
	InvalidCast      = "InvalidCast"
)

// Diagnostic is a semantic error tied to the class or statement that caused
// it. Class names the offending class declaration when one is known, so the
// code frame can point at that declaration rather than the program start.
type Diagnostic struct {
	Kind      string
	Class     string
	Message   string
	Pos       Position
	CodeFrame string
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(d.Kind)
	b.WriteString(": ")
	b.WriteString(d.Message)
	if d.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(d.CodeFrame)
	}
	return b.String()
}

// RuntimeError is raised by the evaluator for conditions the semantic pass
// cannot rule out up front: resource quotas, cancellation, and internal
// invariant violations.
type RuntimeError struct {
	Message   string
	CodeFrame string
}

func (re *RuntimeError) Error() string {
	if re.CodeFrame == "" {
		return re.Message
	}
	return re.Message + "\n" + re.CodeFrame
}

func formatCodeFrame(source string, pos Position) string {
	if source == "" || pos.Line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if pos.Line > len(lines) {
		return ""
	}

	lineText := lines[pos.Line-1]
	lineRunes := []rune(lineText)

	column := pos.Column
	if column <= 0 {
		column = 1
	}
	if column > len(lineRunes)+1 {
		column = len(lineRunes) + 1
	}

	lineLabel := strconv.Itoa(pos.Line)
	gutterPad := strings.Repeat(" ", len(lineLabel))
	caretPad := strings.Repeat(" ", column-1)

	return fmt.Sprintf(
		"  --> line %d, column %d\n %s | %s\n %s | %s^",
		pos.Line,
		column,
		lineLabel,
		lineText,
		gutterPad,
		caretPad,
	)
}

func combineErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("%s", strings.Join(msgs, "\n\n"))
}
