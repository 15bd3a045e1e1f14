package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func replWithClasses(t *testing.T) replModel {
	t.Helper()
	m := newREPLModel()
	for _, line := range strings.Split(strings.TrimSpace(testProgram), "\n") {
		if strings.HasPrefix(line, "let") || strings.HasPrefix(line, "call") || strings.Contains(line, " is ") {
			break
		}
		if output, isErr := m.evaluate(line); isErr {
			t.Fatalf("class line %q failed: %s", line, output)
		}
	}
	if len(m.pendingClass) > 0 {
		if output, isErr := m.evaluate(""); isErr {
			t.Fatalf("closing class block failed: %s", output)
		}
	}
	return m
}

func TestUpdateQuitCommandReturnsQuit(t *testing.T) {
	m := newREPLModel()
	m.textInput.SetValue(":quit")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	rm, ok := model.(replModel)
	if !ok {
		t.Fatalf("unexpected model type %T", model)
	}

	if !rm.quitting {
		t.Fatalf("quitting flag not set")
	}
	if cmd == nil {
		t.Fatalf("expected tea.Quit command")
	}
	if msg := cmd(); msg != nil {
		if _, ok := msg.(tea.QuitMsg); !ok {
			t.Fatalf("expected QuitMsg, got %T", msg)
		}
	}
}

func TestEvaluateClassBlockThenStatement(t *testing.T) {
	m := replWithClasses(t)

	output, isErr := m.evaluate("let a = new A(1, 2)")
	if isErr {
		t.Fatalf("let failed: %s", output)
	}
	if !strings.Contains(output, "view=A") || !strings.Contains(output, "a=1, x=2") {
		t.Fatalf("unexpected let echo: %q", output)
	}

	output, isErr = m.evaluate("call a.show")
	if isErr {
		t.Fatalf("call failed: %s", output)
	}
	if output != "1 2" {
		t.Fatalf("expected \"1 2\", got %q", output)
	}
}

func TestEvaluateReplaysSharedMutation(t *testing.T) {
	m := replWithClasses(t)

	for _, line := range []string{
		"let a = new A(1, 2)",
		"let b = cast<B> a",
		"b.a = 50",
	} {
		if output, isErr := m.evaluate(line); isErr {
			t.Fatalf("line %q failed: %s", line, output)
		}
	}

	output, isErr := m.evaluate("call a.show")
	if isErr {
		t.Fatalf("call failed: %s", output)
	}
	if output != "50 2" {
		t.Fatalf("mutation through the cast view must be visible, got %q", output)
	}
}

func TestEvaluateRejectedLineIsNotKept(t *testing.T) {
	m := replWithClasses(t)

	if output, isErr := m.evaluate("let a = new A(1)"); !isErr {
		t.Fatalf("expected arity error, got %q", output)
	}
	if len(m.stmtLines) != 0 {
		t.Fatalf("failed line must not be kept: %v", m.stmtLines)
	}

	if output, isErr := m.evaluate("let a = new A(1, 2)"); isErr {
		t.Fatalf("valid line failed after rejection: %s", output)
	}
}

func TestEvaluateIsVerdict(t *testing.T) {
	m := replWithClasses(t)

	if output, isErr := m.evaluate("let a = new A(1, 2)"); isErr {
		t.Fatalf("let failed: %s", output)
	}
	output, isErr := m.evaluate("a is B")
	if isErr {
		t.Fatalf("is failed: %s", output)
	}
	if output != "IS" {
		t.Fatalf("expected IS, got %q", output)
	}
}

func TestBoundName(t *testing.T) {
	cases := []struct {
		input string
		name  string
		ok    bool
	}{
		{"let a = new A(1, 2)", "a", true},
		{"b.a = 50", "b", true},
		{"call a.show", "", false},
	}
	for _, tc := range cases {
		name, ok := boundName(tc.input)
		if name != tc.name || ok != tc.ok {
			t.Fatalf("boundName(%q) = %q, %v", tc.input, name, ok)
		}
	}
}
