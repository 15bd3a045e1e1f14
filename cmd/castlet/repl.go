package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/castlet-lang/castlet/castlet"
)

var (
	accentColor    = lipgloss.Color("#3B82F6")
	successColor   = lipgloss.Color("#10B981")
	errorColor     = lipgloss.Color("#EF4444")
	mutedColor     = lipgloss.Color("#6B7280")
	highlightColor = lipgloss.Color("#F59E0B")

	promptStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	resultStyle = lipgloss.NewStyle().
			Foreground(successColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	headerStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true).
			Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(highlightColor)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	borderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accentColor).
			Padding(0, 1)
)

type historyEntry struct {
	input  string
	output string
	isErr  bool
}

// The REPL replays the whole accepted program on every accepted line.
// Castlet runs are deterministic and tiny, so replay buys persistent state
// without any incremental evaluation machinery: a line that fails to
// compile or run is simply not kept.
type replModel struct {
	textInput textinput.Model
	engine    *castlet.Engine

	classLines   []string
	stmtLines    []string
	pendingClass []string

	script *castlet.Script
	result *castlet.Result

	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	width       int
	height      int
	showHelp    bool
	showClasses bool
	quitting    bool
	initialized bool
}

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	CtrlC key.Binding
	CtrlD key.Binding
	CtrlL key.Binding
	Tab   key.Binding
	CtrlK key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "previous line"),
	),
	Down: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "next line"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "execute"),
	),
	CtrlC: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
	CtrlD: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "quit"),
	),
	CtrlL: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "clear"),
	),
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "autocomplete"),
	),
	CtrlK: key.NewBinding(
		key.WithKeys("ctrl+k"),
		key.WithHelp("ctrl+k", "toggle help"),
	),
}

func newREPLModel() replModel {
	ti := textinput.New()
	ti.Placeholder = "CLASS block or statement..."
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = "castlet> "

	return replModel{
		textInput:  ti,
		engine:     castlet.NewEngine(castlet.Config{}),
		history:    make([]historyEntry, 0),
		cmdHistory: make([]string, 0),
		historyIdx: -1,
	}
}

func (m replModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tea.EnterAltScreen)
}

func (m replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.textInput.Width = msg.Width - 12
		m.initialized = true
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.CtrlC), key.Matches(msg, keys.CtrlD):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, keys.CtrlL):
			m.history = make([]historyEntry, 0)
			return m, nil

		case key.Matches(msg, keys.CtrlK):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, keys.Up):
			if len(m.cmdHistory) > 0 {
				if m.historyIdx == -1 {
					m.historyIdx = len(m.cmdHistory) - 1
				} else if m.historyIdx > 0 {
					m.historyIdx--
				}
				m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Down):
			if m.historyIdx != -1 {
				if m.historyIdx < len(m.cmdHistory)-1 {
					m.historyIdx++
					m.textInput.SetValue(m.cmdHistory[m.historyIdx])
				} else {
					m.historyIdx = -1
					m.textInput.SetValue("")
				}
				m.textInput.CursorEnd()
			}
			return m, nil

		case key.Matches(msg, keys.Tab):
			m = m.handleAutocomplete()
			return m, nil

		case key.Matches(msg, keys.Enter):
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" && len(m.pendingClass) == 0 {
				return m, nil
			}

			if strings.HasPrefix(input, ":") {
				var cmd tea.Cmd
				m, cmd = m.handleCommand(input)
				m.textInput.SetValue("")
				m.historyIdx = -1
				return m, cmd
			}

			output, isErr := m.evaluate(input)
			m.history = append(m.history, historyEntry{
				input:  input,
				output: output,
				isErr:  isErr,
			})
			if input != "" {
				m.cmdHistory = append(m.cmdHistory, input)
			}
			m.textInput.SetValue("")
			m.historyIdx = -1
			return m, nil
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	parts := strings.Fields(input)
	cmd := parts[0]

	switch cmd {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":clear", ":c":
		m.history = make([]historyEntry, 0)
	case ":classes":
		m.showClasses = !m.showClasses
	case ":vars", ":v":
		output := "(no instances)"
		if m.result != nil {
			output = strings.TrimRight(m.result.DescribeInstances(), "\n")
		}
		m.history = append(m.history, historyEntry{input: input, output: output})
	case ":reset", ":r":
		m.classLines = nil
		m.stmtLines = nil
		m.pendingClass = nil
		m.script = nil
		m.result = nil
		m.history = append(m.history, historyEntry{
			input:  input,
			output: "Session reset",
		})
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		m.history = append(m.history, historyEntry{
			input:  input,
			output: fmt.Sprintf("Unknown command: %s", cmd),
			isErr:  true,
		})
	}
	return m, nil
}

// evaluate consumes one line. CLASS blocks are collected until a blank line
// closes them, matching the file grammar; everything else is a statement
// replayed against the accumulated program.
func (m *replModel) evaluate(input string) (string, bool) {
	if len(m.pendingClass) > 0 {
		if input == "" {
			return m.commitClassBlock()
		}
		m.pendingClass = append(m.pendingClass, input)
		return "...", false
	}

	if strings.HasPrefix(input, "CLASS ") || input == "CLASS" {
		m.pendingClass = []string{input}
		return "... (blank line closes the block)", false
	}

	return m.commitStatement(input)
}

func (m *replModel) commitClassBlock() (string, bool) {
	block := m.pendingClass
	m.pendingClass = nil

	candidate := append(append([]string{}, m.classLines...), block...)
	candidate = append(candidate, "")
	script, result, err := m.replay(candidate, m.stmtLines)
	if err != nil {
		return err.Error(), true
	}
	m.classLines = candidate
	m.script = script
	m.result = result
	return "class defined", false
}

func (m *replModel) commitStatement(input string) (string, bool) {
	prevOutputs, prevChecks := 0, 0
	if m.result != nil {
		prevOutputs = len(m.result.Outputs)
		prevChecks = len(m.result.Checks)
	}

	candidate := append(append([]string{}, m.stmtLines...), input)
	script, result, err := m.replay(m.classLines, candidate)
	if err != nil {
		return err.Error(), true
	}
	m.stmtLines = candidate
	m.script = script
	m.result = result

	if len(result.Outputs) > prevOutputs {
		row := result.Outputs[len(result.Outputs)-1]
		return formatRow(row.Values), false
	}
	if len(result.Checks) > prevChecks {
		if result.Checks[len(result.Checks)-1].Is {
			return "IS", false
		}
		return "ISN'T", false
	}
	if name, ok := boundName(input); ok {
		if desc, found := result.FormatBinding(name); found {
			return name + ": " + desc, false
		}
	}
	return "ok", false
}

func (m *replModel) replay(classLines, stmtLines []string) (*castlet.Script, *castlet.Result, error) {
	source := strings.Join(classLines, "\n") + "\n" + strings.Join(stmtLines, "\n") + "\n"
	script, err := m.engine.Compile(source)
	if err != nil {
		return nil, nil, err
	}
	result, err := script.Run(context.Background(), castlet.RunOptions{})
	if err != nil {
		return nil, nil, err
	}
	return script, result, nil
}

// boundName extracts the variable a let or field assignment touches, for
// echoing its new state.
func boundName(input string) (string, bool) {
	fields := strings.Fields(input)
	if len(fields) >= 2 && fields[0] == "let" {
		return fields[1], true
	}
	if len(fields) > 0 {
		if dot := strings.IndexByte(fields[0], '.'); dot > 0 {
			return fields[0][:dot], true
		}
	}
	return "", false
}

func formatRow(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, " ")
}

func (m replModel) handleAutocomplete() replModel {
	input := m.textInput.Value()
	if input == "" {
		return m
	}

	words := strings.Fields(input)
	if len(words) == 0 {
		return m
	}
	lastWord := words[len(words)-1]

	var completions []string
	for _, kw := range []string{"let", "new", "call", "cast", "clone", "is", "CLASS"} {
		if strings.HasPrefix(kw, lastWord) {
			completions = append(completions, kw)
		}
	}
	if m.script != nil {
		for _, name := range m.script.Classes().Names() {
			if strings.HasPrefix(name, lastWord) {
				completions = append(completions, name)
			}
		}
	}
	if m.result != nil {
		for _, name := range m.result.Bindings() {
			if strings.HasPrefix(name, lastWord) {
				completions = append(completions, name)
			}
		}
	}

	if len(completions) == 1 {
		prefix := strings.TrimSuffix(input, lastWord)
		m.textInput.SetValue(prefix + completions[0])
		m.textInput.CursorEnd()
	} else if len(completions) > 1 {
		m.history = append(m.history, historyEntry{
			output: "Completions: " + strings.Join(completions, ", "),
		})
	}

	return m
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}

	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder

	header := headerStyle.Render("Castlet REPL")
	version := mutedStyle.Render("v0.1.0")
	b.WriteString(header + " " + version + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", min(m.width-2, 60))) + "\n\n")

	reservedLines := 8
	if m.showHelp {
		reservedLines += 10
	}
	availableHeight := m.height - reservedLines

	historyStart := 0
	if len(m.history) > availableHeight {
		historyStart = len(m.history) - availableHeight
	}

	for i := historyStart; i < len(m.history); i++ {
		entry := m.history[i]
		if entry.input != "" {
			b.WriteString(mutedStyle.Render("  › ") + entry.input + "\n")
		}
		if entry.isErr {
			b.WriteString("  " + errorStyle.Render("✗ "+firstLine(entry.output)) + "\n")
		} else {
			b.WriteString("  " + resultStyle.Render("→ "+entry.output) + "\n")
		}
		b.WriteString("\n")
	}

	if m.showClasses && m.script != nil {
		b.WriteString(borderStyle.Render(strings.TrimRight(m.script.DescribeClasses(), "\n")))
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString(renderHelpPanel())
		b.WriteString("\n")
	}

	b.WriteString(m.textInput.View() + "\n\n")

	footer := helpKeyStyle.Render("ctrl+k") + helpDescStyle.Render(" help  ") +
		helpKeyStyle.Render("ctrl+l") + helpDescStyle.Render(" clear  ") +
		helpKeyStyle.Render("ctrl+c") + helpDescStyle.Render(" quit")
	b.WriteString(footer)

	return b.String()
}

// firstLine trims multi-line diagnostics (code frames) down to their
// headline for the history list.
func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func renderHelpPanel() string {
	help := []struct {
		key  string
		desc string
	}{
		{"↑/↓", "Navigate line history"},
		{"Tab", "Autocomplete"},
		{"Enter", "Execute line"},
		{"CLASS ...", "Start a class block (blank line closes it)"},
		{":classes", "Toggle class structure panel"},
		{":vars", "Show current bindings"},
		{":reset", "Discard the session program"},
		{":clear", "Clear history"},
		{":quit", "Exit REPL"},
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Help"))
	for _, h := range help {
		line := fmt.Sprintf("  %s  %s",
			helpKeyStyle.Render(fmt.Sprintf("%-10s", h.key)),
			helpDescStyle.Render(h.desc))
		lines = append(lines, line)
	}

	return borderStyle.Render(strings.Join(lines, "\n"))
}

func runREPL() error {
	p := tea.NewProgram(newREPLModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
