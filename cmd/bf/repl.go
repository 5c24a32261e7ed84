package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mgomes/tapescript/bf"
)

// replStepQuota bounds each line when the config leaves the quota unlimited,
// so a runaway loop cannot freeze the UI.
const replStepQuota = 1_000_000

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

	pointerCellStyle = lipgloss.NewStyle().
				Foreground(highlightColor).
				Bold(true)

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

type replModel struct {
	textInput   textinput.Model
	runtime     *bf.Runtime
	io          *bf.BufferIO
	tapeWindow  int
	history     []historyEntry
	cmdHistory  []string
	historyIdx  int
	width       int
	height      int
	showHelp    bool
	showTape    bool
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
	CtrlT key.Binding
	CtrlH key.Binding
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
	CtrlT: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "toggle tape"),
	),
	CtrlH: key.NewBinding(
		key.WithKeys("ctrl+k"),
		key.WithHelp("ctrl+k", "toggle help"),
	),
}

func newREPLModel(cfg cliConfig) replModel {
	ti := textinput.New()
	ti.Placeholder = "type instructions..."
	ti.Focus()
	ti.CharLimit = 2000
	ti.Width = 60
	ti.PromptStyle = promptStyle
	ti.Prompt = cfg.REPL.Prompt

	quota := cfg.StepQuota
	if quota == 0 {
		quota = replStepQuota
	}
	engine := bf.MustNewEngine(bf.Config{StepQuota: quota})
	buf := bf.NewBufferIO(nil)

	return replModel{
		textInput:  ti,
		runtime:    engine.NewRuntime(buf),
		io:         buf,
		tapeWindow: cfg.REPL.TapeWindow,
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
		m.textInput.Width = msg.Width - 10
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

		case key.Matches(msg, keys.CtrlT):
			m.showTape = !m.showTape
			return m, nil

		case key.Matches(msg, keys.CtrlH):
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

		case key.Matches(msg, keys.Enter):
			raw := m.textInput.Value()
			input := strings.TrimSpace(raw)
			if input == "" {
				return m, nil
			}

			if strings.HasPrefix(input, ":") {
				var cmd tea.Cmd
				m, cmd = m.handleCommand(strings.TrimLeft(raw, " \t"))
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
			m.cmdHistory = append(m.cmdHistory, input)
			m.textInput.SetValue("")
			m.historyIdx = -1
			return m, nil
		}
	}

	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// handleCommand keeps the argument text after the separating spaces intact,
// so trailing whitespace given to :input is queued.
func (m replModel) handleCommand(input string) (replModel, tea.Cmd) {
	name, rest, _ := strings.Cut(input, " ")
	name = strings.TrimSpace(name)
	rest = strings.TrimLeft(rest, " ")

	switch name {
	case ":help", ":h":
		m.showHelp = !m.showHelp
	case ":clear", ":c":
		m.history = make([]historyEntry, 0)
	case ":tape", ":t":
		m.showTape = !m.showTape
	case ":reset", ":r":
		m.runtime.Reset()
		m.io.Reset()
		m.history = append(m.history, historyEntry{
			input:  input,
			output: "Tape reset",
		})
	case ":input", ":i":
		data, err := parseInputText(rest)
		if err != nil {
			m.history = append(m.history, historyEntry{input: input, output: err.Error(), isErr: true})
			break
		}
		m.io.Feed(data)
		m.history = append(m.history, historyEntry{
			input:  input,
			output: fmt.Sprintf("Queued %d byte(s), %d pending", len(data), m.io.Pending()),
		})
	case ":quit", ":q":
		m.quitting = true
		return m, tea.Quit
	default:
		m.history = append(m.history, historyEntry{
			input:  input,
			output: fmt.Sprintf("Unknown command: %s", name),
			isErr:  true,
		})
	}
	return m, nil
}

// parseInputText accepts raw text or a Go-quoted string for escapes such as
// "\n" or "\x00".
func parseInputText(text string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("usage: :input <text>")
	}
	if quoted := strings.TrimSpace(text); strings.HasPrefix(quoted, `"`) {
		unquoted, err := strconv.Unquote(quoted)
		if err != nil {
			return nil, fmt.Errorf("invalid quoted input: %w", err)
		}
		return []byte(unquoted), nil
	}
	return []byte(text), nil
}

func (m replModel) evaluate(input string) (string, bool) {
	program, err := bf.Parse(input)
	if err != nil {
		return err.Error(), true
	}

	before := len(m.runtime.Output())
	err = m.runtime.Execute(program)
	produced := m.runtime.Output()[before:]
	if err != nil {
		if len(produced) > 0 {
			return fmt.Sprintf("%s\noutput before failure: %s", err.Error(), strconv.Quote(string(produced))), true
		}
		return err.Error(), true
	}
	return m.describe(produced), false
}

func (m replModel) describe(produced []byte) string {
	current, _ := m.runtime.Cell(m.runtime.Pointer())
	state := fmt.Sprintf("ptr=%d cell=%d steps=%d", m.runtime.Pointer(), current, m.runtime.Steps())
	if len(produced) == 0 {
		return state
	}
	return strconv.Quote(string(produced)) + "  " + state
}

func (m replModel) View() string {
	if !m.initialized {
		return "Loading..."
	}

	if m.quitting {
		return mutedStyle.Render("Goodbye!\n")
	}

	var b strings.Builder

	header := headerStyle.Render("bf REPL")
	limits := mutedStyle.Render(fmt.Sprintf("tape %d cells", bf.TapeSize))
	b.WriteString(header + " " + limits + "\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", max(min(m.width-2, 60), 0))) + "\n\n")

	reservedLines := 8
	if m.showHelp {
		reservedLines += 10
	}
	if m.showTape {
		reservedLines += 5
	}
	availableHeight := max(m.height-reservedLines, 0)

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
			b.WriteString("  " + errorStyle.Render("✗ "+entry.output) + "\n")
		} else {
			b.WriteString("  " + resultStyle.Render("→ "+entry.output) + "\n")
		}
		b.WriteString("\n")
	}

	if m.showTape {
		b.WriteString(renderTapePanel(m.runtime, m.tapeWindow))
		b.WriteString("\n")
	}

	if m.showHelp {
		b.WriteString(renderHelpPanel())
		b.WriteString("\n")
	}

	b.WriteString(m.textInput.View() + "\n\n")

	footer := helpKeyStyle.Render("ctrl+k") + helpDescStyle.Render(" help  ") +
		helpKeyStyle.Render("ctrl+t") + helpDescStyle.Render(" tape  ") +
		helpKeyStyle.Render("ctrl+l") + helpDescStyle.Render(" clear  ") +
		helpKeyStyle.Render("ctrl+c") + helpDescStyle.Render(" quit")
	b.WriteString(footer)

	return b.String()
}

func renderTapePanel(rt *bf.Runtime, radius int) string {
	start, cells := rt.Window(radius)
	indexes := make([]string, len(cells))
	values := make([]string, len(cells))
	for i, v := range cells {
		idx := start + i
		width := max(len(strconv.Itoa(idx)), 3)
		indexes[i] = fmt.Sprintf("%*d", width, idx)
		values[i] = fmt.Sprintf("%*d", width, v)
		if idx == rt.Pointer() {
			indexes[i] = pointerCellStyle.Render(indexes[i])
			values[i] = pointerCellStyle.Render(values[i])
		}
	}

	lines := []string{
		lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Tape"),
		mutedStyle.Render(strings.Join(indexes, " ")),
		strings.Join(values, " "),
	}
	return borderStyle.Render(strings.Join(lines, "\n"))
}

func renderHelpPanel() string {
	help := []struct {
		key  string
		desc string
	}{
		{"↑/↓", "Navigate line history"},
		{"Enter", "Execute instructions"},
		{":help", "Toggle this help"},
		{":tape", "Toggle tape panel"},
		{":input", "Queue input bytes for ','"},
		{":clear", "Clear history"},
		{":reset", "Zero the tape and pointer"},
		{":quit", "Exit REPL"},
	}

	var lines []string
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(accentColor).Render("Help"))
	for _, h := range help {
		line := fmt.Sprintf("  %s  %s",
			helpKeyStyle.Render(fmt.Sprintf("%-8s", h.key)),
			helpDescStyle.Render(h.desc))
		lines = append(lines, line)
	}

	return borderStyle.Render(strings.Join(lines, "\n"))
}

func replCommand(args []string) error {
	fs := flag.NewFlagSet("repl", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	configPath := fs.String("config", "", "path to a YAML config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	p := tea.NewProgram(newREPLModel(cfg), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
