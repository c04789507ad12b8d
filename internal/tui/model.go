/*
Package tui is an interactive terminal front end built on Bubble Tea.

One input line drives every operation; results are appended to a scrolling
transcript. See ParseInput for the input syntax.
*/
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/khanglvm/course-hub/internal/app"
	"github.com/khanglvm/course-hub/internal/course"
	"github.com/khanglvm/course-hub/internal/llm"
	"github.com/khanglvm/course-hub/internal/search"
)

const (
	opTimeout   = 60 * time.Second
	searchLimit = 5
)

// Port is the TUI-facing subset of the command layer.
type Port interface {
	TopK() int
	Schedule(ctx context.Context, week int, day course.Weekday) (*app.ScheduleResult, error)
	Ask(ctx context.Context, question string) (*app.AskResult, error)
	Recommend(ctx context.Context, name string, k int) ([]course.Course, error)
	Search(ctx context.Context, text string, limit int) ([]search.SearchResult, error)
}

// resultMsg carries the rendered outcome of an operation.
type resultMsg struct {
	input string
	text  string
	err   error
}

// Model is the Bubble Tea model.
type Model struct {
	svc        Port
	input      textinput.Model
	viewport   viewport.Model
	transcript strings.Builder
	summary    string
	status     string
	busy       bool
	ready      bool
}

// New creates the model. summary is shown under the title.
func New(svc Port, summary string) *Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = `"1 1", ?question, @course, /search, help`
	ti.Focus()
	ti.CharLimit = 256

	m := &Model{
		svc:      svc,
		input:    ti,
		viewport: viewport.New(80, 15),
		summary:  summary,
		status:   "Ready. Type help for commands.",
	}
	m.viewport.SetContent("")
	return m
}

// Init starts the cursor blinking.
func (m *Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and result messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // title and summary, status, input box, spacer
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.viewport.SetContent(m.transcript.String())
		m.viewport.GotoBottom()
		return m, nil

	case resultMsg:
		m.busy = false
		m.appendResult(msg)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case tea.KeyEnter:
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit parses the current line and returns the command that runs it.
func (m *Model) submit() tea.Cmd {
	line := strings.TrimSpace(m.input.Value())
	if line == "" || m.busy {
		return nil
	}
	m.input.SetValue("")

	cmd, err := ParseInput(line)
	if err != nil {
		m.appendResult(resultMsg{input: line, err: err})
		return nil
	}

	switch cmd.Kind {
	case CmdClear:
		m.transcript.Reset()
		m.viewport.SetContent("")
		m.status = "Cleared."
		return nil
	case CmdHelp:
		m.appendResult(resultMsg{input: line, text: helpText})
		return nil
	}

	m.busy = true
	m.status = "Working..."
	return m.run(line, cmd)
}

// run executes cmd off the UI goroutine.
func (m *Model) run(line string, cmd Command) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
		defer cancel()

		text, err := execute(ctx, svc, cmd)
		return resultMsg{input: line, text: text, err: err}
	}
}

// execute runs a parsed command and renders its output.
func execute(ctx context.Context, svc Port, cmd Command) (string, error) {
	switch cmd.Kind {
	case CmdSchedule:
		res, err := svc.Schedule(ctx, cmd.Week, cmd.Day)
		if err != nil {
			return "", err
		}
		return res.Text(), nil

	case CmdAsk:
		res, err := svc.Ask(ctx, cmd.Text)
		if errors.Is(err, llm.ErrUnparseableReply) {
			return "", fmt.Errorf("could not parse model reply: %s", res.Reply)
		}
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Model reply: %s\n%s", res.Reply, res.Schedule.Text()), nil

	case CmdRecommend:
		recs, err := svc.Recommend(ctx, cmd.Text, svc.TopK())
		if err != nil {
			return "", err
		}
		return course.FormatRecommendations(cmd.Text, recs), nil

	case CmdSearch:
		results, err := svc.Search(ctx, cmd.Text, searchLimit)
		if err != nil {
			return "", err
		}
		return formatSearch(cmd.Text, results), nil
	}
	return "", fmt.Errorf("unsupported command %d", cmd.Kind)
}

func formatSearch(text string, results []search.SearchResult) string {
	if len(results) == 0 {
		return fmt.Sprintf("No courses match %q.\n", text)
	}
	var b strings.Builder
	for _, r := range results {
		fmt.Fprintf(&b, "%.3f  %s\n", r.Score, r.Course.String())
	}
	return b.String()
}

func (m *Model) appendResult(msg resultMsg) {
	m.transcript.WriteString(inputStyle.Render("> " + msg.input))
	m.transcript.WriteByte('\n')
	if msg.err != nil {
		m.transcript.WriteString(errorStyle.Render("Error: " + msg.err.Error()))
		m.transcript.WriteByte('\n')
		m.status = "Error."
	} else {
		m.transcript.WriteString(msg.text)
		m.status = "Done."
	}
	m.transcript.WriteByte('\n')

	m.viewport.SetContent(m.transcript.String())
	m.viewport.GotoBottom()
}

// Transcript returns everything printed so far.
func (m *Model) Transcript() string {
	return m.transcript.String()
}

// View renders the layout.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := titleStyle.Render("Course Hub")
	summary := summaryStyle.Render(m.summary)
	results := resultBoxStyle.Render(m.viewport.View())
	input := queryBoxStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + summary + "\n" + results + "\n" + input + "\n" + status
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(svc Port, summary string) error {
	_, err := tea.NewProgram(New(svc, summary), tea.WithAltScreen()).Run()
	return err
}

var (
	titleStyle     = lipgloss.NewStyle().Bold(true)
	summaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	inputStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
