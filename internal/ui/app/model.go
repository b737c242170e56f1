package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "thermolab/internal/modules/session/dto"
	apperrors "thermolab/internal/platform/errors"
	"thermolab/internal/ui/components"
	"thermolab/internal/ui/theme"
	"thermolab/internal/ui/views/readings"
	"thermolab/internal/ui/views/reflections"
)

// FormPort is the part of the session usecase the form needs.
type FormPort interface {
	Start(ctx context.Context, input sessiondto.StartInput) (sessiondto.SessionOutput, error)
	Get(ctx context.Context, sessionID string) (sessiondto.SessionOutput, error)
	NewSession(ctx context.Context, sessionID string) (sessiondto.SessionOutput, error)
	SetName(ctx context.Context, sessionID, name string) (sessiondto.SessionOutput, error)
	AddRow(ctx context.Context, sessionID string) (sessiondto.SessionOutput, error)
	EditField(ctx context.Context, input sessiondto.EditInput) (sessiondto.SessionOutput, error)
	DeleteRow(ctx context.Context, sessionID string, index int) (sessiondto.SessionOutput, error)
	SetText(ctx context.Context, input sessiondto.AnswerInput) (sessiondto.SessionOutput, error)
	ToggleOption(ctx context.Context, input sessiondto.AnswerInput) (sessiondto.SessionOutput, error)
	Series(ctx context.Context, sessionID string) (sessiondto.SeriesOutput, error)
	Submit(ctx context.Context, sessionID string) (sessiondto.SubmitOutput, error)
	Export(ctx context.Context, input sessiondto.ExportInput) (sessiondto.ExportOutput, error)
}

type pane int

const (
	paneName pane = iota
	paneReadings
	paneReflections
	paneCount
)

type sessionLoadedMsg struct {
	session sessiondto.SessionOutput
	series  sessiondto.SeriesOutput
	err     error
}

type submitDoneMsg struct {
	out sessiondto.SubmitOutput
	err error
}

type exportDoneMsg struct {
	out sessiondto.ExportOutput
	err error
}

type keyMap struct {
	Next       key.Binding
	Submit     key.Binding
	Export     key.Binding
	NewSession key.Binding
	AddRow     key.Binding
	DeleteRow  key.Binding
	Edit       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Next:       key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "next pane")),
		Submit:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "submit")),
		Export:     key.NewBinding(key.WithKeys("p", "ctrl+p"), key.WithHelp("p", "export report")),
		NewSession: key.NewBinding(key.WithKeys("n", "ctrl+n"), key.WithHelp("n", "new session")),
		AddRow:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add row")),
		DeleteRow:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "delete row")),
		Edit:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit / toggle")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Submit, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Edit, k.AddRow, k.DeleteRow},
		{k.Submit, k.Export, k.NewSession},
		{k.Help, k.Quit},
	}
}

// Model is the root of the form. Every change goes through FormPort and the
// returned session snapshot replaces the local copy.
type Model struct {
	port      FormPort
	schemaID  string
	exportDir string

	session  sessiondto.SessionOutput
	series   sessiondto.SeriesOutput
	name     textinput.Model
	readView readings.Model
	reflView reflections.Model
	modal    components.Modal
	help     help.Model
	keys     keyMap
	focus    pane
	showHelp bool
	busy     bool
	status   string
	width    int
	height   int
}

func NewModel(port FormPort, schemaID, exportDir string) Model {
	name := textinput.New()
	name.Placeholder = "Name / Student ID"
	name.CharLimit = 80
	name.Width = 32
	name.Focus()

	m := Model{
		port:      port,
		schemaID:  schemaID,
		exportDir: exportDir,
		name:      name,
		readView:  readings.New(),
		reflView:  reflections.New(),
		modal:     components.NewModal(),
		help:      help.New(),
		keys:      defaultKeys(),
		focus:     paneName,
		status:    "starting…",
	}
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.startCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.modal.Visible() {
		if k, ok := msg.(tea.KeyMsg); ok && k.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.modal, cmd = m.modal.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.modal.SetWidth(min(msg.Width-4, 64))
		paneW := max(msg.Width/2-2, 24)
		paneH := max(msg.Height-8, 10)
		m.readView.SetSize(paneW, paneH)
		m.reflView.SetSize(paneW, paneH)
		return m, nil

	case sessionLoadedMsg:
		if msg.err != nil {
			m.status = apperrors.UserMessage(msg.err)
			if errors.Is(msg.err, apperrors.ErrSessionLocked) {
				m.status = "this session is locked; press n for a new one"
			}
			return m, nil
		}
		m.apply(msg.session, msg.series)
		return m, nil

	case submitDoneMsg:
		m.busy = false
		title, kind := "Submitted", components.ModalSuccess
		switch {
		case errors.Is(msg.err, apperrors.ErrMissingIdentity), errors.Is(msg.err, apperrors.ErrNoValidReadings):
			title, kind = "Check your form", components.ModalInfo
		case msg.err != nil:
			title, kind = "Submission failed", components.ModalError
		}
		m.modal.Open(title, msg.out.Message, kind)
		m.status = "state: " + msg.out.State
		if msg.out.Reset {
			m.name.SetValue("")
		}
		return m, m.reloadCmd()

	case exportDoneMsg:
		if msg.err != nil {
			m.modal.Open("Export failed", msg.err.Error(), components.ModalError)
			return m, nil
		}
		m.modal.Open("Report written", msg.out.Path, components.ModalSuccess)
		return m, nil

	case components.ModalClosedMsg:
		return m, nil

	case readings.EditMsg:
		input := sessiondto.EditInput{SessionID: m.session.SessionID, Index: msg.Index, Field: msg.Field, Value: msg.Value}
		return m, m.mutateCmd(func(ctx context.Context) (sessiondto.SessionOutput, error) {
			return m.port.EditField(ctx, input)
		})

	case readings.AddRowMsg:
		id := m.session.SessionID
		return m, m.mutateCmd(func(ctx context.Context) (sessiondto.SessionOutput, error) {
			return m.port.AddRow(ctx, id)
		})

	case readings.DeleteRowMsg:
		id, idx := m.session.SessionID, msg.Index
		return m, m.mutateCmd(func(ctx context.Context) (sessiondto.SessionOutput, error) {
			return m.port.DeleteRow(ctx, id, idx)
		})

	case reflections.SetTextMsg:
		input := sessiondto.AnswerInput{SessionID: m.session.SessionID, QuestionID: msg.QuestionID, Value: msg.Value}
		return m, m.mutateCmd(func(ctx context.Context) (sessiondto.SessionOutput, error) {
			return m.port.SetText(ctx, input)
		})

	case reflections.ToggleMsg:
		input := sessiondto.AnswerInput{SessionID: m.session.SessionID, QuestionID: msg.QuestionID, Value: msg.Option}
		return m, m.mutateCmd(func(ctx context.Context) (sessiondto.SessionOutput, error) {
			return m.port.ToggleOption(ctx, input)
		})

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == paneName {
		var cmd tea.Cmd
		m.name, cmd = m.name.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if m.showHelp {
		if msg.String() == "?" || msg.String() == "esc" {
			m.showHelp = false
		}
		return m, nil
	}

	// Text editors own the keyboard except for tab and ctrl bindings.
	typing := m.focus == paneName || m.readView.Editing() || m.reflView.Editing()

	switch {
	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	case msg.String() == "ctrl+p":
		return m, m.exportCmd()
	case msg.String() == "ctrl+n":
		return m.newSession()
	case msg.String() == "tab" && !m.readView.Editing() && !m.reflView.Editing():
		return m.cycleFocus(1)
	case msg.String() == "shift+tab" && !m.readView.Editing() && !m.reflView.Editing():
		return m.cycleFocus(-1)
	}

	if m.focus == paneName {
		if msg.String() == "enter" {
			return m.cycleFocus(1)
		}
		if m.session.Locked || m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.name, cmd = m.name.Update(msg)
		return m, cmd
	}

	if !typing {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "?":
			m.showHelp = true
			return m, nil
		case "p":
			return m, m.exportCmd()
		case "n":
			return m.newSession()
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case paneReadings:
		m.readView, cmd = m.readView.Update(msg)
	case paneReflections:
		m.reflView, cmd = m.reflView.Update(msg)
	}
	return m, cmd
}

// cycleFocus moves between name, readings and reflections. Leaving the name
// field stores it.
func (m Model) cycleFocus(step int) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.focus == paneName {
		m.name.Blur()
		cmd = m.commitNameCmd()
	}
	m.readView.Blur()
	m.reflView.Blur()
	m.focus = (m.focus + pane(step) + paneCount) % paneCount
	switch m.focus {
	case paneName:
		return m, tea.Batch(cmd, m.name.Focus())
	case paneReadings:
		m.readView.Focus()
	case paneReflections:
		m.reflView.Focus()
	}
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.busy || m.session.Busy {
		m.status = "submission in progress…"
		return m, nil
	}
	if m.session.Locked {
		m.modal.Open("Already submitted", "This session was submitted. Press n to start a new one.", components.ModalInfo)
		return m, nil
	}
	m.busy = true
	m.status = "submitting…"
	id, name := m.session.SessionID, m.name.Value()
	port := m.port
	return m, func() tea.Msg {
		ctx := context.Background()
		if _, err := port.SetName(ctx, id, name); err != nil {
			return submitDoneMsg{out: sessiondto.SubmitOutput{SessionID: id, Message: apperrors.UserMessage(err)}, err: err}
		}
		out, err := port.Submit(ctx, id)
		return submitDoneMsg{out: out, err: err}
	}
}

func (m *Model) apply(session sessiondto.SessionOutput, series sessiondto.SeriesOutput) {
	m.session = session
	m.series = series
	if m.focus != paneName || m.name.Value() == "" {
		m.name.SetValue(session.Name)
	}
	readOnly := session.Locked || session.Busy
	m.readView.SetData(session.Readings, series, readOnly)
	m.reflView.SetData(session.Questions, readOnly)
	if m.status == "starting…" {
		m.status = "ready"
	}
}

func (m Model) View() string {
	if m.width == 0 {
		return "loading…"
	}
	header := m.renderHeader()
	status := m.renderStatusBar()
	bodyH := max(m.height-lipgloss.Height(header)-lipgloss.Height(status), 1)

	var body string
	switch {
	case m.modal.Visible():
		body = lipgloss.Place(m.width, bodyH, lipgloss.Center, lipgloss.Center, m.modal.View())
	case m.showHelp:
		body = lipgloss.NewStyle().Width(m.width).Height(bodyH).Render(m.help.View(m.keys))
	default:
		paneW := max(m.width/2-2, 24)
		left := m.paneStyle(paneReadings).Width(paneW).Height(bodyH - 2).MaxHeight(bodyH).Render(m.readView.View())
		right := m.paneStyle(paneReflections).Width(paneW).Height(bodyH - 2).MaxHeight(bodyH).Render(m.reflView.View())
		body = lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, status)
}

func (m Model) paneStyle(p pane) lipgloss.Style {
	if m.focus == p {
		return theme.PaneActive
	}
	return theme.Pane
}

func (m Model) renderHeader() string {
	title := theme.Title.Render(m.session.SchemaTitle)
	if m.session.SchemaTitle == "" {
		title = theme.Title.Render("thermolab")
	}
	badge := theme.Muted.Render(m.session.State)
	switch {
	case m.busy || m.session.Busy:
		badge = theme.Hot.Render("submitting…")
	case m.session.Locked:
		badge = theme.Good.Render("submitted · locked")
	case m.session.State == "failed":
		badge = theme.Bad.Render("failed, retry with ctrl+s")
	}
	line := fmt.Sprintf("%s  %s  %s", title, theme.Muted.Render("session "+m.session.SessionID), badge)

	label := "Name: "
	if m.focus == paneName {
		label = theme.Hot.Render(label)
	}
	return line + "\n" + label + m.name.View() + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.session.LastError != "" && !m.busy {
		left = theme.Bad.Render(m.session.LastError) + "  " + left
	}
	right := m.help.ShortHelpView(m.keys.ShortHelp())
	gap := max(m.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	bar := left + strings.Repeat(" ", gap) + right
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

func (m Model) startCmd() tea.Cmd {
	port, schemaID := m.port, m.schemaID
	return func() tea.Msg {
		ctx := context.Background()
		session, err := port.Start(ctx, sessiondto.StartInput{SchemaID: schemaID})
		if err != nil {
			return sessionLoadedMsg{err: err}
		}
		return loaded(ctx, port, session, nil)
	}
}

func (m Model) reloadCmd() tea.Cmd {
	port, id := m.port, m.session.SessionID
	return func() tea.Msg {
		ctx := context.Background()
		session, err := port.Get(ctx, id)
		return loaded(ctx, port, session, err)
	}
}

func (m Model) mutateCmd(fn func(context.Context) (sessiondto.SessionOutput, error)) tea.Cmd {
	port := m.port
	return func() tea.Msg {
		ctx := context.Background()
		session, err := fn(ctx)
		return loaded(ctx, port, session, err)
	}
}

func (m Model) commitNameCmd() tea.Cmd {
	if m.session.SessionID == "" || m.session.Locked || m.name.Value() == m.session.Name {
		return nil
	}
	id, name := m.session.SessionID, m.name.Value()
	return m.mutateCmd(func(ctx context.Context) (sessiondto.SessionOutput, error) {
		return m.port.SetName(ctx, id, name)
	})
}

func (m Model) exportCmd() tea.Cmd {
	port, input := m.port, sessiondto.ExportInput{SessionID: m.session.SessionID, Dir: m.exportDir}
	return func() tea.Msg {
		out, err := port.Export(context.Background(), input)
		return exportDoneMsg{out: out, err: err}
	}
}

// newSession drops the current session, submitted or not, and starts a fresh
// one on the same schema.
func (m Model) newSession() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	m.name.SetValue("")
	port, id := m.port, m.session.SessionID
	return m, func() tea.Msg {
		ctx := context.Background()
		session, err := port.NewSession(ctx, id)
		return loaded(ctx, port, session, err)
	}
}

func loaded(ctx context.Context, port FormPort, session sessiondto.SessionOutput, err error) tea.Msg {
	if err != nil {
		return sessionLoadedMsg{err: err}
	}
	series, err := port.Series(ctx, session.SessionID)
	return sessionLoadedMsg{session: session, series: series, err: err}
}
