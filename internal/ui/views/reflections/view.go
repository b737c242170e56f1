package reflections

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "thermolab/internal/modules/session/dto"
	"thermolab/internal/ui/theme"
)

// SetTextMsg carries a finished free-text answer.
type SetTextMsg struct {
	QuestionID string
	Value      string
}

// ToggleMsg flips one option of a multi-select question.
type ToggleMsg struct {
	QuestionID string
	Option     string
}

// Model lists the schema's questions. Free-text answers are edited in a
// textarea; multi-select answers are toggled in place.
type Model struct {
	questions []sessiondto.QuestionOutput
	cursor    int
	option    int
	area      textarea.Model
	editing   bool
	readOnly  bool
	focused   bool
	width     int
	height    int
}

func New() Model {
	ta := textarea.New()
	ta.Placeholder = "Type your answer…"
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetHeight(5)
	return Model{area: ta}
}

func (m *Model) SetData(questions []sessiondto.QuestionOutput, readOnly bool) {
	m.questions = questions
	m.readOnly = readOnly
	if m.cursor >= len(questions) {
		m.cursor = max(len(questions)-1, 0)
	}
	if readOnly {
		m.stopEditing()
	}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.area.SetWidth(max(width-6, 20))
}

func (m *Model) Focus() { m.focused = true }

func (m *Model) Blur() {
	m.focused = false
	m.stopEditing()
}

func (m Model) Editing() bool { return m.editing }

func (m *Model) stopEditing() {
	m.editing = false
	m.area.Blur()
}

func (m Model) current() (sessiondto.QuestionOutput, bool) {
	if m.cursor < 0 || m.cursor >= len(m.questions) {
		return sessiondto.QuestionOutput{}, false
	}
	return m.questions[m.cursor], true
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused {
		return m, nil
	}
	q, hasQuestion := m.current()

	if m.editing {
		if key.String() == "esc" || key.String() == "ctrl+d" {
			done := SetTextMsg{QuestionID: q.ID, Value: m.area.Value()}
			m.stopEditing()
			return m, func() tea.Msg { return done }
		}
		var cmd tea.Cmd
		m.area, cmd = m.area.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			m.option = 0
		}
	case "down", "j":
		if m.cursor < len(m.questions)-1 {
			m.cursor++
			m.option = 0
		}
	case "left", "h":
		m.option = max(m.option-1, 0)
	case "right", "l":
		if hasQuestion {
			m.option = min(m.option+1, max(len(q.Options)-1, 0))
		}
	case "enter", " ":
		if !hasQuestion || m.readOnly {
			return m, nil
		}
		if q.Kind == "multi" {
			return m, m.toggle(q, m.option)
		}
		m.area.SetValue(q.Text)
		m.editing = true
		return m, m.area.Focus()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if hasQuestion && !m.readOnly && q.Kind == "multi" {
			idx := int(key.String()[0] - '1')
			if idx < len(q.Options) {
				m.option = idx
				return m, m.toggle(q, idx)
			}
		}
	}
	return m, nil
}

func (m Model) toggle(q sessiondto.QuestionOutput, idx int) tea.Cmd {
	if idx < 0 || idx >= len(q.Options) {
		return nil
	}
	toggle := ToggleMsg{QuestionID: q.ID, Option: q.Options[idx]}
	return func() tea.Msg { return toggle }
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Reflections") + "\n\n")
	wrap := lipgloss.NewStyle().Width(max(m.width-4, 20))
	for i, q := range m.questions {
		active := m.focused && i == m.cursor
		prompt := wrap.Render(q.Prompt)
		if active {
			prompt = theme.Hot.Render("▸ ") + prompt
		}
		sb.WriteString(prompt + "\n")

		switch {
		case q.Kind == "multi":
			sb.WriteString(m.renderOptions(q, active) + "\n")
		case active && m.editing:
			sb.WriteString(m.area.View() + "\n" + theme.Muted.Render("esc to keep the answer") + "\n")
		case strings.TrimSpace(q.Text) == "":
			sb.WriteString(theme.Muted.Render("  (no answer yet)") + "\n")
		default:
			sb.WriteString(wrap.Render("  "+q.Text) + "\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderOptions(q sessiondto.QuestionOutput, active bool) string {
	selected := map[string]bool{}
	for _, s := range q.Selected {
		selected[s] = true
	}
	lines := make([]string, 0, len(q.Options))
	for i, opt := range q.Options {
		box := "[ ]"
		if selected[opt] {
			box = theme.Good.Render("[x]")
		}
		label := opt
		if active && i == m.option {
			label = theme.Cursor.Render(opt)
		}
		lines = append(lines, "  "+box+" "+strconv.Itoa(i+1)+". "+label)
	}
	return strings.Join(lines, "\n")
}
