package readings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	sessiondto "thermolab/internal/modules/session/dto"
	"thermolab/internal/ui/theme"
)

// EditMsg asks the app to store Value into one cell.
type EditMsg struct {
	Index int
	Field string
	Value string
}

type AddRowMsg struct{}

type DeleteRowMsg struct{ Index int }

var columns = []string{"ambient", "bird", "behavior"}

var headers = []string{"Ambient °C", "Body °C", "Behavior"}

const cellWidth = 14

// Model is the readings table plus the chart of its derived series. It holds
// no session state of its own; the app pushes rows in with SetData.
type Model struct {
	rows     []sessiondto.ReadingOutput
	series   sessiondto.SeriesOutput
	row      int
	col      int
	input    textinput.Model
	editing  bool
	readOnly bool
	focused  bool
	width    int
	height   int
}

func New() Model {
	ti := textinput.New()
	ti.CharLimit = 12
	ti.Width = cellWidth - 2
	ti.Placeholder = "°C"
	return Model{input: ti}
}

func (m *Model) SetData(rows []sessiondto.ReadingOutput, series sessiondto.SeriesOutput, readOnly bool) {
	m.rows = rows
	m.series = series
	m.readOnly = readOnly
	if m.row >= len(rows) {
		m.row = max(len(rows)-1, 0)
	}
	if readOnly {
		m.stopEditing()
	}
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) Focus() { m.focused = true }

func (m *Model) Blur() {
	m.focused = false
	m.stopEditing()
}

// Editing reports whether a cell editor has the keyboard.
func (m Model) Editing() bool { return m.editing }

func (m Model) Cursor() (int, string) { return m.row, columns[m.col] }

func (m *Model) stopEditing() {
	m.editing = false
	m.input.Blur()
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused {
		return m, nil
	}
	if m.editing {
		switch key.String() {
		case "esc":
			m.stopEditing()
			return m, nil
		case "enter", "tab":
			edit := EditMsg{Index: m.row, Field: columns[m.col], Value: m.input.Value()}
			m.stopEditing()
			return m, func() tea.Msg { return edit }
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch key.String() {
	case "up", "k":
		m.row = max(m.row-1, 0)
	case "down", "j":
		m.row = min(m.row+1, max(len(m.rows)-1, 0))
	case "left", "h":
		m.col = max(m.col-1, 0)
	case "right", "l":
		m.col = min(m.col+1, len(columns)-1)
	case "a":
		if !m.readOnly {
			m.row = len(m.rows)
			return m, func() tea.Msg { return AddRowMsg{} }
		}
	case "x", "delete":
		if !m.readOnly && m.row < len(m.rows) {
			idx := m.row
			return m, func() tea.Msg { return DeleteRowMsg{Index: idx} }
		}
	case "enter", " ":
		if m.readOnly || m.row >= len(m.rows) {
			return m, nil
		}
		current := m.rows[m.row]
		if columns[m.col] == "behavior" {
			edit := EditMsg{Index: m.row, Field: "behavior", Value: nextBehavior(current.Behavior)}
			return m, func() tea.Msg { return edit }
		}
		value := current.Ambient
		if columns[m.col] == "bird" {
			value = current.Bird
		}
		m.input.SetValue(value)
		m.input.CursorEnd()
		m.editing = true
		return m, m.input.Focus()
	}
	return m, nil
}

func nextBehavior(current string) string {
	if strings.HasPrefix(strings.ToLower(current), "high") {
		return "low"
	}
	return "high"
}

func (m Model) View() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Readings") + "\n\n")
	sb.WriteString("    ")
	for _, h := range headers {
		sb.WriteString(theme.Muted.Render(pad(h)))
	}
	sb.WriteString("\n")

	if len(m.rows) == 0 {
		sb.WriteString(theme.Muted.Render("    no rows, press a to add one") + "\n")
	}
	for i, r := range m.rows {
		marker := "  "
		if !r.Valid {
			marker = theme.Muted.Render("· ")
		}
		sb.WriteString(fmt.Sprintf("%2d", i+1) + marker)
		for c, value := range []string{r.Ambient, r.Bird, r.Behavior} {
			active := m.focused && i == m.row && c == m.col
			switch {
			case active && m.editing:
				sb.WriteString(pad(m.input.View()))
			case active:
				sb.WriteString(theme.Cursor.Render(pad(value)))
			case c == 2:
				sb.WriteString(behaviorStyle(value).Render(pad(value)))
			default:
				sb.WriteString(pad(value))
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n" + m.renderSeries())
	return sb.String()
}

func (m Model) renderSeries() string {
	var sb strings.Builder
	sb.WriteString(theme.Title.Render("Body vs ambient temperature") + "\n")
	if len(m.series.Low)+len(m.series.High) == 0 {
		sb.WriteString(theme.Muted.Render("enter both temperatures in a row to chart it"))
		return sb.String()
	}
	chartW := max(m.width-12, 20)
	chartH := max(m.height-len(m.rows)-12, 6)
	sb.WriteString(Plot(m.series, chartW, chartH) + "\n")
	sb.WriteString(lipgloss.NewStyle().Foreground(theme.LowSeries).Render("o Low Altitude") + "   ")
	sb.WriteString(lipgloss.NewStyle().Foreground(theme.HighSeries).Render("+ High Altitude") + "   ")
	sb.WriteString(theme.Muted.Render("* both  · trend"))
	return sb.String()
}

func behaviorStyle(value string) lipgloss.Style {
	if strings.HasPrefix(strings.ToLower(value), "high") {
		return lipgloss.NewStyle().Foreground(theme.HighSeries)
	}
	return lipgloss.NewStyle().Foreground(theme.LowSeries)
}

func pad(s string) string {
	w := lipgloss.Width(s)
	if w >= cellWidth {
		return s + " "
	}
	return s + strings.Repeat(" ", cellWidth-w)
}
