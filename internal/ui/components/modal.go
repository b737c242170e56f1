package components

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"thermolab/internal/ui/theme"
)

type ModalKind int

const (
	ModalInfo ModalKind = iota
	ModalSuccess
	ModalError
)

// ModalClosedMsg is emitted when the user dismisses the modal.
type ModalClosedMsg struct{}

// Modal is the single overlay used for validation errors and submission
// outcomes. While visible it swallows all key input.
type Modal struct {
	title   string
	message string
	kind    ModalKind
	visible bool
	width   int
}

func NewModal() Modal {
	return Modal{}
}

func (m Modal) Visible() bool { return m.visible }

func (m *Modal) Open(title, message string, kind ModalKind) {
	m.title = title
	m.message = message
	m.kind = kind
	m.visible = true
}

func (m *Modal) SetWidth(w int) { m.width = w }

func (m Modal) Update(msg tea.Msg) (Modal, tea.Cmd) {
	if !m.visible {
		return m, nil
	}
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter", "esc", " ":
			m.visible = false
			return m, func() tea.Msg { return ModalClosedMsg{} }
		}
	}
	return m, nil
}

func (m Modal) View() string {
	if !m.visible {
		return ""
	}
	border := theme.Lavender
	title := theme.Title
	switch m.kind {
	case ModalSuccess:
		border, title = theme.Green, theme.Good
	case ModalError:
		border, title = theme.Red, theme.Bad
	}

	var sb strings.Builder
	sb.WriteString(title.Render(m.title) + "\n\n")
	sb.WriteString(m.message + "\n\n")
	sb.WriteString(theme.Muted.Render("enter to close"))

	w := m.width
	if w < 20 {
		w = 56
	}
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1, 2).
		Width(w - 2).
		Render(sb.String())
}
