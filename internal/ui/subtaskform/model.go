package subtaskform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mliang/daylist/internal/theme"
)

// SubTaskSubmitMsg is dispatched when the user submits the sub-task form.
type SubTaskSubmitMsg struct {
	TodoID string
	Text   string
}

// SubTaskFormCancelMsg is dispatched when the user cancels the form.
type SubTaskFormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	text string
}

// Model is the Bubble Tea model for the add-sub-task dialog.
type Model struct {
	form      *huh.Form
	fb        *formBindings
	todoID    string
	todoTitle string
	width     int
	height    int
}

// New creates a new sub-task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the form for adding a sub-task to the given todo.
// draft pre-fills the text field, so a failed submission can reopen the
// dialog without losing what was typed.
func (m *Model) Start(todoID, todoTitle, draft string) tea.Cmd {
	m.todoID = todoID
	m.todoTitle = todoTitle
	m.fb.text = draft
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Text").
				Placeholder("e.g. finish the first chapter").
				Value(&m.fb.text).
				Validate(validateRequired("Text")),
		),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
	return m.form.Init()
}

// Update handles messages for the sub-task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		todoID, text := m.todoID, m.fb.text
		return m, func() tea.Msg {
			return SubTaskSubmitMsg{TodoID: todoID, Text: text}
		}
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return SubTaskFormCancelMsg{} }
	}

	return m, cmd
}

// View renders the sub-task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	header := titleStyle.Render(
		fmt.Sprintf("Add a sub-task to %q", m.todoTitle),
	)

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(header + "\n" + m.form.View())
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func (m Model) formHeight() int {
	h := m.height - 4
	if h < 10 {
		h = 10
	}
	return h
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
