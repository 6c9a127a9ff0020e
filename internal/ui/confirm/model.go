package confirm

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/mliang/daylist/internal/theme"
)

// DeleteConfirmedMsg is dispatched when the user confirms the deletion.
type DeleteConfirmedMsg struct {
	TodoID string
}

// DeleteCancelledMsg is dispatched when the user backs out.
type DeleteCancelledMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	confirmed bool
}

// Model is the delete-confirmation dialog for a todo.
type Model struct {
	form      *huh.Form
	fb        *formBindings
	todoID    string
	todoTitle string
	width     int
	height    int
}

// New creates a new confirmation dialog model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// Start initializes the dialog for the given todo.
func (m *Model) Start(todoID, todoTitle string) tea.Cmd {
	m.todoID = todoID
	m.todoTitle = todoTitle
	m.fb.confirmed = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", todoTitle)).
				Description("This cannot be undone. The todo and all of its sub-tasks will be removed.").
				Affirmative("Delete").
				Negative("Cancel").
				Value(&m.fb.confirmed),
		),
	).WithWidth(m.formWidth())
	return m.form.Init()
}

// Update handles messages for the confirmation dialog.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		if m.fb.confirmed {
			id := m.todoID
			return m, func() tea.Msg { return DeleteConfirmedMsg{TodoID: id} }
		}
		return m, func() tea.Msg { return DeleteCancelledMsg{} }
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return DeleteCancelledMsg{} }
	}

	return m, cmd
}

// View renders the confirmation dialog.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	return theme.PanelStyle.
		Width(m.formWidth()).
		Render(m.form.View())
}

// SetSize updates the dialog dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 80 {
		w = 80
	}
	return w
}
