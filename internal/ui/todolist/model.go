package todolist

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mliang/daylist/internal/keys"
	"github.com/mliang/daylist/internal/model"
)

// UsernameChangedMsg is sent on every username keystroke. The root model
// debounces these before reloading.
type UsernameChangedMsg struct {
	Value string
}

// ToggleSubTaskMsg is sent when the user toggles the sub-task under the
// cursor.
type ToggleSubTaskMsg struct {
	SubTaskID string
}

// NewTodoMsg is sent when the user asks to create a todo.
type NewTodoMsg struct{}

// NewSubTaskMsg is sent when the user asks to add a sub-task to the todo
// under the cursor.
type NewSubTaskMsg struct {
	TodoID    string
	TodoTitle string
}

// DeleteTodoMsg is sent when the user asks to delete the todo under the
// cursor. Deletion still goes through a confirmation step.
type DeleteTodoMsg struct {
	TodoID    string
	TodoTitle string
}

// RefreshMsg is sent on a manual reload request.
type RefreshMsg struct{}

// focusZone tracks which part of the screen receives keystrokes.
type focusZone int

const (
	focusUsername focusZone = iota
	focusList
)

// rowKind distinguishes cursor rows.
type rowKind int

const (
	rowTodo rowKind = iota
	rowSubTask
)

// row maps a cursor position onto a todo or one of its sub-tasks, and
// records the first line of that row in the rendered content for
// scroll-into-view.
type row struct {
	kind    rowKind
	todoIdx int
	subIdx  int
	line    int
}

// Model is the main todo list view: a username field on top and a
// scrollable card list of todos with their sub-tasks below.
type Model struct {
	todos    []model.Todo
	rows     []row
	cursor   int
	focus    focusZone
	username textinput.Model
	viewport viewport.Model
	bar      progress.Model
	keys     *keys.KeyMap
	loading  bool
	width    int
	height   int
}

// New creates a new todo list model. Focus starts on the username field
// since nothing can be shown before a username is typed.
func New(k *keys.KeyMap, width, height int) Model {
	ti := textinput.New()
	ti.Placeholder = "type or create a username..."
	ti.Prompt = "User: "
	ti.Width = width - 10
	ti.Focus()

	vp := viewport.New(width, contentHeight(height))

	return Model{
		rows:     []row{},
		focus:    focusUsername,
		username: ti,
		viewport: vp,
		bar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		keys:     k,
		width:    width,
		height:   height,
	}
}

// contentHeight leaves room for the username line, the date line, and a
// separator above the viewport.
func contentHeight(height int) int {
	h := height - 3
	if h < 1 {
		h = 1
	}
	return h
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Username returns the current value of the username field.
func (m Model) Username() string {
	return m.username.Value()
}

// UsernameFocused reports whether the username field has keyboard focus.
func (m Model) UsernameFocused() bool {
	return m.focus == focusUsername
}

// FocusUsername moves keyboard focus to the username field.
func (m *Model) FocusUsername() tea.Cmd {
	m.focus = focusUsername
	return m.username.Focus()
}

// SetLoading sets the loading indicator for the list area.
func (m *Model) SetLoading(v bool) {
	m.loading = v
	m.refreshContent()
}

// SetTodos replaces the displayed todos, rebuilds the cursor rows, and
// clamps the cursor.
func (m *Model) SetTodos(todos []model.Todo) {
	m.todos = todos
	m.rebuildRows()
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.refreshContent()
}

// SelectedTodo returns the todo that owns the row under the cursor.
func (m Model) SelectedTodo() (model.Todo, bool) {
	if m.focus != focusList || len(m.rows) == 0 {
		return model.Todo{}, false
	}
	r := m.rows[m.cursor]
	return m.todos[r.todoIdx], true
}

// Update handles messages for the todo list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.focus == focusUsername {
			return m.handleUsernameKeys(msg)
		}
		return m.handleListKeys(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// handleUsernameKeys processes key input while the username field is
// focused. Every content change is reported so the root model can
// reschedule its debounce timer.
func (m Model) handleUsernameKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "enter", "esc":
		m.focus = focusList
		m.username.Blur()
		return m, nil
	}

	before := m.username.Value()
	var cmd tea.Cmd
	m.username, cmd = m.username.Update(msg)

	if value := m.username.Value(); value != before {
		changed := func() tea.Msg { return UsernameChangedMsg{Value: value} }
		return m, tea.Batch(cmd, changed)
	}
	return m, cmd
}

// handleListKeys processes key input while the list has focus.
func (m Model) handleListKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Focus):
		return m, m.FocusUsername()

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, nil

	case key.Matches(msg, m.keys.Toggle):
		if len(m.rows) == 0 {
			return m, nil
		}
		r := m.rows[m.cursor]
		if r.kind != rowSubTask {
			return m, nil
		}
		id := m.todos[r.todoIdx].SubTasks[r.subIdx].ID
		return m, func() tea.Msg { return ToggleSubTaskMsg{SubTaskID: id} }

	case key.Matches(msg, m.keys.NewTodo):
		if strings.TrimSpace(m.username.Value()) == "" {
			return m, nil
		}
		return m, func() tea.Msg { return NewTodoMsg{} }

	case key.Matches(msg, m.keys.NewSubTask):
		todo, ok := m.SelectedTodo()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return NewSubTaskMsg{TodoID: todo.ID, TodoTitle: todo.Title}
		}

	case key.Matches(msg, m.keys.Delete):
		todo, ok := m.SelectedTodo()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg {
			return DeleteTodoMsg{TodoID: todo.ID, TodoTitle: todo.Title}
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, func() tea.Msg { return RefreshMsg{} }
	}

	// Delegate to the viewport for paging keys.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// moveCursor moves the cursor by delta rows and scrolls it into view.
func (m *Model) moveCursor(delta int) {
	if len(m.rows) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	m.refreshContent()
	m.scrollToCursor()
}

// scrollToCursor adjusts the viewport offset so the cursor row is visible.
func (m *Model) scrollToCursor() {
	line := m.rows[m.cursor].line
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height - 1

	if line < top {
		m.viewport.SetYOffset(line)
	} else if line > bottom {
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.username.Width = width - 10
	m.viewport.Width = width
	m.viewport.Height = contentHeight(height)
	m.refreshContent()
}
