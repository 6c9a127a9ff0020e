package todolist

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/mliang/daylist/internal/model"
	"github.com/mliang/daylist/internal/theme"
)

// rebuildRows recomputes the flattened cursor rows and the content line
// each row starts on. Layout per todo card: one title line, a progress
// line when sub-tasks exist, one line per sub-task, and a blank separator.
func (m *Model) rebuildRows() {
	rows := []row{}
	line := 0

	for ti := range m.todos {
		rows = append(rows, row{kind: rowTodo, todoIdx: ti, line: line})
		line++
		if len(m.todos[ti].SubTasks) > 0 {
			line++ // progress bar
		}
		for si := range m.todos[ti].SubTasks {
			rows = append(rows, row{kind: rowSubTask, todoIdx: ti, subIdx: si, line: line})
			line++
		}
		line++ // separator
	}

	m.rows = rows
}

// refreshContent re-renders the viewport body.
func (m *Model) refreshContent() {
	m.viewport.SetContent(m.renderBody())
}

// View renders the username field, the date line, and the todo list.
func (m Model) View() string {
	date := theme.DateStyle.Render(
		time.Now().Format("Monday, January 2, 2006"),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.username.View(),
		date,
		"",
		m.viewport.View(),
	)
}

// renderBody renders the card list or the appropriate empty state.
func (m Model) renderBody() string {
	if m.loading {
		return m.centered("Loading...")
	}

	if strings.TrimSpace(m.username.Value()) == "" {
		return m.centered(
			"Welcome!\n\nType a username above to start your list.",
		)
	}

	if len(m.todos) == 0 {
		return m.centered(
			"All clear!\n\nNo todos yet. Press n to add one.",
		)
	}

	var b strings.Builder
	cursor := -1
	if m.focus == focusList && len(m.rows) > 0 {
		cursor = m.cursor
	}

	rowIdx := 0
	for ti, todo := range m.todos {
		selected := rowIdx < len(m.rows) && rowIdx == cursor
		b.WriteString(m.renderTodoLine(todo, selected))
		b.WriteString("\n")
		rowIdx++

		if len(todo.SubTasks) > 0 {
			b.WriteString(m.renderProgressLine(todo))
			b.WriteString("\n")
		}

		for si := range todo.SubTasks {
			selected := rowIdx == cursor
			b.WriteString(m.renderSubTaskLine(todo.SubTasks[si], selected))
			b.WriteString("\n")
			rowIdx++
		}

		if ti < len(m.todos)-1 {
			b.WriteString("\n")
		}
	}

	return b.String()
}

// renderTodoLine draws a todo's title row with its creation date and,
// when sub-tasks exist, the completion percentage.
func (m Model) renderTodoLine(todo model.Todo, selected bool) string {
	marker := "○"
	titleStyle := theme.TitleStyle
	if todo.IsCompleted {
		marker = "●"
		titleStyle = theme.DoneTitleStyle
	}

	line := fmt.Sprintf("%s %s", marker, titleStyle.Render(todo.Title))
	if todo.Date != "" {
		line += theme.DateStyle.Render("  " + todo.Date)
	}
	if len(todo.SubTasks) > 0 {
		line += theme.DateStyle.Render(fmt.Sprintf("  %.0f%%", todo.Progress()))
	}

	return m.rowStyle(selected).Render(line)
}

// renderProgressLine draws the per-todo progress bar.
func (m Model) renderProgressLine(todo model.Todo) string {
	bar := m.bar
	width := m.width - 8
	if width < 10 {
		width = 10
	}
	bar.Width = width
	return theme.ListItemStyle.Render(bar.ViewAs(todo.Progress() / 100))
}

// renderSubTaskLine draws a sub-task checkbox row.
func (m Model) renderSubTaskLine(st model.SubTask, selected bool) string {
	box := "[ ]"
	text := st.Text
	if st.IsCompleted {
		box = "[x]"
		text = theme.DoneSubTaskStyle.Render(text)
	}

	return m.rowStyle(selected).Render(fmt.Sprintf("  %s %s", box, text))
}

// rowStyle picks the selected or base row style.
func (m Model) rowStyle(selected bool) lipgloss.Style {
	if selected {
		return theme.SelectedItemStyle
	}
	return theme.ListItemStyle
}

// centered renders a message centered in the viewport area.
func (m Model) centered(text string) string {
	return lipgloss.NewStyle().
		Width(m.viewport.Width).
		Height(m.viewport.Height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(text)
}
