package app

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mliang/daylist/internal/model"
	"github.com/mliang/daylist/internal/session"
	"github.com/mliang/daylist/internal/store"
)

// debounceMsg fires when a username-change debounce timer elapses. Only
// the message carrying the latest sequence number triggers a reload; the
// rest are stale timers superseded by later keystrokes.
type debounceMsg struct{ seq int }

// todosLoadedMsg carries a reload result. user is nil when the username
// has no record yet, which is not an error.
type todosLoadedMsg struct {
	user *model.User
	err  error
}

// todoAddedMsg is sent after a todo insert (and any implicit user
// creation) completes.
type todoAddedMsg struct {
	todo *model.Todo
	err  error
}

// todoDeletedMsg is sent after a todo delete completes.
type todoDeletedMsg struct {
	id  string
	err error
}

// subTaskAddedMsg is sent after a sub-task insert completes.
type subTaskAddedMsg struct {
	todoID string
	sub    *model.SubTask
	err    error
}

// subTaskToggledMsg resolves an optimistic toggle: err nil commits it,
// err non-nil rolls it back.
type subTaskToggledMsg struct {
	subTaskID string
	err       error
}

// todoCompletedSyncedMsg is sent after persisting a recomputed parent
// completion value outside the toggle path (sub-task creation).
type todoCompletedSyncedMsg struct {
	todoID string
	err    error
}

// noticeExpiredMsg clears the status-bar notice it was scheduled for.
type noticeExpiredMsg struct{ seq int }

// scheduleReload starts a debounce timer carrying the current sequence
// number. Each keystroke bumps the sequence, so earlier timers land as
// no-ops and at most one pending reload exists at a time.
func (m *Model) scheduleReload() tea.Cmd {
	seq := m.debounceSeq
	return tea.Tick(debounceDelay, func(time.Time) tea.Msg {
		return debounceMsg{seq: seq}
	})
}

// loadTodos fetches the user with all todos and sub-tasks in one logical
// read. Expected absence (unknown username) is reported as a nil user,
// not an error.
func (m *Model) loadTodos(username string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		user, err := s.GetUserWithTodos(context.Background(), username)
		if errors.Is(err, store.ErrNotFound) {
			return todosLoadedMsg{user: nil, err: nil}
		}
		if err != nil {
			return todosLoadedMsg{user: nil, err: err}
		}
		return todosLoadedMsg{user: user, err: err}
	}
}

// addTodo looks up the user by username, creating it if absent, then
// inserts the todo with the current local calendar date.
func (m *Model) addTodo(username, title string) tea.Cmd {
	s := m.store
	date := time.Now().Format("2006-01-02")
	return func() tea.Msg {
		ctx := context.Background()

		user, err := s.GetUserByUsername(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			user, err = s.CreateUser(ctx, username)
		}
		if err != nil {
			return todoAddedMsg{err: err}
		}

		todo, err := s.CreateTodo(ctx, user.ID, title, date)
		if err != nil {
			return todoAddedMsg{err: err}
		}
		return todoAddedMsg{todo: todo}
	}
}

// deleteTodo removes a todo remotely. Local state is only updated once
// the delete is confirmed; the backend's cascade rule takes the
// sub-tasks with it.
func (m *Model) deleteTodo(id string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.DeleteTodo(context.Background(), id)
		return todoDeletedMsg{id: id, err: err}
	}
}

// addSubTask inserts a sub-task under the given todo.
func (m *Model) addSubTask(todoID, text string) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		sub, err := s.CreateSubTask(context.Background(), todoID, text)
		if err != nil {
			return subTaskAddedMsg{todoID: todoID, err: err}
		}
		return subTaskAddedMsg{todoID: todoID, sub: sub}
	}
}

// toggleSubTask persists an optimistic toggle with two sequential
// writes: the sub-task first, then the parent's derived value only if
// the first write succeeded. Either failure reports the toggle as
// failed so the caller rolls the local state back.
func (m *Model) toggleSubTask(upd session.ToggleUpdate) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		ctx := context.Background()

		if err := s.SetSubTaskCompleted(ctx, upd.SubTaskID, upd.SubTaskComplete); err != nil {
			return subTaskToggledMsg{subTaskID: upd.SubTaskID, err: err}
		}
		if err := s.SetTodoCompleted(ctx, upd.TodoID, upd.TodoComplete); err != nil {
			return subTaskToggledMsg{subTaskID: upd.SubTaskID, err: err}
		}
		return subTaskToggledMsg{subTaskID: upd.SubTaskID}
	}
}

// syncTodoCompleted persists a recomputed parent completion value after
// a sub-task was added to an already-complete todo.
func (m *Model) syncTodoCompleted(todoID string, completed bool) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.SetTodoCompleted(context.Background(), todoID, completed)
		return todoCompletedSyncedMsg{todoID: todoID, err: err}
	}
}
