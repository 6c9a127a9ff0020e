// Package session holds the screen-level state for one user session and
// the typed transitions that mutate it. It has no knowledge of rendering
// or of the store, so every transition is unit-testable on its own.
package session

import (
	"github.com/mliang/daylist/internal/model"
)

// ToggleUpdate describes the local effect of an optimistic sub-task
// toggle: the new sub-task value and the freshly derived parent value.
// The caller persists both, sub-task first.
type ToggleUpdate struct {
	SubTaskID       string
	TodoID          string
	SubTaskComplete bool
	TodoComplete    bool
}

// Session owns the current username, the ordered todo list, and the
// transient flags of the screen. Rollback snapshots are explicit
// structural copies taken before each optimistic update.
type Session struct {
	username   string
	todos      []model.Todo
	loading    bool
	submitting bool

	// inflight maps a sub-task ID to the pre-toggle snapshot while its
	// remote writes are outstanding. Presence of a key also acts as the
	// per-entity guard: a second toggle on the same sub-task is rejected
	// until the first resolves.
	inflight map[string][]model.Todo
}

// New returns an empty session.
func New() *Session {
	return &Session{
		todos:    []model.Todo{},
		inflight: make(map[string][]model.Todo),
	}
}

// Username returns the current username.
func (s *Session) Username() string { return s.username }

// SetUsername updates the username immediately and reports whether it
// changed. The caller schedules the debounced reload.
func (s *Session) SetUsername(name string) bool {
	if s.username == name {
		return false
	}
	s.username = name
	return true
}

// Todos returns the current ordered todo list, newest first.
func (s *Session) Todos() []model.Todo { return s.todos }

// Loading reports whether a reload is in progress.
func (s *Session) Loading() bool { return s.loading }

// SetLoading sets the reload flag.
func (s *Session) SetLoading(v bool) { s.loading = v }

// Submitting reports whether a form submission is in progress.
func (s *Session) Submitting() bool { return s.submitting }

// SetSubmitting sets the submission flag.
func (s *Session) SetSubmitting(v bool) { s.submitting = v }

// ClearTodos drops the loaded list, e.g. when the username is emptied.
func (s *Session) ClearTodos() {
	s.todos = []model.Todo{}
}

// TodosLoaded replaces the list with a fresh fetch result. Sub-task
// slices are normalized so they are never nil.
func (s *Session) TodosLoaded(todos []model.Todo) {
	if todos == nil {
		todos = []model.Todo{}
	}
	for i := range todos {
		if todos[i].SubTasks == nil {
			todos[i].SubTasks = []model.SubTask{}
		}
	}
	s.todos = todos
}

// TodoAdded prepends a newly created todo; new items are always the most
// recent, so prepending preserves newest-first order.
func (s *Session) TodoAdded(todo model.Todo) {
	if todo.SubTasks == nil {
		todo.SubTasks = []model.SubTask{}
	}
	next := make([]model.Todo, 0, len(s.todos)+1)
	next = append(next, todo)
	next = append(next, s.todos...)
	s.todos = next
}

// TodoDeleted removes a todo by identity, preserving the relative order
// of the rest. Reports whether anything was removed.
func (s *Session) TodoDeleted(id string) bool {
	for i := range s.todos {
		if s.todos[i].ID == id {
			next := make([]model.Todo, 0, len(s.todos)-1)
			next = append(next, s.todos[:i]...)
			next = append(next, s.todos[i+1:]...)
			s.todos = next
			return true
		}
	}
	return false
}

// SubTaskAdded appends a persisted sub-task to its parent todo (it is the
// newest entry, so appending preserves oldest-first order) and recomputes
// the parent's derived completion. It reports whether the parent's value
// changed, so the caller can persist the new value.
func (s *Session) SubTaskAdded(todoID string, st model.SubTask) (changed, completed bool) {
	i := s.todoIndex(todoID)
	if i < 0 {
		return false, false
	}

	todo := s.todos[i]
	subs := make([]model.SubTask, 0, len(todo.SubTasks)+1)
	subs = append(subs, todo.SubTasks...)
	subs = append(subs, st)
	todo.SubTasks = subs

	was := todo.IsCompleted
	todo.IsCompleted = todo.AllSubTasksDone()
	s.todos[i] = todo

	return todo.IsCompleted != was, todo.IsCompleted
}

// BeginToggle applies the optimistic update for a sub-task toggle: it
// flips the sub-task, recomputes the parent's derived completion, and
// captures a rollback snapshot keyed by the sub-task ID. It returns
// ok=false when the sub-task is unknown or a toggle on it is already
// outstanding; neither case changes state.
func (s *Session) BeginToggle(subTaskID string) (ToggleUpdate, bool) {
	if _, busy := s.inflight[subTaskID]; busy {
		return ToggleUpdate{}, false
	}

	ti, si := s.subTaskIndex(subTaskID)
	if ti < 0 {
		return ToggleUpdate{}, false
	}

	snapshot := model.CloneTodos(s.todos)

	todo := s.todos[ti]
	subs := make([]model.SubTask, len(todo.SubTasks))
	copy(subs, todo.SubTasks)
	subs[si].IsCompleted = !subs[si].IsCompleted
	todo.SubTasks = subs
	todo.IsCompleted = todo.AllSubTasksDone()
	s.todos[ti] = todo

	s.inflight[subTaskID] = snapshot

	return ToggleUpdate{
		SubTaskID:       subTaskID,
		TodoID:          todo.ID,
		SubTaskComplete: subs[si].IsCompleted,
		TodoComplete:    todo.IsCompleted,
	}, true
}

// FinishToggle resolves an outstanding toggle. On failure the pre-toggle
// snapshot is restored exactly; on success the optimistic state stands.
func (s *Session) FinishToggle(subTaskID string, failed bool) {
	snapshot, ok := s.inflight[subTaskID]
	if !ok {
		return
	}
	delete(s.inflight, subTaskID)

	if failed {
		s.todos = snapshot
	}
}

// ToggleInFlight reports whether a toggle on the given sub-task is
// outstanding.
func (s *Session) ToggleInFlight(subTaskID string) bool {
	_, ok := s.inflight[subTaskID]
	return ok
}

// todoIndex returns the index of the todo with the given ID, or -1.
func (s *Session) todoIndex(id string) int {
	for i := range s.todos {
		if s.todos[i].ID == id {
			return i
		}
	}
	return -1
}

// subTaskIndex locates a sub-task by scanning all todos, returning the
// todo index and the sub-task index within it, or (-1, -1).
func (s *Session) subTaskIndex(id string) (int, int) {
	for ti := range s.todos {
		for si := range s.todos[ti].SubTasks {
			if s.todos[ti].SubTasks[si].ID == id {
				return ti, si
			}
		}
	}
	return -1, -1
}
