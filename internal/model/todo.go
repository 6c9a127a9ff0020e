package model

import "time"

// Todo is a top-level task owned by a user, optionally decomposed into
// sub-tasks. IsCompleted is derived state: true iff the todo has at least
// one sub-task and every sub-task is completed. A todo with no sub-tasks
// stays incomplete.
type Todo struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	IsCompleted bool      `json:"is_completed" db:"is_completed"`
	Date        string    `json:"date" db:"date"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`

	// SubTasks is populated by queries that expand the todo. It is never
	// nil after a fetch; absence is normalized to an empty slice.
	SubTasks []SubTask `json:"sub_tasks" db:"-"`
}

// SubTask is a leaf checklist entry within a todo. Its lifecycle is bound
// to the parent todo (CASCADE delete).
type SubTask struct {
	ID          string    `json:"id" db:"id"`
	TodoID      string    `json:"todo_id" db:"todo_id"`
	Text        string    `json:"text" db:"text"`
	IsCompleted bool      `json:"is_completed" db:"is_completed"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// AllSubTasksDone reports the derived completion rule: sub-tasks are
// non-empty and every one of them is completed.
func (t Todo) AllSubTasksDone() bool {
	if len(t.SubTasks) == 0 {
		return false
	}
	for _, st := range t.SubTasks {
		if !st.IsCompleted {
			return false
		}
	}
	return true
}

// Progress returns the completion percentage across sub-tasks, 0-100.
// A todo without sub-tasks reports 0. Display-only, never persisted.
func (t Todo) Progress() float64 {
	if len(t.SubTasks) == 0 {
		return 0
	}
	done := 0
	for _, st := range t.SubTasks {
		if st.IsCompleted {
			done++
		}
	}
	return 100 * float64(done) / float64(len(t.SubTasks))
}

// CloneTodos returns a structural copy of the todo slice, including each
// nested sub-task slice, so the copy can serve as a rollback snapshot that
// is unaffected by later in-place edits.
func CloneTodos(todos []Todo) []Todo {
	if todos == nil {
		return nil
	}
	out := make([]Todo, len(todos))
	copy(out, todos)
	for i := range out {
		subs := make([]SubTask, len(out[i].SubTasks))
		copy(subs, out[i].SubTasks)
		out[i].SubTasks = subs
	}
	return out
}
