package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mliang/daylist/internal/model"
)

// CreateTodo inserts a new todo for the given user and returns the full
// row. New todos start incomplete with an empty sub-task list; date is the
// caller's local calendar date (YYYY-MM-DD).
func (s *SQLStore) CreateTodo(
	ctx context.Context,
	userID, title, date string,
) (*model.Todo, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("todo title must not be empty")
	}

	todo := model.Todo{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Date:      date,
		CreatedAt: time.Now().UTC(),
		SubTasks:  []model.SubTask{},
	}

	_, err := s.db.ExecContext(ctx,
		s.rebind(`
		INSERT INTO todos (id, user_id, title, is_completed, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		todo.ID, todo.UserID, todo.Title, boolToInt(todo.IsCompleted),
		todo.Date, todo.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating todo: %w", err)
	}

	return &todo, nil
}

// DeleteTodo removes a todo by ID. Sub-tasks go with it via the
// ON DELETE CASCADE rule on sub_tasks.todo_id.
func (s *SQLStore) DeleteTodo(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		s.rebind("DELETE FROM todos WHERE id = ?"), id)
	if err != nil {
		return fmt.Errorf("deleting todo %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return nil
}

// SetTodoCompleted updates the derived completion flag on a todo.
func (s *SQLStore) SetTodoCompleted(
	ctx context.Context,
	id string,
	completed bool,
) error {
	result, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE todos SET is_completed = ? WHERE id = ?"),
		boolToInt(completed), id)
	if err != nil {
		return fmt.Errorf("updating todo %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("todo %s: %w", id, ErrNotFound)
	}
	return nil
}

// CreateSubTask inserts a new sub-task under the given todo and returns
// the full row. New sub-tasks start incomplete.
func (s *SQLStore) CreateSubTask(
	ctx context.Context,
	todoID, text string,
) (*model.SubTask, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("sub-task text must not be empty")
	}

	st := model.SubTask{
		ID:        uuid.New().String(),
		TodoID:    todoID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		s.rebind(`
		INSERT INTO sub_tasks (id, todo_id, text, is_completed, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		st.ID, st.TodoID, st.Text, boolToInt(st.IsCompleted), st.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("creating sub-task: %w", err)
	}

	return &st, nil
}

// SetSubTaskCompleted updates the completion flag on a sub-task.
func (s *SQLStore) SetSubTaskCompleted(
	ctx context.Context,
	id string,
	completed bool,
) error {
	result, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE sub_tasks SET is_completed = ? WHERE id = ?"),
		boolToInt(completed), id)
	if err != nil {
		return fmt.Errorf("updating sub-task %s: %w", id, err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("sub-task %s: %w", id, ErrNotFound)
	}
	return nil
}
