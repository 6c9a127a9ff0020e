package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/mliang/daylist/internal/model"
)

// GetUserByUsername retrieves a user by its unique username.
// Returns ErrNotFound when no such user exists.
func (s *SQLStore) GetUserByUsername(
	ctx context.Context,
	username string,
) (*model.User, error) {
	var user model.User
	err := s.db.QueryRowxContext(ctx,
		s.rebind("SELECT id, username, created_at FROM users WHERE username = ?"),
		username,
	).Scan(&user.ID, &user.Username, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", username, err)
	}
	return &user, nil
}

// CreateUser inserts a new user with the given username. A uniqueness
// violation means another session created the user first; in that case
// the existing row is looked up and returned instead of failing.
func (s *SQLStore) CreateUser(
	ctx context.Context,
	username string,
) (*model.User, error) {
	if strings.TrimSpace(username) == "" {
		return nil, fmt.Errorf("username must not be empty")
	}

	user := model.User{
		ID:        uuid.New().String(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		s.rebind("INSERT INTO users (id, username, created_at) VALUES (?, ?, ?)"),
		user.ID, user.Username, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return s.GetUserByUsername(ctx, username)
		}
		return nil, fmt.Errorf("creating user %q: %w", username, err)
	}

	return &user, nil
}

// GetUserWithTodos performs the reload read: the user row, its todos
// ordered newest first, and each todo's sub-tasks ordered oldest first.
// Every todo carries a non-nil sub-task slice.
func (s *SQLStore) GetUserWithTodos(
	ctx context.Context,
	username string,
) (*model.User, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx,
		s.rebind(`
		SELECT id, user_id, title, is_completed, date, created_at
		FROM todos WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`),
		user.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying todos for user %q: %w", username, err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachSubTasks(ctx, todos); err != nil {
		return nil, err
	}

	user.Todos = todos
	return user, nil
}

// attachSubTasks loads the sub-tasks for all given todos in one query and
// distributes them in creation order.
func (s *SQLStore) attachSubTasks(ctx context.Context, todos []model.Todo) error {
	if len(todos) == 0 {
		return nil
	}

	ids := make([]string, len(todos))
	byID := make(map[string]int, len(todos))
	for i := range todos {
		ids[i] = todos[i].ID
		byID[todos[i].ID] = i
	}

	query, args, err := sqlx.In(`
		SELECT id, todo_id, text, is_completed, created_at
		FROM sub_tasks WHERE todo_id IN (?)
		ORDER BY created_at ASC, id ASC`, ids)
	if err != nil {
		return fmt.Errorf("building sub_tasks query: %w", err)
	}

	rows, err := s.db.QueryxContext(ctx, s.rebind(query), args...)
	if err != nil {
		return fmt.Errorf("querying sub_tasks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		st, err := scanSubTask(rows)
		if err != nil {
			return err
		}
		if i, ok := byID[st.TodoID]; ok {
			todos[i].SubTasks = append(todos[i].SubTasks, st)
		}
	}
	return rows.Err()
}
