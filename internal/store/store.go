package store

import (
	"context"
	"errors"

	"github.com/mliang/daylist/internal/model"
)

// ErrNotFound is returned when a point lookup finds no matching row.
// Callers use errors.Is to distinguish expected absence (e.g. an unknown
// username, which triggers implicit user creation) from a hard failure.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for users, todos, and sub-tasks.
type Store interface {
	// === Users ===

	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, username string) (*model.User, error)

	// GetUserWithTodos is the one logical read behind a reload: the user
	// row plus all its todos (newest first) with their sub-tasks (oldest
	// first). Returns ErrNotFound when the username has no record yet.
	GetUserWithTodos(ctx context.Context, username string) (*model.User, error)

	// === Todos ===

	CreateTodo(ctx context.Context, userID, title, date string) (*model.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
	SetTodoCompleted(ctx context.Context, id string, completed bool) error

	// === Sub-tasks ===

	CreateSubTask(ctx context.Context, todoID, text string) (*model.SubTask, error)
	SetSubTaskCompleted(ctx context.Context, id string, completed bool) error
}
