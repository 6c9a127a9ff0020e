package store

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := New(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateUserAndLookup(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.CreateUser(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if created.ID == "" {
		t.Error("expected a generated user ID")
	}

	got, err := s.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("ID = %q, want %q", got.ID, created.ID)
	}
	if got.Username != "alice" {
		t.Errorf("Username = %q, want %q", got.Username, "alice")
	}
}

func TestGetUserByUsernameNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUserByUsername(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUserEmptyUsername(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.CreateUser(context.Background(), "  "); err == nil {
		t.Error("expected error for blank username")
	}
}

func TestCreateUserDuplicateReturnsExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.CreateUser(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	second, err := s.CreateUser(ctx, "alice")
	if err != nil {
		t.Fatalf("duplicate CreateUser: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected the existing user back, got ID %q want %q",
			second.ID, first.ID)
	}
}

func TestGetUserWithTodosOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		if _, err := s.CreateTodo(ctx, user.ID, title, "2026-09-01"); err != nil {
			t.Fatalf("CreateTodo %q: %v", title, err)
		}
		// Distinct created_at values so the ordering test is deterministic.
		time.Sleep(5 * time.Millisecond)
	}

	got, err := s.GetUserWithTodos(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserWithTodos: %v", err)
	}
	if len(got.Todos) != 3 {
		t.Fatalf("expected 3 todos, got %d", len(got.Todos))
	}

	// Newest first.
	want := []string{"third", "second", "first"}
	for i, title := range want {
		if got.Todos[i].Title != title {
			t.Errorf("todos[%d].Title = %q, want %q", i, got.Todos[i].Title, title)
		}
		if got.Todos[i].SubTasks == nil {
			t.Errorf("todos[%d].SubTasks is nil, want empty slice", i)
		}
	}
}

func TestSubTaskOrdering(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	todo, err := s.CreateTodo(ctx, user.ID, "write report", "2026-09-01")
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}

	texts := []string{"outline", "draft", "review"}
	for _, text := range texts {
		if _, err := s.CreateSubTask(ctx, todo.ID, text); err != nil {
			t.Fatalf("CreateSubTask %q: %v", text, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	got, err := s.GetUserWithTodos(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserWithTodos: %v", err)
	}
	subs := got.Todos[0].SubTasks
	if len(subs) != 3 {
		t.Fatalf("expected 3 sub-tasks, got %d", len(subs))
	}

	// Oldest first, the order they were added in.
	for i, text := range texts {
		if subs[i].Text != text {
			t.Errorf("subs[%d].Text = %q, want %q", i, subs[i].Text, text)
		}
	}
}

func TestDeleteTodoCascadesToSubTasks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	todo, err := s.CreateTodo(ctx, user.ID, "write report", "2026-09-01")
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}
	if _, err := s.CreateSubTask(ctx, todo.ID, "outline"); err != nil {
		t.Fatalf("CreateSubTask: %v", err)
	}

	if err := s.DeleteTodo(ctx, todo.ID); err != nil {
		t.Fatalf("DeleteTodo: %v", err)
	}

	got, err := s.GetUserWithTodos(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserWithTodos: %v", err)
	}
	if len(got.Todos) != 0 {
		t.Errorf("expected no todos after delete, got %d", len(got.Todos))
	}

	var orphans int
	err = s.db.Get(&orphans,
		"SELECT COUNT(*) FROM sub_tasks WHERE todo_id = ?", todo.ID)
	if err != nil {
		t.Fatalf("counting sub_tasks: %v", err)
	}
	if orphans != 0 {
		t.Errorf("expected cascade to remove sub-tasks, found %d", orphans)
	}
}

func TestDeleteTodoNotFound(t *testing.T) {
	s := newTestStore(t)

	err := s.DeleteTodo(context.Background(), "no-such-todo")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSetCompletedRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	todo, err := s.CreateTodo(ctx, user.ID, "write report", "2026-09-01")
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}
	sub, err := s.CreateSubTask(ctx, todo.ID, "outline")
	if err != nil {
		t.Fatalf("CreateSubTask: %v", err)
	}
	if sub.IsCompleted {
		t.Error("expected new sub-task to start incomplete")
	}

	if err := s.SetSubTaskCompleted(ctx, sub.ID, true); err != nil {
		t.Fatalf("SetSubTaskCompleted: %v", err)
	}
	if err := s.SetTodoCompleted(ctx, todo.ID, true); err != nil {
		t.Fatalf("SetTodoCompleted: %v", err)
	}

	got, err := s.GetUserWithTodos(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserWithTodos: %v", err)
	}
	if !got.Todos[0].IsCompleted {
		t.Error("expected todo completed after update")
	}
	if !got.Todos[0].SubTasks[0].IsCompleted {
		t.Error("expected sub-task completed after update")
	}

	if err := s.SetSubTaskCompleted(ctx, sub.ID, false); err != nil {
		t.Fatalf("SetSubTaskCompleted(false): %v", err)
	}
	got, err = s.GetUserWithTodos(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserWithTodos: %v", err)
	}
	if got.Todos[0].SubTasks[0].IsCompleted {
		t.Error("expected sub-task incomplete after second update")
	}
}

func TestSetCompletedNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SetTodoCompleted(ctx, "no-such-todo", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetTodoCompleted: expected ErrNotFound, got %v", err)
	}
	if err := s.SetSubTaskCompleted(ctx, "no-such-sub", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("SetSubTaskCompleted: expected ErrNotFound, got %v", err)
	}
}

func TestCreateTodoEmptyTitle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if _, err := s.CreateTodo(ctx, user.ID, "   ", "2026-09-01"); err == nil {
		t.Error("expected error for blank title")
	}
}

func TestCreateSubTaskEmptyText(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user, err := s.CreateUser(ctx, "alice")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	todo, err := s.CreateTodo(ctx, user.ID, "write report", "2026-09-01")
	if err != nil {
		t.Fatalf("CreateTodo: %v", err)
	}
	if _, err := s.CreateSubTask(ctx, todo.ID, ""); err == nil {
		t.Error("expected error for empty text")
	}
}
