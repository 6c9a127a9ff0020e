package session

import (
	"reflect"
	"testing"

	"github.com/mliang/daylist/internal/model"
)

func sampleTodos() []model.Todo {
	return []model.Todo{
		{
			ID:    "todo-2",
			Title: "write report",
			SubTasks: []model.SubTask{
				{ID: "sub-2a", TodoID: "todo-2", Text: "outline", IsCompleted: true},
				{ID: "sub-2b", TodoID: "todo-2", Text: "draft"},
			},
		},
		{
			ID:       "todo-1",
			Title:    "buy groceries",
			SubTasks: []model.SubTask{},
		},
	}
}

func TestSetUsernameReportsChange(t *testing.T) {
	s := New()

	if !s.SetUsername("alice") {
		t.Error("expected first SetUsername to report a change")
	}
	if s.SetUsername("alice") {
		t.Error("expected same username to report no change")
	}
	if !s.SetUsername("bob") {
		t.Error("expected new username to report a change")
	}
	if s.Username() != "bob" {
		t.Errorf("Username() = %q, want %q", s.Username(), "bob")
	}
}

func TestTodosLoadedNormalizesNilSubTasks(t *testing.T) {
	s := New()
	s.TodosLoaded([]model.Todo{{ID: "todo-1"}})

	if s.Todos()[0].SubTasks == nil {
		t.Error("expected SubTasks to be normalized to an empty slice")
	}

	s.TodosLoaded(nil)
	if s.Todos() == nil {
		t.Error("expected nil load result to become an empty list")
	}
	if len(s.Todos()) != 0 {
		t.Errorf("expected empty list, got %d todos", len(s.Todos()))
	}
}

func TestTodoAddedPrepends(t *testing.T) {
	s := New()
	s.TodosLoaded(sampleTodos())

	s.TodoAdded(model.Todo{ID: "todo-3", Title: "newest"})

	todos := s.Todos()
	if len(todos) != 3 {
		t.Fatalf("expected 3 todos, got %d", len(todos))
	}
	if todos[0].ID != "todo-3" {
		t.Errorf("expected new todo first, got %q", todos[0].ID)
	}
	if todos[0].SubTasks == nil {
		t.Error("expected new todo's SubTasks to be non-nil")
	}
	if todos[1].ID != "todo-2" || todos[2].ID != "todo-1" {
		t.Errorf("expected existing order preserved, got %q, %q",
			todos[1].ID, todos[2].ID)
	}
}

func TestTodoDeletedPreservesOrder(t *testing.T) {
	s := New()
	s.TodosLoaded([]model.Todo{
		{ID: "todo-3"}, {ID: "todo-2"}, {ID: "todo-1"},
	})

	if !s.TodoDeleted("todo-2") {
		t.Fatal("expected delete to report success")
	}

	todos := s.Todos()
	if len(todos) != 2 {
		t.Fatalf("expected 2 todos, got %d", len(todos))
	}
	if todos[0].ID != "todo-3" || todos[1].ID != "todo-1" {
		t.Errorf("expected order todo-3, todo-1, got %q, %q",
			todos[0].ID, todos[1].ID)
	}

	if s.TodoDeleted("no-such-todo") {
		t.Error("expected delete of unknown todo to report false")
	}
}

func TestSubTaskAddedRecomputesParent(t *testing.T) {
	s := New()
	s.TodosLoaded([]model.Todo{{
		ID:          "todo-1",
		IsCompleted: true,
		SubTasks: []model.SubTask{
			{ID: "sub-1", TodoID: "todo-1", IsCompleted: true},
		},
	}})

	// Adding an incomplete sub-task to a completed todo flips it back.
	changed, completed := s.SubTaskAdded("todo-1",
		model.SubTask{ID: "sub-2", TodoID: "todo-1"})
	if !changed {
		t.Error("expected parent completion to change")
	}
	if completed {
		t.Error("expected parent to become incomplete")
	}

	todo := s.Todos()[0]
	if todo.IsCompleted {
		t.Error("expected todo to be incomplete after adding open sub-task")
	}
	if len(todo.SubTasks) != 2 || todo.SubTasks[1].ID != "sub-2" {
		t.Errorf("expected sub-2 appended last, got %+v", todo.SubTasks)
	}
}

func TestSubTaskAddedNoChangeWhenStillIncomplete(t *testing.T) {
	s := New()
	s.TodosLoaded(sampleTodos())

	changed, completed := s.SubTaskAdded("todo-2",
		model.SubTask{ID: "sub-2c", TodoID: "todo-2"})
	if changed {
		t.Error("expected no parent change on an already-incomplete todo")
	}
	if completed {
		t.Error("expected parent to stay incomplete")
	}
}

func TestSubTaskAddedUnknownTodo(t *testing.T) {
	s := New()
	s.TodosLoaded(sampleTodos())

	changed, _ := s.SubTaskAdded("no-such-todo", model.SubTask{ID: "sub-x"})
	if changed {
		t.Error("expected no change for unknown todo")
	}
}

func TestBeginToggleAppliesOptimisticUpdate(t *testing.T) {
	s := New()
	s.TodosLoaded(sampleTodos())

	// Completing the last open sub-task completes the parent.
	upd, ok := s.BeginToggle("sub-2b")
	if !ok {
		t.Fatal("expected toggle to start")
	}
	if !upd.SubTaskComplete {
		t.Error("expected sub-task to flip to completed")
	}
	if !upd.TodoComplete {
		t.Error("expected parent to derive completed")
	}
	if upd.TodoID != "todo-2" {
		t.Errorf("TodoID = %q, want %q", upd.TodoID, "todo-2")
	}

	todo := s.Todos()[0]
	if !todo.IsCompleted {
		t.Error("expected local todo state to show completed")
	}
	if !todo.SubTasks[1].IsCompleted {
		t.Error("expected local sub-task state to show completed")
	}
}

func TestBeginToggleRejectsConcurrentToggle(t *testing.T) {
	s := New()
	s.TodosLoaded(sampleTodos())

	if _, ok := s.BeginToggle("sub-2b"); !ok {
		t.Fatal("expected first toggle to start")
	}
	if !s.ToggleInFlight("sub-2b") {
		t.Error("expected toggle to be in flight")
	}

	before := model.CloneTodos(s.Todos())
	if _, ok := s.BeginToggle("sub-2b"); ok {
		t.Error("expected second toggle on same sub-task to be rejected")
	}
	if !reflect.DeepEqual(s.Todos(), before) {
		t.Error("expected rejected toggle to leave state untouched")
	}

	// A different sub-task is not blocked.
	if _, ok := s.BeginToggle("sub-2a"); !ok {
		t.Error("expected toggle on a different sub-task to start")
	}
}

func TestBeginToggleUnknownSubTask(t *testing.T) {
	s := New()
	s.TodosLoaded(sampleTodos())

	if _, ok := s.BeginToggle("no-such-sub"); ok {
		t.Error("expected toggle of unknown sub-task to be rejected")
	}
}

func TestFinishToggleRollbackRestoresSnapshot(t *testing.T) {
	s := New()
	s.TodosLoaded(sampleTodos())
	before := model.CloneTodos(s.Todos())

	if _, ok := s.BeginToggle("sub-2b"); !ok {
		t.Fatal("expected toggle to start")
	}
	s.FinishToggle("sub-2b", true)

	if !reflect.DeepEqual(s.Todos(), before) {
		t.Errorf("expected rollback to restore exact prior state\ngot  %+v\nwant %+v",
			s.Todos(), before)
	}
	if s.ToggleInFlight("sub-2b") {
		t.Error("expected toggle to be resolved")
	}
}

func TestFinishToggleSuccessKeepsOptimisticState(t *testing.T) {
	s := New()
	s.TodosLoaded(sampleTodos())

	if _, ok := s.BeginToggle("sub-2b"); !ok {
		t.Fatal("expected toggle to start")
	}
	s.FinishToggle("sub-2b", false)

	todo := s.Todos()[0]
	if !todo.SubTasks[1].IsCompleted || !todo.IsCompleted {
		t.Error("expected optimistic state to stand after success")
	}
	if s.ToggleInFlight("sub-2b") {
		t.Error("expected toggle to be resolved")
	}
}

func TestDoubleToggleRoundTrip(t *testing.T) {
	s := New()
	s.TodosLoaded(sampleTodos())
	before := model.CloneTodos(s.Todos())

	upd1, ok := s.BeginToggle("sub-2b")
	if !ok {
		t.Fatal("expected first toggle to start")
	}
	s.FinishToggle("sub-2b", false)

	upd2, ok := s.BeginToggle("sub-2b")
	if !ok {
		t.Fatal("expected second toggle to start")
	}
	s.FinishToggle("sub-2b", false)

	if upd1.SubTaskComplete == upd2.SubTaskComplete {
		t.Error("expected the two toggles to carry opposite values")
	}
	if !reflect.DeepEqual(s.Todos(), before) {
		t.Errorf("expected toggling twice to restore the original state\ngot  %+v\nwant %+v",
			s.Todos(), before)
	}
}

func TestClearTodos(t *testing.T) {
	s := New()
	s.TodosLoaded(sampleTodos())

	s.ClearTodos()
	if len(s.Todos()) != 0 {
		t.Errorf("expected empty list, got %d todos", len(s.Todos()))
	}
	if s.Todos() == nil {
		t.Error("expected cleared list to be non-nil")
	}
}
