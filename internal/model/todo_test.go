package model

import "testing"

func TestAllSubTasksDone(t *testing.T) {
	tests := []struct {
		name string
		todo Todo
		want bool
	}{
		{
			name: "no sub-tasks stays incomplete",
			todo: Todo{SubTasks: []SubTask{}},
			want: false,
		},
		{
			name: "one open sub-task",
			todo: Todo{SubTasks: []SubTask{{IsCompleted: false}}},
			want: false,
		},
		{
			name: "all completed",
			todo: Todo{SubTasks: []SubTask{
				{IsCompleted: true}, {IsCompleted: true},
			}},
			want: true,
		},
		{
			name: "mixed",
			todo: Todo{SubTasks: []SubTask{
				{IsCompleted: true}, {IsCompleted: false},
			}},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.todo.AllSubTasksDone(); got != tt.want {
				t.Errorf("AllSubTasksDone() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name string
		todo Todo
		want float64
	}{
		{"no sub-tasks", Todo{}, 0},
		{
			"half done",
			Todo{SubTasks: []SubTask{
				{IsCompleted: true}, {IsCompleted: false},
			}},
			50,
		},
		{
			"all done",
			Todo{SubTasks: []SubTask{
				{IsCompleted: true}, {IsCompleted: true},
			}},
			100,
		},
		{
			"one of three",
			Todo{SubTasks: []SubTask{
				{IsCompleted: true}, {}, {},
			}},
			100.0 / 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.todo.Progress(); got != tt.want {
				t.Errorf("Progress() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCloneTodosIsIndependent(t *testing.T) {
	orig := []Todo{{
		ID: "todo-1",
		SubTasks: []SubTask{
			{ID: "sub-1", IsCompleted: false},
		},
	}}

	clone := CloneTodos(orig)

	// Mutating the original must not leak into the clone.
	orig[0].IsCompleted = true
	orig[0].SubTasks[0].IsCompleted = true

	if clone[0].IsCompleted {
		t.Error("expected clone's todo to be unaffected by original mutation")
	}
	if clone[0].SubTasks[0].IsCompleted {
		t.Error("expected clone's sub-task to be unaffected by original mutation")
	}
}

func TestCloneTodosNil(t *testing.T) {
	if CloneTodos(nil) != nil {
		t.Error("expected nil in, nil out")
	}
}
