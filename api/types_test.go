package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/taskdeck/task"
)

func TestTaskPatchMarshal(t *testing.T) {
	title := "New title"
	completed := true
	category := task.CategoryWork
	due := task.NewTime(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))

	tests := []struct {
		name  string
		patch TaskPatch
		want  string
	}{
		{
			name:  "only completed",
			patch: TaskPatch{Completed: &completed},
			want:  `{"completed":true}`,
		},
		{
			name:  "title and category",
			patch: TaskPatch{Title: &title, Category: &category},
			want:  `{"category":"work","title":"New title"}`,
		},
		{
			name:  "set due date",
			patch: TaskPatch{DueDate: &due},
			want:  `{"due_date":"2024-03-10T09:00:00Z"}`,
		},
		{
			name:  "clear due date sends explicit null",
			patch: TaskPatch{ClearDueDate: true},
			want:  `{"due_date":null}`,
		},
		{
			name:  "empty patch",
			patch: TaskPatch{},
			want:  `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.patch)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestTaskPatchIsZero(t *testing.T) {
	assert.True(t, TaskPatch{}.IsZero())

	completed := false
	assert.False(t, TaskPatch{Completed: &completed}.IsZero())
	assert.False(t, TaskPatch{ClearDueDate: true}.IsZero())
}

func TestAuthResponseSession(t *testing.T) {
	resp := authResponse{
		AccessToken: "T",
		User:        task.User{ID: 1, Username: "a"},
	}
	sess := resp.Session()
	assert.Equal(t, "T", sess.Token)
	assert.Equal(t, "a", sess.User.Username)
}
