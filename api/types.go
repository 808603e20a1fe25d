package api

import (
	"encoding/json"

	"github.com/c360studio/taskdeck/session"
	"github.com/c360studio/taskdeck/task"
)

// authResponse is the success payload of /register and /login.
type authResponse struct {
	Message     string    `json:"message,omitempty"`
	AccessToken string    `json:"access_token"`
	User        task.User `json:"user"`
}

// Session converts the auth payload into a client session.
func (r *authResponse) Session() *session.Session {
	return &session.Session{Token: r.AccessToken, User: r.User}
}

// listResponse is the payload of GET /todos. The server also ships
// presentation color maps, which the client ignores.
type listResponse struct {
	Todos []task.Task `json:"todos"`
}

// todoResponse wraps a single task on create and update.
type todoResponse struct {
	Message string    `json:"message,omitempty"`
	Todo    task.Task `json:"todo"`
}

// errorResponse is the server's failure payload.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// registerRequest is the body of POST /register.
type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest is the body of POST /login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateTaskRequest is the body of POST /todos. Title is the only
// required field; category and priority are normalized before sending.
type CreateTaskRequest struct {
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Category    task.Category `json:"category"`
	Priority    task.Priority `json:"priority"`
	DueDate     *task.Time    `json:"due_date,omitempty"`
}

// TaskPatch is a partial update for PUT /todos/{id}. Only set fields are
// sent, so toggling completion leaves everything else untouched
// server-side. ClearDueDate sends an explicit null to remove a due date.
type TaskPatch struct {
	Title        *string
	Description  *string
	Category     *task.Category
	Priority     *task.Priority
	Completed    *bool
	DueDate      *task.Time
	ClearDueDate bool
}

// IsZero reports whether the patch carries no changes.
func (p TaskPatch) IsZero() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil &&
		p.Priority == nil && p.Completed == nil && p.DueDate == nil && !p.ClearDueDate
}

// MarshalJSON emits only the fields that are set.
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any)
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Category != nil {
		fields["category"] = *p.Category
	}
	if p.Priority != nil {
		fields["priority"] = *p.Priority
	}
	if p.Completed != nil {
		fields["completed"] = *p.Completed
	}
	switch {
	case p.ClearDueDate:
		fields["due_date"] = nil
	case p.DueDate != nil:
		fields["due_date"] = p.DueDate
	}
	return json.Marshal(fields)
}

// HealthStatus is the payload of GET /health.
type HealthStatus struct {
	Status      string `json:"status"`
	Message     string `json:"message"`
	Environment string `json:"environment"`
}
