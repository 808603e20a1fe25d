package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/taskdeck/config"
	"github.com/c360studio/taskdeck/session"
	"github.com/c360studio/taskdeck/task"
)

// newTestContext wires a command context against a canned backend and an
// isolated session file.
func newTestContext(t *testing.T, handler http.Handler) *Context {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := config.DefaultConfig()
	cfg.API.BaseURL = server.URL
	cfg.Session.Path = filepath.Join(t.TempDir(), "session.json")
	return NewContext(cfg, nil)
}

func execute(t *testing.T, c *Context, args ...string) (string, error) {
	t.Helper()
	root := &cobra.Command{Use: "taskdeck", SilenceUsage: true}
	AddCommands(root, c)

	var out strings.Builder
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func savedSession(t *testing.T, c *Context) {
	t.Helper()
	store := session.NewStore(session.WithPath(c.Config.Session.Path))
	require.NoError(t, store.Save(&session.Session{
		Token: "T",
		User:  task.User{ID: 1, Username: "a", Email: "a@b.com"},
	}))
}

func TestLoginCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "T",
			"user":         task.User{ID: 1, Username: "a", Email: "a@b.com"},
		})
	})
	mux.HandleFunc("GET /todos", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"todos": []}`))
	})
	mux.HandleFunc("GET /statistics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total": 0}`))
	})

	c := newTestContext(t, mux)
	out, err := execute(t, c, "login", "--email", "a@b.com", "--password", "x")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as a")

	// The session landed in the configured path.
	store := session.NewStore(session.WithPath(c.Config.Session.Path))
	sess, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "T", sess.Token)
}

func TestListCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /todos", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer T", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"todos": [
			{"id": 1, "title": "Buy milk", "category": "shopping", "priority": "low",
			 "completed": false, "created_at": "2024-03-01T10:00:00"},
			{"id": 2, "title": "Ship release", "category": "work", "priority": "high",
			 "completed": true, "created_at": "2024-03-01T11:00:00"}
		]}`))
	})
	mux.HandleFunc("GET /statistics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total": 2}`))
	})

	c := newTestContext(t, mux)
	savedSession(t, c)

	out, err := execute(t, c, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "Ship release")

	out, err = execute(t, newTestContextLike(t, c), "list", "--status", "active")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy milk")
	assert.NotContains(t, out, "Ship release")

	out, err = execute(t, newTestContextLike(t, c), "list", "--search", "release")
	require.NoError(t, err)
	assert.NotContains(t, out, "Buy milk")
	assert.Contains(t, out, "Ship release")
}

// newTestContextLike clones a context so each execution starts with a
// fresh controller, the way separate CLI invocations would.
func newTestContextLike(t *testing.T, c *Context) *Context {
	t.Helper()
	cfg := *c.Config
	return NewContext(&cfg, nil)
}

func TestListCommandRejectsBadStatus(t *testing.T) {
	c := newTestContext(t, http.NewServeMux())
	_, err := execute(t, c, "list", "--status", "done")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status")
}

func TestListCommandWithoutSession(t *testing.T) {
	var hits int
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { hits++ })

	c := newTestContext(t, mux)
	_, err := execute(t, c, "list")
	require.Error(t, err)
	assert.Zero(t, hits, "no request may be issued without a session")
}

func TestAddCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /todos", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "Buy milk", body["title"])
		assert.Equal(t, "shopping", body["category"])
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"todo": {"id": 42, "title": "Buy milk", "category": "shopping",
			"priority": "low", "created_at": "2024-03-01T10:00:00"}}`))
	})
	mux.HandleFunc("GET /todos", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"todos": []}`))
	})
	mux.HandleFunc("GET /statistics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total": 1}`))
	})

	c := newTestContext(t, mux)
	savedSession(t, c)

	out, err := execute(t, c, "add", "Buy milk", "--category", "shopping", "--priority", "low")
	require.NoError(t, err)
	assert.Contains(t, out, "Created task 42")
}

func TestCompleteCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /todos/5", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, map[string]any{"completed": true}, body)
		_, _ = w.Write([]byte(`{"todo": {"id": 5, "title": "Ship release", "category": "work",
			"priority": "high", "completed": true, "created_at": "2024-03-01T10:00:00"}}`))
	})
	mux.HandleFunc("GET /todos", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"todos": []}`))
	})
	mux.HandleFunc("GET /statistics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total": 1}`))
	})

	c := newTestContext(t, mux)
	savedSession(t, c)

	out, err := execute(t, c, "complete", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Completed task 5")
}

func TestDeleteCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /todos/5", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /todos", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"todos": []}`))
	})
	mux.HandleFunc("GET /statistics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total": 0}`))
	})

	c := newTestContext(t, mux)
	savedSession(t, c)

	out, err := execute(t, c, "rm", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted task 5")
}

func TestDeleteCommandRejectsBadID(t *testing.T) {
	c := newTestContext(t, http.NewServeMux())
	_, err := execute(t, c, "rm", "five")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid task id")
}

func TestStatsCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /todos", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"todos": []}`))
	})
	mux.HandleFunc("GET /statistics", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"total": 4, "completed": 1, "pending": 3,
			"completion_rate": 25.0, "category_stats": {"work": 4}}`))
	})

	c := newTestContext(t, mux)
	savedSession(t, c)

	out, err := execute(t, c, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 4")
	assert.Contains(t, out, "25.0%")
}

func TestLogoutCommand(t *testing.T) {
	c := newTestContext(t, http.NewServeMux())
	savedSession(t, c)

	out, err := execute(t, c, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged out")

	store := session.NewStore(session.WithPath(c.Config.Session.Path))
	_, err = store.Load()
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestWhoamiCommand(t *testing.T) {
	c := newTestContext(t, http.NewServeMux())
	savedSession(t, c)

	out, err := execute(t, c, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "a (a@b.com)")
}

func TestHealthCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "healthy", "message": "Server is running"}`))
	})

	c := newTestContext(t, mux)
	out, err := execute(t, c, "health")
	require.NoError(t, err)
	assert.Contains(t, out, "healthy")
}

func TestEditCommandRequiresChange(t *testing.T) {
	c := newTestContext(t, http.NewServeMux())
	savedSession(t, c)

	_, err := execute(t, c, "edit", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to change")
}

func TestParseDue(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Time
		wantErr bool
	}{
		{in: "2024-03-10", want: time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)},
		{in: "2024-03-10T09:30", want: time.Date(2024, 3, 10, 9, 30, 0, 0, time.Local)},
		{in: "2024-03-10 09:30", want: time.Date(2024, 3, 10, 9, 30, 0, 0, time.Local)},
		{in: "next tuesday", wantErr: true},
	}
	for _, tt := range tests {
		got, err := parseDue(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.True(t, got.Equal(tt.want), "parseDue(%q) = %v", tt.in, got.Time)
	}
}
