// Package app ties the session store, API client, and task cache together
// behind one controller. The controller owns all client state explicitly;
// nothing lives in package-level globals.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/c360studio/taskdeck/api"
	"github.com/c360studio/taskdeck/cache"
	"github.com/c360studio/taskdeck/session"
	"github.com/c360studio/taskdeck/task"
)

// State is the client's position in its lifecycle.
type State string

const (
	// StateUnauthenticated means no session is active.
	StateUnauthenticated State = "unauthenticated"
	// StateLoading means a session is active and a sync is in flight.
	StateLoading State = "loading"
	// StateReady means the cache reflects the last successful sync.
	StateReady State = "ready"
)

// Controller drives the client state machine:
//
//	Unauthenticated -> (login/register) -> Loading -> Ready
//
// Every successful mutation cycles Ready -> Loading -> Ready via a full
// refresh; nothing is patched incrementally. Logout returns to
// Unauthenticated from any authenticated state and discards the cache.
type Controller struct {
	client *api.Client
	store  *session.Store
	cache  *cache.Cache
	logger *slog.Logger

	state State
	user  *task.User
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates a controller in the Unauthenticated state.
func New(client *api.Client, store *session.Store, opts ...Option) *Controller {
	c := &Controller{
		client: client,
		store:  store,
		cache:  cache.New(),
		logger: slog.Default(),
		state:  StateUnauthenticated,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// CurrentUser returns the authenticated user, or nil.
func (c *Controller) CurrentUser() *task.User {
	return c.user
}

// Resume restores a persisted session without syncing. It fails with
// api.ErrUnauthenticated when no session is stored.
func (c *Controller) Resume() error {
	sess, err := c.store.Load()
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return api.ErrUnauthenticated
		}
		return err
	}
	c.logger.Debug("Restored session", "username", sess.User.Username)
	c.adopt(sess)
	return nil
}

// Bootstrap restores a persisted session if one exists and performs the
// initial sync. An absent session is not an error; the controller simply
// stays Unauthenticated.
func (c *Controller) Bootstrap(ctx context.Context) error {
	if err := c.Resume(); err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			c.logger.Debug("No persisted session")
			return nil
		}
		return err
	}
	return c.Refresh(ctx)
}

// Login authenticates, persists the session, and syncs.
func (c *Controller) Login(ctx context.Context, email, password string) error {
	sess, err := c.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := c.store.Save(sess); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	c.adopt(sess)
	return c.Refresh(ctx)
}

// Register creates an account, persists the resulting session, and syncs.
func (c *Controller) Register(ctx context.Context, username, email, password string) error {
	sess, err := c.client.Register(ctx, username, email, password)
	if err != nil {
		return err
	}
	if err := c.store.Save(sess); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	c.adopt(sess)
	return c.Refresh(ctx)
}

// adopt installs a session on the client and moves to Loading.
func (c *Controller) adopt(sess *session.Session) {
	c.client.SetToken(sess.Token)
	user := sess.User
	c.user = &user
	c.state = StateLoading
}

// Logout clears the persisted session and all cached state.
func (c *Controller) Logout() error {
	err := c.store.Clear()
	c.client.ClearToken()
	c.cache.Invalidate()
	c.user = nil
	c.state = StateUnauthenticated
	return err
}

// Refresh performs a full sync: fetch the task collection and the
// statistics snapshot, each replacing the cached copy wholesale. The two
// fetches share one generation; the cache discards whichever arrives
// stale. A failed refresh leaves previously cached data in place.
func (c *Controller) Refresh(ctx context.Context) error {
	if c.state == StateUnauthenticated {
		return api.ErrUnauthenticated
	}
	prev := c.state
	c.state = StateLoading

	gen := c.cache.NextGen()

	tasks, err := c.client.ListTasks(ctx)
	if err != nil {
		c.state = prev
		return fmt.Errorf("fetch tasks: %w", err)
	}
	if !c.cache.ReplaceTasks(gen, tasks) {
		c.logger.Debug("Discarded stale task fetch", "gen", gen)
	}

	stats, err := c.client.Statistics(ctx)
	if err != nil {
		c.state = prev
		return fmt.Errorf("fetch statistics: %w", err)
	}
	if !c.cache.ReplaceStats(gen, stats) {
		c.logger.Debug("Discarded stale statistics fetch", "gen", gen)
	}

	c.state = StateReady
	return nil
}

// CreateTask creates a task and refreshes.
func (c *Controller) CreateTask(ctx context.Context, req api.CreateTaskRequest) (*task.Task, error) {
	created, err := c.client.CreateTask(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := c.Refresh(ctx); err != nil {
		return created, err
	}
	return created, nil
}

// UpdateTask applies a partial patch and refreshes.
func (c *Controller) UpdateTask(ctx context.Context, id int, patch api.TaskPatch) (*task.Task, error) {
	updated, err := c.client.UpdateTask(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	if err := c.Refresh(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// ToggleTask flips a task's completion state based on the cached copy.
func (c *Controller) ToggleTask(ctx context.Context, id int) (*task.Task, error) {
	current, ok := c.cache.Task(id)
	if !ok {
		return nil, fmt.Errorf("task %d not found", id)
	}
	completed := !current.Completed
	return c.UpdateTask(ctx, id, api.TaskPatch{Completed: &completed})
}

// DeleteTask removes a task and refreshes.
func (c *Controller) DeleteTask(ctx context.Context, id int) error {
	if err := c.client.DeleteTask(ctx, id); err != nil {
		return err
	}
	return c.Refresh(ctx)
}

// Tasks returns the cached tasks matching the filter.
func (c *Controller) Tasks(f cache.Filter) []task.Task {
	return c.cache.Match(f)
}

// Task looks up a cached task by id.
func (c *Controller) Task(id int) (task.Task, bool) {
	return c.cache.Task(id)
}

// Statistics returns the last-fetched statistics snapshot, or nil.
func (c *Controller) Statistics() *task.Statistics {
	return c.cache.Statistics()
}
