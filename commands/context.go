// Package commands implements the taskdeck subcommands. Each command
// builds on one shared Context that wires the config, session store, API
// client, and controller together.
package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/c360studio/taskdeck/api"
	"github.com/c360studio/taskdeck/app"
	"github.com/c360studio/taskdeck/config"
	"github.com/c360studio/taskdeck/session"
)

// Context carries shared dependencies into subcommands. The controller
// is built lazily so commands that never touch the API (version, help)
// pay nothing.
type Context struct {
	Config *config.Config
	Logger *slog.Logger

	controller *app.Controller
	client     *api.Client
}

// NewContext creates a command context for the given configuration.
func NewContext(cfg *config.Config, logger *slog.Logger) *Context {
	if logger == nil {
		logger = slog.Default()
	}
	return &Context{Config: cfg, Logger: logger}
}

// Client returns the API client, constructing it on first use.
func (c *Context) Client() *api.Client {
	if c.client == nil {
		c.client = api.NewClient(c.Config.API.BaseURL,
			api.WithTimeout(c.Config.API.Timeout),
			api.WithLogger(c.Logger),
		)
	}
	return c.client
}

// Controller returns the client controller, constructing it on first use.
func (c *Context) Controller() *app.Controller {
	if c.controller == nil {
		storeOpts := []session.StoreOption{session.WithLogger(c.Logger)}
		if c.Config.Session.Path != "" {
			storeOpts = append(storeOpts, session.WithPath(c.Config.Session.Path))
		}
		store := session.NewStore(storeOpts...)
		c.controller = app.New(c.Client(), store, app.WithLogger(c.Logger))
	}
	return c.controller
}

// AddCommands registers every taskdeck subcommand on the root command.
func AddCommands(root *cobra.Command, c *Context) {
	root.AddCommand(
		newRegisterCommand(c),
		newLoginCommand(c),
		newLogoutCommand(c),
		newWhoamiCommand(c),
		newListCommand(c),
		newAddCommand(c),
		newEditCommand(c),
		newCompleteCommand(c),
		newReopenCommand(c),
		newDeleteCommand(c),
		newStatsCommand(c),
		newHealthCommand(c),
	)
}
