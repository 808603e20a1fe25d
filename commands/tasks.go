package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/taskdeck/api"
	"github.com/c360studio/taskdeck/app"
	"github.com/c360studio/taskdeck/cache"
	"github.com/c360studio/taskdeck/task"
)

func newListCommand(c *Context) *cobra.Command {
	var (
		status string
		search string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := cache.Filter{Status: cache.Status(status), Search: search}
			if !filter.Status.Valid() {
				return fmt.Errorf("invalid status %q (want all, active, or completed)", status)
			}

			ctrl, err := syncedController(cmd, c)
			if err != nil {
				return err
			}
			renderTasks(cmd.OutOrStdout(), ctrl.Tasks(filter))
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", string(cache.StatusAll), "Filter by status (all, active, completed)")
	cmd.Flags().StringVar(&search, "search", "", "Match title or description, case-insensitive")

	return cmd
}

func newAddCommand(c *Context) *cobra.Command {
	var (
		description string
		category    string
		priority    string
		due         string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := api.CreateTaskRequest{
				Title:       args[0],
				Description: description,
				Category:    task.ParseCategory(category),
				Priority:    task.ParsePriority(priority),
			}
			if due != "" {
				parsed, err := parseDue(due)
				if err != nil {
					return err
				}
				req.DueDate = &parsed
			}

			ctrl, err := resumedController(c)
			if err != nil {
				return err
			}
			created, err := ctrl.CreateTask(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %d: %s\n", created.ID, created.Title)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Task description")
	cmd.Flags().StringVarP(&category, "category", "c", string(task.CategoryOther), "Category (work, personal, shopping, health, learning, urgent, other)")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(task.PriorityMedium), "Priority (low, medium, high)")
	cmd.Flags().StringVar(&due, "due", "", "Due date (2006-01-02 or 2006-01-02T15:04)")

	return cmd
}

func newEditCommand(c *Context) *cobra.Command {
	var (
		title       string
		description string
		category    string
		priority    string
		due         string
		clearDue    bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var patch api.TaskPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("category") {
				cat := task.ParseCategory(category)
				patch.Category = &cat
			}
			if cmd.Flags().Changed("priority") {
				pri := task.ParsePriority(priority)
				patch.Priority = &pri
			}
			switch {
			case clearDue:
				patch.ClearDueDate = true
			case cmd.Flags().Changed("due"):
				parsed, err := parseDue(due)
				if err != nil {
					return err
				}
				patch.DueDate = &parsed
			}
			if patch.IsZero() {
				return fmt.Errorf("nothing to change; pass at least one field flag")
			}

			ctrl, err := resumedController(c)
			if err != nil {
				return err
			}
			updated, err := ctrl.UpdateTask(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d: %s\n", updated.ID, updated.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New description")
	cmd.Flags().StringVarP(&category, "category", "c", "", "New category")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "New priority")
	cmd.Flags().StringVar(&due, "due", "", "New due date (2006-01-02 or 2006-01-02T15:04)")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "Remove the due date")

	return cmd
}

func newCompleteCommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE:  setCompleted(c, true, "Completed"),
	}
}

func newReopenCommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "reopen <id>",
		Short: "Mark a completed task as active again",
		Args:  cobra.ExactArgs(1),
		RunE:  setCompleted(c, false, "Reopened"),
	}
}

func setCompleted(c *Context, completed bool, verb string) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		ctrl, err := resumedController(c)
		if err != nil {
			return err
		}
		updated, err := ctrl.UpdateTask(cmd.Context(), id, api.TaskPatch{Completed: &completed})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s task %d: %s\n", verb, updated.ID, updated.Title)
		return nil
	}
}

func newDeleteCommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctrl, err := resumedController(c)
			if err != nil {
				return err
			}
			if err := ctrl.DeleteTask(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %d\n", id)
			return nil
		},
	}
}

func newStatsCommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show completion statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := syncedController(cmd, c)
			if err != nil {
				return err
			}
			renderStatistics(cmd.OutOrStdout(), ctrl.Statistics())
			return nil
		},
	}
}

func newHealthCommand(c *Context) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := c.Client().Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", status.Status, status.Message)
			return nil
		},
	}
}

// resumedController restores the stored session without syncing; for
// mutations, which refresh on success anyway.
func resumedController(c *Context) (*app.Controller, error) {
	ctrl := c.Controller()
	if err := ctrl.Resume(); err != nil {
		return nil, err
	}
	return ctrl, nil
}

// syncedController restores the session and performs a full sync; for
// read commands serving cached views.
func syncedController(cmd *cobra.Command, c *Context) (*app.Controller, error) {
	ctrl, err := resumedController(c)
	if err != nil {
		return nil, err
	}
	if err := ctrl.Refresh(cmd.Context()); err != nil {
		return nil, err
	}
	return ctrl, nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}

// parseDue accepts a bare date or a date with minutes, both local time.
func parseDue(s string) (task.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"} {
		if parsed, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return task.NewTime(parsed), nil
		}
	}
	return task.Time{}, fmt.Errorf("invalid due date %q (want 2006-01-02 or 2006-01-02T15:04)", s)
}
