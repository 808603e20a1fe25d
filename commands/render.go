package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/c360studio/taskdeck/task"
)

// renderTasks writes the task table. Order follows the cached collection,
// which mirrors the server's ordering.
func renderTasks(w io.Writer, tasks []task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRI\tCATEGORY\tTITLE\tDUE")
	for _, t := range tasks {
		status := " "
		if t.Completed {
			status = "x"
		}
		due := ""
		if t.DueDate != nil && !t.DueDate.IsZero() {
			due = t.DueDate.Format("2006-01-02")
		}
		title := t.Title
		if t.Description != "" {
			title += " - " + ellipsis(t.Description, 40)
		}
		fmt.Fprintf(tw, "%d\t[%s]\t%s\t%s\t%s\t%s\n",
			t.ID, status, t.Priority, t.Category, title, due)
	}
	tw.Flush()
}

// renderStatistics writes the aggregate view: counts, completion bar,
// per-category breakdown.
func renderStatistics(w io.Writer, stats *task.Statistics) {
	if stats == nil {
		fmt.Fprintln(w, "No statistics available")
		return
	}

	fmt.Fprintf(w, "Total: %d  Done: %d  Pending: %d\n", stats.Total, stats.Completed, stats.Pending)
	fmt.Fprintf(w, "Completion: %5.1f%% %s\n", stats.CompletionRate, progressBar(stats.CompletionRate, 20))

	if len(stats.CategoryStats) == 0 {
		return
	}
	fmt.Fprintln(w, "\nBy category:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, cat := range sortedCategories(stats.CategoryStats) {
		fmt.Fprintf(tw, "  %s\t%d\n", cat, stats.CategoryStats[cat])
	}
	tw.Flush()
}

// progressBar renders rate (0-100) as a fixed-width bar.
func progressBar(rate float64, width int) string {
	if rate < 0 {
		rate = 0
	}
	if rate > 100 {
		rate = 100
	}
	filled := int(rate / 100 * float64(width))
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

// sortedCategories returns categories in canonical display order, with
// any unknown server-side categories appended alphabetically.
func sortedCategories(counts map[task.Category]int) []task.Category {
	out := make([]task.Category, 0, len(counts))
	for _, cat := range task.Categories {
		if _, ok := counts[cat]; ok {
			out = append(out, cat)
		}
	}
	var extra []task.Category
	for cat := range counts {
		if !cat.Valid() {
			extra = append(extra, cat)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

func ellipsis(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
