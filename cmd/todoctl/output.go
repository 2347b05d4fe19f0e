package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/jaekwang-park/todolist/internal/client"
	"github.com/jaekwang-park/todolist/internal/model"
)

var nowFunc = time.Now

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// dueLabel renders the due date with its status. Completed todos are
// never reported as overdue.
func dueLabel(t model.Todo, now time.Time) string {
	if t.DueDate == nil {
		return "-"
	}
	label := t.DueDate.Format("2006-01-02")
	if t.Completed {
		return label
	}
	return fmt.Sprintf("%s (%s)", label, client.DueStatus(*t.DueDate, now))
}

func writeTodoTable(w io.Writer, todos []model.Todo, now time.Time) error {
	if len(todos) == 0 {
		_, err := fmt.Fprintln(w, "No todos.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRIORITY\tTITLE\tCATEGORY\tDUE")
	completed := 0
	for _, t := range todos {
		if t.Completed {
			completed++
		}
		category := t.Category
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, checkbox(t.Completed), t.Priority, t.Title, category, dueLabel(t, now))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d/%d completed\n", completed, len(todos))
	return err
}

func writeTodoDetail(w io.Writer, t model.Todo, now time.Time) {
	fmt.Fprintf(w, "%s %s\n", checkbox(t.Completed), t.Title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "  id:\t%s\n", t.ID)
	fmt.Fprintf(tw, "  priority:\t%s\n", t.Priority)
	if t.Category != "" {
		fmt.Fprintf(tw, "  category:\t%s\n", t.Category)
	}
	fmt.Fprintf(tw, "  due:\t%s\n", dueLabel(t, now))
	if t.Description != "" {
		fmt.Fprintf(tw, "  description:\t%s\n", t.Description)
	}
	fmt.Fprintf(tw, "  created:\t%s\n", t.CreatedAt.Local().Format("2006-01-02 15:04"))
	fmt.Fprintf(tw, "  updated:\t%s\n", t.UpdatedAt.Local().Format("2006-01-02 15:04"))
	tw.Flush()
}
