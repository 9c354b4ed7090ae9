package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"taskmate/internal/domain"
	"taskmate/internal/session"
	"taskmate/internal/theme"
	"taskmate/internal/validate"
)

const dueLayout = "Mon Jan 2 2006 15:04"

func tasksCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Work with your tasks",
	}
	cmd.AddCommand(
		tasksListCmd(a), tasksShowCmd(a), tasksAddCmd(a),
		tasksEditCmd(a), tasksDoneCmd(a), tasksDeleteCmd(a),
	)
	return cmd
}

func tasksListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks, err := a.sess.Tasks(cmd.Context())
			if err != nil {
				return failure(err, "Failed to load tasks.")
			}
			out, st := cmd.OutOrStdout(), a.styles()
			if len(tasks) == 0 {
				fmt.Fprintln(out, st.Muted.Render("No tasks yet."))
				return nil
			}
			for _, t := range tasks {
				fmt.Fprintf(out, "#%-4d %-12s %s\n", t.ID, "["+statusText(t.Status)+"]", st.Primary.Render(t.Title))
			}
			return nil
		},
	}
}

func tasksShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := a.sess.Task(cmd.Context(), id)
			if err != nil {
				return failure(err, "Failed to load the task.")
			}
			printTask(cmd.OutOrStdout(), a.styles(), t)
			return nil
		},
	}
}

func tasksAddCmd(a *app) *cobra.Command {
	var f session.TaskForm
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("title") {
				var err error
				if f.Title, err = a.prompt.Input("Title", "", validate.TaskTitle); err != nil {
					return err
				}
			}
			t, err := a.sess.AddTask(cmd.Context(), f)
			if err != nil {
				return failure(err, "Failed to add the task.")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task added successfully (#%d)\n", t.ID)
			return nil
		},
	}
	taskFlags(cmd, &f)
	return cmd
}

func tasksEditCmd(a *app) *cobra.Command {
	var f session.TaskForm
	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit a task; unspecified fields keep their current values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			current, err := a.sess.Task(cmd.Context(), id)
			if err != nil {
				return failure(err, "Failed to load the task.")
			}
			merged := session.FormFromTask(current)
			fl := cmd.Flags()
			if fl.Changed("title") {
				merged.Title = f.Title
			}
			if fl.Changed("description") {
				merged.Description = f.Description
			}
			if fl.Changed("date") {
				merged.Date = f.Date
			}
			if fl.Changed("status") {
				merged.Status = f.Status
			}
			if _, err := a.sess.EditTask(cmd.Context(), id, merged); err != nil {
				return failure(err, "Failed to update the task.")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Task updated successfully")
			return nil
		},
	}
	taskFlags(cmd, &f)
	return cmd
}

func tasksDoneCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done ID",
		Short: "Mark a task completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if _, err := a.sess.CompleteTask(cmd.Context(), id); err != nil {
				return failure(err, "Failed to update the task.")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Task marked as completed")
			return nil
		},
	}
}

func tasksDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !yes {
				ok, err := a.prompt.Confirm("Are you sure you want to delete this task?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Task deletion canceled.")
					return nil
				}
			}
			if err := a.sess.DeleteTask(cmd.Context(), id); err != nil {
				return failure(err, "Failed to delete the task. Please try again.")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Task deleted successfully!")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func taskFlags(cmd *cobra.Command, f *session.TaskForm) {
	cmd.Flags().StringVar(&f.Title, "title", "", "task title")
	cmd.Flags().StringVar(&f.Description, "description", "", "task description")
	cmd.Flags().StringVar(&f.Date, "date", "", "due date, e.g. 2026-03-14 09:30")
	cmd.Flags().StringVar(&f.Status, "status", "", "Pending, In Progress or Completed")
}

func printTask(out io.Writer, st theme.Styles, t domain.Task) {
	fmt.Fprintln(out, st.Primary.Render(t.Title))
	if t.Description != "" {
		fmt.Fprintln(out, t.Description)
	}
	fmt.Fprintf(out, "Status: %s\n", statusText(t.Status))
	due := "not set"
	if t.Due != nil {
		due = t.Due.In(time.Local).Format(dueLayout)
	}
	fmt.Fprintf(out, "Due: %s\n", due)
}

func statusText(s domain.Status) string {
	if s == "" {
		return string(domain.StatusPending)
	}
	return string(s)
}
