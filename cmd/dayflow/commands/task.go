package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dayflow/core/internal/client/data"
	"github.com/dayflow/core/internal/domain/entities"
)

// NewTaskCommand groups the task subcommands.
func NewTaskCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		newTaskAddCommand(app),
		newTaskListCommand(app),
		newTaskDoneCommand(app),
		newTaskRemoveCommand(app),
		newTaskEditCommand(app),
	)
	return cmd
}

func newTaskAddCommand(app *App) *cobra.Command {
	var description, category, date string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := data.TaskInput{
				Title:    strings.Join(args, " "),
				Category: entities.NormalizeCategory(category),
			}
			if description != "" {
				input.Description = &description
			}
			if date != "" {
				parsed, err := time.ParseInLocation(entities.NoteDateLayout, date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
				}
				input.Date = parsed
			}

			task, err := app.Store.AddTask(input)
			if err != nil {
				return err
			}
			fmt.Printf("Added %s  %s\n", shortID(task.ID), task.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&description, "desc", "", "task description")
	cmd.Flags().StringVar(&category, "category", "today", "task category (today or upcoming)")
	cmd.Flags().StringVar(&date, "date", "", "task date (YYYY-MM-DD, default today)")
	return cmd
}

func newTaskListCommand(app *App) *cobra.Command {
	var category string
	var completed, pending bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks := app.Store.Tasks()

			shown := 0
			for _, t := range tasks {
				if category != "" && t.Category != entities.NormalizeCategory(category) {
					continue
				}
				if completed && !t.Completed {
					continue
				}
				if pending && t.Completed {
					continue
				}
				printTask(t)
				shown++
			}
			if shown == 0 {
				fmt.Println("No tasks.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "show one category (today or upcoming)")
	cmd.Flags().BoolVar(&completed, "completed", false, "show only completed tasks")
	cmd.Flags().BoolVar(&pending, "pending", false, "show only open tasks")
	return cmd
}

func newTaskDoneCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task's completed flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task, err := app.Store.ToggleTask(resolveTaskID(app, args[0]))
			if err != nil {
				return err
			}
			printTask(task)
			return nil
		},
	}
}

func newTaskRemoveCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.DeleteTask(resolveTaskID(app, args[0])); err != nil {
				return err
			}
			fmt.Println("Task deleted.")
			return nil
		},
	}
}

func newTaskEditCommand(app *App) *cobra.Command {
	var title, description, category, date string

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a task's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch data.TaskPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("desc") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("category") {
				c := entities.NormalizeCategory(category)
				patch.Category = &c
			}
			if cmd.Flags().Changed("date") {
				parsed, err := time.ParseInLocation(entities.NoteDateLayout, date, time.Local)
				if err != nil {
					return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", date)
				}
				patch.Date = &parsed
			}

			task, err := app.Store.EditTask(resolveTaskID(app, args[0]), patch)
			if err != nil {
				return err
			}
			printTask(task)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "new title")
	cmd.Flags().StringVar(&description, "desc", "", "new description")
	cmd.Flags().StringVar(&category, "category", "", "new category (today or upcoming)")
	cmd.Flags().StringVar(&date, "date", "", "new date (YYYY-MM-DD)")
	return cmd
}

// resolveTaskID lets users pass the short id prefix that list prints.
func resolveTaskID(app *App, id string) string {
	if len(id) >= 36 {
		return id
	}
	for _, t := range app.Store.Tasks() {
		if strings.HasPrefix(t.ID, id) {
			return t.ID
		}
	}
	return id
}

func printTask(t data.Task) {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	line := fmt.Sprintf("[%s] %s  %s  (%s, %s)", mark, shortID(t.ID), t.Title, t.Category, t.Date.Format(entities.NoteDateLayout))
	if t.Sync != data.SyncSynced {
		line += "  [" + string(t.Sync) + "]"
	}
	fmt.Println(line)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
