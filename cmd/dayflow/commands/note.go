package commands

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dayflow/core/internal/client/data"
	"github.com/dayflow/core/internal/domain/entities"
)

// NewNoteCommand groups the daily note subcommands.
func NewNoteCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage daily notes",
	}
	cmd.AddCommand(
		newNoteSaveCommand(app),
		newNoteShowCommand(app),
		newNoteListCommand(app),
	)
	return cmd
}

func newNoteSaveCommand(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "save <content>",
		Short: "Write the note for a day, replacing any previous content",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			note, err := app.Store.SaveNote(noteDate(date), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Printf("Saved note for %s.\n", note.Date)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "note date (YYYY-MM-DD, default today)")
	return cmd
}

func newNoteShowCommand(app *App) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the note for a day",
		RunE: func(cmd *cobra.Command, args []string) error {
			day := noteDate(date)
			note, ok := app.Store.NoteFor(day)
			if !ok {
				fmt.Printf("No note for %s.\n", day)
				return nil
			}
			fmt.Println(note.Content)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "note date (YYYY-MM-DD, default today)")
	return cmd
}

func newNoteListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all daily notes, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			notes := app.Store.Notes()
			if len(notes) == 0 {
				fmt.Println("No notes.")
				return nil
			}
			sort.Slice(notes, func(i, j int) bool { return notes[i].Date > notes[j].Date })
			for _, n := range notes {
				fmt.Printf("%s  %s%s\n", n.Date, firstLine(n.Content), syncSuffix(n.Sync))
			}
			return nil
		},
	}
}

func noteDate(date string) string {
	if date == "" {
		return time.Now().Format(entities.NoteDateLayout)
	}
	return date
}

func firstLine(content string) string {
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		return content[:i]
	}
	return content
}

func syncSuffix(state data.SyncState) string {
	if state == data.SyncSynced {
		return ""
	}
	return "  [" + string(state) + "]"
}
