package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dayflow/core/internal/client/data"
)

// NewStatsCommand prints productivity analytics over the local task list.
func NewStatsCommand(app *App) *cobra.Command {
	var scoreRange string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show productivity statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			sum := app.Store.Summary()

			fmt.Printf("Tasks:         %d (%d done, %d open)\n", sum.Total, sum.Completed, sum.Pending)
			fmt.Printf("Completion:    %.0f%%\n", sum.CompletionRate*100)
			fmt.Printf("Score:         %d/100\n", sum.ProductivityScore)
			fmt.Printf("Focus time:    %s\n", formatMinutes(sum.FocusMinutes))
			fmt.Printf("Streak:        %d day(s)\n", sum.StreakDays)

			fmt.Println()
			series := app.Store.ScoreSeries(data.ScoreRange(scoreRange), time.Now())
			for _, p := range series {
				fmt.Printf("%-4s %3d %s\n", p.Label, p.Score, strings.Repeat("#", p.Score/5))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scoreRange, "range", "week", "score series range (week, month or year)")
	return cmd
}

// NewSyncCommand reports sync status. Reconciliation itself runs when the
// store initializes; this command makes sure everything queued has been
// pushed and shows what is still local.
func NewSyncCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push pending changes and show sync status",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireSession(); err != nil {
				return err
			}
			if err := app.Backend.Health(cmd.Context()); err != nil {
				return fmt.Errorf("server unreachable: %w", err)
			}
			if err := app.Store.Flush(cmd.Context()); err != nil {
				return err
			}

			counts := map[data.SyncState]int{}
			for _, t := range app.Store.Tasks() {
				counts[t.Sync]++
			}
			for _, n := range app.Store.Notes() {
				counts[n.Sync]++
			}
			fmt.Printf("Synced: %d  Pending: %d  Failed: %d  Local: %d\n",
				counts[data.SyncSynced], counts[data.SyncPending], counts[data.SyncFailed], counts[data.SyncLocal])
			return nil
		},
	}
}

func formatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}
