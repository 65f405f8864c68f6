// Package commands implements the dayflow client CLI.
package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/dayflow/core/internal/client/api"
	"github.com/dayflow/core/internal/client/data"
	"github.com/dayflow/core/internal/client/localstore"
	"github.com/dayflow/core/internal/client/session"
	"github.com/dayflow/core/internal/infrastructure/config"
	"github.com/dayflow/core/internal/infrastructure/logger"
)

const flushTimeout = 5 * time.Second

// App holds the client stack shared by every command. The root command's
// persistent hooks open it before a command runs and close it after,
// draining queued propagation so a short-lived process does not drop
// changes on the floor.
type App struct {
	ServerURL string
	DataPath  string

	Local   *localstore.Store
	Session *session.Session
	Backend api.Client
	Store   *data.Store
	Log     *logger.Logger
}

// NewApp registers the persistent flags and lifecycle hooks on root.
func NewApp(root *cobra.Command) *App {
	app := &App{}

	root.PersistentFlags().StringVar(&app.ServerURL, "server", defaultServer(), "Dayflow server URL")
	root.PersistentFlags().StringVar(&app.DataPath, "data", defaultDataPath(), "path to the local database file")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.open(cmd.Context())
	}
	root.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		return app.close()
	}
	return app
}

func (a *App) open(ctx context.Context) error {
	log, err := logger.New(config.LoggerConfig{Level: "warn", Format: "console", Output: "stdout"})
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	a.Log = log

	if err := os.MkdirAll(filepath.Dir(a.DataPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	local, err := localstore.Open(a.DataPath)
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}
	a.Local = local

	sess, err := session.Load(local)
	if err != nil {
		local.Close()
		return fmt.Errorf("restoring session: %w", err)
	}
	a.Session = sess

	a.Backend = api.NewHTTPClient(a.ServerURL)
	a.Store = data.NewStore(local, a.Backend, sess, log)

	if err := a.Store.Initialize(ctx); err != nil {
		local.Close()
		return fmt.Errorf("initializing data store: %w", err)
	}
	return nil
}

func (a *App) close() error {
	if a.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if err := a.Store.Flush(ctx); err != nil {
			fmt.Fprintln(os.Stderr, "Warning: some changes have not reached the server yet; they will retry on the next sync.")
		}
	}
	if a.Local != nil {
		return a.Local.Close()
	}
	return nil
}

// requireSession guards commands that only make sense when signed in.
func (a *App) requireSession() error {
	if !a.Session.Authenticated() {
		return fmt.Errorf("not signed in; run \"dayflow login\" first")
	}
	return nil
}

func defaultServer() string {
	if v := os.Getenv("DAYFLOW_SERVER"); v != "" {
		return v
	}
	return "http://localhost:5000"
}

func defaultDataPath() string {
	if v := os.Getenv("DAYFLOW_DATA"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "dayflow.db"
	}
	return filepath.Join(home, ".dayflow", "dayflow.db")
}
