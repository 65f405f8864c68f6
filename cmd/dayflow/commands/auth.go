package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dayflow/core/internal/client/api"
	"github.com/dayflow/core/internal/ports"
)

// NewSignupCommand creates an account on the server and signs in.
func NewSignupCommand(app *App) *cobra.Command {
	var name, email, password string

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create a Dayflow account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app.Backend.Signup(cmd.Context(), ports.RegisterRequest{
				Name:     name,
				Email:    email,
				Password: password,
			})
			if err != nil {
				if api.IsConflict(err) {
					return fmt.Errorf("an account with this email already exists")
				}
				return err
			}
			if err := app.Session.Login(resp.Token, resp.User); err != nil {
				return err
			}
			fmt.Printf("Welcome, %s! You are signed in.\n", resp.User.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "your display name")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (min 8 characters)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

// NewLoginCommand signs in to the server. Any tasks and notes created
// while signed out are migrated to the account if it is empty.
func NewLoginCommand(app *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to a Dayflow server",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := app.Backend.Login(cmd.Context(), ports.LoginRequest{
				Email:    email,
				Password: password,
			})
			if err != nil {
				if api.IsUnauthorized(err) {
					return fmt.Errorf("invalid email or password")
				}
				return err
			}
			if err := app.Session.Login(resp.Token, resp.User); err != nil {
				return err
			}
			fmt.Printf("Signed in as %s <%s>.\n", resp.User.Name, resp.User.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	cmd.MarkFlagRequired("email")
	cmd.MarkFlagRequired("password")
	return cmd
}

// NewLogoutCommand signs out and removes all local data.
func NewLogoutCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear local data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Session.Authenticated() {
				fmt.Println("Not signed in.")
				return nil
			}
			if err := app.Session.Logout(); err != nil {
				return err
			}
			fmt.Println("Signed out. Local tasks and notes were cleared.")
			return nil
		},
	}
}

// NewWhoamiCommand prints the signed-in account.
func NewWhoamiCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.Session.Authenticated() {
				fmt.Println("Not signed in; working locally.")
				return nil
			}
			if user := app.Session.User(); user != nil {
				fmt.Printf("%s <%s>\n", user.Name, user.Email)
			} else {
				fmt.Println("Signed in.")
			}
			return nil
		},
	}
}
