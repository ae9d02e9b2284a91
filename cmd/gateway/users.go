package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/bankgate/internal/gateway/app"
	"github.com/aussiebroadwan/bankgate/internal/gateway/service"
	"github.com/aussiebroadwan/bankgate/pkg/cryptox"
	"github.com/spf13/cobra"
)

var createPassword string

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage gateway users",
	}

	create := &cobra.Command{
		Use:   "create [username]",
		Short: "Create a user that can log in to the gateway",
		Long: `Create a user that can log in to the gateway.

The password is taken from --password, or read as one line from stdin.

Examples:
  gateway users create alice --password 'correct-horse'
  echo 'correct-horse' | gateway users create alice`,
		Args: cobra.ExactArgs(1),
		RunE: runCreateUser,
	}
	create.Flags().StringVar(&createPassword, "password", "", "password for the new user")

	cmd.AddCommand(create)
	return cmd
}

func runCreateUser(cmd *cobra.Command, args []string) error {
	password := createPassword
	if password == "" {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return errors.New("password required: pass --password or pipe it on stdin")
		}
		password = strings.TrimRight(line, "\r\n")
	}

	cfg := app.LoadConfig()
	pepper, err := cryptox.LoadOrCreatePepper(cfg.PepperFile)
	if err != nil {
		return fmt.Errorf("failed to load pepper: %w", err)
	}

	db, err := app.OpenStore(cfg.DatabaseFile)
	if err != nil {
		return err
	}
	defer db.Close()

	sessions := &service.SessionService{
		Store:  db,
		Hasher: cryptox.PasswordHasher{Pepper: pepper},
	}
	u, err := sessions.CreateUser(cmd.Context(), args[0], password)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.Username, u.ID)
	return nil
}
