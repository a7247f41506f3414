package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

const authTimeout = 2 * time.Minute

func loginCommand(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the co-signer server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, authTimeout)
			defer cancel()

			email, password, err := promptCredentials(cmd, email, password)
			if err != nil {
				return err
			}
			user, err := a.sessions.Login(ctx, email, password)
			if err != nil {
				return err
			}
			cmd.Printf("Logged in as %s\n", user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted if omitted)")
	return cmd
}

func registerCommand(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account on the co-signer server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, authTimeout)
			defer cancel()

			email, password, err := promptCredentials(cmd, email, password)
			if err != nil {
				return err
			}
			user, err := a.sessions.Register(ctx, email, password)
			if err != nil {
				return err
			}
			cmd.Printf("Account created for %s\n", user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted if omitted)")
	return cmd
}

func logoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear local credentials",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.sessions.Logout()
			cmd.Println("Logged out")
			return nil
		},
	}
}

func whoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := commandContext(cmd, authTimeout)
			defer cancel()

			if err := a.requireSession(ctx); err != nil {
				return err
			}
			user := a.sessions.CurrentUser()
			cmd.Printf("%s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
}

func promptCredentials(cmd *cobra.Command, email, password string) (string, string, error) {
	reader := bufio.NewReader(os.Stdin)
	if email == "" {
		cmd.Print("Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("read email: %w", err)
		}
		email = strings.TrimSpace(line)
	}
	if password == "" {
		cmd.Print("Password: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", "", fmt.Errorf("read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	return email, password, nil
}
