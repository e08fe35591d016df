package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quizwhiz/quizwhiz-backend/apiclient"
)

type credentials struct {
	name     string
	email    string
	password string
}

// prompt reads a line for any empty field.
func prompt(r *bufio.Reader, out io.Writer, label string, value *string) error {
	if *value != "" {
		return nil
	}
	fmt.Fprintf(out, "%s: ", label)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	*value = strings.TrimSpace(line)
	return nil
}

func saveToken(ctx context.Context, flags *globalFlags, token string) error {
	st, closeStore, err := openStore(ctx, flags)
	if err != nil {
		return err
	}
	defer closeStore()
	return st.SaveToken(ctx, token)
}

func newSignupCmd(flags *globalFlags) *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account and remember its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			for _, f := range []struct {
				label string
				value *string
			}{{"Name", &creds.name}, {"Email", &creds.email}, {"Password", &creds.password}} {
				if err := prompt(in, out, f.label, f.value); err != nil {
					return err
				}
			}

			client := apiclient.NewClient(flags.apiURL, nil)
			token, err := client.CreateUser(ctx, creds.name, creds.email, creds.password)
			if err != nil {
				return err
			}
			if err := saveToken(ctx, flags, token); err != nil {
				return err
			}
			fmt.Fprintf(out, "Welcome, %s! You are logged in.\n", creds.name)
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.name, "name", "", "display name (at least 3 characters)")
	cmd.Flags().StringVar(&creds.email, "email", "", "email address")
	cmd.Flags().StringVar(&creds.password, "password", "", "password (at least 8 characters)")
	return cmd
}

func newLoginCmd(flags *globalFlags) *cobra.Command {
	var creds credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in := bufio.NewReader(cmd.InOrStdin())
			out := cmd.OutOrStdout()
			if err := prompt(in, out, "Email", &creds.email); err != nil {
				return err
			}
			if err := prompt(in, out, "Password", &creds.password); err != nil {
				return err
			}

			client := apiclient.NewClient(flags.apiURL, nil)
			token, err := client.CheckUser(ctx, creds.email, creds.password)
			if err != nil {
				return err
			}
			if err := saveToken(ctx, flags, token); err != nil {
				return err
			}
			fmt.Fprintln(out, "Logged in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.email, "email", "", "email address")
	cmd.Flags().StringVar(&creds.password, "password", "", "password")
	return cmd
}

func newLogoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, closeStore, err := openStore(ctx, flags)
			if err != nil {
				return err
			}
			defer closeStore()
			if err := st.ClearToken(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out. Results will not be saved until you log in again.")
			return nil
		},
	}
}
