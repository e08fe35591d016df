// Package cli wires the quizwhiz command: the API server and the terminal client.
package cli

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/quizwhiz/quizwhiz-backend/session"
	"github.com/quizwhiz/quizwhiz-backend/store"
)

const clientStateTTL = 30 * 24 * time.Hour

type globalFlags struct {
	configPath string
	apiURL     string
	statePath  string
	redisAddr  string
	profile    string
}

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envAPI := os.Getenv("QUIZWHIZ_API_URL")
	if envAPI == "" {
		envAPI = "http://localhost:8080"
	}
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:           "quizwhiz",
		Short:         "AI-generated multiple-choice quizzes: API server and terminal client",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&flags.configPath, "config", os.Getenv("CONFIG_PATH"), "path to YAML server config")
	cmd.PersistentFlags().StringVar(&flags.apiURL, "api-url", envAPI, "QuizWhiz API base URL")
	cmd.PersistentFlags().StringVar(&flags.statePath, "state", store.DefaultFilePath(), "client state file")
	cmd.PersistentFlags().StringVar(&flags.redisAddr, "redis", "", "keep client state in Redis at this address instead of the state file")
	cmd.PersistentFlags().StringVar(&flags.profile, "profile", "default", "client state profile name (Redis only)")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newMigrateCmd(flags))
	cmd.AddCommand(newSignupCmd(flags))
	cmd.AddCommand(newLoginCmd(flags))
	cmd.AddCommand(newLogoutCmd(flags))
	cmd.AddCommand(newPlayCmd(flags))
	cmd.AddCommand(newResultsCmd(flags))
	return cmd
}

// openStore returns the client-local state and a func releasing it.
func openStore(ctx context.Context, flags *globalFlags) (session.Store, func(), error) {
	if flags.redisAddr == "" {
		return store.NewFile(flags.statePath), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{Addr: flags.redisAddr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, err
	}
	return store.NewRedis(client, flags.profile, clientStateTTL), func() { client.Close() }, nil
}
