package cli

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/quizwhiz/quizwhiz-backend/config"
)

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Println(".env file not found, using environment")
			}
			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			db, err := config.OpenDB(cfg.Database)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
			if err := config.Migrate(db); err != nil {
				return err
			}
			log.Println("migrations applied")
			return nil
		},
	}
}
