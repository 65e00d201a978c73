package main

import (
	"context"
	"os"
	"strconv"

	"github.com/emergent-labs/emergent-server/internal/app"
	"github.com/emergent-labs/emergent-server/internal/config"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	flagConfig string
	flagPort   int
)

func main() {
	// Best effort; a missing .env is not an error.
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "emergent",
		Short: "Emergent API server",
		Long:  "Backend for the Emergent app builder: projects, AI conversations, credits, and admin tooling.",
	}
	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to config file (default ./config.yaml)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options()
			if !cmd.Flags().Changed("port") {
				if port, errParse := strconv.Atoi(os.Getenv(config.EnvPort)); errParse == nil && port > 0 {
					opts.Port = port
				}
			}
			return app.RunServer(cmd.Context(), opts)
		},
	}
	serveCmd.Flags().IntVarP(&flagPort, "port", "p", 8000, "listen port")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunMigrate(cmd.Context(), options())
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Install default catalogs and bootstrap accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunSeed(cmd.Context(), options())
		},
	}

	root.AddCommand(serveCmd, migrateCmd, seedCmd)

	if err := root.ExecuteContext(context.Background()); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func options() app.Options {
	path := flagConfig
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	return app.Options{
		ConfigPath: config.ResolveConfigPath(path),
		Port:       flagPort,
	}
}
