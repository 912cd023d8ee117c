package main

import (
	"fmt"
	"net"
	"os"

	"github.com/el-tools/elstats/pkg/server"
	"github.com/el-tools/elstats/pkg/services/config"
	"github.com/el-tools/elstats/pkg/services/fetch"
	"github.com/el-tools/elstats/pkg/services/stats"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Serve the Enterprise Linux usage tables over HTTP",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to a YAML configuration file (defaults are compiled in)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	svc := stats.NewService(cfg, fetch.NewFetcher(fetch.Options{MaxAge: cfg.CacheMaxAge()}))

	logger.Info().
		Int("distros", len(cfg.Distros)).
		Str("data_dir", cfg.DataDir).
		Msg("configuration loaded")

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		logger.Error().Msgf("Missing server configuration from .env file")
		os.Exit(1)
	}

	api := server.NewWebAPI(logger, server.Config{
		Addr: net.JoinHostPort(host, port),
		Dependencies: server.Dependencies{
			Stats:   svc,
			Distros: cfg.DistroInfos(),
		},
	})

	return api.Start()
}
