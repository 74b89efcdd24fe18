package main

import (
	"fmt"
	"os"

	_ "time/tzdata"

	"github.com/MassBabyGeek/PikminDiary-backend/internal/config"
	"github.com/MassBabyGeek/PikminDiary-backend/internal/logger"
	"github.com/spf13/cobra"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "pikmin-diary",
		Short:         "Pikmin Diary API server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("CONFIG_PATH"), "fichier de configuration YAML")

	root.AddCommand(serveCmd(), migrateCmd(), ranksCmd(), translationsCmd())

	if err := root.Execute(); err != nil {
		logger.Error("%v", err)
		logger.Sync()
		os.Exit(1)
	}
}

// loadConfig charge la configuration et initialise le logger
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("could not load config: %w", err)
	}
	if err := logger.Init(cfg.Logging.Level); err != nil {
		return nil, fmt.Errorf("could not init logger: %w", err)
	}
	return cfg, nil
}
