package app

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/config"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/daemon"
	"github.com/GoWebtrees-Admin/GoWebtrees-Admin/internal/logger"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().Bool(keyDev, false, "Enable dev mode")

	startCmd.Flags().Bool(
		keyBrowse,
		false,
		"Enable static file browsing (for development purposes only)",
	)

	for _, key := range []string{keyDev, keyBrowse} {
		if err := viper.BindPFlag(key, startCmd.Flags().Lookup(key)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(startCmd)
}

var (
	cfg config.Config

	startCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the GoWebtrees-Admin web service",
		PreRunE: func(_ *cobra.Command, _ []string) error {
			var err error
			if cfg, err = loadConfig(); err != nil {
				return err
			}

			if viper.GetBool(keyDev) {
				cfg.DevMode = true
			}

			if viper.GetBool(keyBrowse) {
				cfg.Webserver.BrowseStatic = true
			}

			return logger.Init(cfg.Log)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			log.Info().Bool("dev", cfg.DevMode).Int("port", cfg.Webserver.Port).Msg("starting")

			return daemon.New(&cfg).Start()
		},
	}
)

// loadConfig reads main.toml from the --config directory. An optional .env is
// loaded first, variables already set in the environment win over it.
func loadConfig() (config.Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err = godotenv.Load(".env"); err != nil {
			return config.Config{}, err
		}
	}

	return config.ReadConfig(viper.GetString(keyConfigPath))
}
