// Package app implements the main application commands.
package app

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// envPrefix is the prefix of environment variables that override flags,
// e.g. GO_WEBTREES_ADMIN_CONFIG_PATH for --config.
const envPrefix = "GO_WEBTREES_ADMIN"

const (
	keyConfigPath = "config_path"
	keyDev        = "dev"
	keyBrowse     = "browse"
)

var rootCmd = &cobra.Command{
	Use:   "go-webtrees-admin",
	Short: "GoWebtrees-Admin is a web-based genealogy site",
	Long: `GoWebtrees-Admin is a web-based genealogy site
that provides family trees, media, stories and FAQs, with an admin area to manage them.`,
	Args: cobra.OnlyValidArgs,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().String("config", "", "Directory holding main.toml (default ./etc/)")

	if err := viper.BindPFlag(keyConfigPath, rootCmd.PersistentFlags().Lookup("config")); err != nil {
		panic(err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
