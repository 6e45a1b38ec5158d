// Package config handles input from etc/*.toml files
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"slices"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"golang.org/x/text/language"
)

// EnvConfigJSON holds a JSON document merged over main.toml.
const EnvConfigJSON = "GO_WEBTREES_ADMIN_CONFIG_JSON"

const (
	defaultShutDownTime    = 5
	defaultDataPath        = "data/"
	defaultMaxUploadSize   = 8 << 20
	defaultCheckInterval   = 24 * time.Hour
	defaultUpgradeTimeout  = 5 * time.Second
	defaultDefaultLanguage = "en-US"
	defaultSessionExpiry   = 2 * time.Hour
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var (
		c             Config
		JSONConfigEnv string
		err           error
	)

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	if _, err = toml.DecodeFile(path+"main.toml", &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	// override it from env
	JSONConfigEnv = os.Getenv(EnvConfigJSON)

	if JSONConfigEnv != "" {
		c, err = decodeAndMergeConfig(c, JSONConfigEnv)
		if err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	err := json.Unmarshal([]byte(configAsJSON), &c)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config override from env")
	}

	return c, nil
}

// DumpConfig config as TOML String.
func DumpConfig(c *Config) (string, error) {
	var buffer bytes.Buffer
	t := toml.NewEncoder(&buffer)

	if err := t.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// DumpConfigJSON config as JSON String.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer
	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(c); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate the settings needed to start and fill in defaults.
func validate(c *Config) error {
	invalidErrMessage := "invalid config"

	if c.Webserver.Port == 0 {
		return errors.Wrap(ErrWebServerPortCanNotBeZero, invalidErrMessage)
	}

	if c.Webserver.URL == "" {
		return errors.Wrap(ErrEmptyURL, invalidErrMessage)
	}

	switch c.DB.GormEngine {
	case "":
		c.DB.GormEngine = EngineMySQL
	case EngineMySQL, EnginePostgres, EngineSQLite:
	default:
		return errors.Wrap(ErrUnknownGormEngine, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = defaultSessionExpiry
	}

	if c.Data.Path == "" {
		c.Data.Path = defaultDataPath
	}

	if c.Media.MaxUploadSize == 0 {
		c.Media.MaxUploadSize = defaultMaxUploadSize
	}

	if c.Upgrade.CheckInterval == 0 {
		c.Upgrade.CheckInterval = defaultCheckInterval
	}

	if c.Upgrade.Timeout == 0 {
		c.Upgrade.Timeout = defaultUpgradeTimeout
	}

	return validateSite(&c.Site, invalidErrMessage)
}

func validateSite(s *Site, invalidErrMessage string) error {
	if s.DefaultLanguage == "" {
		s.DefaultLanguage = defaultDefaultLanguage
	}

	if len(s.Languages) == 0 {
		s.Languages = []string{s.DefaultLanguage}
	}

	for _, l := range s.Languages {
		if _, err := language.Parse(l); err != nil {
			return errors.Wrapf(ErrInvalidLanguage, "%s: %q", invalidErrMessage, l)
		}
	}

	if !slices.Contains(s.Languages, s.DefaultLanguage) {
		return errors.Wrap(ErrDefaultLanguageNotSupported, invalidErrMessage)
	}

	return nil
}
