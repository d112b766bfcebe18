// Package config handles input from etc/main.toml
package config

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	// EnvConfigJSON holds a JSON document merged over the file configuration.
	EnvConfigJSON = "INTRANET_CONFIG_JSON"

	defaultShutDownTime   = 5
	defaultSessionExpiry  = 8 * time.Hour
	defaultSyncQueueSize  = 64
	defaultSyncJobTimeout = 10 * time.Second
)

// ReadConfig from config file.
func ReadConfig(path string) (Config, error) {
	var c Config

	// Read main configuration
	if path == "" {
		path = "./etc/"
	}

	v := viper.New()
	v.SetConfigFile(filepath.Join(path, "main.toml"))
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return Config{}, errors.Wrap(err, "failed to read main config file")
	}

	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode main config file")
	}

	// override it from env
	if configAsJSON := os.Getenv(EnvConfigJSON); configAsJSON != "" {
		var err error

		if c, err = decodeAndMergeConfig(c, configAsJSON); err != nil {
			return c, err
		}
	}

	return c, validate(&c)
}

func decodeAndMergeConfig(c Config, configAsJSON string) (Config, error) {
	if err := json.Unmarshal([]byte(configAsJSON), &c); err != nil {
		return Config{}, errors.Wrap(err, "failed to decode "+EnvConfigJSON)
	}

	return c, nil
}

// DumpConfigJSON config as JSON String. Secrets are masked.
func DumpConfigJSON(c *Config) (string, error) {
	var buffer bytes.Buffer

	masked := *c
	if masked.DB.Password != "" {
		masked.DB.Password = "********"
	}

	if masked.Directory.AdminPassword != "" {
		masked.Directory.AdminPassword = "********"
	}

	if masked.Seed.AdminCredential != "" {
		masked.Seed.AdminCredential = "********"
	}

	j := json.NewEncoder(&buffer)
	j.SetIndent("", "  ")

	if err := j.Encode(masked); err != nil {
		return "", err //nolint: wrapcheck
	}

	return buffer.String(), nil
}

// validate minimal config settings and fill in defaults.
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
		c.DB.GormEngine = GormEngineSQLite
	case GormEngineSQLite, GormEngineMySQL, GormEnginePostgres:
	default:
		return errors.Wrap(ErrUnknownGormEngine, invalidErrMessage)
	}

	switch c.Directory.Backend {
	case "":
		c.Directory.Backend = "memory"
	case "memory", "ldap":
	default:
		return errors.Wrap(ErrUnknownDirectoryBackend, invalidErrMessage)
	}

	if c.Webserver.ShutDownTime == 0 {
		c.Webserver.ShutDownTime = defaultShutDownTime
	}

	if c.Webserver.Session.ExpiryTime == 0 {
		c.Webserver.Session.ExpiryTime = defaultSessionExpiry
	}

	if c.Sync.QueueSize <= 0 {
		c.Sync.QueueSize = defaultSyncQueueSize
	}

	if c.Sync.Timeout <= 0 {
		c.Sync.Timeout = defaultSyncJobTimeout
	}

	return nil
}
