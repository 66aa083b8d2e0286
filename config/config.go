// Package config exposes build metadata and process-level configuration for
// the polly server, sourced from embedded files, environment variables, and
// an optional TOML defaults file.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

//go:embed version
var version string

//go:embed name
var name string

type LogLevel string

const (
	Debug  LogLevel = "debug"
	Info   LogLevel = "info"
	Notice LogLevel = "notice"
	Warn   LogLevel = "warn"
	Error  LogLevel = "error"
)

// FileDefaults holds optional server defaults loaded from polly.toml. Values
// stored in the settings table take precedence once the database is up.
type FileDefaults struct {
	Listen        string `toml:"listen"`
	Port          int    `toml:"port"`
	SessionMaxAge int    `toml:"session_max_age"`
	PageSize      int    `toml:"page_size"`
}

func GetVersion() string {
	return strings.TrimSpace(version)
}

func GetName() string {
	return strings.TrimSpace(name)
}

func GetLogLevel() LogLevel {
	if IsDebug() {
		return Debug
	}
	logLevel := os.Getenv("POLLY_LOG_LEVEL")
	if logLevel == "" {
		return Info
	}
	return LogLevel(logLevel)
}

func IsDebug() bool {
	return os.Getenv("POLLY_DEBUG") == "true"
}

func GetDBFolderPath() string {
	dbFolderPath := os.Getenv("POLLY_DB_FOLDER")
	if dbFolderPath == "" {
		dbFolderPath = "/etc/polly"
	}
	return dbFolderPath
}

func GetDBPath() string {
	return fmt.Sprintf("%s/%s.db", GetDBFolderPath(), GetName())
}

func GetLogFolder() string {
	logFolderPath := os.Getenv("POLLY_LOG_FOLDER")
	if logFolderPath == "" {
		logFolderPath = "/var/log"
	}
	return logFolderPath
}

// GetFileDefaultsPath returns the location of the optional defaults file.
func GetFileDefaultsPath() string {
	path := os.Getenv("POLLY_CONFIG_FILE")
	if path == "" {
		path = "polly.toml"
	}
	return path
}

// LoadFileDefaults reads polly.toml if present. A missing file is not an
// error; a malformed one is.
func LoadFileDefaults() (*FileDefaults, error) {
	data, err := os.ReadFile(GetFileDefaultsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &FileDefaults{}, nil
		}
		return nil, err
	}
	defaults := &FileDefaults{}
	if err := toml.Unmarshal(data, defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}
