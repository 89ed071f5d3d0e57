// Package config loads job files and server configuration.
//
// Files are YAML; JSON is accepted as well since it is a subset of YAML.
// Connection settings can be overridden from the environment with SURREALDB_URL,
// SURREALDB_NS, SURREALDB_DB, SURREALDB_USER and SURREALDB_PASS.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/surrealdb/surrealflow"
	"github.com/surrealdb/surrealflow/pkg/credentials"
	"gopkg.in/yaml.v3"
)

// Environment variables.
const (
	EnvURL       = "SURREALDB_URL"
	EnvNamespace = "SURREALDB_NS"
	EnvDatabase  = "SURREALDB_DB"
	EnvUser      = "SURREALDB_USER"
	EnvPassword  = "SURREALDB_PASS"

	EnvAddr     = "SURREALFLOW_ADDR"
	EnvLogLevel = "SURREALFLOW_LOG_LEVEL"
)

// DefaultAddr is the address the HTTP host listens on when none is configured.
const DefaultAddr = ":8080"

// Server configures the HTTP host.
type Server struct {
	Addr       string `yaml:"addr"`
	LogLevel   string `yaml:"logLevel"`
	LogConsole bool   `yaml:"logConsole"`
	LogFile    string `yaml:"logFile"`

	// Credentials are used for requests that carry no connection settings of their own.
	Credentials *credentials.Settings `yaml:"credentials"`
}

// LoadJob reads a batch request from path and applies environment overrides to its settings.
func LoadJob(path string) (surrealflow.Request, error) {
	var req surrealflow.Request
	if err := readYAML(path, &req); err != nil {
		return surrealflow.Request{}, err
	}
	if req.Resource == "" || req.Operation == "" {
		return surrealflow.Request{}, fmt.Errorf("job %s: resource and operation are required", path)
	}
	req.Settings = ApplyEnv(req.Settings)
	return req, nil
}

// LoadServer reads the server configuration from path. An empty path yields the defaults.
// Environment overrides are applied in both cases.
func LoadServer(path string) (Server, error) {
	var conf Server
	if path != "" {
		if err := readYAML(path, &conf); err != nil {
			return Server{}, err
		}
	}

	conf.Addr = GetEnvOrDefault(EnvAddr, conf.Addr)
	if conf.Addr == "" {
		conf.Addr = DefaultAddr
	}
	conf.LogLevel = GetEnvOrDefault(EnvLogLevel, conf.LogLevel)

	if conf.Credentials != nil || os.Getenv(EnvURL) != "" {
		var s credentials.Settings
		if conf.Credentials != nil {
			s = *conf.Credentials
		}
		s = ApplyEnv(s)
		conf.Credentials = &s
	}
	return conf, nil
}

// ApplyEnv overrides connection settings with the SURREALDB_* environment variables.
// Setting SURREALDB_URL switches the settings to connection string mode.
func ApplyEnv(s credentials.Settings) credentials.Settings {
	if url := strings.TrimSpace(os.Getenv(EnvURL)); url != "" {
		s.Mode = credentials.ModeConnectionString
		s.ConnectionString = url
	}
	s.Namespace = GetEnvOrDefault(EnvNamespace, s.Namespace)
	s.Database = GetEnvOrDefault(EnvDatabase, s.Database)
	s.Username = GetEnvOrDefault(EnvUser, s.Username)
	s.Password = GetEnvOrDefault(EnvPassword, s.Password)
	return s
}

// GetEnvOrDefault returns the value of key, or defaultValue when it is unset or empty.
func GetEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	return value
}

func readYAML(path string, out any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
