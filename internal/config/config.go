// Package config handles paperchat configuration loading and management.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	apperrors "github.com/paperchat-ai/paperchat/internal/errors"
)

// Default returns the default configuration.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".paperchat")

	return &Config{
		Runtime: RuntimeConfig{
			RunLocally: true,
			Port:       8001,
			MaxTurns:   10,
		},
		Model: ModelConfig{
			Name:      "claude-sonnet-4-20250514",
			MaxTokens: 1024,
		},
		Paths: PathsConfig{
			DataDir:      dataDir,
			PapersDir:    filepath.Join(dataDir, "papers"),
			LogsDir:      filepath.Join(dataDir, "logs"),
			LocalConfig:  filepath.Join(dataDir, "local_config.toml"),
			ServerConfig: filepath.Join(dataDir, "server_config.toml"),
			LogConfig:    "",
		},
	}
}

// Load loads the configuration from the given path and applies environment
// overrides. If the file doesn't exist, returns defaults with overrides.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, apperrors.Wrap(err, apperrors.CodeConfigNotFound, "cannot read config file", apperrors.CategorySystem)
		}
	} else if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfigInvalid, "cannot parse config file", apperrors.CategorySystem)
	}

	cfg.applyEnv()
	cfg.expandPaths()
	return cfg, nil
}

// LoadConnectors loads the MCP server connectors file for the current mode.
func (c *Config) LoadConnectors() (*Connectors, error) {
	path := c.Paths.ServerConfig
	if c.Runtime.RunLocally {
		path = c.Paths.LocalConfig
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No connectors file: fall back to the single server the
			// environment points at.
			return c.fallbackConnectors(), nil
		}
		return nil, apperrors.Wrap(err, apperrors.CodeConfigNotFound, "cannot read connectors file", apperrors.CategorySystem)
	}

	var conns Connectors
	if err := toml.Unmarshal(data, &conns); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfigInvalid, "cannot parse connectors file", apperrors.CategorySystem)
	}
	if len(conns.Servers) == 0 {
		return nil, apperrors.New(apperrors.CodeConfigInvalid, "connectors file declares no servers", apperrors.CategorySystem)
	}
	return &conns, nil
}

func (c *Config) fallbackConnectors() *Connectors {
	if c.Runtime.RunLocally {
		exe, err := os.Executable()
		dir := "."
		if err == nil {
			dir = filepath.Dir(exe)
		}
		return &Connectors{Servers: map[string]Connector{
			"research": {Command: filepath.Join(dir, "paperchat-server")},
		}}
	}

	endpoint := os.Getenv("URL_MCP_SERVER")
	if endpoint == "" {
		endpoint = "http://localhost:" + strconv.Itoa(c.Runtime.Port)
	}
	return &Connectors{Servers: map[string]Connector{
		"research": {Endpoint: endpoint},
	}}
}

// applyEnv overlays environment variables on top of file settings.
// Configuration is read once at startup; nothing re-reads the environment.
func (c *Config) applyEnv() {
	if v := os.Getenv("RUN_LOCALLY"); v != "" {
		c.Runtime.RunLocally = strings.EqualFold(v, "true")
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Runtime.Port = port
		}
	}
	if v := os.Getenv("MAX_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Runtime.MaxTurns = n
		}
	}
	if v := os.Getenv("ANTHROPIC_MODEL"); v != "" {
		c.Model.Name = v
	}
	if v := os.Getenv("MAX_TOKENS_MODEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Model.MaxTokens = n
		}
	}
	if v := os.Getenv("LOCAL_CONFIG_FILE"); v != "" {
		c.Paths.LocalConfig = v
	}
	if v := os.Getenv("SERVER_CONFIG_FILE"); v != "" {
		c.Paths.ServerConfig = v
	}
	if v := os.Getenv("LOG_CONFIG_FILE"); v != "" {
		c.Paths.LogConfig = v
	}
	if v := os.Getenv("PAPERS_DIR"); v != "" {
		c.Paths.PapersDir = v
	}

	c.Model.APIKey = os.Getenv("ANTHROPIC_API_KEY")
}

// Validate checks settings that would otherwise fail deep inside a turn.
func (c *Config) Validate() error {
	if c.Model.APIKey == "" {
		return apperrors.NewBuilder(apperrors.CodeConfigInvalid, "ANTHROPIC_API_KEY is not set").
			System().
			WithSuggestion("Export ANTHROPIC_API_KEY or add it to your .env file").
			Build()
	}
	if c.Runtime.MaxTurns <= 0 {
		return apperrors.New(apperrors.CodeConfigInvalid, "max_turns must be positive", apperrors.CategorySystem)
	}
	if c.Model.MaxTokens <= 0 {
		return apperrors.New(apperrors.CodeConfigInvalid, "max_tokens must be positive", apperrors.CategorySystem)
	}
	return nil
}

// Save saves the configuration to the given path.
func (c *Config) Save(configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := toml.NewEncoder(file)
	return encoder.Encode(c)
}

// expandPaths expands a leading ~ in path settings.
func (c *Config) expandPaths() {
	homeDir, _ := os.UserHomeDir()

	expand := func(p string) string {
		if len(p) > 0 && p[0] == '~' {
			return filepath.Join(homeDir, p[1:])
		}
		return p
	}

	c.Paths.DataDir = expand(c.Paths.DataDir)
	c.Paths.PapersDir = expand(c.Paths.PapersDir)
	c.Paths.LogsDir = expand(c.Paths.LogsDir)
	c.Paths.LocalConfig = expand(c.Paths.LocalConfig)
	c.Paths.ServerConfig = expand(c.Paths.ServerConfig)
	c.Paths.LogConfig = expand(c.Paths.LogConfig)
}
