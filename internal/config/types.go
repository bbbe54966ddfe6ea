package config

// Config represents the main paperchat configuration.
type Config struct {
	Runtime RuntimeConfig `toml:"runtime"`
	Model   ModelConfig   `toml:"model"`
	Paths   PathsConfig   `toml:"paths"`
}

// RuntimeConfig contains process-level settings.
type RuntimeConfig struct {
	// RunLocally selects stdio subprocess servers over networked ones.
	RunLocally bool `toml:"run_locally"`

	// Port is the listen port for the research server in HTTP mode.
	Port int `toml:"port"`

	// MaxTurns bounds the model/tool round-trips for a single query.
	MaxTurns int `toml:"max_turns"`
}

// ModelConfig contains language model settings.
type ModelConfig struct {
	// Name is the Anthropic model identifier.
	Name string `toml:"name"`

	// MaxTokens is the maximum output tokens per model call.
	MaxTokens int `toml:"max_tokens"`

	// APIKey is never read from TOML; it comes from the environment.
	APIKey string `toml:"-"`
}

// PathsConfig contains file path settings.
type PathsConfig struct {
	DataDir   string `toml:"data_dir"`
	PapersDir string `toml:"papers_dir"`
	LogsDir   string `toml:"logs_dir"`

	// LocalConfig and ServerConfig name the connectors files for the
	// two runtime modes; LogConfig names an optional zap config file.
	LocalConfig  string `toml:"local_config"`
	ServerConfig string `toml:"server_config"`
	LogConfig    string `toml:"log_config"`
}

// Connector describes how to reach one MCP server.
// Exactly one of Command or Endpoint is set.
type Connector struct {
	// Command and Args spawn a stdio server subprocess.
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Env     []string `toml:"env"`

	// Endpoint is the URL of a streamable HTTP server.
	Endpoint string `toml:"endpoint"`
}

// Connectors maps server names to their connection settings.
type Connectors struct {
	Servers map[string]Connector `toml:"servers"`
}
