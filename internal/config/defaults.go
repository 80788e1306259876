package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Agent         AgentConfig         `json:"agent"`
	Autonomy      AutonomyConfig      `json:"autonomy"`
	Memory        MemoryConfig        `json:"memory"`
	Tools         ToolsConfig         `json:"tools"`
	Browser       BrowserConfig       `json:"browser"`
	Composio      ComposioConfig      `json:"composio"`
	Observability ObservabilityConfig `json:"observability"`
	Log           LogConfig           `json:"log"`
	Skills        SkillsConfig        `json:"skills"`
}

type AgentConfig struct {
	Name          string  `json:"name"`     // Default: "Claw"
	Provider      string  `json:"provider"` // Default: "gemini"
	APIKey        string  `json:"api_key"`
	Model         string  `json:"model"`          // Default: "gemini-2.5-flash"
	Temperature   float64 `json:"temperature"`    // Default: 0.7
	MaxIterations int     `json:"max_iterations"` // Default: 20
}

// AutonomyConfig configures the security policy of a session.
type AutonomyConfig struct {
	Level                        string   `json:"level"` // readonly | supervised | full
	WorkspaceOnly                bool     `json:"workspace_only"`
	RequireApprovalForMediumRisk bool     `json:"require_approval_for_medium_risk"`
	BlockHighRiskCommands        bool     `json:"block_high_risk_commands"`
	AllowedCommands              []string `json:"allowed_commands"`
	ForbiddenPaths               []string `json:"forbidden_paths"` // gitignore syntax, workspace relative
	MaxActionsPerHour            int      `json:"max_actions_per_hour"`
	MaxCostPerDayCents           int      `json:"max_cost_per_day_cents"`
}

type MemoryConfig struct {
	Backend     string `json:"backend"` // memory | sqlite | none
	Path        string `json:"path"`    // sqlite file, relative to the workspace
	AutoSave    bool   `json:"auto_save"`
	RecallLimit int    `json:"recall_limit"`
}

type ToolsConfig struct {
	MaxFileSize          int64    `json:"max_file_size"`           // Default: 5MB
	MaxCommandOutputSize int64    `json:"max_command_output_size"` // Default: 1MB
	ShellTimeoutSeconds  int      `json:"shell_timeout_seconds"`   // Default: 120
	GracefulShutdownMs   int      `json:"graceful_shutdown_ms"`    // Default: 2000
	EnvFiles             []string `json:"env_files"`               // Loaded into the shell environment
	DefaultReadLineLimit int      `json:"default_read_line_limit"` // Default: 2000
	ScreenshotDir        string   `json:"screenshot_dir"`          // Default: "screenshots"
}

type BrowserConfig struct {
	Enabled        bool     `json:"enabled"`
	AllowedDomains []string `json:"allowed_domains"`
}

type ComposioConfig struct {
	Enabled  bool   `json:"enabled"`
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url"`
	EntityID string `json:"entity_id"`
}

type ObservabilityConfig struct {
	Backend string `json:"backend"` // none | log | otel
}

type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
}

type SkillsConfig struct {
	Dir string `json:"dir"` // Relative to the workspace
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Name:          "Claw",
			Provider:      "gemini",
			Model:         "gemini-2.5-flash",
			Temperature:   0.7,
			MaxIterations: 20,
		},
		Autonomy: AutonomyConfig{
			Level:                        "supervised",
			WorkspaceOnly:                true,
			RequireApprovalForMediumRisk: true,
			BlockHighRiskCommands:        true,
			ForbiddenPaths:               []string{".git/", ".env", "*.pem", "*.key", "id_rsa*"},
			MaxActionsPerHour:            1000,
			MaxCostPerDayCents:           10000,
		},
		Memory: MemoryConfig{
			Backend:     "sqlite",
			Path:        ".claw/memory.db",
			AutoSave:    true,
			RecallLimit: 5,
		},
		Tools: ToolsConfig{
			MaxFileSize:          5 * 1024 * 1024,
			MaxCommandOutputSize: 1024 * 1024,
			ShellTimeoutSeconds:  120,
			GracefulShutdownMs:   2000,
			DefaultReadLineLimit: 2000,
			ScreenshotDir:        "screenshots",
		},
		Composio: ComposioConfig{
			BaseURL:  "https://backend.composio.dev/api/v2",
			EntityID: "default",
		},
		Observability: ObservabilityConfig{
			Backend: "log",
		},
		Log: LogConfig{
			Level: "info",
		},
		Skills: SkillsConfig{
			Dir: "skills",
		},
	}
}
