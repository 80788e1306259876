package config

import (
	"errors"
	"fmt"
	"slices"
)

// Validate checks config values for correctness.
// Every violation is reported, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	add := func(format string, a ...any) {
		errs = append(errs, fmt.Errorf(format, a...))
	}

	if c.Agent.Provider != "gemini" {
		add("agent.provider %q is not supported", c.Agent.Provider)
	}
	if c.Agent.Model == "" {
		add("agent.model must not be empty")
	}
	if c.Agent.Temperature < 0 || c.Agent.Temperature > 2 {
		add("agent.temperature must be within [0, 2]")
	}
	if c.Agent.MaxIterations < 1 {
		add("agent.max_iterations must be >= 1")
	}

	if !slices.Contains([]string{"readonly", "supervised", "full", "0", "1", "2"}, c.Autonomy.Level) {
		add("autonomy.level %q must be readonly, supervised or full", c.Autonomy.Level)
	}
	if c.Autonomy.MaxActionsPerHour < 0 {
		add("autonomy.max_actions_per_hour must be >= 0")
	}
	if c.Autonomy.MaxCostPerDayCents < 0 {
		add("autonomy.max_cost_per_day_cents must be >= 0")
	}

	if !slices.Contains([]string{"memory", "sqlite", "none"}, c.Memory.Backend) {
		add("memory.backend %q must be memory, sqlite or none", c.Memory.Backend)
	}
	if c.Memory.Backend == "sqlite" && c.Memory.Path == "" {
		add("memory.path is required for the sqlite backend")
	}
	if c.Memory.RecallLimit < 0 {
		add("memory.recall_limit must be >= 0")
	}

	if c.Tools.MaxFileSize < 1 {
		add("tools.max_file_size must be >= 1")
	}
	if c.Tools.MaxCommandOutputSize < 1 {
		add("tools.max_command_output_size must be >= 1")
	}
	if c.Tools.ShellTimeoutSeconds < 1 {
		add("tools.shell_timeout_seconds must be >= 1")
	}
	if c.Tools.GracefulShutdownMs < 1 {
		add("tools.graceful_shutdown_ms must be >= 1")
	}
	if c.Tools.DefaultReadLineLimit < 1 {
		add("tools.default_read_line_limit must be >= 1")
	}

	if c.Browser.Enabled && len(c.Browser.AllowedDomains) == 0 {
		add("browser.allowed_domains must not be empty when the browser is enabled")
	}
	if c.Composio.Enabled && c.Composio.APIKey == "" {
		add("composio.api_key is required when composio is enabled")
	}

	if !slices.Contains([]string{"none", "log", "otel"}, c.Observability.Backend) {
		add("observability.backend %q must be none, log or otel", c.Observability.Backend)
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Log.Level) {
		add("log.level %q must be debug, info, warn or error", c.Log.Level)
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %w", errors.Join(errs...))
	}
	return nil
}
