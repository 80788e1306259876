package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/Cyclone1070/claw/internal/logging"
	"github.com/Cyclone1070/claw/internal/provider"
	"github.com/Cyclone1070/claw/internal/provider/gemini"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// chatProvider is what the commands need from a model backend.
type chatProvider interface {
	provider.Provider
	ListModels(ctx context.Context) ([]gemini.ModelInfo, error)
}

// Dependencies holds the components the commands are built from. Tests
// replace them.
type Dependencies struct {
	Stdout io.Writer
	Stderr io.Writer

	LoadConfig      func() (*config.Config, error)
	ProviderFactory func(ctx context.Context, cfg *config.Config) (chatProvider, error)
}

func defaultDeps() Dependencies {
	return Dependencies{
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		LoadConfig:      config.Load,
		ProviderFactory: newGeminiProvider,
	}
}

func newGeminiProvider(ctx context.Context, cfg *config.Config) (chatProvider, error) {
	if cfg.Agent.Provider != "gemini" {
		return nil, fmt.Errorf("unsupported provider %q", cfg.Agent.Provider)
	}
	if cfg.Agent.APIKey == "" {
		return nil, errors.New("GEMINI_API_KEY environment variable is required")
	}
	client, err := gemini.Dial(ctx, cfg.Agent.APIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return gemini.New(client, cfg.Agent.Model), nil
}

// app is the state shared by every command after flags are parsed.
type app struct {
	deps Dependencies

	workspace   string
	envFile     string
	model       string
	temperature float64
	autonomy    string
	logLevel    string

	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
}

func newRootCmd(deps Dependencies) *cobra.Command {
	a := &app{deps: deps}

	root := &cobra.Command{
		Use:           "claw",
		Short:         "An autonomous assistant for your workspace",
		Long:          "Claw talks to a language model and acts on the workspace through sandboxed tools: shell, files, memory, screenshots and integrations.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}
	root.SetOut(deps.Stdout)
	root.SetErr(deps.Stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.workspace, "workspace", "w", "", "workspace directory (default: current directory)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file loaded before the configuration")
	flags.StringVarP(&a.model, "model", "M", "", "model to use")
	flags.Float64VarP(&a.temperature, "temperature", "t", 0, "sampling temperature")
	flags.StringVarP(&a.autonomy, "autonomy", "a", "", "autonomy level: readonly, supervised or full")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newChatCmd(a),
		newRunCmd(a),
		newPolicyCmd(a),
		newModelsCmd(a),
	)
	return root
}

// setup resolves the workspace, loads dotenv and configuration and applies
// flag overrides.
func (a *app) setup(cmd *cobra.Command) error {
	if a.workspace == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		a.workspace = wd
	}

	if err := loadEnvFile(a.workspace, a.envFile, cmd.Flags().Changed("env-file")); err != nil {
		return err
	}

	cfg, err := a.deps.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("model") {
		cfg.Agent.Model = a.model
	}
	if flags.Changed("temperature") {
		cfg.Agent.Temperature = a.temperature
	}
	if flags.Changed("autonomy") {
		cfg.Autonomy.Level = a.autonomy
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	// The TUI owns the terminal, so chat logs to the file only.
	var stderr io.Writer = a.deps.Stderr
	if cmd.Name() == "chat" {
		stderr = nil
	}
	logger, closer, err := logging.New(cfg.Log, stderr)
	if err != nil {
		return err
	}
	a.logger = logger
	a.closer = closer
	return nil
}

// loadEnvFile loads a dotenv file relative to the workspace. A missing file
// is only an error when the path was given explicitly.
func loadEnvFile(workspace, name string, explicit bool) error {
	if name == "" {
		return nil
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(workspace, path)
	}
	err := godotenv.Load(path)
	if err == nil || (!explicit && errors.Is(err, fs.ErrNotExist)) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", name, err)
}
