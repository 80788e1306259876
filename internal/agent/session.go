// Package agent assembles a conversation session: policy, memory, tools,
// system prompt and the turn loop.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Cyclone1070/claw/internal/config"
	"github.com/Cyclone1070/claw/internal/logging"
	"github.com/Cyclone1070/claw/internal/memory"
	"github.com/Cyclone1070/claw/internal/provider"
	"github.com/Cyclone1070/claw/internal/security"
	"github.com/Cyclone1070/claw/internal/skills"
	"github.com/Cyclone1070/claw/internal/workflow"
	"github.com/Cyclone1070/claw/internal/workflow/loop"
	"github.com/Cyclone1070/claw/internal/workflow/toolmanager"
	"github.com/google/uuid"
)

const (
	defaultTemperature = 0.7
	summaryLimit       = 100
)

// Options configure a Session.
type Options struct {
	Config    *config.Config
	Workspace string
	Provider  provider.Provider
	// Approver answers approval prompts; nil denies them.
	Approver security.Approver
	Observer workflow.Observer
	Logger   *slog.Logger
	// Memory overrides the backend selected by the configuration.
	Memory     memory.Store
	HTTPClient *http.Client
	// PolicyOptions are passed to security.NewPolicy.
	PolicyOptions []security.Option
}

// Session is one conversation. Turns are serialised; the history grows
// append-only for the lifetime of the session.
type Session struct {
	cfg      *config.Config
	policy   *security.Policy
	memory   memory.Store
	tools    *toolmanager.ToolManager
	loop     *loop.Loop
	observer workflow.Observer
	logger   *slog.Logger
	newID    func() string

	mu      sync.Mutex
	model   string
	history []provider.Message
}

// New builds a session for the workspace.
func New(ctx context.Context, opts Options) (*Session, error) {
	if opts.Config == nil {
		return nil, errors.New("config is required")
	}
	if opts.Provider == nil {
		return nil, errors.New("provider is required")
	}
	cfg := opts.Config
	logger := logging.OrDiscard(opts.Logger)

	policy, err := security.NewPolicy(opts.Workspace, cfg.Autonomy, opts.PolicyOptions...)
	if err != nil {
		return nil, fmt.Errorf("security policy: %w", err)
	}

	store := opts.Memory
	if store == nil {
		store, err = memory.New(ctx, cfg.Memory, policy.WorkspaceRoot())
		if err != nil {
			return nil, fmt.Errorf("memory: %w", err)
		}
	}

	loaded, err := skills.LoadAll(filepath.Join(policy.WorkspaceRoot(), cfg.Skills.Dir))
	if err != nil {
		logger.Warn("some skills failed to load", "error", err)
	}

	tm := toolmanager.NewToolManager(opts.Observer, BuildTools(ToolDeps{
		Config:     cfg,
		Policy:     policy,
		Gate:       security.NewGate(opts.Approver),
		Memory:     store,
		HTTPClient: opts.HTTPClient,
	})...)

	system := BuildSystemPrompt(PromptInput{
		Name:      cfg.Agent.Name,
		Model:     cfg.Agent.Model,
		Workspace: policy.WorkspaceRoot(),
		Autonomy:  policy.Level(),
		Skills:    loaded,
		Tools:     tm.Declarations(),
	})

	logger.Info("session started",
		"workspace", policy.WorkspaceRoot(),
		"autonomy", policy.Level().String(),
		"memory", store.Name(),
		"tools", len(tm.Names()),
		"skills", len(loaded),
	)

	return &Session{
		cfg:      cfg,
		policy:   policy,
		memory:   store,
		tools:    tm,
		loop:     loop.NewLoop(opts.Provider, tm, opts.Observer, cfg.Agent.MaxIterations),
		observer: opts.Observer,
		logger:   logger,
		newID:    uuid.NewString,
		model:    cfg.Agent.Model,
		history:  []provider.Message{{Role: provider.RoleSystem, Content: system}},
	}, nil
}

// Send runs one turn for a user message.
func (s *Session) Send(ctx context.Context, message string) (*loop.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, provider.Message{
		Role:    provider.RoleUser,
		Content: s.withMemoryContext(ctx, message),
	})

	res, err := s.loop.Turn(ctx, &s.history, loop.Options{
		Model:       s.model,
		Temperature: s.temperature(),
	})
	if err != nil {
		return nil, err
	}

	if s.cfg.Memory.AutoSave {
		s.autoSave(ctx, message, res.Text)
	}
	return res, nil
}

func (s *Session) temperature() float64 {
	if s.cfg.Agent.Temperature == 0 {
		return defaultTemperature
	}
	return s.cfg.Agent.Temperature
}

// withMemoryContext prefixes message with recalled memories.
func (s *Session) withMemoryContext(ctx context.Context, message string) string {
	limit := s.cfg.Memory.RecallLimit
	if limit <= 0 {
		return message
	}
	entries, err := s.memory.Recall(ctx, message, limit)
	if err != nil {
		s.logger.Warn("memory recall failed", "error", err)
		workflow.Notify(s.observer, workflow.ErrorEvent{Component: "memory", Err: err})
		return message
	}
	if len(entries) == 0 {
		return message
	}
	var sb strings.Builder
	sb.WriteString("[Memory context]\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "- %s: %s\n", e.Key, e.Content)
	}
	sb.WriteString("\n")
	sb.WriteString(message)
	return sb.String()
}

func (s *Session) autoSave(ctx context.Context, message, answer string) {
	save := func(key, content string, category memory.Category) {
		if content == "" {
			return
		}
		if err := s.memory.Store(ctx, key, content, category); err != nil {
			s.logger.Warn("memory auto-save failed", "key", key, "error", err)
			workflow.Notify(s.observer, workflow.ErrorEvent{Component: "memory", Err: err})
		}
	}
	save("user_msg_"+s.newID(), message, memory.CategoryConversation)
	save("assistant_resp_"+s.newID(), summarize(answer, summaryLimit), memory.CategoryDaily)
}

// summarize truncates s to limit runes, marking the cut with an ellipsis.
func summarize(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}

// History returns a copy of the conversation so far.
func (s *Session) History() []provider.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]provider.Message(nil), s.history...)
}

// Model returns the model used for the next turn.
func (s *Session) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// SetModel switches the model; it takes effect on the next turn.
func (s *Session) SetModel(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = model
}

// Policy returns the session's security policy.
func (s *Session) Policy() *security.Policy { return s.policy }

// ToolNames returns the registered tools in prompt order.
func (s *Session) ToolNames() []string { return s.tools.Names() }

// Close releases the memory backend.
func (s *Session) Close() error {
	return s.memory.Close()
}
