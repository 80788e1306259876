package security

import (
	"errors"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/Cyclone1070/claw/internal/config"
	pathsvc "github.com/Cyclone1070/claw/internal/tool/service/path"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Policy is the single authority for path access, command authorization and quotas.
// It is shared by every tool of a session and safe for concurrent use.
type Policy struct {
	root                  string
	resolver              *pathsvc.Resolver
	level                 AutonomyLevel
	workspaceOnly         bool
	requireApprovalMedium bool
	blockHighRisk         bool
	allowedCommands       []string
	forbidden             gitignore.Matcher
	maxActionsPerHour     int
	maxCostPerDayCents    int
	clock                 Clock

	mu      sync.Mutex
	charges []charge // oldest first
}

// Option configures a Policy.
type Option func(*Policy)

// WithClock replaces the wall clock used for quota windows.
func WithClock(c Clock) Option {
	return func(p *Policy) { p.clock = c }
}

// NewPolicy builds the policy for a workspace from the autonomy configuration.
// The workspace root must exist.
func NewPolicy(workspaceRoot string, cfg config.AutonomyConfig, opts ...Option) (*Policy, error) {
	root, err := pathsvc.CanonicaliseRoot(workspaceRoot)
	if err != nil {
		return nil, err
	}
	level, err := ParseAutonomyLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var patterns []gitignore.Pattern
	for _, p := range cfg.ForbiddenPaths {
		p = strings.TrimSpace(p)
		if p == "" || strings.HasPrefix(p, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}

	p := &Policy{
		root:                  root,
		resolver:              pathsvc.NewResolver(root),
		level:                 level,
		workspaceOnly:         cfg.WorkspaceOnly,
		requireApprovalMedium: cfg.RequireApprovalForMediumRisk,
		blockHighRisk:         cfg.BlockHighRiskCommands,
		allowedCommands:       slices.Clone(cfg.AllowedCommands),
		forbidden:             gitignore.NewMatcher(patterns),
		maxActionsPerHour:     cfg.MaxActionsPerHour,
		maxCostPerDayCents:    cfg.MaxCostPerDayCents,
		clock:                 systemClock{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// WorkspaceRoot returns the canonical workspace root.
func (p *Policy) WorkspaceRoot() string { return p.root }

// Level returns the autonomy level of the session.
func (p *Policy) Level() AutonomyLevel { return p.level }

// IsPathAllowed reports whether tools may touch path.
func (p *Policy) IsPathAllowed(path string) bool {
	_, err := p.ResolvePath(path)
	return err == nil
}

// ResolvePath resolves path against the workspace root and returns the absolute
// path tools must use for I/O. Escapes and forbidden paths yield a
// *PolicyDeniedError.
func (p *Policy) ResolvePath(path string) (string, error) {
	abs, err := p.resolver.Expand(path)
	if err != nil {
		return "", &PolicyDeniedError{Subject: path, Reason: err.Error()}
	}
	if !p.workspaceOnly {
		return abs, nil
	}

	resolved, rel, err := p.resolver.Confine(abs)
	if err != nil {
		if errors.Is(err, pathsvc.ErrOutsideWorkspace) {
			return "", &PolicyDeniedError{Subject: path, Reason: "path escapes the workspace"}
		}
		return "", &PolicyDeniedError{Subject: path, Reason: err.Error()}
	}

	if rel != "" {
		info, statErr := os.Stat(resolved)
		isDir := statErr == nil && info.IsDir()
		if p.forbidden.Match(strings.Split(rel, "/"), isDir) {
			return "", &PolicyDeniedError{Subject: path, Reason: "path matches a forbidden pattern"}
		}
	}
	return resolved, nil
}

// AuthorizeCommand decides whether command may run under the session's autonomy level.
func (p *Policy) AuthorizeCommand(command string) Authorization {
	if strings.TrimSpace(command) == "" {
		return Authorization{Decision: Deny, Reason: "empty command"}
	}
	risk := ClassifyCommandRisk(command)

	if p.level == Full {
		return Authorization{Decision: Allow, Risk: risk, Reason: "full autonomy"}
	}

	if len(p.allowedCommands) > 0 {
		programs, err := CommandPrograms(command)
		if err != nil {
			return Authorization{Decision: Deny, Risk: risk, Reason: "command cannot be parsed"}
		}
		for _, prog := range programs {
			if !slices.Contains(p.allowedCommands, prog) {
				return Authorization{Decision: Deny, Risk: risk, Reason: "program " + quoteProgram(prog) + " is not in allowed_commands"}
			}
		}
	}

	switch p.level {
	case ReadOnly:
		if risk > RiskLow {
			return Authorization{Decision: Deny, Risk: risk, Reason: "read-only autonomy permits only low-risk commands"}
		}
		return Authorization{Decision: Allow, Risk: risk}
	default:
		switch risk {
		case RiskLow:
			return Authorization{Decision: Allow, Risk: risk}
		case RiskMedium:
			if p.requireApprovalMedium {
				return Authorization{Decision: RequireApproval, Risk: risk, Reason: "medium-risk command requires approval"}
			}
			return Authorization{Decision: Allow, Risk: risk}
		default:
			if p.blockHighRisk {
				return Authorization{Decision: Deny, Risk: risk, Reason: "high-risk commands are blocked"}
			}
			return Authorization{Decision: RequireApproval, Risk: risk, Reason: "high-risk command requires approval"}
		}
	}
}

// CanMutate reports whether the autonomy level permits writing tools at all.
func (p *Policy) CanMutate() bool {
	return p.level != ReadOnly
}

// AuthorizeMutation checks that changes are permitted at all and charges one
// action against the quotas. Mutating tools call it before any I/O.
func (p *Policy) AuthorizeMutation(subject string, costCents int) error {
	if !p.CanMutate() {
		return &PolicyDeniedError{Subject: subject, Reason: "read-only autonomy does not permit changes"}
	}
	return p.RecordAction(costCents)
}

func quoteProgram(prog string) string {
	if prog == "" {
		return "<dynamic>"
	}
	return `"` + prog + `"`
}
