package security

import (
	"fmt"
	"strconv"
	"strings"
)

// AutonomyLevel is the configured trust tier of a session.
type AutonomyLevel int

const (
	ReadOnly AutonomyLevel = iota
	Supervised
	Full
)

func (l AutonomyLevel) String() string {
	switch l {
	case ReadOnly:
		return "readonly"
	case Supervised:
		return "supervised"
	case Full:
		return "full"
	default:
		return fmt.Sprintf("AutonomyLevel(%d)", int(l))
	}
}

// ParseAutonomyLevel accepts the level name or its ordinal (0, 1, 2).
// An empty string yields Supervised.
func ParseAutonomyLevel(s string) (AutonomyLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return Supervised, nil
	case "readonly", "read_only", "read-only":
		return ReadOnly, nil
	case "supervised":
		return Supervised, nil
	case "full":
		return Full, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= int(ReadOnly) && n <= int(Full) {
		return AutonomyLevel(n), nil
	}
	return Supervised, fmt.Errorf("%w: %q", ErrUnknownAutonomyLevel, s)
}

// CommandRiskLevel classifies the potential harm of a command.
type CommandRiskLevel int

const (
	RiskLow CommandRiskLevel = iota
	RiskMedium
	RiskHigh
)

func (r CommandRiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return fmt.Sprintf("CommandRiskLevel(%d)", int(r))
	}
}

// Decision is the outcome of authorizing a command.
type Decision int

const (
	Allow Decision = iota
	RequireApproval
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RequireApproval:
		return "require_approval"
	case Deny:
		return "deny"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

// Authorization explains a Decision.
type Authorization struct {
	Decision Decision
	Risk     CommandRiskLevel
	Reason   string
}
