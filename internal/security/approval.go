package security

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// ApprovalRequest describes an action waiting for operator approval.
type ApprovalRequest struct {
	Tool    string
	Command string
	Risk    CommandRiskLevel
	Reason  string
}

// Approval is the operator's answer.
type Approval int

const (
	ApprovalDeny Approval = iota
	ApprovalAllowOnce
	ApprovalAllowAlways
)

// Approver asks an operator to approve an action.
type Approver interface {
	RequestApproval(ctx context.Context, req ApprovalRequest) (Approval, error)
}

// DenyAll rejects every request. It is used by headless sessions.
type DenyAll struct{}

func (DenyAll) RequestApproval(context.Context, ApprovalRequest) (Approval, error) {
	return ApprovalDeny, nil
}

// Gate resolves RequireApproval decisions through an Approver and remembers
// "always" answers for the rest of the session. Below High risk an answer
// covers each program at that risk level; at High risk it covers only the
// exact command.
type Gate struct {
	approver Approver

	promptMu sync.Mutex
	mu       sync.RWMutex
	always   map[string]bool
}

// NewGate creates a Gate. A nil approver denies every request.
func NewGate(approver Approver) *Gate {
	if approver == nil {
		approver = DenyAll{}
	}
	return &Gate{approver: approver, always: make(map[string]bool)}
}

// Approve returns nil when the action may proceed.
func (g *Gate) Approve(ctx context.Context, req ApprovalRequest) error {
	keys := approvalKeys(req)
	if g.remembered(keys) {
		return nil
	}

	// One prompt at a time; concurrent tool calls queue here.
	g.promptMu.Lock()
	defer g.promptMu.Unlock()

	if g.remembered(keys) {
		return nil
	}

	answer, err := g.approver.RequestApproval(ctx, req)
	if err != nil {
		return err
	}
	switch answer {
	case ApprovalAllowAlways:
		g.mu.Lock()
		for _, k := range keys {
			g.always[k] = true
		}
		g.mu.Unlock()
		return nil
	case ApprovalAllowOnce:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrApprovalDenied, req.Command)
	}
}

func (g *Gate) remembered(keys []string) bool {
	if len(keys) == 0 {
		return false
	}
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, k := range keys {
		if !g.always[k] {
			return false
		}
	}
	return true
}

func approvalKeys(req ApprovalRequest) []string {
	programs, err := CommandPrograms(req.Command)
	if err != nil {
		return nil
	}
	if slices.Contains(programs, "") {
		return nil
	}
	if req.Risk >= RiskHigh {
		command, err := canonicalCommand(req.Command)
		if err != nil {
			return nil
		}
		return []string{command + "@" + req.Risk.String()}
	}
	keys := make([]string, 0, len(programs))
	for _, prog := range programs {
		keys = append(keys, prog+"@"+req.Risk.String())
	}
	return keys
}
