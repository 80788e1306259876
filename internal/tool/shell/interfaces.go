package shell

import (
	"context"

	"github.com/Cyclone1070/claw/internal/security"
	"github.com/Cyclone1070/claw/internal/tool/service/executor"
)

// commandPolicy is the part of security.Policy the shell tool relies on.
type commandPolicy interface {
	ResolvePath(path string) (string, error)
	AuthorizeCommand(command string) security.Authorization
	RecordAction(costCents int) error
}

// approvalGate turns a RequireApproval decision into allow or deny.
type approvalGate interface {
	Approve(ctx context.Context, req security.ApprovalRequest) error
}

// commandExecutor runs the shell process.
type commandExecutor interface {
	Run(ctx context.Context, c executor.Command) (*executor.Result, error)
}

// envFileReader defines the minimal filesystem interface needed for reading environment files.
type envFileReader interface {
	ReadFile(path string, maxSize int64) ([]byte, error)
}
