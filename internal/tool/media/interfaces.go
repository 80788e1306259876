package media

import (
	"context"
	"os"

	"github.com/Cyclone1070/claw/internal/tool/service/executor"
)

type pathPolicy interface {
	ResolvePath(path string) (string, error)
}

type mutationPolicy interface {
	pathPolicy
	AuthorizeMutation(subject string, costCents int) error
}

// commandRunner runs short-lived helper programs.
type commandRunner interface {
	Run(ctx context.Context, c executor.Command) (*executor.Result, error)
}

type fileOps interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string, maxSize int64) ([]byte, error)
	EnsureDirs(path string) error
}
