package file

import "os"

// pathPolicy resolves tool-supplied paths inside the workspace.
type pathPolicy interface {
	ResolvePath(path string) (string, error)
}

// mutationPolicy additionally gates and charges changes.
type mutationPolicy interface {
	pathPolicy
	AuthorizeMutation(subject string, costCents int) error
}

// fileReader defines the minimal filesystem operations needed for reading files.
type fileReader interface {
	ReadFile(path string, maxSize int64) ([]byte, error)
}

// fileWriter defines the filesystem operations needed for writing files.
type fileWriter interface {
	Stat(path string) (os.FileInfo, error)
	ReadFile(path string, maxSize int64) ([]byte, error)
	WriteFileAtomic(path string, content []byte, perm os.FileMode) error
	EnsureDirs(path string) error
}

// listPolicy resolves paths and exposes the workspace root for relative names.
type listPolicy interface {
	pathPolicy
	WorkspaceRoot() string
}

// dirReader defines the filesystem operations needed for listing directories.
type dirReader interface {
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
	ReadFile(path string, maxSize int64) ([]byte, error)
}
