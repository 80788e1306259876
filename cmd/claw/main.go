// Command claw is an autonomous assistant that works inside a workspace
// through sandboxed tools.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(defaultDeps()).Execute(); err != nil {
		os.Exit(1)
	}
}
