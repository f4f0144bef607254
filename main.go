// Command bifes lists files and directories larger than a threshold.
package main

import (
	"os"

	"github.com/idelchi/bifes/internal/cli"
)

// version is set via ldflags.
var version = "unversioned"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		os.Exit(1)
	}
}
