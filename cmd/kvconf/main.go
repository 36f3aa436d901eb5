// Command kvconf reads and writes typed configuration values.
package main

import (
	"os"

	"github.com/mesh-intelligence/kvconf/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
