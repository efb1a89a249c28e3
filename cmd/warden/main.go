// Command warden verifies local content from the command line.
package main

import (
	"os"

	"github.com/JaimeStill/warden/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(cli.Execute(version, os.Args[1:], os.Stdout, os.Stderr))
}
