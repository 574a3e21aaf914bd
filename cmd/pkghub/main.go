package main

import (
	"fmt"
	"io"
	"os"

	"pkghub/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}
	if path := cfg.TrustedProjectConfigPath; path != "" {
		fmt.Fprintf(stderr, "pkghub: project config %s overrides global settings\n", path)
	}

	root := newRootCmd(cfg)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		for _, line := range formatCLIError(err) {
			fmt.Fprintln(stderr, line)
		}
		return 1
	}
	return 0
}
