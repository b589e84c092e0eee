package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/4thel00z/context-hub/internal"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	ctx := context.Background()
	internal.Version = version

	if tryExternalCommand(ctx) {
		return
	}

	rootCmd := NewRootCmd(version, newApp())
	if err := fang.Execute(ctx, rootCmd); err != nil {
		os.Exit(1)
	}
}

func tryExternalCommand(ctx context.Context) bool {
	if len(os.Args) < 2 {
		return false
	}

	cmd := os.Args[1]
	if cmd == "" || cmd[0] == '-' || isBuiltin(cmd) {
		return false
	}

	if _, err := findExternal(cmd); err != nil {
		return false
	}

	if err := executeExternal(ctx, cmd, os.Args[2:], buildExternalEnv(ctx, version)); err != nil {
		fmt.Fprintf(os.Stderr, "ctxhub %s: %v\n", cmd, err)
		os.Exit(1)
	}

	return true
}

func isBuiltin(name string) bool {
	for _, cmd := range NewRootCmd(version, nil).Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	return false
}
