package main

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/4thel00z/context-hub/internal"
)

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Long: `Write a default .context-hub.yaml in the working directory, or in the home directory with --global.
The persistent --backend flag selects the backend written.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}

	cmd.Flags().Bool("global", false, "Initialize global scope (~/.context-hub.yaml)")
	return cmd
}

func runInit(cmd *cobra.Command, _ []string) error {
	isGlobal, _ := cmd.Flags().GetBool("global")

	resolver := internal.NewScopeResolver()

	var scope internal.Scope
	if isGlobal {
		scope = resolver.Global()
	} else {
		workdir, ok := resolver.Workdir()
		if !ok {
			return errors.New("get working directory")
		}
		scope = workdir
	}

	path := scope.ConfigPath()
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("already initialized at %s", path)
	}

	cfg := internal.DefaultConfig()
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		if !slices.Contains(internal.BackendNames(), strings.ToLower(backend)) {
			return fmt.Errorf("%w: unknown backend %q", internal.ErrInvalidConfig, backend)
		}
		cfg.Memory.Backend = strings.ToLower(backend)
	}
	if err := internal.SaveConfig(path, cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Initialized config at %s\n", path)
	return nil
}
