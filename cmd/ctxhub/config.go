package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/4thel00z/context-hub/internal"
)

func NewConfigCmd(client clientFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long: `Show the backend, group id and config file in use.
With --watch, print it again whenever a .context-hub.yaml in the search path changes.`,
		Args: cobra.NoArgs,
		RunE: makeConfigRunner(client),
	}

	cmd.Flags().Bool("watch", false, "Re-resolve when config files change")
	cmd.Flags().Duration("debounce", 300*time.Millisecond, "Debounce window for batching changes")
	return cmd
}

func makeConfigRunner(client clientFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		if err := printConfig(cmd, client); err != nil {
			return err
		}

		if watch, _ := cmd.Flags().GetBool("watch"); !watch {
			return nil
		}
		debounce, _ := cmd.Flags().GetDuration("debounce")
		return watchConfig(cmd, client, debounce)
	}
}

func printConfig(cmd *cobra.Command, client clientFunc) error {
	c, err := client(cmd)
	if err != nil {
		return err
	}
	defer c.Close()

	info := c.GetConfig()
	if wantJSON(cmd) {
		return outputJSON(cmd, info)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "backend:     %s\n", info.Backend)
	fmt.Fprintf(out, "group_id:    %s\n", info.GroupID)
	fmt.Fprintf(out, "config_file: %s\n", info.ConfigFile)
	return nil
}

func watchConfig(cmd *cobra.Command, client clientFunc, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dirs := watchDirs(internal.NewScopeResolver())
	for _, dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	logger := newLogger(cmd)
	logger.Info("watching for config changes", "dirs", dirs)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	pending := false

	for {
		select {
		case <-cmd.Context().Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isConfigEvent(event) {
				continue
			}
			if !pending {
				timer.Reset(debounce)
				pending = true
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		case <-timer.C:
			pending = false
			if err := printConfig(cmd, client); err != nil {
				logger.Error("reload config", "error", err)
			}
		}
	}
}

// watchDirs lists the distinct directories of the config search path.
func watchDirs(scopes *internal.ScopeResolver) []string {
	var dirs []string
	seen := make(map[string]bool)
	for _, scope := range scopes.Cascade() {
		if seen[scope.Path] {
			continue
		}
		seen[scope.Path] = true
		dirs = append(dirs, scope.Path)
	}
	return dirs
}

func isConfigEvent(event fsnotify.Event) bool {
	if filepath.Base(event.Name) != internal.ConfigFilename {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0
}
