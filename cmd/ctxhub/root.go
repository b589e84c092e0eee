package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	v1 "github.com/4thel00z/context-hub/pkg/v1"
)

// clientFunc opens a session for one command invocation.
type clientFunc func(cmd *cobra.Command) (*v1.Client, error)

type app struct {
	// extra options applied after the flag-derived ones
	options []v1.Option
}

func newApp(opts ...v1.Option) *app {
	return &app{options: opts}
}

func (a *app) client(cmd *cobra.Command) (*v1.Client, error) {
	opts := []v1.Option{v1.WithLogger(newLogger(cmd))}

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		opts = append(opts, v1.WithConfigFile(path))
	}
	if backend, _ := cmd.Flags().GetString("backend"); backend != "" {
		opts = append(opts, v1.WithBackend(backend))
	}
	if groupID, _ := cmd.Flags().GetString("group-id"); groupID != "" {
		opts = append(opts, v1.WithGroupID(groupID))
	}
	opts = append(opts, a.options...)

	return v1.New(cmd.Context(), opts...)
}

func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ctxhub",
		Short:         "Project memory for coding agents",
		Long:          `A single front door to pluggable knowledge-graph memory services, partitioned per repository.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	addPersistentFlags(rootCmd)
	setHelpWithExternals(rootCmd)

	if a == nil {
		a = newApp()
	}
	addSubcommands(rootCmd, a)

	return rootCmd
}

func addPersistentFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "Config file (default: search .context-hub.yaml)")
	cmd.PersistentFlags().String("backend", "", "Override the configured backend (graphiti|forgetful)")
	cmd.PersistentFlags().String("group-id", "", "Override the detected group id")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
}

func addSubcommands(root *cobra.Command, a *app) {
	client := a.client

	root.AddCommand(
		NewInitCmd(),
		NewQueryCmd(client),
		NewSaveCmd(client),
		NewRecentCmd(client),
		NewExploreCmd(client),
		NewFactsCmd(client),
		NewOpsCmd(client),
		NewSchemaCmd(client),
		NewExamplesCmd(client),
		NewConfigCmd(client),
	)
}

func newLogger(cmd *cobra.Command) *log.Logger {
	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "ctxhub"})
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func setHelpWithExternals(cmd *cobra.Command) {
	defaultHelp := cmd.HelpFunc()

	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		defaultHelp(c, args)
		printExternalCommands(c)
	})
}

func printExternalCommands(cmd *cobra.Command) {
	externals := listExternalCommands()
	if len(externals) == 0 {
		return
	}

	fmt.Fprintln(cmd.OutOrStdout(), "\nExternal commands (ctxhub-*):")
	for _, name := range externals {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", name)
	}
}
