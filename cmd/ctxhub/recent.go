package main

import (
	"github.com/spf13/cobra"

	v1 "github.com/4thel00z/context-hub/pkg/v1"
)

func NewRecentCmd(client clientFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "recent",
		Aliases: []string{"ls"},
		Short:   "List recent memories",
		Long:    `List the most recent memories of the current group, newest first.`,
		Args:    cobra.NoArgs,
		RunE:    makeRecentRunner(client),
	}

	cmd.Flags().IntP("limit", "n", v1.DefaultRecentLimit, "Maximum number of results")
	return cmd
}

func makeRecentRunner(client clientFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		c, err := client(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		memories, err := c.ListRecent(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if wantJSON(cmd) {
			return outputJSON(cmd, memories)
		}
		printMemories(cmd, memories)
		return nil
	}
}
