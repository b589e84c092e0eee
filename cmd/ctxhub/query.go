package main

import (
	"strings"

	"github.com/spf13/cobra"

	v1 "github.com/4thel00z/context-hub/pkg/v1"
)

func NewQueryCmd(client clientFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "query <text>",
		Aliases: []string{"search"},
		Short:   "Search memories",
		Long:    `Search memories of the current group by semantic similarity.`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    makeQueryRunner(client),
	}

	cmd.Flags().IntP("limit", "n", v1.DefaultQueryLimit, "Maximum number of results")
	return cmd
}

func makeQueryRunner(client clientFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		c, err := client(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		memories, err := c.Query(cmd.Context(), strings.Join(args, " "), limit)
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

func NewFactsCmd(client clientFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "facts <text>",
		Short: "Search relationships",
		Long:  `Search relationships between entities of the current group.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  makeFactsRunner(client),
	}

	cmd.Flags().IntP("limit", "n", v1.DefaultFactsLimit, "Maximum number of results")
	return cmd
}

func makeFactsRunner(client clientFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		c, err := client(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		edges, err := c.SearchFacts(cmd.Context(), strings.Join(args, " "), limit)
		if err != nil {
			return err
		}

		if wantJSON(cmd) {
			return outputJSON(cmd, edges)
		}
		printEdges(cmd, edges)
		return nil
	}
}
