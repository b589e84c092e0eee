package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	v1 "github.com/4thel00z/context-hub/pkg/v1"
)

func NewExploreCmd(client clientFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore <starting point>",
		Short: "Explore the graph around a topic",
		Long:  `Show memories and relationships connected to a starting point.`,
		Args:  cobra.MinimumNArgs(1),
		RunE:  makeExploreRunner(client),
	}

	cmd.Flags().IntP("depth", "d", v1.DefaultExploreDepth, "Traversal depth")
	return cmd
}

func makeExploreRunner(client clientFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		depth, _ := cmd.Flags().GetInt("depth")

		c, err := client(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		graph, err := c.Explore(cmd.Context(), strings.Join(args, " "), depth)
		if err != nil {
			return err
		}

		if wantJSON(cmd) {
			return outputJSON(cmd, graph)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Nodes (%d):\n", len(graph.Nodes))
		for _, node := range graph.Nodes {
			fmt.Fprintf(out, "  %s  %s\n", node.ID, oneLine(node.Content))
		}
		fmt.Fprintf(out, "Edges (%d):\n", len(graph.Edges))
		for _, edge := range graph.Edges {
			fmt.Fprintf(out, "  %s -[%s]-> %s\n", edge.Source, edge.Type, edge.Target)
		}
		return nil
	}
}
