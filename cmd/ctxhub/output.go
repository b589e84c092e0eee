package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	v1 "github.com/4thel00z/context-hub/pkg/v1"
)

func wantJSON(cmd *cobra.Command) bool {
	asJSON, _ := cmd.Flags().GetBool("json")
	return asJSON
}

func outputJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printMemories(cmd *cobra.Command, memories []v1.Memory) {
	out := cmd.OutOrStdout()
	if len(memories) == 0 {
		fmt.Fprintln(out, "No memories found.")
		return
	}

	for _, mem := range memories {
		line := fmt.Sprintf("%s  %s", mem.ID, mem.CreatedAt)
		if mem.Importance != nil {
			line += fmt.Sprintf("  [%d]", *mem.Importance)
		}
		if title, ok := mem.Metadata["title"].(string); ok && title != "" {
			line += "  " + title
		}
		fmt.Fprintln(out, line)
		fmt.Fprintf(out, "  %s\n", oneLine(mem.Content))
	}
}

func printEdges(cmd *cobra.Command, edges []v1.Edge) {
	out := cmd.OutOrStdout()
	if len(edges) == 0 {
		fmt.Fprintln(out, "No relationships found.")
		return
	}

	for _, edge := range edges {
		fmt.Fprintf(out, "%s -[%s]-> %s\n", edge.Source, edge.Type, edge.Target)
	}
}

func printParams(cmd *cobra.Command, params map[string]string) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", k, params[k])
	}
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
