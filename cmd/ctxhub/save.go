package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func NewSaveCmd(client clientFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "save [content]",
		Aliases: []string{"add"},
		Short:   "Save a memory",
		Long: `Save content as a new memory in the current group.
Reads from stdin if no content is given or content is "-".`,
		RunE: makeSaveRunner(client),
	}

	cmd.Flags().StringP("title", "t", "", "Memory title")
	cmd.Flags().IntP("importance", "i", 0, "Importance 1-10 (forgetful)")
	cmd.Flags().String("context", "", "Why this memory matters (forgetful)")
	cmd.Flags().StringSlice("tag", nil, "Tag (repeatable)")
	cmd.Flags().StringSlice("keyword", nil, "Keyword (repeatable)")
	cmd.Flags().StringToString("meta", nil, "Extra metadata key=value")
	return cmd
}

func makeSaveRunner(client clientFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		content, err := readContent(cmd, args)
		if err != nil {
			return err
		}
		if strings.TrimSpace(content) == "" {
			return errors.New("nothing to save")
		}

		c, err := client(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		id, err := c.Save(cmd.Context(), content, saveMetadata(cmd))
		if err != nil {
			return err
		}

		if wantJSON(cmd) {
			return outputJSON(cmd, map[string]string{"id": id})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", id)
		return nil
	}
}

func readContent(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}

func saveMetadata(cmd *cobra.Command) map[string]any {
	metadata := map[string]any{}

	meta, _ := cmd.Flags().GetStringToString("meta")
	for k, v := range meta {
		metadata[k] = v
	}

	if title, _ := cmd.Flags().GetString("title"); title != "" {
		metadata["title"] = title
	}
	if ctx, _ := cmd.Flags().GetString("context"); ctx != "" {
		metadata["context"] = ctx
	}
	if cmd.Flags().Changed("importance") {
		importance, _ := cmd.Flags().GetInt("importance")
		metadata["importance"] = importance
	}
	if tags, _ := cmd.Flags().GetStringSlice("tag"); len(tags) > 0 {
		metadata["tags"] = tags
	}
	if keywords, _ := cmd.Flags().GetStringSlice("keyword"); len(keywords) > 0 {
		metadata["keywords"] = keywords
	}

	return metadata
}
