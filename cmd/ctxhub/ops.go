package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewOpsCmd(client clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List backend operations",
		Long:  `List the operations the active backend supports.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			ops := c.ListOperations()
			if wantJSON(cmd) {
				return outputJSON(cmd, ops)
			}
			for _, op := range ops {
				fmt.Fprintf(cmd.OutOrStdout(), "%-14s %s\n", op.Name, op.Description)
			}
			return nil
		},
	}
}

func NewSchemaCmd(client clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "schema <operation>",
		Short: "Show the parameters of an operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			schema, err := c.OperationSchema(args[0])
			if err != nil {
				return err
			}
			if wantJSON(cmd) {
				return outputJSON(cmd, schema)
			}
			fmt.Fprintln(cmd.OutOrStdout(), schema.Description)
			printParams(cmd, schema.Params)
			return nil
		},
	}
}

func NewExamplesCmd(client clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "examples <operation>",
		Short: "Show usage examples of an operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client(cmd)
			if err != nil {
				return err
			}
			defer c.Close()

			examples, err := c.OperationExamples(args[0])
			if err != nil {
				return err
			}
			if wantJSON(cmd) {
				return outputJSON(cmd, examples)
			}
			for _, ex := range examples {
				fmt.Fprintln(cmd.OutOrStdout(), ex)
			}
			return nil
		},
	}
}
