package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/graphplan/internal/engine"
	"github.com/matthewbaird/graphplan/internal/flat"
	"github.com/matthewbaird/graphplan/internal/physical"
)

func newExplainCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <pattern>",
		Short: "Print the physical plan for a demo pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, _, err := plan(opts, args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), op.Explain())
			return nil
		},
	}
}

func newRunCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <pattern>",
		Short: "Plan and execute a demo pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, eng, err := plan(opts, args[0])
			if err != nil {
				return err
			}
			table, err := eng.Run(cmd.Context(), op, nil)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), table.String())
			fmt.Fprintf(cmd.OutOrStdout(), "(%d rows)\n", table.Len())
			return nil
		},
	}
}

func newPatternsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "patterns",
		Short: "List the built-in demo patterns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range patternNames() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", name, patterns[name].describe)
			}
			return nil
		},
	}
}

// plan loads the graph, builds the named pattern and lowers it to a
// physical plan on the reference engine.
func plan(opts *RootOptions, pattern string) (*engine.Operator, *engine.Engine, error) {
	sess, eng, err := setup(opts)
	if err != nil {
		return nil, nil, err
	}
	graph := flat.ExternalGraph{Name: sess.Qualify(opts.GraphName)}
	flatPlan, err := buildPattern(pattern, graph)
	if err != nil {
		return nil, nil, err
	}
	planner := physical.New[*engine.Operator, *engine.Table](eng)
	op, err := planner.Process(flatPlan, physical.NewContext[*engine.Table](sess, nil))
	if err != nil {
		return nil, nil, err
	}
	return op, eng, nil
}
