// Package cli implements the graphplan command line: plan one of the demo
// patterns against a graph fixture, print the physical plan, optionally run
// it on the reference engine.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matthewbaird/graphplan/internal/catalog"
	"github.com/matthewbaird/graphplan/internal/engine"
	"github.com/matthewbaird/graphplan/internal/session"
)

// RootOptions holds flags shared by all commands.
type RootOptions struct {
	GraphFile string
	GraphName string
	Verbose   bool
}

// NewRootCommand creates the graphplan root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "graphplan",
		Short: "Plan graph patterns against a tabular backend",
		Long: `graphplan lowers flat graph-pattern plans into physical operator trees
and evaluates them on the built-in in-memory backend.

Graphs load from YAML fixtures or SQLite databases (nodes/relationships
tables with JSON labels and props columns).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.GraphFile, "graph", "", "path to a YAML or SQLite graph (required)")
	cmd.PersistentFlags().StringVar(&opts.GraphName, "name", "demo", "graph name within the session namespace")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newExplainCommand(opts))
	cmd.AddCommand(newRunCommand(opts))
	cmd.AddCommand(newPatternsCommand())

	return cmd
}

// setup loads the graph, registers it and returns the session and engine.
func setup(opts *RootOptions) (*session.Session, *engine.Engine, error) {
	if opts.GraphFile == "" {
		return nil, nil, fmt.Errorf("--graph is required")
	}
	sess := session.New("session")

	var g *engine.Graph
	var err error
	switch ext := strings.ToLower(filepath.Ext(opts.GraphFile)); ext {
	case ".yaml", ".yml":
		g, err = engine.LoadGraphYAMLFile(opts.GraphFile)
	case ".db", ".sqlite", ".sqlite3":
		g, err = engine.LoadGraphSQLite(opts.GraphFile, opts.GraphName)
	default:
		return nil, nil, fmt.Errorf("unsupported graph file extension '%s'", ext)
	}
	if err != nil {
		return nil, nil, err
	}

	cat := catalog.New[*engine.Graph]()
	if err := cat.Register(sess.Qualify(opts.GraphName), g); err != nil {
		return nil, nil, err
	}
	slog.Debug("graph loaded",
		"name", sess.Qualify(opts.GraphName),
		"nodes", len(g.Nodes),
		"relationships", len(g.Relationships))

	return sess, engine.New(cat), nil
}
