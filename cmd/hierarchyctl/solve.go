package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/types"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/services"
	"github.com/spf13/cobra"
)

type solveOptions struct {
	file    string
	persist bool
	indent  bool
}

func newSolveCmd(a *app) *cobra.Command {
	var opts solveOptions

	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Build the tree for a JSON object of subordinate to supervisor names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSolve(cmd, a, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Edge file, or - for stdin (required)")
	cmd.Flags().BoolVar(&opts.persist, "persist", false, "Store the solved hierarchy (default is dry-run)")
	cmd.Flags().BoolVar(&opts.indent, "indent", false, "Indent the JSON output")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runSolve(cmd *cobra.Command, a *app, opts solveOptions) error {
	edges, err := readEdges(cmd.InOrStdin(), opts.file)
	if err != nil {
		return withCode(exitUsage, err)
	}

	var tree types.Tree
	if opts.persist {
		store, closeStore, err := a.openStore(cmd.Context(), a.cfg.Store, a.log)
		if err != nil {
			return err
		}
		defer closeStore()
		tree, err = services.NewEmployeeService(store, a.log).SolveHierarchy(cmd.Context(), edges)
		if err != nil {
			return solveError(cmd, err)
		}
	} else {
		b := services.NewBuilder()
		if err := b.AddEdges(edges); err != nil {
			return solveError(cmd, err)
		}
		if tree, err = b.Finalize(); err != nil {
			return solveError(cmd, err)
		}
	}
	return printTree(cmd.OutOrStdout(), tree, opts.indent)
}

func readEdges(stdin io.Reader, file string) (types.Edges, error) {
	var (
		b   []byte
		err error
	)
	if file == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, err
	}
	var edges types.Edges
	if err := json.Unmarshal(b, &edges); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return edges, nil
}

// solveError prints validation failures as the HTTP API does.
func solveError(cmd *cobra.Command, err error) error {
	invalid, ok := errors.AsType[*types.InvalidEntryError](err)
	if !ok {
		return err
	}
	out, _ := json.MarshalIndent(map[string]string{"error": invalid.Message, "data": invalid.Entry}, "", "  ")
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return withCode(exitInvalid, err)
}

func printTree(w io.Writer, tree types.Tree, indent bool) error {
	b, err := json.Marshal(tree)
	if err != nil {
		return err
	}
	if indent {
		var buf bytes.Buffer
		if err := json.Indent(&buf, b, "", "  "); err != nil {
			return err
		}
		b = buf.Bytes()
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
