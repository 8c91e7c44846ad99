package main

import (
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/types"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/services"
	"github.com/jacksonlee411/org-hierarchy/pkg/httperr"
	"github.com/spf13/cobra"
)

type showOptions struct {
	up     int
	down   int
	indent bool
}

func newShowCmd(a *app) *cobra.Command {
	var opts showOptions

	cmd := &cobra.Command{
		Use:   "show NAME",
		Short: "Print the stored hierarchy around an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(cmd, a, args[0], opts)
		},
	}
	cmd.Flags().IntVar(&opts.up, "up", services.SupervisorLevels, "Supervisor levels to include")
	cmd.Flags().IntVar(&opts.down, "down", 0, "Subordinate levels to include")
	cmd.Flags().BoolVar(&opts.indent, "indent", false, "Indent the JSON output")
	return cmd
}

func runShow(cmd *cobra.Command, a *app, name string, opts showOptions) error {
	store, closeStore, err := a.openStore(cmd.Context(), a.cfg.Store, a.log)
	if err != nil {
		return err
	}
	defer closeStore()

	e, err := services.NewEmployeeService(store, a.log).Lookup(cmd.Context(), name, opts.up, opts.down)
	switch {
	case err == nil:
	case types.IsNotFound(err):
		return withCode(exitError, err)
	case httperr.IsBadRequest(err):
		return withCode(exitUsage, err)
	default:
		return err
	}
	return printTree(cmd.OutOrStdout(), e.HierarchyUp(), opts.indent)
}
