package services

import (
	"context"

	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/ports"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/types"
	"github.com/jacksonlee411/org-hierarchy/pkg/httperr"
)

// Reconstruct rebuilds the part of a persisted tree around startName: at most
// supervisorLevels hops upward and subordinateLevels levels downward. Nodes
// at the subordinate limit are returned without subordinates even when the
// store has more.
func Reconstruct(ctx context.Context, reader ports.FlatReader, startName string, supervisorLevels int, subordinateLevels int) (*types.Employee, error) {
	if supervisorLevels < 0 || subordinateLevels < 0 {
		return nil, httperr.NewBadRequest("levels must not be negative")
	}

	ok, err := reader.Exists(ctx, startName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &types.NotFoundError{Name: startName}
	}

	start := types.NewEmployee(startName)
	if supervisorLevels == 0 && subordinateLevels == 0 {
		return start, nil
	}

	if err := expandSupervisors(ctx, reader, start, supervisorLevels); err != nil {
		return nil, err
	}
	if err := expandSubordinates(ctx, reader, start, subordinateLevels); err != nil {
		return nil, err
	}
	return start, nil
}

func expandSupervisors(ctx context.Context, reader ports.FlatReader, start *types.Employee, maxLevel int) error {
	current := start
	for level := 1; level <= maxLevel; level++ {
		parentName, ok, err := reader.ParentOf(ctx, current.Name)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		parent := types.NewEmployee(parentName)
		current.AddSupervisor(parent)
		current = parent
	}
	return nil
}

func expandSubordinates(ctx context.Context, reader ports.FlatReader, start *types.Employee, maxLevel int) error {
	frontier := []*types.Employee{start}
	for level := 1; level <= maxLevel && len(frontier) > 0; level++ {
		var next []*types.Employee
		for _, e := range frontier {
			names, err := reader.ChildrenOf(ctx, e.Name)
			if err != nil {
				return err
			}
			for _, name := range names {
				child := types.NewEmployee(name)
				e.AddSubordinate(child)
				next = append(next, child)
			}
		}
		frontier = next
	}
	return nil
}
