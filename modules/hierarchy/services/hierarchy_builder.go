package services

import (
	"cmp"
	"maps"
	"slices"

	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/types"
)

// Builder assembles subordinate→supervisor edges into a single tree. One
// Builder serves one solve; it is not safe for concurrent use.
type Builder struct {
	employees map[string]*types.Employee

	// roots maps each current root to the order it was first seen in.
	roots   map[string]uint64
	rootSeq uint64

	// trees is a disjoint-set forest over employees; two employees share a
	// representative when they are in the same tree.
	trees map[*types.Employee]*types.Employee
}

func NewBuilder() *Builder {
	return &Builder{
		employees: make(map[string]*types.Employee),
		roots:     make(map[string]uint64),
		trees:     make(map[*types.Employee]*types.Employee),
	}
}

func (b *Builder) AddEdge(subordinateName string, supervisorName string) error {
	if subordinateName == supervisorName {
		return types.SelfReferenceError(subordinateName)
	}

	if supervisor, ok := b.employees[supervisorName]; ok {
		return b.attachToKnownSupervisor(supervisor, subordinateName)
	}
	return b.attachToNewSupervisor(subordinateName, supervisorName)
}

func (b *Builder) attachToKnownSupervisor(supervisor *types.Employee, subordinateName string) error {
	subordinate, ok := b.employees[subordinateName]
	if !ok {
		subordinate = b.register(subordinateName)
		supervisor.AddSubordinate(subordinate)
		b.join(subordinate, supervisor)
		return nil
	}

	if current := subordinate.Supervisor(); current != nil {
		if current == supervisor {
			return nil
		}
		if supervisor.SearchUp(subordinate.Name) != nil {
			return types.CycleError(subordinateName, supervisor.Name)
		}
		return types.ConflictingSupervisorError(subordinateName, supervisor.Name)
	}

	// subordinate is a root here, so it closes a loop exactly when the
	// supervisor already hangs below it.
	if b.treeOf(subordinate) == b.treeOf(supervisor) {
		return types.CycleError(subordinateName, supervisor.Name)
	}

	supervisor.AddSubordinate(subordinate)
	b.join(subordinate, supervisor)
	b.removeRoot(subordinateName)
	return nil
}

func (b *Builder) attachToNewSupervisor(subordinateName string, supervisorName string) error {
	subordinate, known := b.employees[subordinateName]
	if known && subordinate.Supervisor() != nil {
		return types.ConflictingSupervisorError(subordinateName, supervisorName)
	}

	supervisor := b.register(supervisorName)
	b.addRoot(supervisorName)

	if !known {
		subordinate = b.register(subordinateName)
	}
	subordinate.AddSupervisor(supervisor)
	b.join(subordinate, supervisor)
	b.removeRoot(subordinateName)
	return nil
}

// AddEdges applies edges in order and stops at the first rejected edge.
func (b *Builder) AddEdges(edges []types.Edge) error {
	for _, e := range edges {
		if err := b.AddEdge(e.Subordinate, e.Supervisor); err != nil {
			return err
		}
	}
	return nil
}

// Finalize renders the tree. It fails when the edges describe more than one
// tree; roots are reported in the order they were first seen.
func (b *Builder) Finalize() (types.Tree, error) {
	switch len(b.roots) {
	case 0:
		return types.Tree{}, nil
	case 1:
		return b.Root().HierarchyDown(), nil
	default:
		return nil, types.MultipleRootsError(b.Roots())
	}
}

// Root returns the single root, or nil when no edge was added or the
// hierarchy has several roots.
func (b *Builder) Root() *types.Employee {
	if len(b.roots) != 1 {
		return nil
	}
	for name := range b.roots {
		return b.employees[name]
	}
	return nil
}

// Roots lists the current roots in first-seen order.
func (b *Builder) Roots() []string {
	names := slices.Collect(maps.Keys(b.roots))
	slices.SortFunc(names, func(x, y string) int {
		return cmp.Compare(b.roots[x], b.roots[y])
	})
	return names
}

func (b *Builder) Len() int {
	return len(b.employees)
}

func (b *Builder) register(name string) *types.Employee {
	e := types.NewEmployee(name)
	b.employees[name] = e
	return e
}

func (b *Builder) addRoot(name string) {
	if _, ok := b.roots[name]; ok {
		return
	}
	b.rootSeq++
	b.roots[name] = b.rootSeq
}

func (b *Builder) removeRoot(name string) {
	delete(b.roots, name)
}

func (b *Builder) treeOf(e *types.Employee) *types.Employee {
	rep := e
	for next, ok := b.trees[rep]; ok; next, ok = b.trees[rep] {
		rep = next
	}
	for e != rep {
		next := b.trees[e]
		b.trees[e] = rep
		e = next
	}
	return rep
}

func (b *Builder) join(child *types.Employee, parent *types.Employee) {
	c, p := b.treeOf(child), b.treeOf(parent)
	if c != p {
		b.trees[c] = p
	}
}
