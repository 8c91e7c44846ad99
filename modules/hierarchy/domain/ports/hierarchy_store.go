package ports

import (
	"context"

	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/types"
)

// FlatReader answers point queries against the persisted name/supervisor
// rows. A reader is only valid inside the Snapshot call that produced it.
type FlatReader interface {
	Exists(ctx context.Context, name string) (bool, error)
	ParentOf(ctx context.Context, name string) (parent string, ok bool, err error)
	ChildrenOf(ctx context.Context, name string) ([]string, error)
}

type HierarchyStore interface {
	// Save persists root and every node below it in one atomic batch.
	Save(ctx context.Context, root *types.Employee) error
	// Snapshot runs fn against a read-consistent view of the store.
	Snapshot(ctx context.Context, fn func(FlatReader) error) error
}
