package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/ports"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/types"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/infrastructure/persistence"
	"github.com/jacksonlee411/org-hierarchy/pkg/httperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// savedStore holds e1 -> e2 -> e3 -> e4 -> e5, with e5 managing f1 and f2.
func savedStore(t *testing.T) ports.HierarchyStore {
	t.Helper()
	b := NewBuilder()
	require.NoError(t, b.AddEdges([]types.Edge{
		{Subordinate: "e2", Supervisor: "e1"},
		{Subordinate: "e3", Supervisor: "e2"},
		{Subordinate: "e4", Supervisor: "e3"},
		{Subordinate: "e5", Supervisor: "e4"},
		{Subordinate: "f1", Supervisor: "e5"},
		{Subordinate: "f2", Supervisor: "e5"},
	}))
	store := persistence.NewHierarchyMemoryStore()
	require.NoError(t, store.Save(context.Background(), b.Root()))
	return store
}

func reconstruct(t *testing.T, store ports.HierarchyStore, name string, up int, down int) (*types.Employee, error) {
	t.Helper()
	var out *types.Employee
	err := store.Snapshot(context.Background(), func(r ports.FlatReader) error {
		e, err := Reconstruct(context.Background(), r, name, up, down)
		out = e
		return err
	})
	return out, err
}

func TestReconstruct_BoundedAncestors(t *testing.T) {
	store := savedStore(t)

	e, err := reconstruct(t, store, "e5", 2, 0)
	require.NoError(t, err)
	assert.Empty(t, e.Subordinates)
	assert.Equal(t, `{"e3":{"e4":{"e5":{}}}}`, renderJSON(t, e.HierarchyUp()))
	assert.Nil(t, e.Top().Supervisor())
}

func TestReconstruct_AncestorsStopAtRoot(t *testing.T) {
	store := savedStore(t)

	e, err := reconstruct(t, store, "e2", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, `{"e1":{"e2":{}}}`, renderJSON(t, e.HierarchyUp()))
}

func TestReconstruct_BoundedDescendants(t *testing.T) {
	store := savedStore(t)

	e, err := reconstruct(t, store, "e3", 0, 2)
	require.NoError(t, err)
	assert.Nil(t, e.Supervisor())
	assert.Equal(t, `{"e3":{"e4":{"e5":{}}}}`, renderJSON(t, e.HierarchyDown()))

	e, err = reconstruct(t, store, "e4", 1, 5)
	require.NoError(t, err)
	assert.Equal(t, `{"e3":{"e4":{"e5":{"f1":{},"f2":{}}}}}`, renderJSON(t, e.HierarchyUp()))
}

func TestReconstruct_ZeroLevelsIsIsolated(t *testing.T) {
	store := savedStore(t)

	e, err := reconstruct(t, store, "e3", 0, 0)
	require.NoError(t, err)
	assert.Nil(t, e.Supervisor())
	assert.Empty(t, e.Subordinates)
}

func TestReconstruct_NotFound(t *testing.T) {
	store := savedStore(t)

	_, err := reconstruct(t, store, "nobody", 2, 0)
	require.Error(t, err)
	assert.True(t, types.IsNotFound(err))
}

func TestReconstruct_NegativeLevels(t *testing.T) {
	store := savedStore(t)

	_, err := reconstruct(t, store, "e3", -1, 0)
	assert.True(t, httperr.IsBadRequest(err))
	_, err = reconstruct(t, store, "e3", 0, -1)
	assert.True(t, httperr.IsBadRequest(err))
}

type failingReader struct {
	existsErr   error
	parentErr   error
	childrenErr error
}

func (r failingReader) Exists(context.Context, string) (bool, error) {
	return r.existsErr == nil, r.existsErr
}

func (r failingReader) ParentOf(context.Context, string) (string, bool, error) {
	return "", false, r.parentErr
}

func (r failingReader) ChildrenOf(context.Context, string) ([]string, error) {
	return nil, r.childrenErr
}

func TestReconstruct_ReaderErrors(t *testing.T) {
	boom := errors.New("boom")
	ctx := context.Background()

	_, err := Reconstruct(ctx, failingReader{existsErr: boom}, "x", 1, 1)
	assert.ErrorIs(t, err, boom)
	_, err = Reconstruct(ctx, failingReader{parentErr: boom}, "x", 1, 1)
	assert.ErrorIs(t, err, boom)
	_, err = Reconstruct(ctx, failingReader{childrenErr: boom}, "x", 0, 1)
	assert.ErrorIs(t, err, boom)
}
