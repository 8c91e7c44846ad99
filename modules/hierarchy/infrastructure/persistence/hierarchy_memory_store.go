package persistence

import (
	"context"
	"fmt"
	"sync"

	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/ports"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/types"
)

type HierarchyMemoryStore struct {
	mu           sync.RWMutex
	supervisors  map[string]string
	subordinates map[string][]string
}

func NewHierarchyMemoryStore() *HierarchyMemoryStore {
	return &HierarchyMemoryStore{
		supervisors:  make(map[string]string),
		subordinates: make(map[string][]string),
	}
}

func (s *HierarchyMemoryStore) Save(ctx context.Context, root *types.Employee) error {
	if err := ctx.Err(); err != nil {
		return types.NewStoreError("save", err)
	}
	rows := flattenRows(root)

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		_, stored := s.supervisors[r.name]
		_, dup := seen[r.name]
		if stored || dup {
			return types.NewStoreError("save", fmt.Errorf("%w: %s", ErrDuplicateEmployee, r.name))
		}
		seen[r.name] = struct{}{}
	}

	for _, r := range rows {
		s.supervisors[r.name] = r.supervisor
		if r.supervisor != "" {
			s.subordinates[r.supervisor] = append(s.subordinates[r.supervisor], r.name)
		}
	}
	return nil
}

// Snapshot holds the read lock for the whole of fn.
func (s *HierarchyMemoryStore) Snapshot(ctx context.Context, fn func(ports.FlatReader) error) error {
	if err := ctx.Err(); err != nil {
		return types.NewStoreError("snapshot", err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(memoryFlatReader{s: s})
}

type memoryFlatReader struct {
	s *HierarchyMemoryStore
}

func (r memoryFlatReader) Exists(_ context.Context, name string) (bool, error) {
	_, ok := r.s.supervisors[name]
	return ok, nil
}

func (r memoryFlatReader) ParentOf(_ context.Context, name string) (string, bool, error) {
	supervisor, ok := r.s.supervisors[name]
	if !ok || supervisor == "" {
		return "", false, nil
	}
	return supervisor, true, nil
}

func (r memoryFlatReader) ChildrenOf(_ context.Context, name string) ([]string, error) {
	return append([]string(nil), r.s.subordinates[name]...), nil
}
