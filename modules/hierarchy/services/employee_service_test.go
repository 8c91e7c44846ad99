package services

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/ports"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/types"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/infrastructure/persistence"
	"github.com/jacksonlee411/org-hierarchy/pkg/httperr"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storeStub struct {
	saveErr     error
	snapshotErr error
	saved       []*types.Employee
}

func (s *storeStub) Save(_ context.Context, root *types.Employee) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, root)
	return nil
}

func (s *storeStub) Snapshot(context.Context, func(ports.FlatReader) error) error {
	return s.snapshotErr
}

func quietLogger() (*logrus.Entry, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetOutput(io.Discard)
	logger.SetLevel(logrus.DebugLevel)
	return logrus.NewEntry(logger), hook
}

func TestEmployeeService_SolvePersistsAndReadsBack(t *testing.T) {
	ctx := context.Background()
	logger, hook := quietLogger()
	svc := NewEmployeeService(persistence.NewHierarchyMemoryStore(), logger)

	before := testutil.ToFloat64(solveTotal.WithLabelValues(resultOK))
	tree, err := svc.SolveHierarchy(ctx, edgesOf(t, jonasEdges))
	require.NoError(t, err)
	assert.Equal(t, `{"Jonas":{"Sophie":{"Nick":{"Pete":{},"Barbara":{}}}}}`, renderJSON(t, tree))
	assert.Equal(t, before+1, testutil.ToFloat64(solveTotal.WithLabelValues(resultOK)))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, 5, entry.Data["employees"])

	up, err := svc.GetSupervisors(ctx, "Pete")
	require.NoError(t, err)
	assert.Equal(t, `{"Sophie":{"Nick":{"Pete":{}}}}`, renderJSON(t, up))

	top, err := svc.GetSupervisors(ctx, "Jonas")
	require.NoError(t, err)
	assert.Equal(t, `{"Jonas":{}}`, renderJSON(t, top))
}

func TestEmployeeService_InvalidEntryIsNotStored(t *testing.T) {
	store := &storeStub{}
	logger, hook := quietLogger()
	svc := NewEmployeeService(store, logger)

	_, err := svc.SolveHierarchy(context.Background(), edgesOf(t, `{"Pete":"Nick","Olga":"Joseph"}`))
	requireInvalidEntry(t, err, types.InvalidEntryMultipleRoots, "Nick,Joseph")
	assert.Empty(t, store.saved)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, types.InvalidEntryMultipleRoots, entry.Data["kind"])
}

func TestEmployeeService_EmptyInputStoresNothing(t *testing.T) {
	store := &storeStub{}
	logger, _ := quietLogger()
	svc := NewEmployeeService(store, logger)

	tree, err := svc.SolveHierarchy(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, `{}`, renderJSON(t, tree))
	assert.Empty(t, store.saved)
}

func TestEmployeeService_SaveFailure(t *testing.T) {
	boom := errors.New("db down")
	logger, hook := quietLogger()
	svc := NewEmployeeService(&storeStub{saveErr: boom}, logger)

	_, err := svc.SolveHierarchy(context.Background(), edgesOf(t, jonasEdges))
	require.Error(t, err)
	assert.True(t, types.IsStoreError(err))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}

func TestEmployeeService_LookupErrors(t *testing.T) {
	ctx := context.Background()
	logger, _ := quietLogger()

	svc := NewEmployeeService(persistence.NewHierarchyMemoryStore(), logger)
	_, err := svc.GetSupervisors(ctx, "Pete")
	assert.True(t, types.IsNotFound(err))
	assert.False(t, types.IsStoreError(err))

	_, err = svc.Lookup(ctx, "Pete", -1, 0)
	assert.True(t, httperr.IsBadRequest(err))

	boom := errors.New("snapshot failed")
	svc = NewEmployeeService(&storeStub{snapshotErr: boom}, logger)
	before := testutil.ToFloat64(lookupTotal.WithLabelValues(resultError))
	_, err = svc.GetSupervisors(ctx, "Pete")
	assert.True(t, types.IsStoreError(err))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before+1, testutil.ToFloat64(lookupTotal.WithLabelValues(resultError)))
}

func TestEmployeeService_NilLogger(t *testing.T) {
	svc := NewEmployeeService(persistence.NewHierarchyMemoryStore(), nil)
	assert.NotNil(t, svc.logger)
}
