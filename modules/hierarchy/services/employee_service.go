package services

import (
	"context"
	"errors"
	"time"

	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/ports"
	"github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/types"
	"github.com/jacksonlee411/org-hierarchy/pkg/httperr"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

// SupervisorLevels is how far GetSupervisors climbs above the employee.
const SupervisorLevels = 2

type EmployeeService struct {
	store  ports.HierarchyStore
	logger *logrus.Entry
}

func NewEmployeeService(store ports.HierarchyStore, logger *logrus.Entry) EmployeeService {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return EmployeeService{store: store, logger: logger.WithField("component", "employee_service")}
}

// SolveHierarchy validates edges, renders the resulting tree and persists it.
// Nothing is stored when validation fails.
func (s EmployeeService) SolveHierarchy(ctx context.Context, edges []types.Edge) (types.Tree, error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "SolveHierarchy", attribute.Int("hierarchy.edges", len(edges)))
	log := s.logger.WithFields(logrus.Fields{"operation": "solve", "edges": len(edges)})

	tree, result, err := s.solve(ctx, edges)

	endSpan(span, result, err)
	solveTotal.WithLabelValues(result).Inc()
	solveEdges.Observe(float64(len(edges)))
	operationDuration.WithLabelValues("solve").Observe(time.Since(start).Seconds())

	switch result {
	case resultOK:
		log.WithField("employees", countEmployees(tree)).Info("hierarchy solved")
	case resultInvalid:
		if invalid, ok := errors.AsType[*types.InvalidEntryError](err); ok {
			log = log.WithFields(logrus.Fields{"kind": invalid.Kind, "entry": invalid.Entry})
		}
		log.WithError(err).Warn("entry error when solving hierarchy")
	default:
		log.WithError(err).Error("error while storing hierarchy and employees")
	}
	return tree, err
}

func (s EmployeeService) solve(ctx context.Context, edges []types.Edge) (types.Tree, string, error) {
	b := NewBuilder()
	if err := b.AddEdges(edges); err != nil {
		return nil, resultInvalid, err
	}
	tree, err := b.Finalize()
	if err != nil {
		return nil, resultInvalid, err
	}

	if root := b.Root(); root != nil {
		if err := s.store.Save(ctx, root); err != nil {
			return nil, resultError, types.NewStoreError("save", err)
		}
	}
	return tree, resultOK, nil
}

// GetSupervisors renders the tree above name, up to SupervisorLevels hops.
func (s EmployeeService) GetSupervisors(ctx context.Context, name string) (types.Tree, error) {
	e, err := s.Lookup(ctx, name, SupervisorLevels, 0)
	if err != nil {
		return nil, err
	}
	return e.HierarchyUp(), nil
}

// Lookup reconstructs the neighbourhood of name from one store snapshot.
func (s EmployeeService) Lookup(ctx context.Context, name string, supervisorLevels int, subordinateLevels int) (*types.Employee, error) {
	start := time.Now()
	ctx, span := startSpan(ctx, "Lookup",
		attribute.String("hierarchy.employee", name),
		attribute.Int("hierarchy.supervisor_levels", supervisorLevels),
		attribute.Int("hierarchy.subordinate_levels", subordinateLevels),
	)
	log := s.logger.WithFields(logrus.Fields{
		"operation":          "lookup",
		"employee":           name,
		"supervisor_levels":  supervisorLevels,
		"subordinate_levels": subordinateLevels,
	})

	var employee *types.Employee
	err := s.store.Snapshot(ctx, func(reader ports.FlatReader) error {
		e, err := Reconstruct(ctx, reader, name, supervisorLevels, subordinateLevels)
		if err != nil {
			return err
		}
		employee = e
		return nil
	})

	result := resultOK
	switch {
	case err == nil:
		log.Debug("employee reconstructed")
	case types.IsNotFound(err):
		result = resultNotFound
		log.Info("employee not found")
	case httperr.IsBadRequest(err):
		result = resultBadRequest
		log.WithError(err).Warn("invalid lookup")
	default:
		result = resultError
		err = types.NewStoreError("lookup", err)
		log.WithError(err).Error("error while reading hierarchy")
	}

	endSpan(span, result, err)
	lookupTotal.WithLabelValues(result).Inc()
	operationDuration.WithLabelValues("lookup").Observe(time.Since(start).Seconds())

	if err != nil {
		return nil, err
	}
	return employee, nil
}

func countEmployees(t types.Tree) int {
	n := 0
	stack := []types.Tree{t}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n += len(cur)
		for _, b := range cur {
			stack = append(stack, b.Subordinates)
		}
	}
	return n
}
