package persistence

import "github.com/jacksonlee411/org-hierarchy/modules/hierarchy/domain/types"

// employeeRow is the flat store form of one employee.
type employeeRow struct {
	name       string
	supervisor string
}

func (r employeeRow) supervisorValue() any {
	if r.supervisor == "" {
		return nil
	}
	return r.supervisor
}

// flattenRows lists root and its descendants in pre-order, so a supervisor
// row always precedes the rows that reference it.
func flattenRows(root *types.Employee) []employeeRow {
	if root == nil {
		return nil
	}

	var rootSupervisor string
	if s := root.Supervisor(); s != nil {
		rootSupervisor = s.Name
	}
	rows := []employeeRow{{name: root.Name, supervisor: rootSupervisor}}
	root.WalkSubordinates(func(e *types.Employee, supervisor *types.Employee) {
		row := employeeRow{name: e.Name}
		if supervisor != nil {
			row.supervisor = supervisor.Name
		}
		rows = append(rows, row)
	})
	return rows
}
