package types

// Employee is one node of an organizational tree. Nodes are owned by whoever
// built them (a Builder registry or a reconstruction); the supervisor pointer
// is a back-reference only.
type Employee struct {
	Name         string
	Subordinates []*Employee

	supervisor *Employee
}

func NewEmployee(name string) *Employee {
	return &Employee{Name: name}
}

func (e *Employee) Supervisor() *Employee {
	return e.supervisor
}

// AddSubordinate links child below e. A child with the same name is never
// appended twice.
func (e *Employee) AddSubordinate(child *Employee) {
	child.supervisor = e

	if e.HasSubordinate(child.Name) {
		return
	}
	e.Subordinates = append(e.Subordinates, child)
}

// AddSupervisor links e below parent, keeping both sides consistent.
func (e *Employee) AddSupervisor(parent *Employee) {
	e.supervisor = parent

	if !parent.HasSubordinate(e.Name) {
		parent.AddSubordinate(e)
	}
}

func (e *Employee) HasSubordinate(name string) bool {
	for _, s := range e.Subordinates {
		if s.Name == name {
			return true
		}
	}
	return false
}

// SearchDown looks for name among all descendants of e.
func (e *Employee) SearchDown(name string) *Employee {
	stack := make([]*Employee, 0, len(e.Subordinates))
	for i := len(e.Subordinates) - 1; i >= 0; i-- {
		stack = append(stack, e.Subordinates[i])
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.Name == name {
			return n
		}
		for i := len(n.Subordinates) - 1; i >= 0; i-- {
			stack = append(stack, n.Subordinates[i])
		}
	}
	return nil
}

// SearchUp looks for name along the supervisor chain of e.
func (e *Employee) SearchUp(name string) *Employee {
	for s := e.supervisor; s != nil; s = s.supervisor {
		if s.Name == name {
			return s
		}
	}
	return nil
}

func (e *Employee) Search(name string) *Employee {
	if found := e.SearchDown(name); found != nil {
		return found
	}
	return e.SearchUp(name)
}

// Top returns the topmost known ancestor of e, or e itself.
func (e *Employee) Top() *Employee {
	top := e
	for top.supervisor != nil {
		top = top.supervisor
	}
	return top
}

// WalkSubordinates visits every node below e in pre-order, passing the node
// and its supervisor. e itself is not visited.
func (e *Employee) WalkSubordinates(visit func(employee *Employee, supervisor *Employee)) {
	stack := make([]*Employee, 0, len(e.Subordinates))
	for i := len(e.Subordinates) - 1; i >= 0; i-- {
		stack = append(stack, e.Subordinates[i])
	}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(n, n.supervisor)
		for i := len(n.Subordinates) - 1; i >= 0; i-- {
			stack = append(stack, n.Subordinates[i])
		}
	}
}

// HierarchyDown renders e and everything below it.
func (e *Employee) HierarchyDown() Tree {
	root := Tree{{Name: e.Name}}

	type frame struct {
		node   *Employee
		target *Tree
	}
	stack := []frame{{node: e, target: &root[0].Subordinates}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(f.node.Subordinates) == 0 {
			continue
		}
		*f.target = make(Tree, len(f.node.Subordinates))
		for i, s := range f.node.Subordinates {
			(*f.target)[i].Name = s.Name
			stack = append(stack, frame{node: s, target: &(*f.target)[i].Subordinates})
		}
	}
	return root
}

// HierarchyUp renders the whole known tree starting from the topmost
// ancestor of e.
func (e *Employee) HierarchyUp() Tree {
	return e.Top().HierarchyDown()
}
