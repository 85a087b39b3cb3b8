package vine

// Len returns the number of tasks.
func (g *Graph) Len() int {
	return len(g.Order)
}

// Has reports whether a task with the given id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.Tasks[id]
	return ok
}

// Task returns the task with the given id.
func (g *Graph) Task(id string) (Task, error) {
	t, ok := g.Tasks[id]
	if !ok {
		return nil, &EngineError{Op: "get task", ID: id, Err: ErrTaskNotFound}
	}
	return t, nil
}

// RootID returns the id of the root task, the last id in Order.
func (g *Graph) RootID() (string, error) {
	if len(g.Order) == 0 {
		return "", &EngineError{Op: "get root", Err: ErrEmptyGraph}
	}
	return g.Order[len(g.Order)-1], nil
}

// Root returns the root task.
func (g *Graph) Root() (Task, error) {
	id, err := g.RootID()
	if err != nil {
		return nil, err
	}
	return g.Task(id)
}

// All returns every task in document order.
func (g *Graph) All() []Task {
	out := make([]Task, 0, len(g.Order))
	for _, id := range g.Order {
		if t, ok := g.Tasks[id]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Dependencies resolves the dependency ids of a task, in list order.
func (g *Graph) Dependencies(id string) ([]Task, error) {
	t, err := g.Task(id)
	if err != nil {
		return nil, err
	}
	deps := t.Info().Dependencies
	out := make([]Task, 0, len(deps))
	for _, dep := range deps {
		d, ok := g.Tasks[dep]
		if !ok {
			return nil, &EngineError{Op: "get dependencies", ID: dep, Err: ErrTaskNotFound}
		}
		out = append(out, d)
	}
	return out, nil
}

// Dependants returns the tasks that depend directly on id, in document
// order. It scans every task; there is no reverse index.
func (g *Graph) Dependants(id string) ([]Task, error) {
	if !g.Has(id) {
		return nil, &EngineError{Op: "get dependants", ID: id, Err: ErrTaskNotFound}
	}
	var out []Task
	for _, other := range g.Order {
		t := g.Tasks[other]
		if t != nil && t.Info().DependsOn(id) {
			out = append(out, t)
		}
	}
	return out, nil
}
