package vine

import (
	"strings"
)

// Summary aggregates counts over a graph.
type Summary struct {
	Total    int
	ByStatus map[Status]int
	Refs     int
	RootID   string
	RootName string
	Leaves   int
}

// FilterByStatus returns the concrete tasks with the given status, in
// document order.
func (g *Graph) FilterByStatus(status Status) []ConcreteTask {
	var out []ConcreteTask
	for _, id := range g.Order {
		if c, ok := g.Tasks[id].(ConcreteTask); ok && c.Status == status {
			out = append(out, c)
		}
	}
	return out
}

// Search returns tasks whose id, short name, or description contains query,
// ignoring case. An empty query matches every task.
func (g *Graph) Search(query string) []Task {
	q := strings.ToLower(query)
	var out []Task
	for _, id := range g.Order {
		t, ok := g.Tasks[id]
		if !ok {
			continue
		}
		info := t.Info()
		if q == "" ||
			strings.Contains(strings.ToLower(info.ID), q) ||
			strings.Contains(strings.ToLower(info.ShortName), q) ||
			strings.Contains(strings.ToLower(info.Description), q) {
			out = append(out, t)
		}
	}
	return out
}

// Leaves returns the tasks without dependencies, in document order.
func (g *Graph) Leaves() []Task {
	var out []Task
	for _, id := range g.Order {
		if t, ok := g.Tasks[id]; ok && len(t.Info().Dependencies) == 0 {
			out = append(out, t)
		}
	}
	return out
}

// Descendants returns every task that depends on id directly or
// transitively, excluding id itself, in document order.
func (g *Graph) Descendants(id string) ([]Task, error) {
	if !g.Has(id) {
		return nil, &EngineError{Op: "get descendants", ID: id, Err: ErrTaskNotFound}
	}

	dependants := make(map[string][]string, len(g.Order))
	for _, other := range g.Order {
		for _, dep := range g.Tasks[other].Info().Dependencies {
			dependants[dep] = append(dependants[dep], other)
		}
	}

	visited := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range dependants[cur] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	var out []Task
	for _, other := range g.Order {
		if other != id && visited[other] {
			out = append(out, g.Tasks[other])
		}
	}
	return out, nil
}

// Summary returns task counts, the root, and the number of leaves.
func (g *Graph) Summary() (Summary, error) {
	root, err := g.Root()
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Total:    len(g.Order),
		ByStatus: make(map[Status]int),
		RootID:   root.Info().ID,
		RootName: root.Info().ShortName,
		Leaves:   len(g.Leaves()),
	}
	for _, status := range Statuses(g.version()) {
		s.ByStatus[status] = 0
	}
	for _, id := range g.Order {
		switch t := g.Tasks[id].(type) {
		case ConcreteTask:
			s.ByStatus[t.Status]++
		case RefTask:
			s.Refs++
		}
	}
	return s, nil
}
