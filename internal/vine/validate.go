package vine

import (
	"fmt"
	"strings"
)

// Validate checks the structural constraints of g in a fixed order and
// returns the first violation as a *ValidationError:
//
//  1. at-least-one-task
//  2. valid-dependency-refs
//  3. no-cycles
//  4. no-islands
//  5. ref-uri-required
//
// A graph whose Tasks and Order disagree cannot be checked and yields an
// *EngineError wrapping ErrInconsistentGraph.
func Validate(g *Graph) error {
	if len(g.Tasks) == 0 && len(g.Order) == 0 {
		return newValidationError(EmptyGraphDetails{})
	}
	if err := checkConsistency(g); err != nil {
		return err
	}

	for _, id := range g.Order {
		for _, dep := range g.Tasks[id].Info().Dependencies {
			if _, ok := g.Tasks[dep]; !ok {
				return newValidationError(MissingDependencyDetails{TaskID: id, DependencyID: dep})
			}
		}
	}

	if path := findCycle(g); path != nil {
		return newValidationError(CycleDetails{Path: path})
	}

	if islands := findIslands(g); len(islands) > 0 {
		return newValidationError(IslandDetails{IDs: islands})
	}

	for _, id := range g.Order {
		if ref, ok := g.Tasks[id].(RefTask); ok && strings.TrimSpace(ref.Vine) == "" {
			return newValidationError(MissingRefURIDetails{TaskID: id})
		}
	}

	return nil
}

// checkConsistency verifies that Order is a permutation of the keys of Tasks
// and that every task is stored under its own id.
func checkConsistency(g *Graph) error {
	seen := make(map[string]bool, len(g.Order))
	for _, id := range g.Order {
		if seen[id] {
			return &EngineError{Op: "validate", ID: id, Err: fmt.Errorf("%w: id listed twice in order", ErrInconsistentGraph)}
		}
		seen[id] = true
		t, ok := g.Tasks[id]
		if !ok {
			return &EngineError{Op: "validate", ID: id, Err: ErrDanglingOrder}
		}
		switch t.(type) {
		case ConcreteTask, RefTask:
		default:
			return &EngineError{Op: "validate", ID: id, Err: fmt.Errorf("%w: unsupported task type %T", ErrInvalidTask, t)}
		}
		if t.Info().ID != id {
			return &EngineError{Op: "validate", ID: id, Err: fmt.Errorf("%w: task stored under %q has id %q", ErrInconsistentGraph, id, t.Info().ID)}
		}
	}
	if len(seen) != len(g.Tasks) {
		for id := range g.Tasks {
			if !seen[id] {
				return &EngineError{Op: "validate", ID: id, Err: fmt.Errorf("%w: task missing from order", ErrInconsistentGraph)}
			}
		}
	}
	return nil
}

// DFS colors.
const (
	white = iota
	gray
	black
)

// findCycle runs an iterative three-color DFS from every unvisited task in
// document order. When an edge reaches a gray task, the cycle is the gray
// suffix of the live stack closed by that task. Returns nil if acyclic.
func findCycle(g *Graph) []string {
	type frame struct {
		id   string
		deps []string
		next int
	}

	color := make(map[string]int, len(g.Order))
	for _, start := range g.Order {
		if color[start] != white {
			continue
		}
		color[start] = gray
		stack := []frame{{id: start, deps: g.Tasks[start].Info().Dependencies}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next == len(top.deps) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			dep := top.deps[top.next]
			top.next++

			switch color[dep] {
			case gray:
				var path []string
				onCycle := false
				for _, f := range stack {
					if f.id == dep {
						onCycle = true
					}
					if onCycle {
						path = append(path, f.id)
					}
				}
				return append(path, dep)
			case white:
				color[dep] = gray
				stack = append(stack, frame{id: dep, deps: g.Tasks[dep].Info().Dependencies})
			}
		}
	}
	return nil
}

// findIslands walks dependency edges breadth-first from the root and returns
// the ids never reached, in document order.
func findIslands(g *Graph) []string {
	root := g.Order[len(g.Order)-1]
	visited := map[string]bool{root: true}
	queue := []string{root}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, dep := range g.Tasks[id].Info().Dependencies {
			if !visited[dep] {
				visited[dep] = true
				queue = append(queue, dep)
			}
		}
	}

	var islands []string
	for _, id := range g.Order {
		if !visited[id] {
			islands = append(islands, id)
		}
	}
	return islands
}

// CheckFields reports the first task whose fields Serialize could not write
// back faithfully, such as a multi-line name, a description line that reads
// as a dependency, or a status outside the graph version. Title, prefix or a
// custom delimiter on a legacy graph fail too. Parsed graphs always pass;
// graphs assembled by hand should be checked before Validate.
func CheckFields(g *Graph) error {
	if err := g.errLegacyMetadata("check fields", g.Title+g.Prefix, ""); err != nil {
		return err
	}
	if err := g.errLegacyMetadata("check fields", g.delimiter(), DefaultDelimiter); err != nil {
		return err
	}
	for _, id := range g.Order {
		t, ok := g.Tasks[id]
		if !ok {
			continue
		}
		if err := g.checkTask(t); err != nil {
			return &EngineError{Op: "check fields", ID: id, Err: err}
		}
	}
	return nil
}
