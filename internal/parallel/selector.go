package parallel

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/nibzard/vine-go/internal/utils"
	"github.com/nibzard/vine-go/internal/vine"
)

// Strategy orders ready tasks.
type Strategy string

const (
	// StrategyOrder keeps document order.
	StrategyOrder Strategy = "order"
	// StrategyPriority sorts by the @priority annotation, lowest first.
	StrategyPriority Strategy = "priority"
	// StrategyUnblocking puts tasks with the most direct dependants first.
	StrategyUnblocking Strategy = "unblocking"
	// StrategyMixed sorts by priority, then by dependants.
	StrategyMixed Strategy = "mixed"
)

// PriorityAnnotation is the annotation key read by StrategyPriority. Tasks
// without a numeric first value sort after every prioritised task.
const PriorityAnnotation = "priority"

// ParseStrategy accepts the names understood by utils.NormalizeStrategy.
func ParseStrategy(name string) (Strategy, error) {
	s, ok := utils.NormalizeStrategy(name)
	if !ok {
		return "", fmt.Errorf("unknown strategy %q (want order, priority, unblocking or mixed)", name)
	}
	return Strategy(s), nil
}

// TaskSelector selects tasks that can start now.
type TaskSelector struct {
	graph    *vine.Graph
	strategy Strategy
	position map[string]int
}

// NewTaskSelector creates a selector over g.
func NewTaskSelector(g *vine.Graph, strategy Strategy) *TaskSelector {
	position := make(map[string]int, len(g.Order))
	for i, id := range g.Order {
		position[id] = i
	}
	return &TaskSelector{graph: g, strategy: strategy, position: position}
}

// SelectTasks returns up to n ready tasks ordered by the strategy. n <= 0
// returns all of them.
func (s *TaskSelector) SelectTasks(n int) []vine.ConcreteTask {
	ready := s.getReadyTasks()
	if len(ready) == 0 {
		return nil
	}
	s.sortTasks(ready)
	if n > 0 && n < len(ready) {
		return ready[:n]
	}
	return ready
}

// CountReady returns the number of ready tasks.
func (s *TaskSelector) CountReady() int {
	return len(s.getReadyTasks())
}

// getReadyTasks returns concrete tasks that are neither complete nor blocked
// and whose dependencies are satisfied. A concrete dependency is satisfied
// when complete; a reference always is, since its status lives in another
// document.
func (s *TaskSelector) getReadyTasks() []vine.ConcreteTask {
	var ready []vine.ConcreteTask
	for _, t := range s.graph.All() {
		c, ok := t.(vine.ConcreteTask)
		if !ok || c.Status == vine.StatusComplete || c.Status == vine.StatusBlocked {
			continue
		}
		if s.satisfied(c) {
			ready = append(ready, c)
		}
	}
	return ready
}

func (s *TaskSelector) satisfied(c vine.ConcreteTask) bool {
	for _, dep := range c.Dependencies {
		switch d := s.graph.Tasks[dep].(type) {
		case vine.ConcreteTask:
			if d.Status != vine.StatusComplete {
				return false
			}
		case vine.RefTask:
		default:
			return false
		}
	}
	return true
}

func (s *TaskSelector) sortTasks(tasks []vine.ConcreteTask) {
	switch s.strategy {
	case StrategyPriority:
		s.sortBy(tasks, s.byPriority)
	case StrategyUnblocking:
		s.sortBy(tasks, s.byDependants())
	case StrategyMixed:
		byDependants := s.byDependants()
		s.sortBy(tasks, func(a, b vine.ConcreteTask) int {
			if c := s.byPriority(a, b); c != 0 {
				return c
			}
			return byDependants(a, b)
		})
	default:
		s.sortBy(tasks, func(a, b vine.ConcreteTask) int { return 0 })
	}
}

// sortBy sorts with cmp and falls back to document order on ties.
func (s *TaskSelector) sortBy(tasks []vine.ConcreteTask, cmp func(a, b vine.ConcreteTask) int) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if c := cmp(tasks[i], tasks[j]); c != 0 {
			return c < 0
		}
		return s.position[tasks[i].ID] < s.position[tasks[j].ID]
	})
}

func (s *TaskSelector) byPriority(a, b vine.ConcreteTask) int {
	pa, pb := priority(a), priority(b)
	switch {
	case pa < pb:
		return -1
	case pa > pb:
		return 1
	}
	return 0
}

// byDependants compares by direct dependant count, descending.
func (s *TaskSelector) byDependants() func(a, b vine.ConcreteTask) int {
	counts := make(map[string]int, len(s.graph.Order))
	for _, t := range s.graph.All() {
		for _, dep := range t.Info().Dependencies {
			counts[dep]++
		}
	}
	return func(a, b vine.ConcreteTask) int {
		return counts[b.ID] - counts[a.ID]
	}
}

// priority returns the task's @priority value, or math.MaxInt when unset.
func priority(t vine.ConcreteTask) int {
	values := t.Annotations[PriorityAnnotation]
	if len(values) == 0 {
		return math.MaxInt
	}
	p, err := strconv.Atoi(values[0])
	if err != nil {
		return math.MaxInt
	}
	return p
}
