package vine

import (
	"fmt"
	"strings"
)

// TaskUpdate is a partial set of task fields for UpdateTask. Nil fields are
// left unchanged; a non-nil empty slice or map clears the field.
type TaskUpdate struct {
	ShortName   *string
	Description *string
	Decisions   []string
	Attachments []Attachment // concrete tasks only
	Annotations Annotations
	Vine        *string // reference tasks only
}

// AddTask returns a graph with t inserted just before the root. Each id in
// dependants gains a dependency on t, so the new task can be attached to the
// graph in the same step. A zero Status becomes StatusNotStarted.
func (g *Graph) AddTask(t ConcreteTask, dependants ...string) (*Graph, error) {
	if t.Status == "" {
		t.Status = StatusNotStarted
	}
	return g.insert("add task", t, dependants)
}

// AddRef returns a graph with the reference task r inserted just before the
// root. dependants behave as in AddTask.
func (g *Graph) AddRef(r RefTask, dependants ...string) (*Graph, error) {
	return g.insert("add ref", r, dependants)
}

func (g *Graph) insert(op string, t Task, dependants []string) (*Graph, error) {
	t = cloneTask(t)
	info := t.Info()
	if err := g.checkTask(t); err != nil {
		return nil, &EngineError{Op: op, ID: info.ID, Err: err}
	}
	if g.Has(info.ID) {
		return nil, &EngineError{Op: op, ID: info.ID, Err: ErrTaskExists}
	}
	info.Dependencies = dedupe(info.Dependencies)
	t = withInfo(t, info)

	next := g.clone()
	next.Tasks[info.ID] = t
	if n := len(next.Order); n == 0 {
		next.Order = []string{info.ID}
	} else {
		order := make([]string, 0, n+1)
		order = append(order, next.Order[:n-1]...)
		order = append(order, info.ID, next.Order[n-1])
		next.Order = order
	}

	for _, id := range dependants {
		d, ok := next.Tasks[id]
		if !ok {
			return nil, &EngineError{Op: op, ID: id, Err: ErrTaskNotFound}
		}
		dinfo := d.Info()
		if dinfo.DependsOn(info.ID) {
			continue
		}
		dinfo.Dependencies = append(cloneStrings(dinfo.Dependencies), info.ID)
		next.Tasks[id] = withInfo(d, dinfo)
	}

	if err := Validate(next); err != nil {
		return nil, err
	}
	return next, nil
}

// RemoveTask returns a graph without id and without any edge to it. Removal
// fails if the remaining graph breaks a constraint, for example when tasks
// are no longer reachable from the root.
func (g *Graph) RemoveTask(id string) (*Graph, error) {
	if !g.Has(id) {
		return nil, &EngineError{Op: "remove task", ID: id, Err: ErrTaskNotFound}
	}

	next := g.clone()
	delete(next.Tasks, id)
	order := next.Order[:0]
	for _, other := range next.Order {
		if other != id {
			order = append(order, other)
		}
	}
	next.Order = order

	for other, t := range next.Tasks {
		info := t.Info()
		if !info.DependsOn(id) {
			continue
		}
		var deps []string
		for _, dep := range info.Dependencies {
			if dep != id {
				deps = append(deps, dep)
			}
		}
		info.Dependencies = deps
		next.Tasks[other] = withInfo(t, info)
	}

	if err := Validate(next); err != nil {
		return nil, err
	}
	return next, nil
}

// SetStatus returns a graph with the status of a concrete task changed.
func (g *Graph) SetStatus(id string, status Status) (*Graph, error) {
	t, err := g.Task(id)
	if err != nil {
		return nil, err
	}
	var c ConcreteTask
	switch v := t.(type) {
	case ConcreteTask:
		c = v
	case RefTask:
		return nil, &EngineError{Op: "set status", ID: id, Err: ErrRefHasNoStatus}
	default:
		return nil, &EngineError{Op: "set status", ID: id, Err: ErrInvalidTask}
	}
	if !ValidStatus(g.version(), status) {
		return nil, &EngineError{
			Op:  "set status",
			ID:  id,
			Err: fmt.Errorf("%w: %q is not valid for version %s", ErrInvalidStatus, status, g.version()),
		}
	}

	c.Status = status
	next := g.clone()
	next.Tasks[id] = c
	if err := Validate(next); err != nil {
		return nil, err
	}
	return next, nil
}

// UpdateTask returns a graph with the non-nil fields of u merged into the
// task. The task kind cannot change: Attachments on a reference or Vine on a
// concrete task fail with ErrWrongVariant.
func (g *Graph) UpdateTask(id string, u TaskUpdate) (*Graph, error) {
	t, err := g.Task(id)
	if err != nil {
		return nil, err
	}
	t = cloneTask(t)
	info := t.Info()
	if u.ShortName != nil {
		info.ShortName = *u.ShortName
	}
	if u.Description != nil {
		info.Description = *u.Description
	}
	if u.Decisions != nil {
		info.Decisions = cloneStrings(u.Decisions)
	}
	if u.Annotations != nil {
		info.Annotations = u.Annotations.clone()
	}

	switch v := t.(type) {
	case ConcreteTask:
		if u.Vine != nil {
			return nil, &EngineError{Op: "update task", ID: id, Err: fmt.Errorf("%w: concrete tasks have no vine URI", ErrWrongVariant)}
		}
		if u.Attachments != nil {
			v.Attachments = append([]Attachment{}, u.Attachments...)
		}
		v.TaskInfo = info
		t = v
	case RefTask:
		if u.Attachments != nil {
			return nil, &EngineError{Op: "update task", ID: id, Err: fmt.Errorf("%w: reference tasks have no attachments", ErrWrongVariant)}
		}
		if u.Vine != nil {
			v.Vine = strings.TrimSpace(*u.Vine)
		}
		v.TaskInfo = info
		t = v
	}

	if err := g.checkTask(t); err != nil {
		return nil, &EngineError{Op: "update task", ID: id, Err: err}
	}
	next := g.clone()
	next.Tasks[id] = t
	if err := Validate(next); err != nil {
		return nil, err
	}
	return next, nil
}

// AddDependency returns a graph where id depends on dep. Edges to unknown
// tasks or edges that close a cycle fail with a *ValidationError.
func (g *Graph) AddDependency(id, dep string) (*Graph, error) {
	t, err := g.Task(id)
	if err != nil {
		return nil, err
	}
	info := t.Info()
	if info.DependsOn(dep) {
		return nil, &EngineError{Op: "add dependency", ID: id, Err: fmt.Errorf("%w: %q", ErrDependencyExists, dep)}
	}
	if !idRe.MatchString(dep) {
		return nil, &EngineError{Op: "add dependency", ID: id, Err: fmt.Errorf("%w: malformed dependency %q", ErrInvalidTask, dep)}
	}
	info.Dependencies = append(cloneStrings(info.Dependencies), dep)

	next := g.clone()
	next.Tasks[id] = withInfo(t, info)
	if err := Validate(next); err != nil {
		return nil, err
	}
	return next, nil
}

// RemoveDependency returns a graph where id no longer depends on dep.
// Removing the last edge that kept a task reachable fails with no-islands.
func (g *Graph) RemoveDependency(id, dep string) (*Graph, error) {
	t, err := g.Task(id)
	if err != nil {
		return nil, err
	}
	info := t.Info()
	if !info.DependsOn(dep) {
		return nil, &EngineError{Op: "remove dependency", ID: id, Err: fmt.Errorf("%w: %q", ErrDependencyNotFound, dep)}
	}
	deps := make([]string, 0, len(info.Dependencies)-1)
	for _, d := range info.Dependencies {
		if d != dep {
			deps = append(deps, d)
		}
	}
	info.Dependencies = deps

	next := g.clone()
	next.Tasks[id] = withInfo(t, info)
	if err := Validate(next); err != nil {
		return nil, err
	}
	return next, nil
}

// errLegacyMetadata rejects a non-default metadata value on a legacy graph,
// whose text has no preamble to carry it.
func (g *Graph) errLegacyMetadata(op, value, unset string) error {
	if value == unset || !IsLegacyVersion(g.version()) {
		return nil
	}
	return &EngineError{Op: op, Err: fmt.Errorf("%w: legacy documents have no preamble", ErrInvalidMetadata)}
}

// WithTitle returns a copy of g with the given title. Legacy graphs only
// accept an empty title.
func (g *Graph) WithTitle(title string) (*Graph, error) {
	if strings.ContainsAny(title, "\n\r") || strings.TrimSpace(title) != title {
		return nil, &EngineError{Op: "set title", Err: fmt.Errorf("%w: title must be a single trimmed line", ErrInvalidMetadata)}
	}
	if err := g.errLegacyMetadata("set title", title, ""); err != nil {
		return nil, err
	}
	next := g.clone()
	next.Title = title
	return next, nil
}

// WithPrefix returns a copy of g with the given prefix. Legacy graphs only
// accept an empty prefix.
func (g *Graph) WithPrefix(prefix string) (*Graph, error) {
	if strings.ContainsAny(prefix, "\n\r") || strings.TrimSpace(prefix) != prefix {
		return nil, &EngineError{Op: "set prefix", Err: fmt.Errorf("%w: prefix must be a single trimmed line", ErrInvalidMetadata)}
	}
	if err := g.errLegacyMetadata("set prefix", prefix, ""); err != nil {
		return nil, err
	}
	next := g.clone()
	next.Prefix = prefix
	return next, nil
}

// WithDelimiter returns a copy of g whose blocks are separated by delimiter.
// Legacy graphs separate blocks with blank lines and only accept the default.
func (g *Graph) WithDelimiter(delimiter string) (*Graph, error) {
	if delimiter == "" || strings.ContainsAny(delimiter, "\n\r") || strings.TrimSpace(delimiter) != delimiter {
		return nil, &EngineError{Op: "set delimiter", Err: fmt.Errorf("%w: delimiter must be a non-empty trimmed line", ErrInvalidMetadata)}
	}
	if err := g.errLegacyMetadata("set delimiter", delimiter, DefaultDelimiter); err != nil {
		return nil, err
	}
	next := g.clone()
	next.Delimiter = delimiter
	for _, id := range next.Order {
		if t, ok := next.Tasks[id]; ok {
			if err := next.checkDescription(t.Info().Description); err != nil {
				return nil, &EngineError{Op: "set delimiter", ID: id, Err: fmt.Errorf("%w: %v", ErrInvalidMetadata, err)}
			}
		}
	}
	return next, nil
}

func dedupe(ids []string) []string {
	if ids == nil {
		return nil
	}
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
