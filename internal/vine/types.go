package vine

import (
	"sort"
)

const (
	// DefaultDelimiter separates task blocks unless the preamble overrides it.
	DefaultDelimiter = "---"

	// preambleTerminator always ends the preamble, whatever the delimiter is.
	preambleTerminator = "---"
)

// Status represents a concrete task status.
type Status string

const (
	StatusComplete   Status = "complete"
	StatusStarted    Status = "started"
	StatusReviewing  Status = "reviewing"
	StatusPlanning   Status = "planning"
	StatusNotStarted Status = "notstarted"
	StatusBlocked    Status = "blocked"
)

// AttachmentClass is the kind of resource an attachment points to.
type AttachmentClass string

const (
	AttachmentArtifact AttachmentClass = "artifact"
	AttachmentGuidance AttachmentClass = "guidance"
	AttachmentFile     AttachmentClass = "file"
)

// attachmentClassOrder is the order attachment groups are written in.
var attachmentClassOrder = []AttachmentClass{
	AttachmentArtifact,
	AttachmentGuidance,
	AttachmentFile,
}

// Valid reports whether c is a known attachment class.
func (c AttachmentClass) Valid() bool {
	switch c {
	case AttachmentArtifact, AttachmentGuidance, AttachmentFile:
		return true
	}
	return false
}

// Attachment links a concrete task to an external resource.
type Attachment struct {
	Class AttachmentClass
	MIME  string
	URI   string
}

// Annotations maps an annotation key to its ordered values.
type Annotations map[string][]string

// Keys returns the annotation keys in alphabetical order.
func (a Annotations) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a Annotations) clone() Annotations {
	if a == nil {
		return nil
	}
	out := make(Annotations, len(a))
	for k, v := range a {
		out[k] = cloneStrings(v)
	}
	return out
}

// TaskKind distinguishes the two task variants.
type TaskKind string

const (
	KindTask TaskKind = "task"
	KindRef  TaskKind = "ref"
)

// TaskInfo holds the fields shared by both task variants.
type TaskInfo struct {
	ID           string
	ShortName    string
	Description  string
	Dependencies []string
	Decisions    []string
	Annotations  Annotations
}

// Info returns the shared task fields.
func (i TaskInfo) Info() TaskInfo {
	return i
}

func (i TaskInfo) clone() TaskInfo {
	i.Dependencies = cloneStrings(i.Dependencies)
	i.Decisions = cloneStrings(i.Decisions)
	i.Annotations = i.Annotations.clone()
	return i
}

// DependsOn reports whether the task has a dependency edge to id.
func (i TaskInfo) DependsOn(id string) bool {
	for _, dep := range i.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// Task is a node in a Graph. It is implemented only by ConcreteTask and
// RefTask; use a type switch to reach variant fields.
type Task interface {
	Info() TaskInfo
	Kind() TaskKind
	sealed()
}

// ConcreteTask is a unit of work with a status and attachments.
type ConcreteTask struct {
	TaskInfo
	Status      Status
	Attachments []Attachment
}

// Kind returns KindTask.
func (ConcreteTask) Kind() TaskKind { return KindTask }

func (ConcreteTask) sealed() {}

// RefTask points to a graph defined in another VINE document.
type RefTask struct {
	TaskInfo
	Vine string
}

// Kind returns KindRef.
func (RefTask) Kind() TaskKind { return KindRef }

func (RefTask) sealed() {}

// cloneTask returns a deep copy of t.
func cloneTask(t Task) Task {
	switch v := t.(type) {
	case ConcreteTask:
		v.TaskInfo = v.TaskInfo.clone()
		if v.Attachments != nil {
			v.Attachments = append([]Attachment(nil), v.Attachments...)
		}
		return v
	case RefTask:
		v.TaskInfo = v.TaskInfo.clone()
		return v
	}
	return t
}

// withInfo returns a copy of t carrying info as its shared fields.
func withInfo(t Task, info TaskInfo) Task {
	switch v := t.(type) {
	case ConcreteTask:
		v.TaskInfo = info
		return v
	case RefTask:
		v.TaskInfo = info
		return v
	}
	return t
}

// Graph is a VINE task graph. Tasks holds every task keyed by id and Order
// lists the same ids in document order; the last id is the root.
//
// Methods on Graph never modify the receiver. Mutations return a new Graph
// that has passed Validate.
type Graph struct {
	Version   string
	Title     string
	Delimiter string
	Prefix    string
	Tasks     map[string]Task
	Order     []string
}

// New returns an empty graph for the given schema version. An empty version
// selects DefaultVersion.
func New(version string) (*Graph, error) {
	if version == "" {
		version = DefaultVersion
	}
	if !IsLegacyVersion(version) {
		if err := checkVersion(version); err != nil {
			return nil, &EngineError{Op: "new", Err: err}
		}
	}
	return &Graph{
		Version:   version,
		Delimiter: DefaultDelimiter,
		Tasks:     make(map[string]Task),
	}, nil
}

// version returns the graph version, falling back to DefaultVersion.
func (g *Graph) version() string {
	if g.Version == "" {
		return DefaultVersion
	}
	return g.Version
}

// delimiter returns the block delimiter, falling back to DefaultDelimiter.
func (g *Graph) delimiter() string {
	if g.Delimiter == "" {
		return DefaultDelimiter
	}
	return g.Delimiter
}

// clone copies the graph's map and order. Task values are shared; callers
// replace a task instead of editing it.
func (g *Graph) clone() *Graph {
	next := *g
	next.Tasks = make(map[string]Task, len(g.Tasks)+1)
	for id, t := range g.Tasks {
		next.Tasks[id] = t
	}
	next.Order = cloneStrings(g.Order)
	return &next
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
