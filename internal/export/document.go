// Package export converts task graphs to and from JSON and YAML interchange
// documents. Exported JSON is checked against an embedded JSON Schema.
package export

import (
	"errors"
	"fmt"

	"github.com/nibzard/vine-go/internal/vine"
)

// ErrRootMismatch is returned when a document's root is not its last task.
var ErrRootMismatch = errors.New("root must be the last task")

// Document is the interchange form of a graph. Tasks are in document order,
// so the root is always the last element.
type Document struct {
	Version   string `json:"version" yaml:"version"`
	Title     string `json:"title,omitempty" yaml:"title,omitempty"`
	Prefix    string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Delimiter string `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	Root      string `json:"root" yaml:"root"`
	Tasks     []Task `json:"tasks" yaml:"tasks"`
}

// Task is one task in a Document. Status and Attachments apply to concrete
// tasks, Vine to references.
type Task struct {
	ID           string              `json:"id" yaml:"id"`
	Kind         vine.TaskKind       `json:"kind" yaml:"kind"`
	Name         string              `json:"name" yaml:"name"`
	Status       vine.Status         `json:"status,omitempty" yaml:"status,omitempty"`
	Description  string              `json:"description,omitempty" yaml:"description,omitempty"`
	Dependencies []string            `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Decisions    []string            `json:"decisions,omitempty" yaml:"decisions,omitempty"`
	Attachments  []Attachment        `json:"attachments,omitempty" yaml:"attachments,omitempty"`
	Annotations  map[string][]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Vine         string              `json:"vine,omitempty" yaml:"vine,omitempty"`
}

// Attachment mirrors vine.Attachment.
type Attachment struct {
	Class vine.AttachmentClass `json:"class" yaml:"class"`
	MIME  string               `json:"mime" yaml:"mime"`
	URI   string               `json:"uri" yaml:"uri"`
}

// FromGraph builds a Document from g, keeping every list in graph order.
func FromGraph(g *vine.Graph) (*Document, error) {
	root, err := g.RootID()
	if err != nil {
		return nil, err
	}
	delimiter := g.Delimiter
	if delimiter == "" {
		delimiter = vine.DefaultDelimiter
	}
	doc := &Document{
		Version:   g.Version,
		Title:     g.Title,
		Prefix:    g.Prefix,
		Delimiter: delimiter,
		Root:      root,
		Tasks:     make([]Task, 0, g.Len()),
	}
	if doc.Version == "" {
		doc.Version = vine.DefaultVersion
	}

	for _, t := range g.All() {
		info := t.Info()
		out := Task{
			ID:          info.ID,
			Kind:        t.Kind(),
			Name:        info.ShortName,
			Description: info.Description,
			Decisions:   append([]string(nil), info.Decisions...),
		}
		if len(info.Dependencies) > 0 {
			out.Dependencies = append([]string(nil), info.Dependencies...)
		}
		if len(info.Annotations) > 0 {
			out.Annotations = make(map[string][]string, len(info.Annotations))
			for k, v := range info.Annotations {
				out.Annotations[k] = append([]string{}, v...)
			}
		}

		switch v := t.(type) {
		case vine.ConcreteTask:
			out.Status = v.Status
			for _, a := range v.Attachments {
				out.Attachments = append(out.Attachments, Attachment{Class: a.Class, MIME: a.MIME, URI: a.URI})
			}
		case vine.RefTask:
			out.Vine = v.Vine
		}
		doc.Tasks = append(doc.Tasks, out)
	}
	return doc, nil
}

// Graph converts the document back into a validated graph.
func (d *Document) Graph() (*vine.Graph, error) {
	g, err := vine.New(d.Version)
	if err != nil {
		return nil, err
	}
	if g, err = g.WithTitle(d.Title); err != nil {
		return nil, err
	}
	if g, err = g.WithPrefix(d.Prefix); err != nil {
		return nil, err
	}
	if d.Delimiter != "" {
		if g, err = g.WithDelimiter(d.Delimiter); err != nil {
			return nil, err
		}
	}

	for i, t := range d.Tasks {
		if _, dup := g.Tasks[t.ID]; dup {
			return nil, fmt.Errorf("tasks[%d]: duplicate task id %q", i, t.ID)
		}
		info := vine.TaskInfo{
			ID:           t.ID,
			ShortName:    t.Name,
			Description:  t.Description,
			Dependencies: append([]string(nil), t.Dependencies...),
			Decisions:    append([]string(nil), t.Decisions...),
		}
		if len(t.Annotations) > 0 {
			info.Annotations = make(vine.Annotations, len(t.Annotations))
			for k, v := range t.Annotations {
				info.Annotations[k] = append([]string{}, v...)
			}
		}

		switch t.Kind {
		case vine.KindTask:
			c := vine.ConcreteTask{TaskInfo: info, Status: t.Status}
			for _, a := range t.Attachments {
				c.Attachments = append(c.Attachments, vine.Attachment{Class: a.Class, MIME: a.MIME, URI: a.URI})
			}
			g.Tasks[t.ID] = c
		case vine.KindRef:
			if len(t.Attachments) > 0 || t.Status != "" {
				return nil, fmt.Errorf("tasks[%d]: reference %q cannot have a status or attachments", i, t.ID)
			}
			g.Tasks[t.ID] = vine.RefTask{TaskInfo: info, Vine: t.Vine}
		default:
			return nil, fmt.Errorf("tasks[%d]: unknown kind %q", i, t.Kind)
		}
		g.Order = append(g.Order, t.ID)
	}

	if n := len(g.Order); n > 0 && g.Order[n-1] != d.Root {
		return nil, fmt.Errorf("%w: root is %q but the last task is %q", ErrRootMismatch, d.Root, g.Order[n-1])
	}
	if err := vine.CheckFields(g); err != nil {
		return nil, err
	}
	if err := vine.Validate(g); err != nil {
		return nil, err
	}
	return g, nil
}
