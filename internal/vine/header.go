package vine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/nibzard/vine-go/internal/utils"
)

// Header and body line grammar. The name group is lazy so a name may contain
// parentheses as long as the status or URI group closes the header.
var (
	concreteHeaderRe = regexp.MustCompile(`^\[([^\[\]\s]+)\]\s+(.+?)\s+\(([a-z]+)\)((?:\s+@[A-Za-z0-9_.-]+\([^()]*\))*)\s*$`)
	refHeaderRe      = regexp.MustCompile(`^ref\s+\[([^\[\]\s]+)\]\s+(.+?)\s+\(([^()]*)\)((?:\s+@[A-Za-z0-9_.-]+\([^()]*\))*)\s*$`)
	annotationRe     = regexp.MustCompile(`@([A-Za-z0-9_.-]+)\(([^()]*)\)`)
	annotationKeyRe  = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)
	dependencyRe     = regexp.MustCompile(`^->\s+(\S+)\s*$`)
	attachmentRe     = regexp.MustCompile(`^@(artifact|guidance|file)\s+(\S+)\s+(\S.*?)\s*$`)
	idRe             = regexp.MustCompile(`^[^\[\]\s]+$`)
)

const decisionPrefix = "> "

// header is a parsed block header.
type header struct {
	ref         bool
	id          string
	name        string
	status      Status // concrete only
	vine        string // ref only
	annotations Annotations
}

// parseHeader matches line against the reference and concrete header forms.
func parseHeader(line string) (header, bool) {
	if m := refHeaderRe.FindStringSubmatch(line); m != nil {
		return header{
			ref:         true,
			id:          m[1],
			name:        strings.TrimSpace(m[2]),
			vine:        strings.TrimSpace(m[3]),
			annotations: parseAnnotations(m[4]),
		}, true
	}
	if m := concreteHeaderRe.FindStringSubmatch(line); m != nil {
		return header{
			id:          m[1],
			name:        strings.TrimSpace(m[2]),
			status:      Status(m[3]),
			annotations: parseAnnotations(m[4]),
		}, true
	}
	return header{}, false
}

// parseAnnotations reads an "@key(v1,v2) @other(v)" suffix. Repeated keys
// accumulate values.
func parseAnnotations(suffix string) Annotations {
	matches := annotationRe.FindAllStringSubmatch(suffix, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make(Annotations, len(matches))
	for _, m := range matches {
		out[m[1]] = append(out[m[1]], utils.SplitAndTrim(m[2], ",")...)
		if out[m[1]] == nil {
			out[m[1]] = []string{}
		}
	}
	return out
}

// formatHeader writes the header line for t.
func formatHeader(t Task) (string, error) {
	var line string
	switch v := t.(type) {
	case ConcreteTask:
		line = fmt.Sprintf("[%s] %s (%s)", v.ID, v.ShortName, v.Status)
	case RefTask:
		line = fmt.Sprintf("ref [%s] %s (%s)", v.ID, v.ShortName, v.Vine)
	default:
		return "", fmt.Errorf("%w: unsupported task type %T", ErrInvalidTask, t)
	}
	return line + formatAnnotations(t.Info().Annotations), nil
}

// formatAnnotations writes annotations with keys in alphabetical order.
func formatAnnotations(a Annotations) string {
	if len(a) == 0 {
		return ""
	}
	var b strings.Builder
	for _, key := range a.Keys() {
		fmt.Fprintf(&b, " @%s(%s)", key, strings.Join(a[key], ","))
	}
	return b.String()
}

// checkTask reports fields that could not survive a serialize/parse round trip.
func (g *Graph) checkTask(t Task) error {
	version := g.version()
	info := t.Info()
	if !idRe.MatchString(info.ID) {
		return fmt.Errorf("%w: id %q must be non-empty and contain no spaces or brackets", ErrInvalidTask, info.ID)
	}
	if name := info.ShortName; strings.TrimSpace(name) != name || name == "" || strings.ContainsAny(name, "\n\r") {
		return fmt.Errorf("%w: task %q needs a single-line trimmed name", ErrInvalidTask, info.ID)
	}
	if err := g.checkDescription(info.Description); err != nil {
		return fmt.Errorf("%w: task %q: %v", ErrInvalidTask, info.ID, err)
	}
	for _, dep := range info.Dependencies {
		if !idRe.MatchString(dep) {
			return fmt.Errorf("%w: task %q has malformed dependency %q", ErrInvalidTask, info.ID, dep)
		}
	}
	for _, d := range info.Decisions {
		if strings.ContainsAny(d, "\n\r") {
			return fmt.Errorf("%w: task %q has a multi-line decision", ErrInvalidTask, info.ID)
		}
	}
	for key, values := range info.Annotations {
		if !annotationKeyRe.MatchString(key) {
			return fmt.Errorf("%w: task %q has malformed annotation key %q", ErrInvalidTask, info.ID, key)
		}
		for _, v := range values {
			if strings.ContainsAny(v, ",()\n\r") || strings.TrimSpace(v) != v || v == "" {
				return fmt.Errorf("%w: task %q has malformed annotation value %q", ErrInvalidTask, info.ID, v)
			}
		}
	}

	switch v := t.(type) {
	case ConcreteTask:
		if !ValidStatus(version, v.Status) {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, v.Status)
		}
		for _, a := range v.Attachments {
			if !a.Class.Valid() || strings.ContainsAny(a.MIME, " \t\n\r") || a.MIME == "" || strings.TrimSpace(a.URI) == "" || strings.ContainsAny(a.URI, "\n\r") {
				return fmt.Errorf("%w: task %q has malformed attachment %+v", ErrInvalidTask, info.ID, a)
			}
		}
	case RefTask:
		if strings.ContainsAny(v.Vine, "()\n\r") {
			return fmt.Errorf("%w: reference %q has malformed vine URI %q", ErrInvalidTask, info.ID, v.Vine)
		}
	default:
		return fmt.Errorf("%w: unsupported task type %T", ErrInvalidTask, t)
	}
	return nil
}

// checkDescription rejects description lines the parser would read as
// something else.
func (g *Graph) checkDescription(desc string) error {
	if desc == "" {
		return nil
	}
	if strings.Contains(desc, "\r") {
		return fmt.Errorf("description contains a carriage return")
	}
	lines := strings.Split(desc, "\n")
	if isBlank(lines[0]) || isBlank(lines[len(lines)-1]) {
		return fmt.Errorf("description starts or ends with a blank line")
	}
	legacy := IsLegacyVersion(g.version())
	for _, line := range lines {
		switch {
		case dependencyRe.MatchString(line):
			return fmt.Errorf("description line %q reads as a dependency", line)
		case strings.HasPrefix(line, decisionPrefix):
			return fmt.Errorf("description line %q reads as a decision", line)
		case attachmentRe.MatchString(line):
			return fmt.Errorf("description line %q reads as an attachment", line)
		case legacy && isBlank(line):
			return fmt.Errorf("legacy descriptions cannot contain blank lines")
		case !legacy && line == g.delimiter():
			return fmt.Errorf("description line %q is the block delimiter", line)
		}
	}
	return nil
}
