package vine

import (
	"fmt"
	"sort"
	"strings"
)

// Serialize writes g in canonical VINE text. The result parses back to an
// equivalent graph and re-serializes to the same bytes.
func Serialize(g *Graph) (string, error) {
	blocks := make([]string, 0, len(g.Order))
	for _, id := range g.Order {
		t, ok := g.Tasks[id]
		if !ok {
			return "", &EngineError{Op: "serialize", ID: id, Err: ErrDanglingOrder}
		}
		text, err := formatBlock(t)
		if err != nil {
			return "", &EngineError{Op: "serialize", ID: id, Err: err}
		}
		blocks = append(blocks, text)
	}

	if IsLegacyVersion(g.version()) {
		return strings.Join(blocks, "\n\n") + "\n", nil
	}

	var b strings.Builder
	b.WriteString("vine ")
	b.WriteString(g.version())
	b.WriteByte('\n')
	delimiter := g.delimiter()
	if delimiter != DefaultDelimiter {
		fmt.Fprintf(&b, "delimiter: %s\n", delimiter)
	}
	if g.Prefix != "" {
		fmt.Fprintf(&b, "prefix: %s\n", g.Prefix)
	}
	if g.Title != "" {
		fmt.Fprintf(&b, "title: %s\n", g.Title)
	}
	b.WriteString(preambleTerminator)
	b.WriteByte('\n')
	if len(blocks) > 0 {
		b.WriteString(strings.Join(blocks, "\n"+delimiter+"\n"))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// formatBlock writes a task block: header, description, sorted dependencies,
// decisions, then attachments grouped by class.
func formatBlock(t Task) (string, error) {
	head, err := formatHeader(t)
	if err != nil {
		return "", err
	}
	info := t.Info()
	lines := []string{head}

	if info.Description != "" {
		lines = append(lines, strings.Split(info.Description, "\n")...)
	}

	deps := cloneStrings(info.Dependencies)
	sort.Strings(deps)
	for _, dep := range deps {
		lines = append(lines, "-> "+dep)
	}

	for _, d := range info.Decisions {
		lines = append(lines, decisionPrefix+d)
	}

	if c, ok := t.(ConcreteTask); ok {
		for _, class := range attachmentClassOrder {
			for _, a := range c.Attachments {
				if a.Class == class {
					lines = append(lines, fmt.Sprintf("@%s %s %s", a.Class, a.MIME, a.URI))
				}
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}
