package vine

import (
	"fmt"
	"regexp"
	"strings"
)

var magicRe = regexp.MustCompile(`^vine\s+(\S+)\s*$`)

// ParseOptions controls which grammars Parse accepts.
type ParseOptions struct {
	// AllowLegacy accepts documents without a magic line, reading them with
	// the blank-line separated legacy grammar.
	AllowLegacy bool
}

// block is a run of body lines between delimiters. start is the 1-based line
// number of lines[0].
type block struct {
	start int
	lines []string
}

// Parse reads VINE text into a validated graph. It returns a *ParseError for
// syntax errors and a *ValidationError when the graph breaks a structural
// constraint.
func Parse(text string) (*Graph, error) {
	return ParseWithOptions(text, ParseOptions{})
}

// ParseWithOptions is Parse with explicit grammar options.
func ParseWithOptions(text string, opts ParseOptions) (*Graph, error) {
	lines := splitLines(text)
	if len(lines) == 0 || strings.TrimSpace(text) == "" {
		return nil, &ParseError{Line: 1, Msg: "empty input"}
	}

	m := magicRe.FindStringSubmatch(lines[0])
	if m == nil {
		if opts.AllowLegacy {
			return parseLegacy(lines)
		}
		return nil, &ParseError{Line: 1, Msg: fmt.Sprintf("expected magic line \"vine <version>\", got %q", lines[0])}
	}
	version := m[1]
	if err := checkVersion(version); err != nil {
		return nil, &ParseError{Line: 1, Msg: err.Error()}
	}

	g := &Graph{
		Version:   version,
		Delimiter: DefaultDelimiter,
		Tasks:     make(map[string]Task),
	}

	bodyStart, err := parsePreamble(g, lines)
	if err != nil {
		return nil, err
	}

	delimiter := g.Delimiter
	blocks := splitBlocks(lines[bodyStart:], bodyStart+1, func(line string) bool {
		return line == delimiter
	})
	if err := assemble(g, blocks); err != nil {
		return nil, err
	}
	return g, nil
}

// parseLegacy reads the pre-preamble grammar: blocks separated by blank lines.
func parseLegacy(lines []string) (*Graph, error) {
	g := &Graph{
		Version:   LegacyVersion,
		Delimiter: DefaultDelimiter,
		Tasks:     make(map[string]Task),
	}
	blocks := splitBlocks(lines, 1, isBlank)
	if err := assemble(g, blocks); err != nil {
		return nil, err
	}
	return g, nil
}

// parsePreamble reads metadata lines up to the terminator and returns the
// index of the first body line.
func parsePreamble(g *Graph, lines []string) (int, error) {
	for i := 1; i < len(lines); i++ {
		line := lines[i]
		if line == preambleTerminator {
			return i + 1, nil
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "title":
			g.Title = value
		case "prefix":
			g.Prefix = value
		case "delimiter":
			if value == "" {
				return 0, &ParseError{Line: i + 1, Msg: "delimiter must not be empty"}
			}
			g.Delimiter = value
		}
	}
	return 0, &ParseError{Line: len(lines), Msg: fmt.Sprintf("missing preamble terminator %q", preambleTerminator)}
}

// splitBlocks cuts lines into blocks at boundary lines. Leading and trailing
// blank lines are dropped from each block and all-blank blocks are skipped.
func splitBlocks(lines []string, firstLine int, boundary func(string) bool) []block {
	var blocks []block
	cur := block{start: firstLine}
	flush := func() {
		start, end := 0, len(cur.lines)
		for start < end && isBlank(cur.lines[start]) {
			start++
		}
		for end > start && isBlank(cur.lines[end-1]) {
			end--
		}
		if start < end {
			blocks = append(blocks, block{start: cur.start + start, lines: cur.lines[start:end]})
		}
	}
	for i, line := range lines {
		if boundary(line) {
			flush()
			cur = block{start: firstLine + i + 1}
			continue
		}
		cur.lines = append(cur.lines, line)
	}
	flush()
	return blocks
}

// assemble parses every block into g, rejects duplicate ids, and validates.
func assemble(g *Graph, blocks []block) error {
	for _, b := range blocks {
		t, err := parseBlock(b, g.Version)
		if err != nil {
			return err
		}
		id := t.Info().ID
		if _, exists := g.Tasks[id]; exists {
			return &ParseError{Line: b.start, Msg: fmt.Sprintf("duplicate task id %q", id)}
		}
		g.Tasks[id] = t
		g.Order = append(g.Order, id)
	}
	return Validate(g)
}

// parseBlock reads one task block.
func parseBlock(b block, version string) (Task, error) {
	h, ok := parseHeader(b.lines[0])
	if !ok {
		return nil, &ParseError{Line: b.start, Msg: fmt.Sprintf("malformed task header: %q", b.lines[0])}
	}
	if !h.ref && !ValidStatus(version, h.status) {
		return nil, &ParseError{Line: b.start, Msg: fmt.Sprintf("unknown status %q in header %q", h.status, b.lines[0])}
	}

	info := TaskInfo{
		ID:          h.id,
		ShortName:   h.name,
		Annotations: h.annotations,
	}
	var description []string
	var attachments []Attachment

	for i, line := range b.lines[1:] {
		if m := dependencyRe.FindStringSubmatch(line); m != nil {
			if !info.DependsOn(m[1]) {
				info.Dependencies = append(info.Dependencies, m[1])
			}
			continue
		}
		if strings.HasPrefix(line, decisionPrefix) {
			info.Decisions = append(info.Decisions, line[len(decisionPrefix):])
			continue
		}
		if m := attachmentRe.FindStringSubmatch(line); m != nil {
			if h.ref {
				return nil, &ParseError{
					Line: b.start + 1 + i,
					Msg:  fmt.Sprintf("attachments are not allowed on reference task %q", h.id),
				}
			}
			attachments = append(attachments, Attachment{
				Class: AttachmentClass(m[1]),
				MIME:  m[2],
				URI:   m[3],
			})
			continue
		}
		description = append(description, line)
	}
	info.Description = strings.Join(trimBlank(description), "\n")

	if h.ref {
		return RefTask{TaskInfo: info, Vine: h.vine}, nil
	}
	return ConcreteTask{TaskInfo: info, Status: h.status, Attachments: attachments}, nil
}

// splitLines splits text on newlines, normalizing CRLF and dropping the empty
// element after a final newline.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// trimBlank drops blank lines at either end of lines. A blank line that
// separated the description from the edge lines is layout, not text.
func trimBlank(lines []string) []string {
	for len(lines) > 0 && isBlank(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && isBlank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
