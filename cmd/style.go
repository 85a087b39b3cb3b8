package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/vine-go/internal/vine"
)

var statusColors = map[vine.Status]lipgloss.Color{
	vine.StatusComplete:   lipgloss.Color("42"),
	vine.StatusStarted:    lipgloss.Color("214"),
	vine.StatusReviewing:  lipgloss.Color("33"),
	vine.StatusPlanning:   lipgloss.Color("141"),
	vine.StatusNotStarted: lipgloss.Color("245"),
	vine.StatusBlocked:    lipgloss.Color("196"),
}

var statusIcons = map[vine.Status]string{
	vine.StatusComplete:   "✓",
	vine.StatusStarted:    "◐",
	vine.StatusReviewing:  "◎",
	vine.StatusPlanning:   "✎",
	vine.StatusNotStarted: "○",
	vine.StatusBlocked:    "✗",
}

const refIcon = "↗"

// printer renders task lines for one output stream. Colors are dropped when
// the stream is not a terminal.
type printer struct {
	w       io.Writer
	r       *lipgloss.Renderer
	bold    lipgloss.Style
	muted   lipgloss.Style
	ref     lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := lipgloss.NewRenderer(w)
	return &printer{
		w:       w,
		r:       r,
		bold:    r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(lipgloss.Color("245")),
		ref:     r.NewStyle().Foreground(lipgloss.Color("39")).Italic(true),
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		failure: r.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

func (p *printer) status(s vine.Status) string {
	icon, ok := statusIcons[s]
	if !ok {
		icon = "?"
	}
	return p.r.NewStyle().Foreground(statusColors[s]).Render(fmt.Sprintf("%s %-10s", icon, s))
}

// task prints a one-line listing of t.
func (p *printer) task(t vine.Task) {
	info := t.Info()
	switch v := t.(type) {
	case vine.ConcreteTask:
		fmt.Fprintf(p.w, "  %s [%s] %s\n", p.status(v.Status), info.ID, info.ShortName)
	case vine.RefTask:
		label := p.ref.Render(fmt.Sprintf("%s %-10s", refIcon, "ref"))
		fmt.Fprintf(p.w, "  %s [%s] %s %s\n", label, info.ID, info.ShortName, p.muted.Render("("+v.Vine+")"))
	}
}

// tasks prints each task, or a placeholder when there are none.
func (p *printer) tasks(ts []vine.Task) {
	if len(ts) == 0 {
		fmt.Fprintln(p.w, p.muted.Render("No tasks found."))
		return
	}
	for _, t := range ts {
		p.task(t)
	}
}

// detail prints every field of t with its dependencies and dependants.
func (p *printer) detail(t vine.Task, deps, dependants []vine.Task) {
	info := t.Info()
	fmt.Fprintf(p.w, "%s %s\n", p.bold.Render("["+info.ID+"]"), p.bold.Render(info.ShortName))
	switch v := t.(type) {
	case vine.ConcreteTask:
		fmt.Fprintf(p.w, "Status: %s\n", strings.TrimRight(p.status(v.Status), " "))
	case vine.RefTask:
		fmt.Fprintf(p.w, "Reference: %s\n", p.ref.Render(v.Vine))
	}
	if info.Description != "" {
		fmt.Fprintln(p.w)
		for _, line := range strings.Split(info.Description, "\n") {
			fmt.Fprintf(p.w, "  %s\n", line)
		}
	}
	p.section("Depends on", deps)
	p.section("Needed by", dependants)
	if len(info.Decisions) > 0 {
		fmt.Fprintln(p.w, "\nDecisions:")
		for _, d := range info.Decisions {
			fmt.Fprintf(p.w, "  > %s\n", d)
		}
	}
	if c, ok := t.(vine.ConcreteTask); ok && len(c.Attachments) > 0 {
		fmt.Fprintln(p.w, "\nAttachments:")
		for _, a := range c.Attachments {
			fmt.Fprintf(p.w, "  %-8s %s %s\n", a.Class, p.muted.Render(a.MIME), a.URI)
		}
	}
	if len(info.Annotations) > 0 {
		fmt.Fprintln(p.w, "\nAnnotations:")
		for _, key := range info.Annotations.Keys() {
			fmt.Fprintf(p.w, "  @%s: %s\n", key, strings.Join(info.Annotations[key], ", "))
		}
	}
}

func (p *printer) section(label string, ts []vine.Task) {
	if len(ts) == 0 {
		return
	}
	fmt.Fprintf(p.w, "\n%s (%d):\n", label, len(ts))
	for _, t := range ts {
		p.task(t)
	}
}
