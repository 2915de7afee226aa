// Package console renders the banners of the simulation log stream.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dayuer/virtualco/internal/tracker"
)

// Printer writes banners to a writer, styled unless plain output is requested.
type Printer struct {
	w     io.Writer
	plain bool

	title  lipgloss.Style
	tick   lipgloss.Style
	banner lipgloss.Style
	warn   lipgloss.Style
	box    lipgloss.Style
	muted  lipgloss.Style
}

// New creates a printer. With noColor set every banner is plain text.
func New(w io.Writer, noColor bool) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:     w,
		plain: noColor,
		title: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")),
		tick: r.NewStyle().
			Foreground(lipgloss.Color("#888888")),
		banner: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F7B801")),
		warn: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B")),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1),
		muted: r.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA")),
	}
}

func (p *Printer) render(s lipgloss.Style, text string) string {
	if p.plain {
		return text
	}
	return s.Render(text)
}

// Header announces the start of a run.
func (p *Printer) Header(scenario string, agents, ticks int) {
	text := fmt.Sprintf("Virtual company online: %d agents, scenario %q, %d ticks", agents, scenario, ticks)
	fmt.Fprintln(p.w, p.render(p.title, "=== "+text+" ==="))
}

// Tick marks the start of a tick.
func (p *Printer) Tick(tick int) {
	fmt.Fprintln(p.w, p.render(p.tick, fmt.Sprintf("--- Tick %d ---", tick)))
}

// Banner prints a scenario headline.
func (p *Printer) Banner(text string) {
	fmt.Fprintln(p.w, p.render(p.banner, ">>> "+text))
}

// Stalled warns about a workflow that stopped making progress.
func (p *Printer) Stalled(f tracker.Flow, tick int) {
	text := fmt.Sprintf("!!! Workflow %s stalled at tick %d: no progress since tick %d, %d in flight (%s)",
		shortID(f.ID), tick, f.LastSeen, f.InFlight, f.Label)
	fmt.Fprintln(p.w, p.render(p.warn, text))
}

// Summary prints the end-of-run report.
func (p *Printer) Summary(reason string, tick int, counts map[tracker.Status]int, flows []tracker.Flow, status func(tracker.Flow) tracker.Status) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Simulation ended at tick %d (%s)\n", tick, reason)
	parts := make([]string, 0, len(tracker.Statuses))
	for _, s := range tracker.Statuses {
		parts = append(parts, fmt.Sprintf("%s=%d", s, counts[s]))
	}
	sb.WriteString("Workflows: " + strings.Join(parts, " "))
	for _, f := range flows {
		line := fmt.Sprintf("\n  %-9s %s hops=%d dropped=%d %s", status(f), shortID(f.ID), f.Hops, f.Dropped, f.Label)
		sb.WriteString(p.render(p.muted, line))
	}

	if p.plain {
		fmt.Fprintln(p.w, sb.String())
		return
	}
	fmt.Fprintln(p.w, p.box.Render(sb.String()))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}
