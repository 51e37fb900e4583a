package launcher

import (
	"fmt"
	"strings"

	"github.com/atinylittleshell/launcher/internal/ui"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

const (
	defaultBarWidth = 30
	minBarWidth     = 10
	maxBarWidth     = 60
	labelWidth      = 8
)

type styles struct {
	clock    lipgloss.Style
	date     lipgloss.Style
	label    lipgloss.Style
	value    lipgloss.Style
	section  lipgloss.Style
	entry    lipgloss.Style
	selected lipgloss.Style
	desc     lipgloss.Style
	filter   lipgloss.Style
	status   lipgloss.Style
	help     lipgloss.Style
}

func newStyles() styles {
	return styles{
		clock:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75")),
		date:     lipgloss.NewStyle().Foreground(lipgloss.Color("246")),
		label:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(labelWidth),
		value:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		section:  lipgloss.NewStyle().MarginTop(1),
		entry:    lipgloss.NewStyle().PaddingLeft(2),
		selected: lipgloss.NewStyle().PaddingLeft(1).Foreground(lipgloss.Color("170")).Bold(true),
		desc:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		filter:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("77")),
		help:     lipgloss.NewStyle().Foreground(lipgloss.Color("238")),
	}
}

func barWidth(termWidth int) int {
	w := termWidth - labelWidth - 24
	if w < minBarWidth {
		return minBarWidth
	}
	if w > maxBarWidth {
		return maxBarWidth
	}
	return w
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.viewClock())
	if m.options.SampleUsage {
		b.WriteString(m.styles.section.Render(m.viewUsage()))
	}
	b.WriteString(m.styles.section.Render(m.viewEntries()))
	b.WriteString("\n")
	if m.status != "" {
		status := m.status
		if m.width > 0 {
			status = wordwrap.String(status, m.width)
		}
		b.WriteString(m.styles.status.Render(status))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.help.Render("type to filter • ↑/↓ select • enter launch • ctrl+y copy • esc clear/quit • ctrl+c quit"))
	return b.String()
}

func (m model) viewClock() string {
	state := *m.adapter
	header := m.styles.clock.Render(ui.FormatClock(state))
	if m.options.Title != "" {
		header = m.styles.date.Render(m.options.Title+"  ") + header
	}
	return header + "\n" + m.styles.date.Render(state.Date) + "\n"
}

func (m model) viewUsage() string {
	state := *m.adapter
	lines := make([]string, 0, len(state.CPUsUsage)+2)
	for i, v := range state.CPUsUsage {
		lines = append(lines, m.usageLine(fmt.Sprintf("cpu%d", i), v, ""))
	}
	lines = append(lines,
		m.usageLine("mem", state.MemoryUsage, ui.FormatTotal(state.MemoryTotal)),
		m.usageLine("swap", state.SwapUsage, ui.FormatTotal(state.SwapTotal)),
	)
	return strings.Join(lines, "\n")
}

func (m model) usageLine(label string, percent float64, total string) string {
	line := m.styles.label.Render(label) + m.bar.ViewAs(percent/100) + " " + m.styles.value.Render(ui.FormatPercent(percent))
	if total != "" {
		line += m.styles.desc.Render(" of " + total)
	}
	return line
}

func (m model) viewEntries() string {
	var b strings.Builder
	if m.filter != "" {
		b.WriteString(m.styles.filter.Render("> " + m.filter))
		b.WriteString("\n")
	}
	if len(m.filtered) == 0 {
		b.WriteString(m.styles.desc.Render("  no matching entries"))
		return b.String()
	}

	nameWidth := 0
	for _, idx := range m.filtered {
		nameWidth = max(nameWidth, runewidth.StringWidth(m.options.Entries[idx].Name))
	}

	for i, idx := range m.filtered {
		entry := m.options.Entries[idx]
		name := runewidth.FillRight(entry.Name, nameWidth)
		line := name
		if entry.Description != "" {
			line += "  " + m.styles.desc.Render(m.truncate(entry.Description, nameWidth+6))
		}
		if i == m.cursor {
			b.WriteString(m.styles.selected.Render("›" + line))
		} else {
			b.WriteString(m.styles.entry.Render(line))
		}
		if i < len(m.filtered)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// truncate shortens s so it fits next to a column of the given width.
func (m model) truncate(s string, used int) string {
	if m.width <= 0 {
		return s
	}
	avail := m.width - used
	if avail <= 1 {
		return ""
	}
	return runewidth.Truncate(s, avail, "…")
}
