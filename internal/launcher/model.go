// Package launcher is the terminal UI of the launcher: a home screen with
// the clock, resource usage, and a filterable list of entries to launch.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atinylittleshell/launcher/internal/bash"
	"github.com/atinylittleshell/launcher/internal/config"
	"github.com/atinylittleshell/launcher/internal/core"
	"github.com/atinylittleshell/launcher/internal/ui"
	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rivo/uniseg"
	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// ErrNoEntry is reported when enter is pressed with nothing selected.
var ErrNoEntry = errors.New("no entry selected")

// dispatchMsg carries a scheduler tick onto the UI loop.
type dispatchMsg struct {
	fn func(ui.Sink)
}

// launchDoneMsg reports the end of a launched entry.
type launchDoneMsg struct {
	name string
	err  error
}

type Options struct {
	Title       string
	Entries     []config.Entry
	SampleUsage bool

	// HomeDir shortens entry directories in status messages.
	HomeDir string
}

type model struct {
	ctx     context.Context
	logger  *zap.Logger
	options Options

	adapter *ui.Adapter
	ref     *ui.Ref

	filter   string
	filtered []int
	cursor   int
	status   string
	quitting bool

	width  int
	height int
	bar    progress.Model
	styles styles

	copyToClipboard func(string) error
}

func initialModel(ctx context.Context, options Options, adapter *ui.Adapter, ref *ui.Ref, logger *zap.Logger) model {
	m := model{
		ctx:     ctx,
		logger:  logger,
		options: options,
		adapter: adapter,
		ref:     ref,
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithoutPercentage(),
			progress.WithWidth(defaultBarWidth),
		),
		styles:          newStyles(),
		copyToClipboard: clipboard.WriteAll,
	}
	m.applyFilter()
	return m
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case dispatchMsg:
		sink, ok := m.ref.Upgrade()
		if !ok {
			msg.fn(nil)
			return m, nil
		}
		msg.fn(sink)
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.bar.Width = barWidth(msg.Width)
		return m, nil

	case launchDoneMsg:
		m.status = launchStatus(msg.name, msg.err)
		m.logger.Info("entry finished", zap.String("name", msg.name), zap.Error(msg.err))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m.quit()

	case tea.KeyEsc:
		if m.filter != "" {
			m.filter = ""
			m.applyFilter()
			return m, nil
		}
		return m.quit()

	case tea.KeyUp, tea.KeyCtrlP:
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case tea.KeyDown, tea.KeyCtrlN:
		if m.cursor < len(m.filtered)-1 {
			m.cursor++
		}
		return m, nil

	case tea.KeyBackspace:
		if m.filter != "" {
			m.filter = dropLastGrapheme(m.filter)
			m.applyFilter()
		}
		return m, nil

	case tea.KeyEnter:
		return m.launch()

	case tea.KeyCtrlY:
		return m.copySelected()

	case tea.KeySpace:
		m.filter += " "
		m.applyFilter()
		return m, nil

	case tea.KeyRunes:
		m.filter += string(msg.Runes)
		m.applyFilter()
		return m, nil
	}

	return m, nil
}

// quit releases the UI reference first so ticks that are already queued
// find the UI gone.
func (m model) quit() (tea.Model, tea.Cmd) {
	m.ref.Release()
	m.quitting = true
	return m, tea.Quit
}

func (m model) launch() (tea.Model, tea.Cmd) {
	entry, ok := m.selected()
	if !ok {
		m.status = ErrNoEntry.Error()
		return m, nil
	}

	m.logger.Info("launching entry", zap.String("name", entry.Name), zap.String("command", entry.Command))
	m.status = fmt.Sprintf("running %s", entry.Name)

	cmd := bash.NewCommand(m.ctx, entry.Name, entry.Command)
	if entry.Dir != "" {
		cmd.SetDir(entry.Dir)
		m.status += " in " + core.HideHomeDir(m.options.HomeDir, entry.Dir)
	}
	name := cmd.Name()
	return m, tea.Exec(cmd, func(err error) tea.Msg {
		return launchDoneMsg{name: name, err: err}
	})
}

func (m model) copySelected() (tea.Model, tea.Cmd) {
	entry, ok := m.selected()
	if !ok {
		m.status = ErrNoEntry.Error()
		return m, nil
	}
	if err := m.copyToClipboard(entry.Command); err != nil {
		m.logger.Warn("failed to copy entry command", zap.String("name", entry.Name), zap.Error(err))
		m.status = fmt.Sprintf("could not copy %s: %v", entry.Name, err)
		return m, nil
	}
	m.status = fmt.Sprintf("copied %s command", entry.Name)
	return m, nil
}

func (m model) selected() (config.Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.filtered) {
		return config.Entry{}, false
	}
	return m.options.Entries[m.filtered[m.cursor]], true
}

// applyFilter recomputes the visible entries. An empty filter keeps the
// configured order; otherwise entries are ranked by fuzzy score.
func (m *model) applyFilter() {
	m.cursor = 0
	query := strings.TrimSpace(m.filter)
	if query == "" {
		m.filtered = lo.Range(len(m.options.Entries))
		return
	}

	names := lo.Map(m.options.Entries, func(e config.Entry, _ int) string { return e.Name })
	matches := fuzzy.Find(query, names)
	m.filtered = lo.Map(matches, func(match fuzzy.Match, _ int) int { return match.Index })
}

func launchStatus(name string, err error) string {
	code, ok := bash.ExitStatus(err)
	switch {
	case ok && code == 0:
		return fmt.Sprintf("%s exited", name)
	case ok:
		return fmt.Sprintf("%s exited with status %d", name, code)
	default:
		return fmt.Sprintf("%s failed: %v", name, err)
	}
}

// dropLastGrapheme removes the last user-perceived character, so a
// backspace never leaves half of an emoji or combining sequence behind.
func dropLastGrapheme(s string) string {
	g := uniseg.NewGraphemes(s)
	last := 0
	for g.Next() {
		last, _ = g.Positions()
	}
	return s[:last]
}
