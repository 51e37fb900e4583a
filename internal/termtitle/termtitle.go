// Package termtitle sets the terminal window title while the launcher is
// on screen and restores it on exit.
package termtitle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// ErrDumbTerminal indicates the terminal doesn't support escape sequences.
var ErrDumbTerminal = errors.New("dumb terminal: no escape sequence support")

// maxTitleRunes bounds the title so a long config value can't flood the tty.
const maxTitleRunes = 255

// Env describes the terminal as seen through environment variables.
type Env struct {
	Term     string
	IsTmux   bool
	IsScreen bool
}

func (e Env) IsDumb() bool {
	return e.Term == "" || e.Term == "dumb"
}

// DetectEnv reads TERM, TMUX and STY through lookup.
func DetectEnv(lookup func(string) string) Env {
	if lookup == nil {
		lookup = os.Getenv
	}
	return Env{
		Term:     lookup("TERM"),
		IsTmux:   lookup("TMUX") != "",
		IsScreen: lookup("STY") != "",
	}
}

// Terminal writes OSC 2 title sequences to an output.
type Terminal struct {
	output *termenv.Output
	raw    io.Writer
	env    Env
}

func New() *Terminal {
	return NewWithWriter(os.Stdout, DetectEnv(os.Getenv))
}

func NewWithWriter(w io.Writer, env Env) *Terminal {
	return &Terminal{
		output: termenv.NewOutput(w),
		raw:    w,
		env:    env,
	}
}

// Set changes the window title. It is a no-op error on dumb terminals.
func (t *Terminal) Set(title string) error {
	if t.env.IsDumb() {
		return ErrDumbTerminal
	}
	title = Sanitize(title)

	if t.env.IsTmux {
		// tmux needs the sequence wrapped in a DCS passthrough.
		_, err := fmt.Fprintf(t.raw, "\x1bPtmux;\x1b\x1b]2;%s\x07\x1b\\", title)
		return err
	}
	t.output.SetWindowTitle(title)
	return nil
}

// Reset clears the title so the terminal falls back to its default.
func (t *Terminal) Reset() error {
	return t.Set("")
}

// Sanitize drops control characters and limits the title length.
func Sanitize(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	count := 0
	for _, r := range title {
		if count == maxTitleRunes {
			break
		}
		switch {
		case r == '\t':
			b.WriteRune(' ')
		case r < 32 || r == 127:
			continue
		default:
			b.WriteRune(r)
		}
		count++
	}
	return b.String()
}
