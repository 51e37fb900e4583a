// Package bash runs launcher entries through an embedded POSIX shell
// interpreter, so entries behave the same on every platform.
package bash

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Command is a shell script ready to run with caller-provided stdio. It
// satisfies bubbletea's ExecCommand so the UI can hand the terminal over
// while an entry runs.
type Command struct {
	ctx    context.Context
	script string
	name   string
	dir    string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func NewCommand(ctx context.Context, name string, script string) *Command {
	return &Command{
		ctx:    ctx,
		script: script,
		name:   name,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

func (c *Command) SetDir(dir string)     { c.dir = dir }
func (c *Command) SetStdin(r io.Reader)  { c.stdin = r }
func (c *Command) SetStdout(w io.Writer) { c.stdout = w }
func (c *Command) SetStderr(w io.Writer) { c.stderr = w }

func (c *Command) Name() string { return c.name }

// Run parses and executes the script in a fresh interpreter that inherits
// the process environment.
func (c *Command) Run() error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(c.script), c.name)
	if err != nil {
		return fmt.Errorf("failed to parse %q: %w", c.name, err)
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(c.stdin, c.stdout, c.stderr),
	}
	if c.dir != "" {
		opts = append(opts, interp.Dir(c.dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create interpreter: %w", err)
	}

	return runner.Run(c.ctx, prog)
}

// ExitStatus extracts the exit code from an error returned by Run.
// A nil error is status 0; errors that are not exit statuses report false.
func ExitStatus(err error) (int, bool) {
	if err == nil {
		return 0, true
	}
	if code, ok := interp.IsExitStatus(err); ok {
		return int(code), true
	}
	return 0, false
}
