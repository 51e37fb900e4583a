package launcher

import (
	"context"
	"fmt"
	"sync"

	"github.com/atinylittleshell/launcher/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Program is the running terminal UI. It implements ui.Handle so the
// refresh scheduler can post ticks onto the bubbletea event loop.
type Program struct {
	program *tea.Program
	ref     *ui.Ref
	logger  *zap.Logger

	mu      sync.Mutex
	closed  bool
	nextID  uint64
	pending map[uint64]func(ui.Sink)
}

// New builds the UI without starting it. Extra bubbletea options are passed
// through, which tests use to replace the terminal.
func New(ctx context.Context, options Options, logger *zap.Logger, opts ...tea.ProgramOption) *Program {
	if logger == nil {
		logger = zap.NewNop()
	}
	adapter := ui.NewAdapter()
	ref := ui.NewRef(adapter)

	opts = append([]tea.ProgramOption{tea.WithAltScreen(), tea.WithContext(ctx)}, opts...)
	return &Program{
		program: tea.NewProgram(initialModel(ctx, options, adapter, ref, logger), opts...),
		ref:     ref,
		logger:  logger,
		pending: make(map[uint64]func(ui.Sink)),
	}
}

// Dispatch posts fn to the event loop. The model checks liveness again when
// the message arrives, since the UI may quit in between. Messages the loop
// never delivers are completed with a nil Sink when Run returns.
func (p *Program) Dispatch(fn func(ui.Sink)) bool {
	p.mu.Lock()
	if p.closed || !p.ref.Alive() {
		p.mu.Unlock()
		return false
	}
	id := p.nextID
	p.nextID++
	p.pending[id] = fn
	p.mu.Unlock()

	p.program.Send(dispatchMsg{fn: func(sink ui.Sink) {
		if run, ok := p.take(id); ok {
			run(sink)
		}
	}})
	return true
}

// take removes a pending dispatch so it runs at most once.
func (p *Program) take(id uint64) (func(ui.Sink), bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fn, ok := p.pending[id]
	delete(p.pending, id)
	return fn, ok
}

// flush completes every dispatch the event loop did not deliver.
func (p *Program) flush() {
	p.mu.Lock()
	p.closed = true
	pending := p.pending
	p.pending = make(map[uint64]func(ui.Sink))
	p.mu.Unlock()

	if len(pending) > 0 {
		p.logger.Debug("completing undelivered ticks", zap.Int("count", len(pending)))
	}
	for _, fn := range pending {
		fn(nil)
	}
}

// Run blocks in the bubbletea event loop until the user quits.
func (p *Program) Run() error {
	defer p.flush()
	defer p.ref.Release()

	if _, err := p.program.Run(); err != nil {
		return fmt.Errorf("launcher ui failed: %w", err)
	}
	return nil
}

// Quit asks the event loop to stop from outside, e.g. on a signal.
func (p *Program) Quit() {
	p.ref.Release()
	p.program.Quit()
}
