// Package core wires the configuration, classifier, ring buffers, and
// output writers into the single synchronous entry point described in
// spec §2 and §6: Submit.
package core

import (
	"github.com/openwebos/pmlogdaemon/internal/classify"
	"github.com/openwebos/pmlogdaemon/internal/config"
	"github.com/openwebos/pmlogdaemon/internal/output"
	"github.com/openwebos/pmlogdaemon/internal/ringbuf"
	"github.com/openwebos/pmlogdaemon/internal/sylevel"
)

// Engine is the daemon's routing core: one loaded configuration, one ring
// buffer per context that declares one, and one writer per output. It is
// not safe for concurrent use - spec §5 guarantees a single caller drives
// Submit sequentially.
type Engine struct {
	cfg     *config.Config
	writers []*output.Writer
	rings   map[string]*ringbuf.Ring // keyed by context name
}

// New builds an Engine from cfg, creating a Writer (whose file is opened
// lazily on first write) for every declared output and a Ring for every
// context that enables buffering.
func New(cfg *config.Config) *Engine {
	e := &Engine{
		cfg:     cfg,
		writers: make([]*output.Writer, len(cfg.Outputs)),
		rings:   make(map[string]*ringbuf.Ring),
	}
	for i, out := range cfg.Outputs {
		e.writers[i] = output.New(out)
	}
	for _, ctx := range cfg.Contexts {
		if ctx.RingBuffer.Enabled {
			e.rings[ctx.Name] = ringbuf.NewRing(ctx.RingBuffer.Size)
		}
	}
	return e
}

// Submit is the receiver's entry point into the core (spec §6). It looks
// up the named context (falling back to <global>), applies the context's
// ring buffer if any, and otherwise classifies and writes directly.
func (e *Engine) Submit(contextName string, facility sylevel.Facility, level sylevel.Level, program string, line []byte) {
	ctx := e.cfg.ContextByName(contextName)

	ring, buffered := e.rings[ctx.Name]
	if buffered {
		if !level.MoreSevereOrEqual(ctx.RingBuffer.FlushLevel) {
			ring.Add(ringbuf.Entry{Line: line, Level: level, Context: ctx.Name})
			return
		}
		e.drain(ring)
	}

	e.route(ctx.Name, facility, level, program, line)
}

// drain replays every buffered entry through the classifier, in arrival
// order, before the triggering message is routed (spec §4.3).
func (e *Engine) drain(ring *ringbuf.Ring) {
	for _, entry := range ring.Drain() {
		// Ring-buffer entries no longer carry facility/program; they were
		// already admitted past the context's flush-level gate so they
		// route purely on the context's always-any rules plus the level
		// preserved at enqueue time. Facility and program are not known
		// at drain time, so a buffered entry only matches rules whose
		// facility and program filters are wildcards.
		e.route(entry.Context, sylevel.AnyFacility(), entry.Level, "", entry.Line)
	}
}

// route classifies one message against ctxName's rules and writes it to
// every resulting target, in the classifier's first-match order.
func (e *Engine) route(ctxName string, facility sylevel.Facility, level sylevel.Level, program string, line []byte) {
	ctx := e.cfg.ContextByName(ctxName)
	targets := classify.Classify(ctx, facility, level, program)
	for _, idx := range targets {
		e.writers[idx].Write(line)
	}
}

// Shutdown drains every context's ring buffer as a synthetic
// severity-0 (most severe) trigger, then closes every output writer.
// Per spec §5, no timeout bounds the drain.
func (e *Engine) Shutdown() {
	for _, ring := range e.rings {
		if ring.Len() == 0 {
			continue
		}
		for _, entry := range ring.Drain() {
			e.route(entry.Context, sylevel.AnyFacility(), entry.Level, "", entry.Line)
		}
	}
	for _, w := range e.writers {
		w.Close()
	}
}
