// Package ringbuf implements the per-context deferred-write buffer of
// spec §4.3: a bounded byte-budget FIFO of captured messages that drains
// through the classifier when a severity threshold is crossed.
//
// The buffer itself only tracks admission, eviction, and retrieval order;
// it does not know about the classifier or output writers - internal/core
// wires those together on drain.
package ringbuf

import (
	"container/list"

	"github.com/openwebos/pmlogdaemon/internal/diag"
	"github.com/openwebos/pmlogdaemon/internal/sylevel"
)

// Entry is one captured message awaiting a flush.
type Entry struct {
	Line    []byte
	Level   sylevel.Level
	Context string
}

func (e Entry) size() int64 {
	return int64(len(e.Line))
}

// Ring is a bounded, byte-budgeted FIFO of Entry values. It is not safe
// for concurrent use - spec §5 guarantees the core calls it from a single
// goroutine.
type Ring struct {
	budget  int64
	used    int64
	entries *list.List
}

// NewRing creates a ring buffer with the given byte budget.
func NewRing(budget int64) *Ring {
	return &Ring{budget: budget, entries: list.New()}
}

// Len returns the number of retained entries.
func (r *Ring) Len() int { return r.entries.Len() }

// UsedBytes returns the total size of retained entries.
func (r *Ring) UsedBytes() int64 { return r.used }

// Add admits e into the buffer, evicting the oldest entries as needed to
// stay within budget (spec §4.3's "Admission and eviction"). If e alone
// exceeds the budget, it is dropped entirely and the buffer is left
// unchanged; the drop is counted via diag.IncRingBufferOverflow.
func (r *Ring) Add(e Entry) {
	sz := e.size()
	if sz > r.budget {
		diag.IncRingBufferOverflow()
		return
	}

	for r.used+sz > r.budget && r.entries.Len() > 0 {
		front := r.entries.Front()
		old := front.Value.(Entry)
		r.used -= old.size()
		r.entries.Remove(front)
	}

	r.entries.PushBack(e)
	r.used += sz
}

// Drain removes and returns all retained entries in FIFO (arrival) order,
// leaving the buffer empty.
func (r *Ring) Drain() []Entry {
	if r.entries.Len() == 0 {
		return nil
	}
	out := make([]Entry, 0, r.entries.Len())
	for e := r.entries.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(Entry))
	}
	r.entries.Init()
	r.used = 0
	return out
}
