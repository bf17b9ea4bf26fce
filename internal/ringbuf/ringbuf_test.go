package ringbuf

import (
	"testing"

	"github.com/openwebos/pmlogdaemon/internal/sylevel"
)

func entry(n int) Entry {
	line := make([]byte, n)
	for i := range line {
		line[i] = 'x'
	}
	return Entry{Line: line, Level: sylevel.NewLevel(sylevel.LevelInfo), Context: "<global>"}
}

func TestAddWithinBudget(t *testing.T) {
	r := NewRing(1024)
	r.Add(entry(100))
	r.Add(entry(100))
	r.Add(entry(100))

	if r.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", r.Len())
	}
	if r.UsedBytes() != 300 {
		t.Fatalf("expected 300 used bytes, got %d", r.UsedBytes())
	}
}

func TestAddEvictsOldest(t *testing.T) {
	r := NewRing(256)

	// 400 bytes of info messages into a 256-byte budget: the buffer
	// should retain only a tail whose total size is <= 256.
	r.Add(entry(100))
	r.Add(entry(100))
	r.Add(entry(100))
	r.Add(entry(100))

	if r.UsedBytes() > 256 {
		t.Fatalf("used bytes %d exceeds budget 256", r.UsedBytes())
	}

	drained := r.Drain()
	var total int64
	for _, e := range drained {
		total += int64(len(e.Line))
	}
	if total > 256 {
		t.Fatalf("drained total %d exceeds budget 256", total)
	}
}

func TestAddOversizeEntryDropped(t *testing.T) {
	r := NewRing(100)
	r.Add(entry(50))
	r.Add(entry(200)) // too big to ever fit; buffer must be left unchanged

	if r.Len() != 1 || r.UsedBytes() != 50 {
		t.Fatalf("oversize entry should not disturb buffer: len=%d used=%d", r.Len(), r.UsedBytes())
	}
}

func TestDrainOrderPreserved(t *testing.T) {
	r := NewRing(1024)
	e1 := Entry{Line: []byte("m1"), Level: sylevel.NewLevel(sylevel.LevelInfo)}
	e2 := Entry{Line: []byte("m2"), Level: sylevel.NewLevel(sylevel.LevelInfo)}
	e3 := Entry{Line: []byte("m3"), Level: sylevel.NewLevel(sylevel.LevelInfo)}

	r.Add(e1)
	r.Add(e2)
	r.Add(e3)

	drained := r.Drain()
	if len(drained) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(drained))
	}
	if string(drained[0].Line) != "m1" || string(drained[1].Line) != "m2" || string(drained[2].Line) != "m3" {
		t.Fatalf("drain order not preserved: %+v", drained)
	}

	if r.Len() != 0 {
		t.Fatalf("expected empty buffer after drain, got len=%d", r.Len())
	}
}

func TestDrainEmpty(t *testing.T) {
	r := NewRing(1024)
	if drained := r.Drain(); drained != nil {
		t.Fatalf("expected nil drain on empty buffer, got %v", drained)
	}
}
