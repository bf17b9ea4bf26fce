package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWarnReachesSink(t *testing.T) {
	var buf bytes.Buffer
	Set(zerolog.New(&buf))

	Warn("clamped %s to %d", "MaxSize", 4096)
	Flush()

	out := buf.String()
	if !strings.Contains(out, "clamped MaxSize to 4096") {
		t.Fatalf("expected warning text in output, got %q", out)
	}
	if !strings.Contains(out, `"level":"warn"`) {
		t.Fatalf("expected warn level in output, got %q", out)
	}
}

func TestCounters(t *testing.T) {
	before := RingBufferOverflowCount()
	IncRingBufferOverflow()
	if RingBufferOverflowCount() != before+1 {
		t.Fatalf("expected overflow counter to increment")
	}

	beforeRot := RotationFailureCount()
	IncRotationFailure()
	if RotationFailureCount() != beforeRot+1 {
		t.Fatalf("expected rotation-failure counter to increment")
	}
}
