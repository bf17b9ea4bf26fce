package config

import (
	"testing"

	"github.com/openwebos/pmlogdaemon/internal/sylevel"
)

func TestParseRule(t *testing.T) {
	lookup := func(name string) (int, bool) {
		if name == "stdlog" {
			return 0, true
		}
		if name == "audit" {
			return 1, true
		}
		return 0, false
	}

	cases := []struct {
		in          string
		wantAny     bool
		wantOmit    bool
		wantInvert  bool
		wantProgram string
		wantOutput  int
	}{
		{"*.*,stdlog", true, false, false, "", 0},
		{"kern.err,-stdlog", false, true, false, "", 0},
		{"user.!info,audit", false, false, true, "", 1},
		{"user.info.myprog,stdlog", false, false, false, "myprog", 0},
		{"kern,stdlog", false, false, false, "", 0},
	}

	for _, c := range cases {
		r, err := parseRule(c.in, lookup)
		if err != nil {
			t.Fatalf("parseRule(%q): %s", c.in, err)
		}
		if r.Omit != c.wantOmit {
			t.Fatalf("parseRule(%q): omit=%v, want %v", c.in, r.Omit, c.wantOmit)
		}
		if r.LevelInvert != c.wantInvert {
			t.Fatalf("parseRule(%q): invert=%v, want %v", c.in, r.LevelInvert, c.wantInvert)
		}
		if r.Program != c.wantProgram {
			t.Fatalf("parseRule(%q): program=%q, want %q", c.in, r.Program, c.wantProgram)
		}
		if r.OutputIndex != c.wantOutput {
			t.Fatalf("parseRule(%q): output=%d, want %d", c.in, r.OutputIndex, c.wantOutput)
		}
	}
}

func TestParseRuleFacilityLevel(t *testing.T) {
	lookup := func(string) (int, bool) { return 0, true }

	r, err := parseRule("kern.err,stdlog", lookup)
	if err != nil {
		t.Fatalf("parseRule: %s", err)
	}
	if r.Facility.IsAny() || r.Facility.Code() != sylevel.FacKern {
		t.Fatalf("expected facility kern, got %+v", r.Facility)
	}
	if r.Level.IsAny() || r.Level.Code() != sylevel.LevelErr {
		t.Fatalf("expected level err, got %+v", r.Level)
	}
}

func TestParseRuleErrors(t *testing.T) {
	lookup := func(string) (int, bool) { return 0, false }

	for _, in := range []string{"", "nocomma", "*.*,", "*.*,-", "bogus.*,stdlog"} {
		if _, err := parseRule(in, lookup); err == nil {
			t.Fatalf("parseRule(%q): expected error", in)
		}
	}
}
