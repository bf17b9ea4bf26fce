package classify

import (
	"reflect"
	"testing"

	"github.com/openwebos/pmlogdaemon/internal/config"
	"github.com/openwebos/pmlogdaemon/internal/sylevel"
)

func rule(facility sylevel.Facility, level sylevel.Level, invert bool, program string, outIdx int, omit bool) config.Rule {
	return config.Rule{
		Facility:    facility,
		Level:       level,
		LevelInvert: invert,
		Program:     program,
		OutputIndex: outIdx,
		Omit:        omit,
	}
}

func TestClassifyDefaultRoute(t *testing.T) {
	ctx := config.Context{Rules: []config.Rule{
		rule(sylevel.AnyFacility(), sylevel.AnyLevel(), false, "", 0, false),
	}}

	got := Classify(ctx, sylevel.NewFacility(sylevel.FacUser), sylevel.NewLevel(sylevel.LevelInfo), "a")
	want := []int{0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestClassifyLaterOmitDoesNotRescind(t *testing.T) {
	ctx := config.Context{Rules: []config.Rule{
		rule(sylevel.AnyFacility(), sylevel.AnyLevel(), false, "", 0, false),
		rule(sylevel.NewFacility(sylevel.FacKern), sylevel.AnyLevel(), false, "", 0, true),
	}}

	// kern message: first rule matches and locks output 0 in (positive),
	// so the later omit for kern cannot rescind it - first match wins.
	got := Classify(ctx, sylevel.NewFacility(sylevel.FacKern), sylevel.NewLevel(sylevel.LevelErr), "k")
	want := []int{0}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestClassifyOmitFirstWins(t *testing.T) {
	ctx := config.Context{Rules: []config.Rule{
		rule(sylevel.NewFacility(sylevel.FacKern), sylevel.AnyLevel(), false, "", 0, true),
		rule(sylevel.AnyFacility(), sylevel.AnyLevel(), false, "", 0, false),
	}}

	got := Classify(ctx, sylevel.NewFacility(sylevel.FacKern), sylevel.NewLevel(sylevel.LevelErr), "k")
	if len(got) != 0 {
		t.Fatalf("expected no targets, got %v", got)
	}
}

func TestClassifyLevelInvert(t *testing.T) {
	ctx := config.Context{Rules: []config.Rule{
		rule(sylevel.NewFacility(sylevel.FacUser), sylevel.NewLevel(sylevel.LevelInfo), true, "", 0, false),
	}}

	gotInfo := Classify(ctx, sylevel.NewFacility(sylevel.FacUser), sylevel.NewLevel(sylevel.LevelInfo), "a")
	if len(gotInfo) != 0 {
		t.Fatalf("info should not match inverted filter, got %v", gotInfo)
	}

	gotErr := Classify(ctx, sylevel.NewFacility(sylevel.FacUser), sylevel.NewLevel(sylevel.LevelErr), "a")
	if !reflect.DeepEqual(gotErr, []int{0}) {
		t.Fatalf("err should match inverted filter, got %v", gotErr)
	}
}

func TestClassifyProgramExactMatch(t *testing.T) {
	ctx := config.Context{Rules: []config.Rule{
		rule(sylevel.AnyFacility(), sylevel.AnyLevel(), false, "myprog", 0, false),
	}}

	if got := Classify(ctx, sylevel.NewFacility(sylevel.FacUser), sylevel.NewLevel(sylevel.LevelInfo), "other"); len(got) != 0 {
		t.Fatalf("expected no match for different program, got %v", got)
	}
	if got := Classify(ctx, sylevel.NewFacility(sylevel.FacUser), sylevel.NewLevel(sylevel.LevelInfo), "myprog"); !reflect.DeepEqual(got, []int{0}) {
		t.Fatalf("expected match for exact program, got %v", got)
	}
}

func TestClassifyEmptyResult(t *testing.T) {
	ctx := config.Context{Rules: nil}
	got := Classify(ctx, sylevel.NewFacility(sylevel.FacUser), sylevel.NewLevel(sylevel.LevelInfo), "a")
	if len(got) != 0 {
		t.Fatalf("expected empty result for no rules, got %v", got)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	ctx := config.Context{Rules: []config.Rule{
		rule(sylevel.AnyFacility(), sylevel.AnyLevel(), false, "", 0, false),
		rule(sylevel.NewFacility(sylevel.FacKern), sylevel.AnyLevel(), false, "", 1, false),
	}}

	f := sylevel.NewFacility(sylevel.FacKern)
	l := sylevel.NewLevel(sylevel.LevelErr)

	a := Classify(ctx, f, l, "k")
	b := Classify(ctx, f, l, "k")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("classify is not idempotent: %v != %v", a, b)
	}
}

func TestClassifyMultipleOutputs(t *testing.T) {
	ctx := config.Context{Rules: []config.Rule{
		rule(sylevel.AnyFacility(), sylevel.AnyLevel(), false, "", 0, false),
		rule(sylevel.AnyFacility(), sylevel.AnyLevel(), false, "", 1, false),
	}}

	got := Classify(ctx, sylevel.NewFacility(sylevel.FacUser), sylevel.NewLevel(sylevel.LevelInfo), "a")
	want := []int{0, 1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
