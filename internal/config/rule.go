package config

import (
	"fmt"
	"strings"

	"github.com/openwebos/pmlogdaemon/internal/sylevel"
)

// parseRule parses a single rule value of the grammar:
//
//	<facility>[.[!]<level>[.<program>]],[-]<outputName>
//
// outputIndex is resolved via lookup (the output must already be
// declared, per spec §4.1's parsing contract).
func parseRule(value string, lookup func(name string) (int, bool)) (Rule, error) {
	comma := strings.IndexByte(value, ',')
	if comma < 0 {
		return Rule{}, fmt.Errorf("config: rule %q missing ',' separating filter from output", value)
	}
	filterSpec := value[:comma]
	outputSpec := strings.TrimSpace(value[comma+1:])
	if outputSpec == "" {
		return Rule{}, fmt.Errorf("config: rule %q has empty output name", value)
	}

	var r Rule
	omit := false
	if strings.HasPrefix(outputSpec, "-") {
		omit = true
		outputSpec = outputSpec[1:]
	}
	if outputSpec == "" {
		return Rule{}, fmt.Errorf("config: rule %q has empty output name", value)
	}

	idx, ok := lookup(outputSpec)
	if !ok {
		return Rule{}, fmt.Errorf("config: rule %q references unknown output %q", value, outputSpec)
	}
	r.OutputIndex = idx
	r.Omit = omit

	parts := strings.SplitN(filterSpec, ".", 3)

	facility, err := sylevel.ParseFacility(strings.TrimSpace(parts[0]))
	if err != nil {
		return Rule{}, fmt.Errorf("config: rule %q: %w", value, err)
	}
	r.Facility = facility

	if len(parts) >= 2 {
		lvlTok := strings.TrimSpace(parts[1])
		if strings.HasPrefix(lvlTok, "!") {
			r.LevelInvert = true
			lvlTok = lvlTok[1:]
		}
		level, err := sylevel.ParseLevel(lvlTok)
		if err != nil {
			return Rule{}, fmt.Errorf("config: rule %q: %w", value, err)
		}
		r.Level = level
	} else {
		r.Level = sylevel.AnyLevel()
	}

	if len(parts) == 3 {
		r.Program = strings.TrimSpace(parts[2])
	}

	return r, nil
}
