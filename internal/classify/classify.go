// Package classify implements the rule evaluation described in spec §4.2:
// given a context's ordered rule list and a message's (facility, level,
// program), it produces the ordered, deduplicated set of output indices
// to write to.
package classify

import (
	"github.com/openwebos/pmlogdaemon/internal/config"
	"github.com/openwebos/pmlogdaemon/internal/sylevel"
)

// Classify evaluates ctx's rules in order against the message fields and
// returns the output indices to write to, in first-match order.
//
// Precedence (spec §4.2): the first rule that matches a given output
// decides that output's fate for this message. A later omit cannot
// rescind an earlier positive match, and a later positive match cannot
// re-enable an output an earlier rule suppressed.
func Classify(ctx config.Context, facility sylevel.Facility, level sylevel.Level, program string) []int {
	var targets []int
	decided := make(map[int]bool) // output index -> already decided (positively or negatively)

	for _, r := range ctx.Rules {
		if !matches(r, facility, level, program) {
			continue
		}
		if decided[r.OutputIndex] {
			continue
		}
		decided[r.OutputIndex] = true
		if !r.Omit {
			targets = append(targets, r.OutputIndex)
		}
	}

	return targets
}

func matches(r config.Rule, facility sylevel.Facility, level sylevel.Level, program string) bool {
	if !r.Facility.IsAny() && !r.Facility.Equal(facility) {
		return false
	}

	if !r.Level.IsAny() {
		eq := r.Level.Equal(level)
		if r.LevelInvert {
			if eq {
				return false
			}
		} else if !eq {
			return false
		}
	}

	if r.Program != "" && r.Program != program {
		return false
	}

	return true
}
