package config

import "github.com/openwebos/pmlogdaemon/internal/sylevel"

// Default builds the hard-coded fallback configuration installed whenever
// Load fails: a single stdlog output writing to DefaultPath, and a single
// <global> context with rule "*.*,stdlog" (spec §4.1's "Failure mode").
func Default() *Config {
	c := &Config{
		Outputs: []Output{
			{
				Name:      DefaultOutputName,
				Path:      DefaultPath,
				MaxSize:   DefaultMaxSize,
				Rotations: DefaultRotations,
			},
		},
		Contexts: []Context{
			{
				Name: GlobalContextName,
				Rules: []Rule{
					{
						Facility:    sylevel.AnyFacility(),
						Level:       sylevel.AnyLevel(),
						OutputIndex: 0,
					},
				},
			},
		},
	}
	c.build()
	return c
}
