package config

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/openwebos/pmlogdaemon/internal/diag"
	"github.com/openwebos/pmlogdaemon/internal/sylevel"
)

// Load parses the keyed configuration file at path into an immutable
// Config. On any fatal error it returns (nil, err); the caller is
// expected to fall back to Default() per spec §4.1's failure mode -
// Load itself never returns a partially-built Config.
func Load(path string) (*Config, error) {
	f, err := ini.LoadSources(ini.LoadOptions{AllowBooleanKeys: true}, path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}

	var outputs []Output
	var contexts []Context
	outputIdx := make(map[string]int)
	contextIdx := make(map[string]int)

	sawFirstOutput := false
	sawFirstContext := false

	for _, sec := range f.Sections() {
		name := sec.Name()
		if name == ini.DefaultSection {
			continue
		}

		kind, groupName, ok := splitGroupName(name)
		if !ok {
			diag.Warn("config: skipping unrecognized group %q", name)
			continue
		}

		switch kind {
		case "OUTPUT":
			if !sawFirstOutput && groupName != DefaultOutputName {
				return nil, fmt.Errorf("config: first output must be %q, got %q", DefaultOutputName, groupName)
			}
			sawFirstOutput = true

			out, err := parseOutputSection(groupName, sec)
			if err != nil {
				return nil, fmt.Errorf("config: output %q: %w", groupName, err)
			}
			if _, dup := outputIdx[out.Name]; dup {
				return nil, fmt.Errorf("config: duplicate output %q", out.Name)
			}
			outputIdx[out.Name] = len(outputs)
			outputs = append(outputs, out)

		case "CONTEXT":
			if !sawFirstContext && groupName != GlobalContextName {
				return nil, fmt.Errorf("config: first context must be %q, got %q", GlobalContextName, groupName)
			}
			sawFirstContext = true

			lookup := func(name string) (int, bool) { i, ok := outputIdx[name]; return i, ok }
			ctx, err := parseContextSection(groupName, sec, lookup)
			if err != nil {
				return nil, fmt.Errorf("config: context %q: %w", groupName, err)
			}
			if _, dup := contextIdx[ctx.Name]; dup {
				return nil, fmt.Errorf("config: duplicate context %q", ctx.Name)
			}
			contextIdx[ctx.Name] = len(contexts)
			contexts = append(contexts, ctx)

		default:
			diag.Warn("config: skipping unrecognized group kind %q in %q", kind, name)
		}
	}

	if len(outputs) == 0 || outputs[0].Name != DefaultOutputName {
		return nil, fmt.Errorf("config: no usable %q output", DefaultOutputName)
	}
	if len(contexts) == 0 || contexts[0].Name != GlobalContextName {
		return nil, fmt.Errorf("config: no usable %q context", GlobalContextName)
	}

	c := &Config{Outputs: outputs, Contexts: contexts}
	c.build()
	return c, nil
}

// splitGroupName splits a section name of the form "KIND=name" into its
// kind and name.
func splitGroupName(section string) (kind, name string, ok bool) {
	eq := strings.IndexByte(section, '=')
	if eq < 0 {
		return "", "", false
	}
	return section[:eq], section[eq+1:], true
}

func parseOutputSection(name string, sec *ini.Section) (Output, error) {
	if len(name) > MaxNameLen {
		return Output{}, fmt.Errorf("output name %q exceeds %d chars", name, MaxNameLen)
	}

	path := sec.Key("File").String()
	if path == "" {
		return Output{}, fmt.Errorf("missing required key File")
	}
	if !strings.HasPrefix(path, "/") {
		return Output{}, fmt.Errorf("File %q is not an absolute path", path)
	}

	maxSize := int64(DefaultMaxSize)
	if sec.HasKey("MaxSize") {
		v, err := parseSizeKey(sec, "MaxSize")
		if err != nil {
			return Output{}, err
		}
		maxSize = v
	}
	if clamped, did := clampMaxSize(maxSize); did {
		diag.Warn("config: output %q MaxSize clamped to %d", name, clamped)
		maxSize = clamped
	}

	rotations := DefaultRotations
	if sec.HasKey("Rotations") {
		v, err := sec.Key("Rotations").Int()
		if err != nil {
			return Output{}, fmt.Errorf("invalid Rotations: %w", err)
		}
		rotations = v
	}
	if clamped, did := clampRotations(rotations); did {
		diag.Warn("config: output %q Rotations clamped to %d", name, clamped)
		rotations = clamped
	}

	return Output{Name: name, Path: path, MaxSize: maxSize, Rotations: rotations}, nil
}

func parseContextSection(name string, sec *ini.Section, lookup func(string) (int, bool)) (Context, error) {
	if len(name) > MaxNameLen {
		return Context{}, fmt.Errorf("context name %q exceeds %d chars", name, MaxNameLen)
	}

	var rules []Rule
	for i := 1; i <= MaxRules+1; i++ {
		key := fmt.Sprintf("Rule%d", i)
		if !sec.HasKey(key) {
			break
		}
		if i > MaxRules {
			diag.Warn("config: context %q has more than %d rules, ignoring the rest", name, MaxRules)
			break
		}
		r, err := parseRule(sec.Key(key).String(), lookup)
		if err != nil {
			return Context{}, err
		}
		rules = append(rules, r)
	}

	ctx := Context{Name: name, Rules: rules}

	if sec.HasKey("BufferSize") {
		size, err := parseSizeKey(sec, "BufferSize")
		if err != nil {
			return Context{}, err
		}
		if size < 0 {
			return Context{}, fmt.Errorf("BufferSize must be >= 0")
		}

		level := sylevel.NewLevel(sylevel.LevelWarning)
		if sec.HasKey("FlushLevel") {
			l, err := sylevel.ParseLevel(sec.Key("FlushLevel").String())
			if err != nil || l.IsAny() {
				return Context{}, fmt.Errorf("invalid FlushLevel for context %q", name)
			}
			level = l
		}

		ctx.RingBuffer = RingBufferConfig{Enabled: true, Size: size, FlushLevel: level}
	}

	return ctx, nil
}

func parseSizeKey(sec *ini.Section, key string) (int64, error) {
	v, err := sec.Key(key).Int64()
	if err == nil {
		return v, nil
	}
	// Fall back to the suffixed grammar (4K, 1MB, ...).
	return sizeParse(sec.Key(key).String())
}
