package config

import "fmt"

// AttributeKeySource is one entry in an AttributeSource's key cascade:
// a feature-tag key to try, with a unit multiplier.
type AttributeKeySource struct {
	Key        string
	Multiplier float64
}

// AttributeSource is the "source key cascade" interpreter behind
// dynamic OSM widths/extrusion heights (spec.md §9 "Dynamic widths /
// extrusions"): try each source key against the feature's tags in
// order, take the first that parses, multiply and clamp; fall through
// to Default if no source key is present. Kept total: missing keys are
// never an error.
type AttributeSource struct {
	Default float64
	Min     *float64
	Max     *float64
	Sources []AttributeKeySource
}

// FixedAttributeSource builds an AttributeSource with no key cascade: a
// constant value (the scalar form of width_m/height_m in config).
func FixedAttributeSource(value float64) AttributeSource {
	return AttributeSource{Default: value}
}

// Resolve evaluates the cascade against a feature's tags, returning the
// clamped value: the first source key present in tags, parsed as a
// number (a bare numeric string value), else Default.
func (a AttributeSource) Resolve(tags map[string]string) float64 {
	value := a.Default
	for _, src := range a.Sources {
		if raw, ok := tags[src.Key]; ok {
			if parsed, err := parseTagNumber(raw); err == nil {
				value = parsed * src.Multiplier
				break
			}
		}
	}
	return a.clamp(value)
}

func (a AttributeSource) clamp(value float64) float64 {
	if a.Min != nil && value < *a.Min {
		value = *a.Min
	}
	if a.Max != nil && value > *a.Max {
		value = *a.Max
	}
	return value
}

// parseTagNumber coerces an OSM tag value like "5", "5.0", "5m", or
// "5.0 m" to a metres float (spec.md §9: "convert units... with a
// shared parser").
func parseTagNumber(raw string) (float64, error) {
	trimmed := raw
	for len(trimmed) > 0 && (trimmed[len(trimmed)-1] == ' ' || trimmed[len(trimmed)-1] == 'm' || trimmed[len(trimmed)-1] == 'M') {
		trimmed = trimmed[:len(trimmed)-1]
	}
	trimmed = trimWhitespace(trimmed)
	if trimmed == "" {
		return 0, fmt.Errorf("empty tag value")
	}
	return parseFloatStrict(trimmed)
}

func trimWhitespace(s string) string {
	start, end := 0, len(s)
	for start < end && s[start] == ' ' {
		start++
	}
	for end > start && s[end-1] == ' ' {
		end--
	}
	return s[start:end]
}

func parseFloatStrict(s string) (float64, error) {
	var value float64
	n, err := fmt.Sscanf(s, "%g", &value)
	if err != nil || n != 1 {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return value, nil
}
