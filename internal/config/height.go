package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/francegen/francegen/internal/coords"
)

// parseHeight parses a layer-range bound like "300m", "1200b", "5", or
// "5.0m" into an elevation in metres (spec.md §3 "Layer ranges": ranges
// are parsed to inclusive-min/exclusive-max elevation in metres, with
// "b" (block) units converted via the fixed vertical shift). A trailing
// "m"/"M" is metres as-is; "b"/"B" is an absolute world block Y,
// converted back to the equivalent metre elevation; no suffix defaults
// to metres.
func parseHeight(raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("height value must not be empty")
	}

	unit := byte('m')
	numberPart := trimmed
	last := trimmed[len(trimmed)-1]
	if last == 'm' || last == 'M' || last == 'b' || last == 'B' {
		if last == 'b' || last == 'B' {
			unit = 'b'
		}
		numberPart = strings.TrimSpace(trimmed[:len(trimmed)-1])
	}
	if numberPart == "" {
		return 0, fmt.Errorf("height value %q is missing a number before its unit", raw)
	}

	value, err := strconv.ParseFloat(numberPart, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse height value %q: %w", raw, err)
	}

	if unit == 'b' {
		return value - coords.VerticalShift, nil
	}
	return value, nil
}

// parseRange parses a {min,max} layer-range file entry; an absent
// bound defaults to the widest possible extent on that side.
func parseRange(min, max *string) (lo, hi float64, err error) {
	lo = math.Inf(-1)
	hi = math.Inf(1)
	if min != nil {
		if lo, err = parseHeight(*min); err != nil {
			return 0, 0, err
		}
	}
	if max != nil {
		if hi, err = parseHeight(*max); err != nil {
			return 0, 0, err
		}
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("layer range min must be less than or equal to max")
	}
	return lo, hi, nil
}
