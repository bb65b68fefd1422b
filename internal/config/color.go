package config

import (
	"fmt"
	"strconv"
	"strings"
)

// parseHexColor parses "#RRGGBB" or "#RRGGBBAA" into RGBA components,
// defaulting alpha to 255 when not present (spec.md §4.5 WMTS colors[]).
func parseHexColor(raw string) (r, g, b, a uint8, err error) {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "#")
	if len(s) != 6 && len(s) != 8 {
		return 0, 0, 0, 0, fmt.Errorf("invalid color %q: expected #RRGGBB or #RRGGBBAA", raw)
	}
	rv, err := strconv.ParseUint(s[0:2], 16, 8)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid color %q: %w", raw, err)
	}
	gv, err := strconv.ParseUint(s[2:4], 16, 8)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid color %q: %w", raw, err)
	}
	bv, err := strconv.ParseUint(s[4:6], 16, 8)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("invalid color %q: %w", raw, err)
	}
	av := uint64(255)
	if len(s) == 8 {
		av, err = strconv.ParseUint(s[6:8], 16, 8)
		if err != nil {
			return 0, 0, 0, 0, fmt.Errorf("invalid color %q: %w", raw, err)
		}
	}
	return uint8(rv), uint8(gv), uint8(bv), uint8(av), nil
}
