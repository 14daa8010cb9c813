// Package memparser decodes docker-stats-style memory usage strings such as
// "12.45MiB / 256MiB" into a byte count.
package memparser

import (
	"strconv"
	"strings"
)

var unitMultipliers = map[string]float64{
	"B":   1,
	"KB":  1000,
	"KIB": 1024,
	"MB":  1000 * 1000,
	"MIB": 1024 * 1024,
	"GB":  1000 * 1000 * 1000,
	"GIB": 1024 * 1024 * 1024,
}

// Parse takes the left-hand term of a "<used> / <limit>" stats string and
// returns its value in bytes. It returns ok=false on malformed input or an
// unrecognized unit; it never interprets percentages.
func Parse(raw string) (bytes int64, ok bool) {
	term := strings.TrimSpace(raw)
	if idx := strings.Index(term, "/"); idx >= 0 {
		term = term[:idx]
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return 0, false
	}

	splitAt := -1
	for i, r := range term {
		if !(r == '.' || r == '-' || (r >= '0' && r <= '9')) {
			splitAt = i
			break
		}
	}
	if splitAt <= 0 {
		return 0, false
	}

	numPart := term[:splitAt]
	unitPart := strings.ToUpper(strings.TrimSpace(term[splitAt:]))

	value, err := strconv.ParseFloat(numPart, 64)
	if err != nil || value < 0 {
		return 0, false
	}

	multiplier, known := unitMultipliers[unitPart]
	if !known {
		return 0, false
	}

	return int64(value * multiplier), true
}
