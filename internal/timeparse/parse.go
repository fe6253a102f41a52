package timeparse

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const (
	hoursPerDay = 8
	daysPerWeek = 5
)

var unitSeconds = map[byte]float64{
	'w': daysPerWeek * hoursPerDay * 3600,
	'd': hoursPerDay * 3600,
	'h': 3600,
	'm': 60,
}

// Parse converts a human-readable duration like "2h 30m", "1.5ч", "1d" or
// "30м" into seconds. Days are working days of 8h, weeks are 5 days.
// Unparseable parts are ignored.
func Parse(input string) int {
	s := strings.ToLower(strings.TrimSpace(input))
	s = strings.ReplaceAll(s, "ч", "h")
	s = strings.ReplaceAll(s, "м", "m")

	total := 0.0
	num := ""
	// gap is set by a space after digits; a further digit starts a new number
	// so "1 30m" is 30m, while "1 h" still reads as 1h.
	gap := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case (ch >= '0' && ch <= '9') || ch == '.' || ch == ',':
			if ch == ',' {
				ch = '.'
			}
			if gap {
				num = ""
			}
			num += string(ch)
			gap = false
		case unitSeconds[ch] > 0:
			if v, err := strconv.ParseFloat(num, 64); err == nil {
				total += v * unitSeconds[ch]
			}
			num = ""
			gap = false
		case ch == ' ':
			gap = num != ""
		default:
			num = ""
			gap = false
		}
	}
	return int(total)
}

// HoursToSeconds converts fractional hours to whole seconds, rounding half
// away from zero: 1.5 -> 5400, 0.1 -> 360, 0.00014 -> 1. NaN and infinities
// give 0.
func HoursToSeconds(hours float64) int {
	if math.IsNaN(hours) || math.IsInf(hours, 0) {
		return 0
	}
	return int(math.Round(hours * 3600))
}

// Format renders seconds as "2h 30m", "2h" or "45m".
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 && m > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if h > 0 {
		return fmt.Sprintf("%dh", h)
	}
	return fmt.Sprintf("%dm", m)
}
