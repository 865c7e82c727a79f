package coverage

import (
	"regexp"
	"strconv"
)

var cadencePattern = regexp.MustCompile(`(?i)(\d+)\s*(?:months|month|mos|mo)`)

// ParseCadence extracts a subscription length in months from free-text notes.
// Every "<N> month(s)/mo(s)" occurrence is summed, so promotional text like
// "3 months free, then 1 month billing" reads as 4. Keep the summing rule
// until product says otherwise; see DESIGN.md. Empty or unmatched text
// defaults to 1, and the result is never below 1.
func ParseCadence(notes string) int {
	sum := 0
	for _, match := range cadencePattern.FindAllStringSubmatch(notes, -1) {
		if value, err := strconv.Atoi(match[1]); err == nil {
			sum += value
		}
	}
	if sum < 1 {
		return 1
	}
	return sum
}
