package segmentid

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseTimestamp converts "(hh:)mm:ss" clock notation (or bare seconds) into
// seconds.
func ParseTimestamp(value string) (float64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, fmt.Errorf("empty timestamp")
	}

	parts := strings.Split(trimmed, ":")
	if len(parts) > 3 {
		return 0, fmt.Errorf("invalid timestamp format %q", value)
	}

	var total float64
	for index, part := range parts {
		component, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil || component < 0 {
			return 0, fmt.Errorf("invalid timestamp component %q in %q", part, value)
		}
		if index > 0 && component >= 60 {
			return 0, fmt.Errorf("timestamp component %q out of range in %q", part, value)
		}
		total = total*60 + component
	}
	return total, nil
}

// FormatTimestamp renders seconds as "(h:)mm:ss".
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	hours := total / 3600
	minutes := (total % 3600) / 60
	secs := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}
