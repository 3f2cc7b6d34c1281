package task

import (
	"fmt"
	"strconv"
	"strings"
)

// NumberPrefix is the task number prefix for a year, e.g. "T-2025-".
func NumberPrefix(year int) string {
	return fmt.Sprintf("T-%d-", year)
}

// NextNumber returns the number following last within year. last is the
// highest number issued so far that year, or "" when there is none. The
// sequence is zero padded to three digits and keeps growing past 999.
func NextNumber(last string, year int) string {
	prefix := NumberPrefix(year)
	seq := 0
	if rest, ok := strings.CutPrefix(last, prefix); ok {
		if n, err := strconv.Atoi(rest); err == nil {
			seq = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, seq+1)
}
