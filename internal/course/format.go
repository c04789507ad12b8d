package course

import (
	"fmt"
	"strings"
)

// FormatSchedule renders the result of a week/day lookup, one course per line.
func FormatSchedule(week int, day Weekday, courses []Course) string {
	if len(courses) == 0 {
		return fmt.Sprintf("No courses in week %d on weekday %d.\n", week, day)
	}
	var b strings.Builder
	for _, c := range courses {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}

// FormatRecommendations renders recommended courses under a heading.
func FormatRecommendations(base string, courses []Course) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recommended courses (based on %s):\n", base)
	if len(courses) == 0 {
		b.WriteString("  (none)\n")
		return b.String()
	}
	for _, c := range courses {
		fmt.Fprintf(&b, "- %s (Time: %s-%s, Location: %s)\n", c.Name, c.StartTime, c.EndTime, c.Location)
	}
	return b.String()
}
