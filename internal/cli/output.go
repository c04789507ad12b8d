package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/khanglvm/course-hub/internal/course"
)

// printJSON pretty-prints v.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// formatCourse renders one course as a detail line for listings.
func formatCourse(c course.Course) string {
	return fmt.Sprintf("%s  %s-%s  %s  weekday %d (%s)  weeks %s  teacher %s",
		c.Name, c.StartTime, c.EndTime, c.Location, c.Weekday, c.Weekday.Code(), c.WeekList, c.TeacherID)
}

// joinArgs rebuilds a free-form argument split by the shell.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
