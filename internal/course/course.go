/*
Package course defines the schedule record shared by the store, the
recommender and the front ends.

A course meets on one weekday, between two HH:MM times, during the weeks
listed in its week-list descriptor. The descriptor is either the full-term
marker "1-17" or a comma-separated list of week numbers ("2,4,6").
*/
package course

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// FullTerm is the week-list descriptor meaning "every week of the term".
const FullTerm = "1-17"

// Course is a single row of the schedule table.
type Course struct {
	ID        int64   `json:"id,omitempty" validate:"gte=0"`
	Name      string  `json:"name" validate:"required"`
	StartTime string  `json:"start_time" validate:"required,clock"`
	EndTime   string  `json:"end_time" validate:"required,clock"`
	Location  string  `json:"location"`
	TeacherID string  `json:"teacher_id"`
	WeekList  string  `json:"week_list" validate:"required,weeklist"`
	Weekday   Weekday `json:"weekday" validate:"gte=1,lte=7"`
}

// CourseName exposes the name to the recommender.
func (c Course) CourseName() string {
	return c.Name
}

// InWeek reports whether the course meets during the given week.
//
// Only the literal full-term marker is treated as a range; any other value is
// read as a comma-separated list.
func (c Course) InWeek(week int) bool {
	if c.WeekList == FullTerm {
		return true
	}
	target := strconv.Itoa(week)
	for _, w := range strings.Split(c.WeekList, ",") {
		if strings.TrimSpace(w) == target {
			return true
		}
	}
	return false
}

// String renders the course as a single schedule line.
func (c Course) String() string {
	return fmt.Sprintf("Course: %s, Time: %s - %s, Location: %s, Teacher: %s",
		c.Name, c.StartTime, c.EndTime, c.Location, c.TeacherID)
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("clock", func(fl validator.FieldLevel) bool {
			_, err := ParseClock(fl.Field().String())
			return err == nil
		})
		_ = validate.RegisterValidation("weeklist", func(fl validator.FieldLevel) bool {
			return validWeekList(fl.Field().String())
		})
	})
	return validate
}

// Validate checks that the record can be stored.
func (c Course) Validate() error {
	if err := getValidator().Struct(c); err != nil {
		return fmt.Errorf("invalid course %q: %w", c.Name, err)
	}
	start, _ := ParseClock(c.StartTime)
	end, _ := ParseClock(c.EndTime)
	if end <= start {
		return fmt.Errorf("invalid course %q: end time %s is not after start time %s", c.Name, c.EndTime, c.StartTime)
	}
	return nil
}

// ParseClock converts an HH:MM string to minutes after midnight.
func ParseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil || hours < 0 || hours > 23 {
		return 0, fmt.Errorf("invalid time %q: bad hour", s)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil || minutes < 0 || minutes > 59 || len(m) != 2 {
		return 0, fmt.Errorf("invalid time %q: bad minute", s)
	}
	return hours*60 + minutes, nil
}

func validWeekList(s string) bool {
	if s == FullTerm {
		return true
	}
	for _, w := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(w))
		if err != nil || n < 1 {
			return false
		}
	}
	return true
}
