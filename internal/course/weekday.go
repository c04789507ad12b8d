package course

import (
	"fmt"
	"strconv"
	"strings"
)

// Weekday is the day a course meets, 1 (Monday) through 7 (Sunday).
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// weekdayCodes is the single-letter alphabet used by registrar exports.
var weekdayCodes = [...]string{"M", "T", "W", "R", "F", "S", "U"}

// Valid reports whether d is within 1..7.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// Code returns the single-letter code, or "?" for an invalid day.
func (d Weekday) Code() string {
	if !d.Valid() {
		return "?"
	}
	return weekdayCodes[d-1]
}

func (d Weekday) String() string {
	return strconv.Itoa(int(d))
}

// ParseWeekday accepts a day number ("1".."7") or a code ("M".."U", any case).
func ParseWeekday(s string) (Weekday, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		d := Weekday(n)
		if !d.Valid() {
			return 0, fmt.Errorf("weekday %d out of range 1-7", n)
		}
		return d, nil
	}
	upper := strings.ToUpper(s)
	for i, code := range weekdayCodes {
		if upper == code {
			return Weekday(i + 1), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}
