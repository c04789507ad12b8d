package course

import (
	"strings"
	"testing"
)

func TestInWeek(t *testing.T) {
	tests := []struct {
		name     string
		weekList string
		week     int
		want     bool
	}{
		{"full term", FullTerm, 12, true},
		{"full term outside range still matches", FullTerm, 20, true},
		{"listed week", "2,5,7,9", 5, true},
		{"listed with spaces", "2, 5 ,7", 5, true},
		{"unlisted week", "2,5,7,9", 3, false},
		{"prefix is not a match", "12,14", 1, false},
		{"other ranges are literal", "1-8", 3, false},
		{"single week", "4", 4, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Course{Name: "x", WeekList: tt.weekList}
			if got := c.InWeek(tt.week); got != tt.want {
				t.Errorf("InWeek(%d) with %q = %v, want %v", tt.week, tt.weekList, got, tt.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"08:00", 480, false},
		{"15:50", 950, false},
		{"0:05", 5, false},
		{"24:00", 0, true},
		{"08:60", 0, true},
		{"08:5", 0, true},
		{"0800", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	valid := Course{Name: "概率", StartTime: "09:50", EndTime: "12:15", WeekList: FullTerm, Weekday: Friday}

	tests := []struct {
		name    string
		mutate  func(c *Course)
		wantErr bool
	}{
		{"valid", func(c *Course) {}, false},
		{"missing name", func(c *Course) { c.Name = "" }, true},
		{"bad start", func(c *Course) { c.StartTime = "9h50" }, true},
		{"end before start", func(c *Course) { c.EndTime = "08:00" }, true},
		{"weekday zero", func(c *Course) { c.Weekday = 0 }, true},
		{"weekday eight", func(c *Course) { c.Weekday = 8 }, true},
		{"bad week list", func(c *Course) { c.WeekList = "1,x" }, true},
		{"week list", func(c *Course) { c.WeekList = "2,4,6" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultCoursesAreValid(t *testing.T) {
	courses := DefaultCourses()
	if len(courses) != 7 {
		t.Fatalf("expected 7 default courses, got %d", len(courses))
	}
	for _, c := range courses {
		if err := c.Validate(); err != nil {
			t.Errorf("default course invalid: %v", err)
		}
	}
}

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    Weekday
		wantErr bool
	}{
		{"1", Monday, false},
		{"7", Sunday, false},
		{"r", Thursday, false},
		{"U", Sunday, false},
		{"0", 0, true},
		{"8", 0, true},
		{"X", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseWeekday(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseWeekday(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseWeekday(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if Wednesday.Code() != "W" || Weekday(9).Code() != "?" {
		t.Error("unexpected weekday codes")
	}
}

func TestFormatSchedule(t *testing.T) {
	empty := FormatSchedule(3, Tuesday, nil)
	if empty != "No courses in week 3 on weekday 2.\n" {
		t.Errorf("unexpected empty schedule text: %q", empty)
	}

	out := FormatSchedule(1, Monday, DefaultCourses()[:2])
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
	if lines[0] != "Course: 人工智能, Time: 09:50 - 11:25, Location: 2号教学楼318, Teacher: W" {
		t.Errorf("unexpected line: %q", lines[0])
	}
}

func TestFormatRecommendations(t *testing.T) {
	out := FormatRecommendations("英语", nil)
	if !strings.Contains(out, "(none)") {
		t.Errorf("expected placeholder for empty list: %q", out)
	}

	out = FormatRecommendations("英语", DefaultCourses()[3:4])
	if !strings.Contains(out, "- 概率 (Time: 09:50-12:15, Location: 2号教学楼216)") {
		t.Errorf("unexpected recommendation line: %q", out)
	}
}
