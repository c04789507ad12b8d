package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/khanglvm/course-hub/internal/course"
)

// CommandKind identifies what an input line asks for.
type CommandKind int

const (
	CmdSchedule CommandKind = iota + 1
	CmdAsk
	CmdRecommend
	CmdSearch
	CmdClear
	CmdHelp
)

// Command is a parsed input line.
type Command struct {
	Kind CommandKind
	Week int
	Day  course.Weekday
	Text string
}

// ErrScheduleSyntax is returned for input that is not a valid "week weekday" pair.
var ErrScheduleSyntax = errors.New("enter a week and a weekday, e.g. '1 1' for Monday of week 1")

const helpText = `Commands:
  <week> <day>   schedule lookup, e.g. "3 2" or "3 T"
  ?<question>    ask the language model, e.g. "?第三周星期二有什么课"
  @<course>      recommend similar courses, e.g. "@人工智能"
  /<text>        search courses, e.g. "/教学楼"
  clear          clear the output
  help           show this help
`

// ParseInput parses one line typed into the prompt.
func ParseInput(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, errors.New("empty input")
	}

	switch line[0] {
	case '?':
		return textCommand(CmdAsk, line[1:], "question")
	case '@':
		return textCommand(CmdRecommend, line[1:], "course name")
	case '/':
		return textCommand(CmdSearch, line[1:], "search text")
	}

	switch strings.ToLower(line) {
	case "clear":
		return Command{Kind: CmdClear}, nil
	case "help", "h":
		return Command{Kind: CmdHelp}, nil
	}

	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Command{}, ErrScheduleSyntax
	}
	week, err := strconv.Atoi(fields[0])
	if err != nil || week < 1 {
		return Command{}, ErrScheduleSyntax
	}
	day, err := course.ParseWeekday(fields[1])
	if err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrScheduleSyntax, err)
	}
	return Command{Kind: CmdSchedule, Week: week, Day: day}, nil
}

func textCommand(kind CommandKind, text, what string) (Command, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Command{}, fmt.Errorf("missing %s", what)
	}
	return Command{Kind: kind, Text: text}, nil
}
