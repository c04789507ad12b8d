package llm

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/khanglvm/course-hub/internal/course"
)

const (
	DefaultSystemPrompt = "You are a helpful assistant."

	// DefaultPromptTemplate asks the model to reply with only "week weekday",
	// e.g. "1 1". %s is replaced by the question.
	DefaultPromptTemplate = "请提取并仅返回关键信息，按照 '周数 星期' 的格式返回（例如 '1 1'）。问题: %s"
)

// ErrUnparseableReply is returned when a reply is not "week weekday".
var ErrUnparseableReply = errors.New("llm: could not parse model reply")

// Chatter sends chat completions. *Client satisfies it.
type Chatter interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// Translator turns a natural-language schedule question into a week number
// and weekday.
type Translator struct {
	chat           Chatter
	systemPrompt   string
	promptTemplate string
}

// NewTranslator creates a Translator. Empty prompts fall back to the defaults.
func NewTranslator(chat Chatter, systemPrompt, promptTemplate string) *Translator {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if promptTemplate == "" || !strings.Contains(promptTemplate, "%s") {
		promptTemplate = DefaultPromptTemplate
	}
	return &Translator{
		chat:           chat,
		systemPrompt:   systemPrompt,
		promptTemplate: promptTemplate,
	}
}

// Translate asks the model to reduce question to "week weekday" and returns
// the trimmed reply.
func (t *Translator) Translate(ctx context.Context, question string) (string, error) {
	resp, err := t.chat.Chat(ctx, ChatRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: t.systemPrompt},
			{Role: "user", Content: fmt.Sprintf(t.promptTemplate, question)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Ask translates question and parses the reply. The raw reply is returned
// even when parsing fails so callers can show it.
func (t *Translator) Ask(ctx context.Context, question string) (week int, day course.Weekday, reply string, err error) {
	reply, err = t.Translate(ctx, question)
	if err != nil {
		return 0, 0, "", err
	}
	week, day, err = ParseWeekDay(reply)
	return week, day, reply, err
}

// ParseWeekDay parses a reply of exactly two whitespace-separated integers:
// a week number (>= 1) and a weekday (1-7).
func ParseWeekDay(reply string) (int, course.Weekday, error) {
	fields := strings.Fields(reply)
	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: %q: expected \"week weekday\"", ErrUnparseableReply, reply)
	}

	week, err := strconv.Atoi(fields[0])
	if err != nil || week < 1 {
		return 0, 0, fmt.Errorf("%w: %q: bad week %q", ErrUnparseableReply, reply, fields[0])
	}

	n, err := strconv.Atoi(fields[1])
	day := course.Weekday(n)
	if err != nil || !day.Valid() {
		return 0, 0, fmt.Errorf("%w: %q: bad weekday %q", ErrUnparseableReply, reply, fields[1])
	}

	return week, day, nil
}
