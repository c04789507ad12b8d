package mcp

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/khanglvm/course-hub/internal/app"
	"github.com/khanglvm/course-hub/internal/course"
	"github.com/khanglvm/course-hub/internal/llm"
	"github.com/khanglvm/course-hub/internal/search"
)

type fakeService struct {
	courses  []course.Course
	ask      *app.AskResult
	askErr   error
	lastK    int
	lastText string
}

func (f *fakeService) Courses() []course.Course { return f.courses }
func (f *fakeService) TopK() int                { return 3 }

func (f *fakeService) Schedule(_ context.Context, week int, day course.Weekday) (*app.ScheduleResult, error) {
	var out []course.Course
	for _, c := range f.courses {
		if c.Weekday == day && c.InWeek(week) {
			out = append(out, c)
		}
	}
	return &app.ScheduleResult{Week: week, Day: day, Courses: out}, nil
}

func (f *fakeService) Ask(_ context.Context, question string) (*app.AskResult, error) {
	if question == "" {
		return nil, app.ErrEmptyQuery
	}
	return f.ask, f.askErr
}

func (f *fakeService) Recommend(_ context.Context, name string, k int) ([]course.Course, error) {
	f.lastK = k
	if name == "" {
		return nil, app.ErrEmptyQuery
	}
	return f.courses[1:2], nil
}

func (f *fakeService) Search(_ context.Context, text string, _ int) ([]search.SearchResult, error) {
	f.lastText = text
	if text == "nothing" {
		return nil, nil
	}
	return []search.SearchResult{{Course: f.courses[0], Score: 0.5}}, nil
}

func newTestServer(svc Service) (*Server, *bytes.Buffer) {
	out := new(bytes.Buffer)
	return NewServer(svc, "test", out), out
}

// call sends one request and decodes the single response line.
func call(t *testing.T, s *Server, out *bytes.Buffer, req string) Response {
	t.Helper()
	out.Reset()
	if err := s.Run(context.Background(), strings.NewReader(req+"\n")); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	var resp Response
	if err := json.Unmarshal(bytes.TrimSpace(out.Bytes()), &resp); err != nil {
		t.Fatalf("bad response %q: %v", out.String(), err)
	}
	return resp
}

func toolText(t *testing.T, resp Response) string {
	t.Helper()
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	result, ok := resp.Result.(map[string]any)
	if !ok {
		t.Fatalf("unexpected result type %T", resp.Result)
	}
	content := result["content"].([]any)
	return content[0].(map[string]any)["text"].(string)
}

func TestInitialize(t *testing.T) {
	s, out := newTestServer(&fakeService{courses: course.DefaultCourses()})

	resp := call(t, s, out, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	result := resp.Result.(map[string]any)
	if result["protocolVersion"] != protocolVersion {
		t.Errorf("protocolVersion = %v", result["protocolVersion"])
	}
	info := result["serverInfo"].(map[string]any)
	if info["name"] != "course-hub" || info["version"] != "test" {
		t.Errorf("serverInfo = %v", info)
	}
}

func TestToolsList(t *testing.T) {
	s, out := newTestServer(&fakeService{courses: course.DefaultCourses()})

	resp := call(t, s, out, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`)
	tools := resp.Result.(map[string]any)["tools"].([]any)

	want := map[string]bool{
		"course_list": false, "course_schedule": false, "course_ask": false,
		"course_recommend": false, "course_search": false,
	}
	for _, tool := range tools {
		want[tool.(map[string]any)["name"].(string)] = true
	}
	for name, found := range want {
		if !found {
			t.Errorf("tool %s not listed", name)
		}
	}
}

func TestNotificationsGetNoResponse(t *testing.T) {
	s, out := newTestServer(&fakeService{})

	in := `{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n\n"
	if err := s.Run(context.Background(), strings.NewReader(in)); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("expected no output, got %q", out.String())
	}
}

func TestProtocolErrors(t *testing.T) {
	s, out := newTestServer(&fakeService{})

	tests := []struct {
		name string
		req  string
		code int
	}{
		{"parse error", `{not json`, codeParseError},
		{"unknown method", `{"jsonrpc":"2.0","id":1,"method":"resources/list"}`, codeMethodNotFound},
		{"unknown tool", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"nope"}}`, codeInvalidParams},
		{"bad arguments", `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"course_schedule","arguments":{"week":"x"}}}`, codeInvalidParams},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, s, out, tt.req)
			if resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("error = %+v, want code %d", resp.Error, tt.code)
			}
		})
	}
}

func TestToolCalls(t *testing.T) {
	svc := &fakeService{
		courses: course.DefaultCourses(),
		ask: &app.AskResult{
			Question: "第三周星期二有什么课",
			Reply:    "2 2",
			Schedule: &app.ScheduleResult{Week: 2, Day: course.Tuesday, Courses: course.DefaultCourses()[6:7]},
		},
	}
	s, out := newTestServer(svc)

	tests := []struct {
		name string
		tool string
		args string
		want []string
	}{
		{"list", "course_list", `{}`, []string{"Courses (7)", "人工智能"}},
		{"schedule", "course_schedule", `{"week":1,"day":"M"}`, []string{"Course: 数据结构", "Course: 人工智能"}},
		{"schedule empty", "course_schedule", `{"week":4,"day":"3"}`, []string{"No courses in week 4 on weekday 3."}},
		{"ask", "course_ask", `{"question":"第三周星期二有什么课"}`, []string{"week 2, weekday 2", "Course: 大物"}},
		{"recommend", "course_recommend", `{"course":"人工智能"}`, []string{"英语"}},
		{"search", "course_search", `{"query":"教学楼"}`, []string{"[0.500]", "人工智能"}},
		{"search no hits", "course_search", `{"query":"nothing"}`, []string{"No courses match 'nothing'."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"` + tt.tool + `","arguments":` + tt.args + `}}`
			text := toolText(t, call(t, s, out, req))
			for _, w := range tt.want {
				if !strings.Contains(text, w) {
					t.Errorf("output missing %q:\n%s", w, text)
				}
			}
		})
	}

	if svc.lastK != 3 {
		t.Errorf("recommend without k should use TopK, got %d", svc.lastK)
	}
}

func TestToolErrors(t *testing.T) {
	svc := &fakeService{
		courses: course.DefaultCourses(),
		ask:     &app.AskResult{Question: "q", Reply: "no idea"},
		askErr:  llm.ErrUnparseableReply,
	}
	s, out := newTestServer(svc)

	tests := []struct {
		name string
		tool string
		args string
		want string
	}{
		{"week zero", "course_schedule", `{"week":0,"day":"1"}`, "week must be a positive integer"},
		{"bad day", "course_schedule", `{"week":1,"day":"9"}`, "weekday"},
		{"unparseable reply", "course_ask", `{"question":"q"}`, "could not parse model reply: no idea"},
		{"empty recommend", "course_recommend", `{"course":""}`, app.ErrEmptyQuery.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := `{"jsonrpc":"2.0","id":9,"method":"tools/call","params":{"name":"` + tt.tool + `","arguments":` + tt.args + `}}`
			resp := call(t, s, out, req)
			if resp.Error == nil {
				t.Fatalf("expected error, got %+v", resp.Result)
			}
			if resp.Error.Code != codeToolError || !strings.Contains(resp.Error.Message, tt.want) {
				t.Errorf("error = %+v, want message containing %q", resp.Error, tt.want)
			}
		})
	}
}
