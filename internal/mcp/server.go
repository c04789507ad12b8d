/*
Package mcp exposes the course-hub operations as Model Context Protocol tools.

The server speaks JSON-RPC 2.0 over stdio, one message per line, and offers
five tools:
  - course_list: List every course
  - course_schedule: Courses held on a weekday of a given week
  - course_ask: Plain-language schedule question
  - course_recommend: Courses with similar names
  - course_search: Keyword and similarity search
*/
package mcp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/khanglvm/course-hub/internal/app"
	"github.com/khanglvm/course-hub/internal/course"
	"github.com/khanglvm/course-hub/internal/llm"
	"github.com/khanglvm/course-hub/internal/logging"
	"github.com/khanglvm/course-hub/internal/search"
)

const (
	protocolVersion = "2024-11-05"
	maxLineBytes    = 1 << 20
)

// JSON-RPC error codes.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeToolError      = -32000
)

// Service is the subset of *app.Service the tools call.
type Service interface {
	Courses() []course.Course
	TopK() int
	Schedule(ctx context.Context, week int, day course.Weekday) (*app.ScheduleResult, error)
	Ask(ctx context.Context, question string) (*app.AskResult, error)
	Recommend(ctx context.Context, name string, k int) ([]course.Course, error)
	Search(ctx context.Context, text string, limit int) ([]search.SearchResult, error)
}

// Server represents the course-hub MCP server.
type Server struct {
	svc     Service
	version string
	out     io.Writer
}

// NewServer creates a server writing responses to out.
func NewServer(svc Service, version string, out io.Writer) *Server {
	return &Server{svc: svc, version: version, out: out}
}

// Run reads requests from in until it is closed or ctx is cancelled.
func (s *Server) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}

		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		response, err := s.handleRequest(ctx, line)
		if err != nil {
			s.sendError(err)
			continue
		}
		if response != nil {
			s.sendResponse(response)
		}
	}

	return scanner.Err()
}

// Request represents an incoming JSON-RPC request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents an outgoing JSON-RPC response.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      any    `json:"id"`
	Result  any    `json:"result,omitempty"`
	Error   *Error `json:"error,omitempty"`
}

// Error represents a JSON-RPC error.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// handleRequest processes one request. Notifications get no response.
func (s *Server) handleRequest(ctx context.Context, data []byte) (*Response, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("invalid JSON-RPC request: %w", err)
	}

	if req.ID == nil && strings.HasPrefix(req.Method, "notifications/") {
		return nil, nil
	}

	switch req.Method {
	case "initialize":
		return s.result(req.ID, map[string]any{
			"protocolVersion": protocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]any{
				"name":    "course-hub",
				"version": s.version,
			},
		}), nil
	case "ping":
		return s.result(req.ID, map[string]any{}), nil
	case "tools/list":
		return s.result(req.ID, map[string]any{"tools": toolDefinitions()}), nil
	case "tools/call":
		return s.handleToolsCall(ctx, &req), nil
	default:
		return s.failure(req.ID, codeMethodNotFound, "Method not found"), nil
	}
}

func (s *Server) result(id, result any) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Result: result}
}

func (s *Server) failure(id any, code int, msg string) *Response {
	return &Response{JSONRPC: "2.0", ID: id, Error: &Error{Code: code, Message: msg}}
}

// toolArgs holds the union of every tool's arguments.
type toolArgs struct {
	Week     int    `json:"week"`
	Day      string `json:"day"`
	Question string `json:"question"`
	Course   string `json:"course"`
	K        int    `json:"k"`
	Query    string `json:"query"`
	Limit    int    `json:"limit"`
}

// handleToolsCall executes a tool and wraps its text output.
func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.failure(req.ID, codeInvalidParams, fmt.Sprintf("invalid params: %v", err))
	}

	var args toolArgs
	if len(params.Arguments) > 0 {
		if err := json.Unmarshal(params.Arguments, &args); err != nil {
			return s.failure(req.ID, codeInvalidParams, fmt.Sprintf("invalid arguments: %v", err))
		}
	}

	var text string
	var err error

	switch params.Name {
	case "course_list":
		text = s.execList()
	case "course_schedule":
		text, err = s.execSchedule(ctx, args)
	case "course_ask":
		text, err = s.execAsk(ctx, args)
	case "course_recommend":
		text, err = s.execRecommend(ctx, args)
	case "course_search":
		text, err = s.execSearch(ctx, args)
	default:
		return s.failure(req.ID, codeInvalidParams, fmt.Sprintf("Unknown tool: %s", params.Name))
	}

	if err != nil {
		logging.Debug().Err(err).Str("tool", params.Name).Msg("tool call failed")
		return s.failure(req.ID, codeToolError, err.Error())
	}

	return s.result(req.ID, map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
	})
}

func (s *Server) execList() string {
	courses := s.svc.Courses()
	if len(courses) == 0 {
		return "No courses in the database. Run 'course-hub init' to load the built-in timetable."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Courses (%d):\n", len(courses))
	for _, c := range courses {
		fmt.Fprintf(&b, "  • %s: weekday %d, %s-%s, %s, weeks %s\n",
			c.Name, c.Weekday, c.StartTime, c.EndTime, c.Location, c.WeekList)
	}
	return b.String()
}

func (s *Server) execSchedule(ctx context.Context, args toolArgs) (string, error) {
	if args.Week < 1 {
		return "", errors.New("week must be a positive integer")
	}
	day, err := course.ParseWeekday(args.Day)
	if err != nil {
		return "", err
	}

	res, err := s.svc.Schedule(ctx, args.Week, day)
	if err != nil {
		return "", err
	}
	return res.Text(), nil
}

func (s *Server) execAsk(ctx context.Context, args toolArgs) (string, error) {
	res, err := s.svc.Ask(ctx, args.Question)
	if errors.Is(err, llm.ErrUnparseableReply) {
		return "", fmt.Errorf("could not parse model reply: %s", res.Reply)
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Interpreted as week %d, weekday %d.\n%s", res.Schedule.Week, res.Schedule.Day, res.Schedule.Text()), nil
}

func (s *Server) execRecommend(ctx context.Context, args toolArgs) (string, error) {
	k := args.K
	if k == 0 {
		k = s.svc.TopK()
	}

	recs, err := s.svc.Recommend(ctx, args.Course, k)
	if err != nil {
		return "", err
	}
	return course.FormatRecommendations(args.Course, recs), nil
}

func (s *Server) execSearch(ctx context.Context, args toolArgs) (string, error) {
	results, err := s.svc.Search(ctx, args.Query, args.Limit)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return fmt.Sprintf("No courses match '%s'.", args.Query), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Results for '%s':\n", args.Query)
	for _, r := range results {
		fmt.Fprintf(&b, "  • [%.3f] %s\n", r.Score, r.Course.String())
	}
	return b.String(), nil
}

// sendResponse writes a JSON-RPC response line.
func (s *Server) sendResponse(resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal MCP response")
		return
	}
	fmt.Fprintln(s.out, string(data))
}

// sendError writes a parse error response.
func (s *Server) sendError(err error) {
	s.sendResponse(s.failure(nil, codeParseError, err.Error()))
}
