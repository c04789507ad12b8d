package mcp

// toolDefinitions describes the tools for tools/list.
func toolDefinitions() []map[string]any {
	return []map[string]any{
		{
			"name": "course_list",
			"description": `List every course with its weekday, time, location and week list.

WHEN TO USE: To see which course names exist before calling course_recommend.`,
			"inputSchema": map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},
		{
			"name": "course_schedule",
			"description": `Get the courses held on a weekday of a given teaching week, ordered by start time.

WHEN TO USE: When the week number and weekday are known.

Example: course_schedule(week=3, day="2") → courses on Tuesday of week 3.`,
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"week": map[string]any{
						"type":        "integer",
						"description": "Teaching week, starting at 1",
						"minimum":     1,
					},
					"day": map[string]any{
						"type":        "string",
						"description": "Weekday: 1 (Monday) to 7 (Sunday), or one of M T W R F S U",
					},
				},
				"required": []string{"week", "day"},
			},
		},
		{
			"name": "course_ask",
			"description": `Answer a plain-language schedule question (any language) by reducing it to a week and weekday.

WHEN TO USE: When the user phrases the question freely, e.g. "第三周星期二有什么课".`,
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"question": map[string]any{
						"type":        "string",
						"description": "The schedule question",
					},
				},
				"required": []string{"question"},
			},
		},
		{
			"name": "course_recommend",
			"description": `Recommend courses whose names are most similar to a given course.

The given course itself is never returned.`,
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"course": map[string]any{
						"type":        "string",
						"description": "Course name, e.g. 人工智能",
					},
					"k": map[string]any{
						"type":        "integer",
						"description": "Number of recommendations (default from config)",
					},
				},
				"required": []string{"course"},
			},
		},
		{
			"name": "course_search",
			"description": `Search courses by name, location or teacher ID.

Example: course_search(query="教学楼") → courses in any teaching building.`,
			"inputSchema": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"query": map[string]any{
						"type":        "string",
						"description": "Search text",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum number of results (default 10)",
					},
				},
				"required": []string{"query"},
			},
		},
	}
}
