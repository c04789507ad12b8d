/*
Package main is the entry point for the course-hub CLI.

course-hub looks up university class schedules stored in a local SQLite
database, answers plain-language schedule questions through a language
model, and recommends courses with similar names.

Usage:

	course-hub [command]

Available Commands:

	init        Load the built-in timetable into the database
	courses     List courses, or add them with "courses add"
	query       Show the courses held on a weekday of a given week
	ask         Ask about the schedule in plain language
	recommend   Recommend courses with names similar to the given course
	search      Search courses by name, location or teacher
	history     Show recent queries
	serve       Run the JSON HTTP API
	shell       Start the interactive terminal UI
	mcp         Serve course tools to an MCP client over stdio
	verify      Verify configuration and database
	config      Show or create the configuration file
	version     Show version information

Examples:

	# Courses on Monday of week 1
	course-hub query 1 1

	# Ask in plain language
	course-hub ask 第三周星期二有什么课

	# Courses similar to 人工智能
	course-hub recommend 人工智能 --top-k 2
*/
package main

import (
	"fmt"
	"os"

	"github.com/khanglvm/course-hub/internal/cli"
	"github.com/khanglvm/course-hub/internal/version"
)

// Version information (set via ldflags during build)
var (
	buildVersion = "dev"
	commit       = "none"
	date         = "unknown"
)

func main() {
	version.Version, version.Commit, version.Date = buildVersion, commit, date

	rootCmd := cli.NewRootCmd(version.GetVersion())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
