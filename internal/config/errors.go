package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strings"
)

// ConfigNotFoundError is returned when an explicitly requested config file
// does not exist. It matches fs.ErrNotExist.
type ConfigNotFoundError struct {
	Path string
	Hint string
}

func (e *ConfigNotFoundError) Error() string {
	return joinLines(fmt.Sprintf("config file not found: %s\n", e.Path), "", hint(e.Hint))
}

func (e *ConfigNotFoundError) Is(target error) bool {
	return target == fs.ErrNotExist
}

// PermissionError is returned when the config file or its directory cannot
// be read or written.
type PermissionError struct {
	Path    string
	Op      string // read or write
	Fix     string
	Details string
	Err     error
}

func (e *PermissionError) Error() string {
	return joinLines(
		fmt.Sprintf("permission denied (cannot %s config): %s", e.Op, e.Path),
		e.Details,
		"💡 Fix: "+e.Fix,
	)
}

func (e *PermissionError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return fs.ErrPermission
}

// InvalidConfigError is returned for unparseable YAML or values that fail
// validation.
type InvalidConfigError struct {
	Path    string
	Message string
	Hint    string
	Err     error
}

func (e *InvalidConfigError) Error() string {
	return joinLines(fmt.Sprintf("invalid config: %s", e.Path), e.Message, hint(e.Hint))
}

func (e *InvalidConfigError) Unwrap() error {
	return e.Err
}

func newPermissionError(path, op string, cause error) *PermissionError {
	e := &PermissionError{Path: path, Op: op, Err: cause}
	if op == "read" {
		e.Fix = readPermissionFix(path)
		e.Details = permissionDetails(path)
	} else {
		e.Fix = writePermissionFix(path)
	}
	return e
}

func readPermissionFix(path string) string {
	if runtime.GOOS == "windows" {
		return fmt.Sprintf("Right-click %s → Properties → Security → Edit permissions", path)
	}
	return fmt.Sprintf("Run: chmod 600 %s", path)
}

func writePermissionFix(path string) string {
	if runtime.GOOS == "windows" {
		return fmt.Sprintf("Right-click %s → Properties → Security → Grant 'Write' permission", path)
	}
	return fmt.Sprintf("Run: chmod u+w %s", path)
}

func permissionDetails(path string) string {
	if runtime.GOOS == "windows" {
		return ""
	}
	info, err := os.Stat(path)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("Current permissions: %04o", info.Mode().Perm())
}

// isPermission reports whether err is a permission failure.
func isPermission(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}

func hint(h string) string {
	if h == "" {
		return ""
	}
	return "💡 " + h
}

// joinLines joins the non-empty lines of a multi-line error message.
func joinLines(lines ...string) string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
