package logging

import "github.com/rs/zerolog"

// LeveledLogger adapts the global zerolog logger to the key/value logging
// interface used by go-retryablehttp.
type LeveledLogger struct {
	component string
}

// NewLeveledLogger returns a LeveledLogger tagging every entry with component.
func NewLeveledLogger(component string) LeveledLogger {
	return LeveledLogger{component: component}
}

func (l LeveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.emit(Error(), msg, keysAndValues)
}

func (l LeveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.emit(Info(), msg, keysAndValues)
}

// Debug is used by retryablehttp for every request, so it stays at debug.
func (l LeveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.emit(Debug(), msg, keysAndValues)
}

func (l LeveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.emit(Warn(), msg, keysAndValues)
}

func (l LeveledLogger) emit(ev *zerolog.Event, msg string, kv []interface{}) {
	if l.component != "" {
		ev = ev.Str("component", l.component)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	if len(kv)%2 == 1 {
		ev = ev.Interface("extra", kv[len(kv)-1])
	}
	ev.Msg(msg)
}
