// Package notify carries user-facing status messages out of the core.
package notify

import "fmt"

// Level classifies a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Sink receives user-facing status messages. Implementations must not
// block the caller for long; the core emits from render and upload
// paths.
type Sink interface {
	Notify(level Level, message string)
}

// LogSink prints notifications to stdout.
type LogSink struct {
	Component string
}

// Notify implements Sink.
func (s *LogSink) Notify(level Level, message string) {
	fmt.Printf("[%s] %s: %s\n", s.Component, level, message)
}

type discard struct{}

func (discard) Notify(Level, string) {}

// Discard returns a sink that drops everything.
func Discard() Sink { return discard{} }

type fanout []Sink

func (f fanout) Notify(level Level, message string) {
	for _, s := range f {
		s.Notify(level, message)
	}
}

// Fanout delivers every notification to all sinks in order.
func Fanout(sinks ...Sink) Sink { return fanout(sinks) }
