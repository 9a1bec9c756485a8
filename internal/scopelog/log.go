// Package scopelog accumulates diagnostic entries produced during a
// scoping run and renders them through a structured logger at flush
// time, rather than writing directly to stderr as each analysis step
// runs. This mirrors the accumulate-then-render shape of the teacher's
// own diagnostics log.
package scopelog

import (
	"github.com/sirupsen/logrus"
)

// Severity classifies a log entry.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}

// Entry is a single accumulated diagnostic.
type Entry struct {
	Severity Severity
	Message  string
	Fields   map[string]interface{}
}

// Log accumulates entries across a scoping run. The zero value is ready
// to use.
type Log struct {
	entries []Entry
}

// Add appends an entry at the given severity.
func (l *Log) Add(sev Severity, message string, fields map[string]interface{}) {
	l.entries = append(l.entries, Entry{Severity: sev, Message: message, Fields: fields})
}

// Infof records an informational entry.
func (l *Log) Infof(message string, fields map[string]interface{}) {
	l.Add(Info, message, fields)
}

// Warnf records a warning entry.
func (l *Log) Warnf(message string, fields map[string]interface{}) {
	l.Add(Warning, message, fields)
}

// Entries returns the accumulated entries in the order they were added.
func (l *Log) Entries() []Entry {
	return l.entries
}

// Flush renders every accumulated entry through logger, in order, and
// clears the log.
func (l *Log) Flush(logger *logrus.Logger) {
	for _, e := range l.entries {
		entry := logger.WithFields(logrus.Fields(e.Fields))
		switch e.Severity {
		case Warning:
			entry.Warn(e.Message)
		case Error:
			entry.Error(e.Message)
		default:
			entry.Info(e.Message)
		}
	}
	l.entries = nil
}
