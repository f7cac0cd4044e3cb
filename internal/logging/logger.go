// Package logging wraps the structured logger used by every sms-ledger component.
// Components depend on the Logger interface and receive it through their constructors.
package logging

// Logger is the structured logging contract shared by the ingest engine, the store and the
// command layer.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// WithError returns a child logger carrying err under the "error" key.
	WithError(err error) Logger

	// WithField returns a child logger carrying a single key/value pair.
	WithField(key string, value interface{}) Logger

	// WithFields returns a child logger carrying all given fields.
	WithFields(fields ...Field) Logger

	// Fatal logs at fatal level and exits the process.
	Fatal(msg string, fields ...Field)
}

// Field is a key/value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// F builds a Field. It keeps call sites short:
//
//	logger.Info("preview ready", logging.F(logging.FieldCount, n))
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

var defaultLogger Logger = NewLogrusAdapter("info", "text")

// GetLogger returns the process-wide fallback logger used when a component is built without one.
func GetLogger() Logger {
	return defaultLogger
}

// SetDefault replaces the fallback logger. Nil is ignored.
func SetDefault(logger Logger) {
	if logger != nil {
		defaultLogger = logger
	}
}

// OrDefault returns logger, or the fallback logger when logger is nil.
func OrDefault(logger Logger) Logger {
	if logger == nil {
		return defaultLogger
	}
	return logger
}
