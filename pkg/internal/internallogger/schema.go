package internallogger

// Structured log field names, kept local now that log shipping is a plain
// zap sink rather than a relay-backed fan-out.
const (
	fieldSchema    = "log_schema"
	fieldTimestamp = "ts"
	fieldLevel     = "level"
	fieldMessage   = "msg"
	fieldLogger    = "logger"
	fieldCaller    = "caller"
	fieldStack     = "stack"
)
