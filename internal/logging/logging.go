// Package logging provides the shared logger contract used across the
// session, filesystem and network packages.
package logging

// Log field tokens, kept consistent across call sites so log lines stay
// greppable.
const (
	FieldMethod   = "method"
	FieldReqID    = "req_id"
	FieldSwitch   = "switch"
	FieldInput    = "input"
	FieldScript   = "script"
	FieldSchedule = "schedule"
	FieldError    = "error"
)

// Provider is the logger contract consumed by every package in this
// module. Implementations accept flat key/value field pairs after the
// message, mirroring the convention used throughout the session packages.
type Provider interface {
	Debug(msg string, fields ...string)
	Info(msg string, fields ...string)
	Warn(msg string, fields ...string)
	Error(msg string, err error, fields ...string)
	Fatal(msg string, err error, fields ...string)
	Flush()
}
