// Package session implements the method dispatcher (C3) and RPC
// intention layer (C5): the verb-level operations the filesystem
// adaptor calls, and the response/notification handling that keeps the
// device-state cache consistent with what the device reports.
package session

// ErrInvalidParams is returned when a verb's user-supplied JSON payload
// fails to parse as JSON at all; the cache is left untouched.
type ErrInvalidParams struct {
	Cause error
}

func (e *ErrInvalidParams) Error() string {
	return "invalid params JSON: " + e.Cause.Error()
}

// ErrUnsolicitedResponse describes a response whose id matches no entry
// the pending table knows about. The dispatcher does not construct it;
// it logs such a response as a plain warning.
type ErrUnsolicitedResponse struct {
	ID int
}

func (e *ErrUnsolicitedResponse) Error() string {
	return "unsolicited response for unknown request id"
}

// ErrUnknownMethod describes a response whose originating request names
// a method outside the closed dispatch set. The dispatcher does not
// construct it; it logs such a response as a plain warning.
type ErrUnknownMethod struct {
	Method string
}

func (e *ErrUnknownMethod) Error() string {
	return "unknown method: " + e.Method
}

// ErrRetrievalBusy is returned when a second Script.GetCode sequence is
// requested while one is already in flight; only one retrieval may
// occupy the cache's cursor at a time.
type ErrRetrievalBusy struct{}

func (*ErrRetrievalBusy) Error() string {
	return "a script code retrieval is already in progress"
}
