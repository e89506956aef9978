package state

// ErrInvalidJSON wraps a JSON decode failure on data the device sent us;
// the caller logs it and leaves the prior cache untouched.
type ErrInvalidJSON struct {
	Cause error
}

func (e *ErrInvalidJSON) Error() string {
	return "invalid JSON from device: " + e.Cause.Error()
}

// ErrUnknownInstance is returned when a switch/input/script/schedule id
// falls outside its bounded slot range.
type ErrUnknownInstance struct{}

func (*ErrUnknownInstance) Error() string {
	return "unknown instance id"
}
