package session

import (
	"github.com/shusefs/shusefs/internal/logging"
	"github.com/shusefs/shusefs/internal/pending"
	"github.com/shusefs/shusefs/internal/state"
)

// fakeLogger discards everything; tests only care about cache/table side
// effects, mirroring the teacher's own mocks.IFakeLogger stand-in for a
// real console logger in unit tests.
type fakeLogger struct{}

func (fakeLogger) Debug(string, ...string)          {}
func (fakeLogger) Info(string, ...string)           {}
func (fakeLogger) Warn(string, ...string)            {}
func (fakeLogger) Error(string, error, ...string)    {}
func (fakeLogger) Fatal(string, error, ...string)    {}
func (fakeLogger) Flush()                            {}

var _ logging.Provider = fakeLogger{}

func newTestSession() *Session {
	return New(pending.New(), state.New(), fakeLogger{})
}
