package netloop

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shusefs/shusefs/internal/logging"
	"github.com/shusefs/shusefs/internal/pending"
	"github.com/shusefs/shusefs/internal/session"
	"github.com/shusefs/shusefs/internal/state"
)

type fakeLogger struct{}

func (fakeLogger) Debug(string, ...string)        {}
func (fakeLogger) Info(string, ...string)         {}
func (fakeLogger) Warn(string, ...string)         {}
func (fakeLogger) Error(string, error, ...string) {}
func (fakeLogger) Fatal(string, error, ...string) {}
func (fakeLogger) Flush()                         {}

var _ logging.Provider = fakeLogger{}

func newTestLoop() *Loop {
	sess := session.New(pending.New(), state.New(), fakeLogger{})
	return New("ws://device.local/rpc", sess, fakeLogger{}, nil)
}

// nextBackoff and sleepBackoff need no live socket, so they're covered
// directly; connect/runSession/drainAndSend need a real *websocket.Conn
// and are exercised only at the integration level (see DESIGN.md).

func TestNextBackoffDoublesAndCaps(t *testing.T) {
	l := newTestLoop()
	assert.Equal(t, time.Second, l.nextBackoff())
	assert.Equal(t, 2*time.Second, l.nextBackoff())
	assert.Equal(t, 4*time.Second, l.nextBackoff())

	l.backoff = maxBackoff
	got := l.nextBackoff()
	assert.Equal(t, maxBackoff, got)
	assert.Equal(t, maxBackoff, l.backoff)
}

func TestSleepBackoffReturnsFalseOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleepBackoff(ctx, time.Second))
}

func TestSleepBackoffReturnsTrueAfterDuration(t *testing.T) {
	assert.True(t, sleepBackoff(context.Background(), time.Millisecond))
}

func TestHandleInboundFrameDispatchesWellFormedFrame(t *testing.T) {
	l := newTestLoop()
	id, err := l.Sess.RefreshSysConfig()
	assert.NoError(t, err)

	before := l.Sess.Pending.Len()
	raw := []byte(`{"id":` + strconv.Itoa(id) + `,"result":{"name":"kitchen"}}`)
	assert.NotPanics(t, func() { l.handleInboundFrame(raw) })
	assert.Equal(t, before, l.Sess.Pending.Len())

	j, ok := l.Sess.Cache.SysConfigJSON()
	assert.True(t, ok)
	assert.Contains(t, j, "kitchen")
}

func TestHandleInboundFrameSkipsMalformedFrame(t *testing.T) {
	l := newTestLoop()
	assert.NotPanics(t, func() { l.handleInboundFrame([]byte(`not json at all`)) })
}
