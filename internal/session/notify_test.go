package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shusefs/shusefs/internal/wire"
)

func notify(t *testing.T, s *Session, method, params string) {
	t.Helper()
	frame, err := wire.Classify([]byte(`{"method":"` + method + `","params":` + params + `}`))
	assert.NoError(t, err)
	assert.Equal(t, wire.KindNotification, frame.Kind)
	s.Dispatch(frame)
}

func TestNotifyStatusUpdatesMultipleInstances(t *testing.T) {
	s := newTestSession()
	notify(t, s, "NotifyStatus", `{"switch:0":{"output":true,"apower":5.0},"input:1":{"state":true}}`)

	sw, _ := s.Cache.GetSwitch(0)
	assert.True(t, sw.Status.Output)
	assert.Equal(t, 5.0, sw.Status.APower)

	in, _ := s.Cache.GetInput(1)
	assert.True(t, in.Status.State)
}

func TestNotifyStatusIgnoresUnknownClass(t *testing.T) {
	s := newTestSession()
	assert.NotPanics(t, func() {
		notify(t, s, "NotifyStatus", `{"mqtt:0":{"connected":true}}`)
	})
}

func TestNotifyEventConfigChangedSys(t *testing.T) {
	s := newTestSession()
	before := s.Pending.Len()
	notify(t, s, "NotifyEvent", `{"events":[{"component":"sys","event":"config_changed"}]}`)
	assert.Equal(t, before+1, s.Pending.Len(), "a config_changed event for sys must enqueue exactly one refresh")
}

// Tests the config_changed open-question resolution: a config_changed
// event for the switch class refreshes every currently valid switch
// instance rather than trying to extract a single id from the payload.
func TestNotifyEventConfigChangedSwitchRefreshesAllValid(t *testing.T) {
	s := newTestSession()
	assert.NoError(t, s.Cache.UpdateSwitchConfig(0, []byte(`{"name":"a"}`)))
	assert.NoError(t, s.Cache.UpdateSwitchConfig(2, []byte(`{"name":"b"}`)))

	before := s.Pending.Len()
	notify(t, s, "NotifyEvent", `{"events":[{"component":"switch","event":"config_changed"}]}`)
	assert.Equal(t, before+2, s.Pending.Len(), "every valid switch must get its own refresh request")
}

func TestNotifyEventIgnoresOtherEvents(t *testing.T) {
	s := newTestSession()
	before := s.Pending.Len()
	notify(t, s, "NotifyEvent", `{"events":[{"component":"switch","event":"something_else"}]}`)
	assert.Equal(t, before, s.Pending.Len())
}
