package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shusefs/shusefs/internal/state"
)

func TestRefreshSwitchConfigEnqueuesID(t *testing.T) {
	s := newTestSession()
	id, err := s.RefreshSwitchConfig(3)
	assert.NoError(t, err)

	raw, ok := s.Pending.RequestOf(id)
	assert.True(t, ok)
	assert.Contains(t, raw, `"method":"Switch.GetConfig"`)
	assert.Contains(t, raw, `"id":3`)
}

func TestRefreshSwitchConfigRejectsOutOfRangeID(t *testing.T) {
	s := newTestSession()
	_, err := s.RefreshSwitchConfig(state.MaxSwitches)
	assert.Error(t, err)
}

func TestSetSwitchConfigWrapsIDAndUserJSON(t *testing.T) {
	s := newTestSession()
	id, err := s.SetSwitchConfig(1, []byte(`{"name":"lamp"}`))
	assert.NoError(t, err)

	raw, ok := s.Pending.RequestOf(id)
	assert.True(t, ok)
	assert.Contains(t, raw, `"method":"Switch.SetConfig"`)
	assert.Contains(t, raw, `"id":1`)
	assert.Contains(t, raw, `"config":{"name":"lamp"}`)
}

func TestSetSwitchConfigRejectsMalformedJSON(t *testing.T) {
	s := newTestSession()
	_, err := s.SetSwitchConfig(0, []byte(`{broken`))
	assert.IsType(t, &ErrInvalidParams{}, err)
}

func TestSetSwitchOutputEnqueuesIDAndOn(t *testing.T) {
	s := newTestSession()
	id, err := s.SetSwitchOutput(2, true)
	assert.NoError(t, err)

	raw, ok := s.Pending.RequestOf(id)
	assert.True(t, ok)
	assert.Contains(t, raw, `"method":"Switch.Set"`)
	assert.Contains(t, raw, `"id":2`)
	assert.Contains(t, raw, `"on":true`)
}

func TestSetSwitchOutputRejectsOutOfRangeID(t *testing.T) {
	s := newTestSession()
	_, err := s.SetSwitchOutput(-1, true)
	assert.Error(t, err)
}

func TestRefreshSwitchStatusEnqueuesID(t *testing.T) {
	s := newTestSession()
	id, err := s.RefreshSwitchStatus(0)
	assert.NoError(t, err)

	raw, ok := s.Pending.RequestOf(id)
	assert.True(t, ok)
	assert.Contains(t, raw, `"method":"Switch.GetStatus"`)
}

func TestRefreshAllValidSwitchesSkipsInvalidSlots(t *testing.T) {
	s := newTestSession()
	assert.NoError(t, s.Cache.UpdateSwitchConfig(0, []byte(`{"name":"a"}`)))

	before := s.Pending.Len()
	s.refreshAllValidSwitches()
	assert.Equal(t, before+1, s.Pending.Len(), "only the one valid switch should get refreshed")
}
