package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRefreshSysConfigEnqueuesNoParams(t *testing.T) {
	s := newTestSession()
	id, err := s.RefreshSysConfig()
	assert.NoError(t, err)

	raw, ok := s.Pending.RequestOf(id)
	assert.True(t, ok)
	assert.Contains(t, raw, `"method":"Sys.GetConfig"`)
}

func TestSetSysConfigWrapsUserJSON(t *testing.T) {
	s := newTestSession()
	id, err := s.SetSysConfig([]byte(`{"name":"bedroom"}`))
	assert.NoError(t, err)

	raw, ok := s.Pending.RequestOf(id)
	assert.True(t, ok)
	assert.Contains(t, raw, `"method":"Sys.SetConfig"`)
	assert.Contains(t, raw, `"config":{"name":"bedroom"}`)
}

func TestSetSysConfigRejectsMalformedJSON(t *testing.T) {
	s := newTestSession()
	_, err := s.SetSysConfig([]byte(`{not json`))
	assert.IsType(t, &ErrInvalidParams{}, err)
}

func TestRefreshMQTTConfigEnqueuesNoParams(t *testing.T) {
	s := newTestSession()
	id, err := s.RefreshMQTTConfig()
	assert.NoError(t, err)

	raw, ok := s.Pending.RequestOf(id)
	assert.True(t, ok)
	assert.Contains(t, raw, `"method":"MQTT.GetConfig"`)
}

func TestSetMQTTConfigWrapsUserJSON(t *testing.T) {
	s := newTestSession()
	id, err := s.SetMQTTConfig([]byte(`{"enable":true,"server":"broker:1883"}`))
	assert.NoError(t, err)

	raw, ok := s.Pending.RequestOf(id)
	assert.True(t, ok)
	assert.Contains(t, raw, `"method":"MQTT.SetConfig"`)
	assert.Contains(t, raw, `"server":"broker:1883"`)
}

func TestSetMQTTConfigRejectsMalformedJSON(t *testing.T) {
	s := newTestSession()
	_, err := s.SetMQTTConfig([]byte(`not json at all`))
	assert.IsType(t, &ErrInvalidParams{}, err)
}
