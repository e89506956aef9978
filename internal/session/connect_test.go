package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shusefs/shusefs/internal/state"
)

// Tests spec.md §8 scenario 1: ConnectBurst enqueues exactly 20
// requests (4 global + 4 discovery-window ids * 4 verbs), in the exact
// order Sys, MQTT, Script.List, Schedule.List, then switch
// config/status and input config/status across ids 0..3.
func TestConnectBurstOrderAndCount(t *testing.T) {
	s := newTestSession()
	assert.NoError(t, s.ConnectBurst())

	assert.Equal(t, 4+state.DiscoveryWindow*4, s.Pending.Len())

	wantMethods := []string{"Sys.GetConfig", "MQTT.GetConfig", "Script.List", "Schedule.List"}
	for i := 0; i < state.DiscoveryWindow; i++ {
		wantMethods = append(wantMethods, "Switch.GetConfig")
	}
	for i := 0; i < state.DiscoveryWindow; i++ {
		wantMethods = append(wantMethods, "Switch.GetStatus")
	}
	for i := 0; i < state.DiscoveryWindow; i++ {
		wantMethods = append(wantMethods, "Input.GetConfig")
	}
	for i := 0; i < state.DiscoveryWindow; i++ {
		wantMethods = append(wantMethods, "Input.GetStatus")
	}

	for reqID := 1; reqID <= len(wantMethods); reqID++ {
		raw, ok := s.Pending.RequestOf(reqID)
		assert.True(t, ok)
		var env struct {
			Method string `json:"method"`
		}
		assert.NoError(t, json.Unmarshal([]byte(raw), &env))
		assert.Equal(t, wantMethods[reqID-1], env.Method, "request id %d", reqID)
	}
}
