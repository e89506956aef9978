package session

import (
	"github.com/pkg/errors"

	"github.com/shusefs/shusefs/internal/state"
)

// ConnectBurst enqueues the full discovery burst per §8 scenario 1:
// Sys.GetConfig, MQTT.GetConfig, Script.List, Schedule.List, then
// Switch.GetConfig/GetStatus and Input.GetConfig/GetStatus for every
// id in the discovery window (0..3) — 20 requests total, in this exact
// order, so their ids land sequentially starting at whatever the
// pending table's next id happens to be. It's called both on the
// first connect and on every reconnect, since the cache is never
// invalidated between connections.
func (s *Session) ConnectBurst() error {
	steps := []func() (int, error){
		s.RefreshSysConfig,
		s.RefreshMQTTConfig,
		s.RefreshScriptList,
		s.RefreshScheduleList,
	}
	for _, step := range steps {
		if _, err := step(); err != nil {
			return errors.Wrap(err, "connect burst")
		}
	}

	for id := 0; id < state.DiscoveryWindow; id++ {
		if _, err := s.RefreshSwitchConfig(id); err != nil {
			return errors.Wrap(err, "connect burst: switch config")
		}
	}
	for id := 0; id < state.DiscoveryWindow; id++ {
		if _, err := s.RefreshSwitchStatus(id); err != nil {
			return errors.Wrap(err, "connect burst: switch status")
		}
	}
	for id := 0; id < state.DiscoveryWindow; id++ {
		if _, err := s.RefreshInputConfig(id); err != nil {
			return errors.Wrap(err, "connect burst: input config")
		}
	}
	for id := 0; id < state.DiscoveryWindow; id++ {
		if _, err := s.RefreshInputStatus(id); err != nil {
			return errors.Wrap(err, "connect burst: input status")
		}
	}
	return nil
}
