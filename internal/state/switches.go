package state

import (
	"encoding/json"
	"time"
)

// switchConfigWire mirrors Switch.GetConfig's result for one switch.
type switchConfigWire struct {
	Name          string  `json:"name"`
	InMode        string  `json:"in_mode"`
	InputLocked   bool    `json:"input_mode_locked"`
	InitialState  string  `json:"initial_state"`
	AutoOn        bool    `json:"auto_on"`
	AutoOnDelay   float64 `json:"auto_on_delay"`
	AutoOff       bool    `json:"auto_off"`
	AutoOffDelay  float64 `json:"auto_off_delay"`
	PowerLimit    int     `json:"power_limit"`
	VoltageLimit  int     `json:"voltage_limit"`
	AutorecoverV  bool    `json:"autorecover_voltage_errors"`
	CurrentLimit  float64 `json:"current_limit"`
}

func switchInModeFromWire(v string) SwitchInMode {
	switch v {
	case "follow":
		return SwitchInFollow
	case "flip":
		return SwitchInFlip
	case "detached":
		return SwitchInDetached
	case "momentary":
		return SwitchInMomentary
	default:
		return SwitchInUnknown
	}
}

func switchInitialStateFromWire(v string) SwitchInitialState {
	switch v {
	case "on":
		return SwitchInitialOn
	case "off":
		return SwitchInitialOff
	case "restore_last":
		return SwitchInitialRestoreLast
	case "match_input":
		return SwitchInitialMatchInput
	default:
		return SwitchInitialUnknown
	}
}

// GetSwitch returns a snapshot copy of one switch slot.
func (c *Cache) GetSwitch(id int) (Switch, error) {
	if id < 0 || id >= MaxSwitches {
		return Switch{}, &ErrUnknownInstance{}
	}
	var out Switch
	c.withLock(func() {
		out = c.switches[id]
	})
	return out, nil
}

// UpdateSwitchConfig applies a Switch.GetConfig result for the given
// slot, replacing its configuration half wholesale.
func (c *Cache) UpdateSwitchConfig(id int, resultJSON []byte) error {
	if id < 0 || id >= MaxSwitches {
		return &ErrUnknownInstance{}
	}
	var wire switchConfigWire
	if err := json.Unmarshal(resultJSON, &wire); err != nil {
		return &ErrInvalidJSON{Cause: err}
	}

	c.withLock(func() {
		sw := &c.switches[id]
		sw.Config.Name = wire.Name
		sw.Config.InMode = switchInModeFromWire(wire.InMode)
		sw.Config.InputLocked = wire.InputLocked
		sw.Config.InitialState = switchInitialStateFromWire(wire.InitialState)
		sw.Config.AutoOn = wire.AutoOn
		sw.Config.AutoOnDelay = wire.AutoOnDelay
		sw.Config.AutoOff = wire.AutoOff
		sw.Config.AutoOffDelay = wire.AutoOffDelay
		sw.Config.PowerLimit = wire.PowerLimit
		sw.Config.VoltageLimit = wire.VoltageLimit
		sw.Config.AutorecoverVolt = wire.AutorecoverV
		sw.Config.CurrentLimit = wire.CurrentLimit
		sw.RawJSON = string(resultJSON)
		sw.Valid = true
		sw.LastUpdated = time.Now()
	})
	return nil
}

// UpdateSwitchStatus applies a Switch.GetStatus result or a NotifyStatus
// fragment for one switch slot. Unlike UpdateSwitchConfig this is a
// selective update: only fields actually present in statusJSON are
// compared against the cached value, and only those whose value actually
// changed have their per-field modification time advanced. Absent fields,
// and present fields whose value is unchanged, are left untouched -- the
// mtime must never advance without an accompanying value change.
func (c *Cache) UpdateSwitchStatus(id int, statusJSON []byte, now time.Time) error {
	if id < 0 || id >= MaxSwitches {
		return &ErrUnknownInstance{}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(statusJSON, &raw); err != nil {
		return &ErrInvalidJSON{Cause: err}
	}

	c.withLock(func() {
		st := &c.switches[id].Status

		if v, ok := raw["source"]; ok {
			var s string
			if json.Unmarshal(v, &s) == nil && s != st.Source {
				st.Source = s
				st.MTimeSource = now
			}
		}
		if v, ok := raw["output"]; ok {
			var b bool
			if json.Unmarshal(v, &b) == nil && b != st.Output {
				st.Output = b
				st.MTimeOutput = now
			}
		}
		if v, ok := raw["apower"]; ok {
			var f float64
			if json.Unmarshal(v, &f) == nil && f != st.APower {
				st.APower = f
				st.MTimeAPower = now
			}
		}
		if v, ok := raw["voltage"]; ok {
			var f float64
			if json.Unmarshal(v, &f) == nil && f != st.Voltage {
				st.Voltage = f
				st.MTimeVoltage = now
			}
		}
		if v, ok := raw["current"]; ok {
			var f float64
			if json.Unmarshal(v, &f) == nil && f != st.Current {
				st.Current = f
				st.MTimeCurrent = now
			}
		}
		if v, ok := raw["freq"]; ok {
			var f float64
			if json.Unmarshal(v, &f) == nil && f != st.Freq {
				st.Freq = f
				st.MTimeFreq = now
			}
		}
		if v, ok := raw["aenergy"]; ok {
			var ae struct {
				Total float64 `json:"total"`
			}
			if json.Unmarshal(v, &ae) == nil && ae.Total != st.EnergyTotal {
				st.EnergyTotal = ae.Total
				st.MTimeEnergy = now
			}
		}
		if v, ok := raw["ret_aenergy"]; ok {
			var ae struct {
				Total float64 `json:"total"`
			}
			if json.Unmarshal(v, &ae) == nil && ae.Total != st.RetEnergyTotal {
				st.RetEnergyTotal = ae.Total
				st.MTimeRetEnergy = now
			}
		}
		if v, ok := raw["temperature"]; ok {
			var t struct {
				C float64 `json:"tC"`
				F float64 `json:"tF"`
			}
			if json.Unmarshal(v, &t) == nil {
				if t.C != st.TemperatureC || t.F != st.TemperatureF {
					st.TemperatureC = t.C
					st.TemperatureF = t.F
					st.MTimeTemperature = now
				}
			}
		}
		if v, ok := raw["errors"]; ok {
			var errs []string
			if json.Unmarshal(v, &errs) == nil {
				over := false
				for _, e := range errs {
					if e == "overtemp" {
						over = true
					}
				}
				st.Overtemperature = over
			}
		}

		c.switches[id].LastUpdated = now
		c.switches[id].Valid = true
	})
	return nil
}
