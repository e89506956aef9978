package state

import (
	"encoding/json"
	"time"
)

// inputConfigWire mirrors Input.GetConfig's result for one input.
type inputConfigWire struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Enable       bool   `json:"enable"`
	Invert       bool   `json:"invert"`
	FactoryReset bool   `json:"factory_reset"`
}

func inputTypeFromWire(v string) InputType {
	switch v {
	case "switch":
		return InputTypeSwitch
	case "button":
		return InputTypeButton
	case "analog":
		return InputTypeAnalog
	default:
		return InputTypeUnknown
	}
}

// GetInput returns a snapshot copy of one input slot.
func (c *Cache) GetInput(id int) (Input, error) {
	if id < 0 || id >= MaxInputs {
		return Input{}, &ErrUnknownInstance{}
	}
	var out Input
	c.withLock(func() {
		out = c.inputs[id]
	})
	return out, nil
}

// UpdateInputConfig applies an Input.GetConfig result wholesale.
func (c *Cache) UpdateInputConfig(id int, resultJSON []byte) error {
	if id < 0 || id >= MaxInputs {
		return &ErrUnknownInstance{}
	}
	var wire inputConfigWire
	if err := json.Unmarshal(resultJSON, &wire); err != nil {
		return &ErrInvalidJSON{Cause: err}
	}

	c.withLock(func() {
		in := &c.inputs[id]
		in.Config.Name = wire.Name
		in.Config.Type = inputTypeFromWire(wire.Type)
		in.Config.Enable = wire.Enable
		in.Config.Invert = wire.Invert
		in.Config.FactoryReset = wire.FactoryReset
		in.RawJSON = string(resultJSON)
		in.Valid = true
		in.LastUpdated = time.Now()
	})
	return nil
}

// UpdateInputStatus applies an Input.GetStatus result or a NotifyStatus
// fragment. Only the state field exists for inputs, but the same
// selective-update discipline as switches applies: the mtime only
// advances when the value actually changes.
func (c *Cache) UpdateInputStatus(id int, statusJSON []byte, now time.Time) error {
	if id < 0 || id >= MaxInputs {
		return &ErrUnknownInstance{}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(statusJSON, &raw); err != nil {
		return &ErrInvalidJSON{Cause: err}
	}

	c.withLock(func() {
		st := &c.inputs[id].Status
		if v, ok := raw["state"]; ok {
			var b bool
			if json.Unmarshal(v, &b) == nil && b != st.State {
				st.State = b
				st.MTimeState = now
			}
		}
		c.inputs[id].LastUpdated = now
		c.inputs[id].Valid = true
	})
	return nil
}
