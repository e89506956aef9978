package state

import (
	"encoding/json"
	"time"
)

// UpdateSysConfig applies a Sys.GetConfig result: the raw JSON replaces
// the cached copy wholesale, parsed fields are re-derived, valid is set,
// and the timestamp is bumped. Called from the dispatcher on a successful
// Sys.GetConfig/Sys.SetConfig round trip.
func (c *Cache) UpdateSysConfig(resultJSON []byte) error {
	var wire struct {
		Name     string `json:"name"`
		Location string `json:"location"`
		TZ       string `json:"tz"`
		EcoMode  bool   `json:"eco_mode"`
		SNTP     struct {
			Enable bool `json:"enable"`
		} `json:"sntp"`
	}

	if err := json.Unmarshal(resultJSON, &wire); err != nil {
		return &ErrInvalidJSON{Cause: err}
	}

	name := wire.Name
	if len(name) > MaxDeviceNameLen {
		name = name[:MaxDeviceNameLen]
	}

	c.withLock(func() {
		c.Sys.DeviceName = name
		c.Sys.Location = wire.Location
		c.Sys.Timezone = wire.TZ
		c.Sys.EcoMode = wire.EcoMode
		c.Sys.SNTPEnabled = wire.SNTP.Enable
		c.Sys.RawJSON = string(resultJSON)
		c.Sys.Valid = true
		c.Sys.LastUpdated = time.Now()
	})
	return nil
}

// SysConfigJSON returns the raw cached JSON for file reads.
func (c *Cache) SysConfigJSON() (string, bool) {
	var out string
	var ok bool
	c.withLock(func() {
		out, ok = c.Sys.RawJSON, c.Sys.Valid
	})
	return out, ok
}

// SysConfigMTime returns the cached Sys config's last-updated time.
func (c *Cache) SysConfigMTime() time.Time {
	var out time.Time
	c.withLock(func() {
		out = c.Sys.LastUpdated
	})
	return out
}
