package state

import (
	"encoding/json"
)

type scheduleCallWire struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

type scheduleJobWire struct {
	ID       int                `json:"id"`
	Enable   bool               `json:"enable"`
	Timespec string             `json:"timespec"`
	Calls    []scheduleCallWire `json:"calls"`
}

// GetSchedule returns a snapshot copy of one schedule slot.
func (c *Cache) GetSchedule(id int) (Schedule, error) {
	if id < 0 || id >= MaxSchedules {
		return Schedule{}, &ErrUnknownInstance{}
	}
	var out Schedule
	c.withLock(func() {
		out = c.schedule[id]
	})
	return out, nil
}

// ScheduleRevision returns a counter bumped on every UpdateScheduleList.
// RenderCrontab writes it into the crontab header; ParseCrontab does not
// compare it.
func (c *Cache) ScheduleRevision() int {
	var rev int
	c.withLock(func() {
		rev = c.scheduleRevision
	})
	return rev
}

// UpdateScheduleList applies a Schedule.List result wholesale: every
// listed job replaces its slot, and slots the device no longer reports
// are invalidated.
func (c *Cache) UpdateScheduleList(resultJSON []byte) error {
	var wire struct {
		JobsCount int               `json:"jobs_count"`
		Jobs      []scheduleJobWire `json:"jobs"`
	}
	if err := json.Unmarshal(resultJSON, &wire); err != nil {
		return &ErrInvalidJSON{Cause: err}
	}

	c.withLock(func() {
		seen := make(map[int]bool, len(wire.Jobs))
		for _, j := range wire.Jobs {
			if j.ID < 0 || j.ID >= MaxSchedules {
				continue
			}
			seen[j.ID] = true
			s := &c.schedule[j.ID]
			s.ID = j.ID
			s.Enable = j.Enable
			s.Timespec = j.Timespec
			s.Calls = make([]ScheduleCall, 0, len(j.Calls))
			for _, call := range j.Calls {
				s.Calls = append(s.Calls, ScheduleCall{
					Method:     call.Method,
					ParamsJSON: string(call.Params),
				})
			}
			s.Valid = true
		}
		for i := range c.schedule {
			if !seen[i] {
				c.schedule[i].Valid = false
			}
		}
		c.scheduleRevision++
	})
	return nil
}
