package session

import (
	"encoding/json"

	"github.com/shusefs/shusefs/internal/logging"
	"github.com/shusefs/shusefs/internal/state"
)

type scheduleCallWire struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type scheduleCreateParams struct {
	Enable   bool               `json:"enable"`
	Timespec string             `json:"timespec"`
	Calls    []scheduleCallWire `json:"calls"`
}

type scheduleUpdateParams struct {
	ID       int                `json:"id" validate:"gte=0,lt=20"`
	Enable   bool               `json:"enable"`
	Timespec string             `json:"timespec"`
	Calls    []scheduleCallWire `json:"calls"`
}

type scheduleDeleteParams struct {
	ID int `json:"id" validate:"gte=0,lt=20"`
}

func callsToWire(calls []state.ScheduleCall) []scheduleCallWire {
	out := make([]scheduleCallWire, 0, len(calls))
	for _, c := range calls {
		var raw json.RawMessage
		if c.ParamsJSON != "" {
			raw = json.RawMessage(c.ParamsJSON)
		}
		out = append(out, scheduleCallWire{Method: c.Method, Params: raw})
	}
	return out
}

// RefreshScheduleList enqueues Schedule.List with no params.
func (s *Session) RefreshScheduleList() (int, error) {
	return s.buildAndEnqueue(rpcParamsJSON{Method: "Schedule.List"})
}

// CreateSchedule enqueues Schedule.Create; the device assigns the id,
// so the cache only learns about it via the refresh that follows every
// Schedule.{Create,Update,Delete} response.
func (s *Session) CreateSchedule(enable bool, timespec string, calls []state.ScheduleCall) (int, error) {
	params, err := json.Marshal(scheduleCreateParams{
		Enable:   enable,
		Timespec: timespec,
		Calls:    callsToWire(calls),
	})
	if err != nil {
		return 0, err
	}
	return s.buildAndEnqueue(rpcParamsJSON{Method: "Schedule.Create", Params: params})
}

// UpdateSchedule enqueues Schedule.Update{id,...}.
func (s *Session) UpdateSchedule(id int, enable bool, timespec string, calls []state.ScheduleCall) (int, error) {
	p := scheduleUpdateParams{ID: id, Enable: enable, Timespec: timespec, Calls: callsToWire(calls)}
	if err := s.validate.Struct(&p); err != nil {
		return 0, err
	}
	params, err := json.Marshal(p)
	if err != nil {
		return 0, err
	}
	return s.buildAndEnqueue(rpcParamsJSON{Method: "Schedule.Update", Params: params})
}

// DeleteSchedule enqueues Schedule.Delete{id}.
func (s *Session) DeleteSchedule(id int) (int, error) {
	p := scheduleDeleteParams{ID: id}
	if err := s.validate.Struct(&p); err != nil {
		return 0, err
	}
	params, err := json.Marshal(p)
	if err != nil {
		return 0, err
	}
	return s.buildAndEnqueue(rpcParamsJSON{Method: "Schedule.Delete", Params: params})
}

// SyncCrontab parses text against the cached schedule list and
// enqueues the resulting Create/Update/Delete operations. Warnings
// from unparseable or unassignable lines are logged, not surfaced as
// errors, matching §4.4 step 4's "log a warning; skip" rule. It
// returns every request id enqueued, in diff order.
func (s *Session) SyncCrontab(text string) []int {
	ops, warnings := s.Cache.ParseCrontab(text)

	for _, w := range warnings {
		s.Log.Warn("crontab line skipped", logging.FieldSchedule, w.Reason)
	}

	var ids []int
	for _, op := range ops {
		var id int
		var err error
		switch op.Kind {
		case state.OpCreate:
			id, err = s.CreateSchedule(op.Enable, op.Timespec, op.Calls)
		case state.OpUpdate:
			id, err = s.UpdateSchedule(op.ID, op.Enable, op.Timespec, op.Calls)
		case state.OpDelete:
			id, err = s.DeleteSchedule(op.ID)
		}
		if err != nil {
			s.Log.Warn("crontab sync operation failed", logging.FieldError, err.Error())
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
