package session

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shusefs/shusefs/internal/logging"
	"github.com/shusefs/shusefs/internal/wire"
)

// dispatchNotification routes a device-initiated notification by its
// method name: NotifyStatus carries partial status fragments keyed by
// "switch:N"/"input:N"/"script:N"; NotifyEvent carries an events array,
// of which only config_changed is acted on.
func (s *Session) dispatchNotification(frame wire.Frame) {
	switch frame.Method {
	case "NotifyStatus":
		s.applyNotifyStatus(frame.Params)
	case "NotifyEvent":
		s.applyNotifyEvent(frame.Params)
	default:
		s.Log.Debug("unhandled notification method", logging.FieldMethod, frame.Method)
	}
}

func (s *Session) applyNotifyStatus(params json.RawMessage) {
	var fragments map[string]json.RawMessage
	if err := json.Unmarshal(params, &fragments); err != nil {
		s.Log.Error("parse NotifyStatus params", err)
		return
	}

	now := time.Now()
	for key, payload := range fragments {
		class, id, ok := splitInstanceKey(key)
		if !ok {
			continue
		}
		var err error
		switch class {
		case "switch":
			err = s.Cache.UpdateSwitchStatus(id, payload, now)
		case "input":
			err = s.Cache.UpdateInputStatus(id, payload, now)
		case "script":
			err = s.Cache.UpdateScriptStatus(id, payload, now)
		default:
			continue
		}
		if err != nil {
			s.Log.Error("apply NotifyStatus fragment", err, logging.FieldMethod, key)
		}
	}
}

// splitInstanceKey parses a "switch:0"/"input:3"/"script:9"-shaped key
// into its class and numeric instance id.
func splitInstanceKey(key string) (class string, id int, ok bool) {
	idx := strings.IndexByte(key, ':')
	if idx < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(key[idx+1:])
	if err != nil {
		return "", 0, false
	}
	return key[:idx], n, true
}

type notifyEventPayload struct {
	Events []struct {
		Component string `json:"component"`
		Event     string `json:"event"`
		ID        *int   `json:"id"`
	} `json:"events"`
}

func (s *Session) applyNotifyEvent(params json.RawMessage) {
	var payload notifyEventPayload
	if err := json.Unmarshal(params, &payload); err != nil {
		s.Log.Error("parse NotifyEvent params", err)
		return
	}

	for _, ev := range payload.Events {
		if ev.Event != "config_changed" {
			continue
		}
		switch ev.Component {
		case "sys":
			if _, err := s.RefreshSysConfig(); err != nil {
				s.Log.Warn("refresh sys config on config_changed failed", logging.FieldError, err.Error())
			}
		case "mqtt":
			if _, err := s.RefreshMQTTConfig(); err != nil {
				s.Log.Warn("refresh mqtt config on config_changed failed", logging.FieldError, err.Error())
			}
		case "switch":
			// The event payload doesn't reliably carry the instance id;
			// refresh every valid switch rather than risk a stale one.
			s.refreshAllValidSwitches()
		case "input":
			s.refreshAllValidInputs()
		}
	}
}
