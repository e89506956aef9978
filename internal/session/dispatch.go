package session

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/shusefs/shusefs/internal/logging"
	"github.com/shusefs/shusefs/internal/wire"
)

// requestEnvelope extracts just enough of a stored request payload to
// dispatch on: the method name, and (for single-instance verbs) the
// numeric id embedded in its params.
type requestEnvelope struct {
	Method string `json:"method"`
	Params struct {
		ID int `json:"id"`
	} `json:"params"`
}

func parseRequestEnvelope(reqJSON string) (requestEnvelope, bool) {
	var env requestEnvelope
	if err := json.Unmarshal([]byte(reqJSON), &env); err != nil {
		return requestEnvelope{}, false
	}
	return env, true
}

// Dispatch implements C3: a solicited response is routed by the
// originating request's method (looked up via the pending table); a
// notification is routed by its own method name and payload.
func (s *Session) Dispatch(frame wire.Frame) {
	switch frame.Kind {
	case wire.KindResponse:
		s.dispatchResponse(frame)
	case wire.KindNotification:
		s.dispatchNotification(frame)
	}
}

func (s *Session) dispatchResponse(frame wire.Frame) {
	reqJSON, ok := s.Pending.RequestOf(frame.ID)
	if !ok {
		s.Log.Warn("unsolicited response", logging.FieldReqID, strconv.Itoa(frame.ID))
		return
	}

	if err := s.Pending.Complete(frame.ID, string(frame.Raw)); err != nil {
		s.Log.Warn("failed to complete pending entry", logging.FieldReqID, strconv.Itoa(frame.ID))
	}

	env, ok := parseRequestEnvelope(reqJSON)
	if !ok {
		s.Log.Warn("could not parse originating request", logging.FieldReqID, strconv.Itoa(frame.ID))
		return
	}

	if frame.IsError {
		s.handleErrorResponse(env.Method, frame)
		return
	}

	id := env.Params.ID
	now := time.Now()

	switch env.Method {
	case "Sys.GetConfig":
		if err := s.Cache.UpdateSysConfig(frame.Result); err != nil {
			s.Log.Error("apply Sys.GetConfig result", err)
		}
	case "Sys.SetConfig":
		if _, err := s.RefreshSysConfig(); err != nil {
			s.Log.Warn("refresh after Sys.SetConfig failed", logging.FieldError, err.Error())
		}
	case "MQTT.GetConfig":
		if err := s.Cache.UpdateMQTTConfig(frame.Result); err != nil {
			s.Log.Error("apply MQTT.GetConfig result", err)
		}
	case "MQTT.SetConfig":
		if _, err := s.RefreshMQTTConfig(); err != nil {
			s.Log.Warn("refresh after MQTT.SetConfig failed", logging.FieldError, err.Error())
		}
	case "Switch.GetConfig":
		if err := s.Cache.UpdateSwitchConfig(id, frame.Result); err != nil {
			s.Log.Error("apply Switch.GetConfig result", err, logging.FieldSwitch, strconv.Itoa(id))
		}
	case "Switch.SetConfig":
		if _, err := s.RefreshSwitchConfig(id); err != nil {
			s.Log.Warn("refresh after Switch.SetConfig failed", logging.FieldSwitch, strconv.Itoa(id))
		}
	case "Switch.Set":
		if err := s.Cache.UpdateSwitchStatus(id, frame.Result, now); err != nil {
			s.Log.Error("apply Switch.Set result", err, logging.FieldSwitch, strconv.Itoa(id))
		}
		if _, err := s.RefreshSwitchStatus(id); err != nil {
			s.Log.Warn("confirm after Switch.Set failed", logging.FieldSwitch, strconv.Itoa(id))
		}
	case "Switch.GetStatus":
		if err := s.Cache.UpdateSwitchStatus(id, frame.Result, now); err != nil {
			s.Log.Error("apply Switch.GetStatus result", err, logging.FieldSwitch, strconv.Itoa(id))
		}
	case "Input.GetConfig":
		if err := s.Cache.UpdateInputConfig(id, frame.Result); err != nil {
			s.Log.Error("apply Input.GetConfig result", err, logging.FieldInput, strconv.Itoa(id))
		}
	case "Input.SetConfig":
		if _, err := s.RefreshInputConfig(id); err != nil {
			s.Log.Warn("refresh after Input.SetConfig failed", logging.FieldInput, strconv.Itoa(id))
		}
	case "Input.GetStatus":
		if err := s.Cache.UpdateInputStatus(id, frame.Result, now); err != nil {
			s.Log.Error("apply Input.GetStatus result", err, logging.FieldInput, strconv.Itoa(id))
		}
	case "Script.List":
		s.onScriptListResult(frame)
	case "Script.GetCode":
		s.onScriptGetCodeResult(frame)
	case "Script.PutCode":
		s.onScriptPutCodeResult(frame)
	case "Schedule.List":
		if err := s.Cache.UpdateScheduleList(frame.Result); err != nil {
			s.Log.Error("apply Schedule.List result", err)
		}
	case "Schedule.Create", "Schedule.Update", "Schedule.Delete":
		if _, err := s.RefreshScheduleList(); err != nil {
			s.Log.Warn("refresh after schedule mutation failed", logging.FieldError, err.Error())
		}
	default:
		s.Log.Warn("response for unrecognised method", logging.FieldMethod, env.Method)
	}
}

// handleErrorResponse implements §4.3's error path for Config SETs
// (log and preserve the cache) and the generic device-observed error
// path for everything else (log only; nothing was applied speculatively
// so there's nothing to roll back).
func (s *Session) handleErrorResponse(method string, frame wire.Frame) {
	s.Log.Error("device returned error response", frame.Err,
		logging.FieldMethod, method, logging.FieldReqID, strconv.Itoa(frame.ID))
}

func (s *Session) onScriptListResult(frame wire.Frame) {
	if err := s.Cache.UpdateScriptList(frame.Result); err != nil {
		s.Log.Error("apply Script.List result", err)
		return
	}
	id, ok := s.Cache.NextPendingScript()
	if !ok {
		return
	}
	if _, err := s.BeginScriptCodeRetrieval(id); err != nil {
		s.Log.Warn("begin script retrieval failed", logging.FieldScript, strconv.Itoa(id))
	}
}

func (s *Session) onScriptGetCodeResult(frame wire.Frame) {
	var result struct {
		Data string `json:"data"`
		Left int    `json:"left"`
	}
	if err := json.Unmarshal(frame.Result, &result); err != nil {
		s.Log.Error("parse Script.GetCode result", err)
		return
	}

	done, err := s.Cache.ApplyCodeChunk(result.Data, result.Left)
	if err != nil {
		s.Log.Error("apply Script.GetCode chunk", err)
		return
	}

	if !done {
		id, offset, ok := s.Cache.NextCodeOffset()
		if !ok {
			return
		}
		if _, err := s.fetchScriptCode(id, offset); err != nil {
			s.Log.Warn("follow-up Script.GetCode failed", logging.FieldScript, strconv.Itoa(id))
		}
		return
	}

	if nextID, ok := s.Cache.NextPendingScript(); ok {
		if _, err := s.BeginScriptCodeRetrieval(nextID); err != nil {
			s.Log.Warn("begin next script retrieval failed", logging.FieldScript, strconv.Itoa(nextID))
		}
	}
}

func (s *Session) onScriptPutCodeResult(frame wire.Frame) {
	id, ok := s.Cache.CompleteCodeUpload(frame.ID)
	if !ok {
		return
	}
	if !s.Cache.IsRetrievalIdle() {
		// A Script.List-driven retrieval is already in flight; it will
		// reach this slot in its own turn rather than racing a second
		// cursor user.
		return
	}
	if _, err := s.BeginScriptCodeRetrieval(id); err != nil {
		s.Log.Warn("refresh after script upload failed", logging.FieldScript, strconv.Itoa(id))
	}
}
