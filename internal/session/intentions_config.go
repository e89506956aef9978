package session

import "encoding/json"

// RefreshSysConfig enqueues Sys.GetConfig with no params.
func (s *Session) RefreshSysConfig() (int, error) {
	return s.buildAndEnqueue(rpcParamsJSON{Method: "Sys.GetConfig"})
}

// SetSysConfig validates userJSON parses as JSON at all, wraps it as
// {"config":<userJSON>}, and enqueues Sys.SetConfig. It never touches
// the cache itself — the response handler does that on success, and
// leaves the cache untouched on a device-side error.
func (s *Session) SetSysConfig(userJSON []byte) (int, error) {
	if err := validateUserJSON(userJSON); err != nil {
		return 0, err
	}
	params, err := json.Marshal(struct {
		Config json.RawMessage `json:"config"`
	}{Config: userJSON})
	if err != nil {
		return 0, err
	}
	return s.buildAndEnqueue(rpcParamsJSON{Method: "Sys.SetConfig", Params: params})
}

// RefreshMQTTConfig enqueues MQTT.GetConfig with no params.
func (s *Session) RefreshMQTTConfig() (int, error) {
	return s.buildAndEnqueue(rpcParamsJSON{Method: "MQTT.GetConfig"})
}

// SetMQTTConfig mirrors SetSysConfig for the MQTT config class.
func (s *Session) SetMQTTConfig(userJSON []byte) (int, error) {
	if err := validateUserJSON(userJSON); err != nil {
		return 0, err
	}
	params, err := json.Marshal(struct {
		Config json.RawMessage `json:"config"`
	}{Config: userJSON})
	if err != nil {
		return 0, err
	}
	return s.buildAndEnqueue(rpcParamsJSON{Method: "MQTT.SetConfig", Params: params})
}
