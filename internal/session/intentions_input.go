package session

import (
	"encoding/json"
	"strconv"

	"github.com/shusefs/shusefs/internal/logging"
	"github.com/shusefs/shusefs/internal/state"
)

type inputInstanceParams struct {
	ID int `json:"id" validate:"gte=0,lt=16"`
}

// RefreshInputConfig enqueues Input.GetConfig{id}.
func (s *Session) RefreshInputConfig(id int) (int, error) {
	p := inputInstanceParams{ID: id}
	if err := s.validate.Struct(&p); err != nil {
		return 0, err
	}
	params, err := json.Marshal(p)
	if err != nil {
		return 0, err
	}
	return s.buildAndEnqueue(rpcParamsJSON{Method: "Input.GetConfig", Params: params})
}

// SetInputConfig wraps userJSON as {"id":id,"config":<userJSON>} and
// enqueues Input.SetConfig{id}.
func (s *Session) SetInputConfig(id int, userJSON []byte) (int, error) {
	p := inputInstanceParams{ID: id}
	if err := s.validate.Struct(&p); err != nil {
		return 0, err
	}
	if err := validateUserJSON(userJSON); err != nil {
		return 0, err
	}
	params, err := json.Marshal(struct {
		ID     int             `json:"id"`
		Config json.RawMessage `json:"config"`
	}{ID: id, Config: userJSON})
	if err != nil {
		return 0, err
	}
	return s.buildAndEnqueue(rpcParamsJSON{Method: "Input.SetConfig", Params: params})
}

// RefreshInputStatus enqueues Input.GetStatus{id}.
func (s *Session) RefreshInputStatus(id int) (int, error) {
	p := inputInstanceParams{ID: id}
	if err := s.validate.Struct(&p); err != nil {
		return 0, err
	}
	params, err := json.Marshal(p)
	if err != nil {
		return 0, err
	}
	return s.buildAndEnqueue(rpcParamsJSON{Method: "Input.GetStatus", Params: params})
}

// refreshAllValidInputs re-GETs the config class for every input slot
// the cache currently considers valid.
func (s *Session) refreshAllValidInputs() {
	for id := 0; id < state.MaxInputs; id++ {
		in, err := s.Cache.GetInput(id)
		if err != nil || !in.Valid {
			continue
		}
		if _, err := s.RefreshInputConfig(id); err != nil {
			s.Log.Warn("refresh input config failed", logging.FieldInput, strconv.Itoa(id))
		}
	}
}
