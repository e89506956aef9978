package session

import (
	"encoding/json"

	"github.com/pkg/errors"
	validator "gopkg.in/go-playground/validator.v9"

	"github.com/shusefs/shusefs/internal/logging"
	"github.com/shusefs/shusefs/internal/pending"
	"github.com/shusefs/shusefs/internal/state"
	"github.com/shusefs/shusefs/internal/wire"
)

// Session wires the pending-request table, the device-state cache, and
// a logger together behind the intention layer's verbs and the
// dispatcher. A filesystem adaptor and a network loop both hold a
// pointer to the same Session; neither owns it exclusively.
type Session struct {
	Pending *pending.Table
	Cache   *state.Cache
	Log     logging.Provider

	validate *validator.Validate
}

// New constructs a Session over an already-built pending table and
// cache, so callers (tests, the network loop, the CLI entrypoint) can
// share the same instances across packages.
func New(p *pending.Table, c *state.Cache, log logging.Provider) *Session {
	return &Session{
		Pending:  p,
		Cache:    c,
		Log:      log,
		validate: validator.New(),
	}
}

// rpcParamsJSON holds the pieces a verb needs to build a well-formed
// outgoing request; marshal is deferred to buildAndEnqueue so every
// verb gets identical framing.
type rpcParamsJSON struct {
	Method string
	Params json.RawMessage
}

// buildAndEnqueue implements the intention layer's invariant template:
// peek the next id, build the JSON-RPC request string with that id,
// enqueue it in the pending table, and return the id. Sending is the
// network loop's job; this never touches the transport.
func (s *Session) buildAndEnqueue(p rpcParamsJSON) (int, error) {
	id := s.Pending.NextID()

	req := wire.Request{
		JSONRPC: "2.0",
		ID:      id,
		Src:     wire.ClientSource,
		Method:  p.Method,
		Params:  p.Params,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return 0, errors.Wrap(err, "marshal request")
	}

	return s.Pending.Enqueue(string(payload))
}

// validateUserJSON confirms raw parses as a JSON value at all. Per the
// intention layer's contract, that is the only validation a
// set-from-user-JSON verb performs before wrapping the payload; any
// deeper shape checking happens device-side.
func validateUserJSON(raw []byte) error {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return &ErrInvalidParams{Cause: err}
	}
	return nil
}
