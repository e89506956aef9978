// Package wire carries the JSON-RPC 2.0 envelope types exchanged with the
// device, and the frame classifier (C2) that sorts an inbound frame into
// a solicited response or an unsolicited notification.
package wire

import "encoding/json"

// ClientSource is the "src" field stamped on every outgoing request, per
// the device's wire protocol.
const ClientSource = "shusefs-client"

// RPCError is the device's error body, present on a failed response.
// It implements error directly so dispatch code can pass it straight
// to a logger without a separate wrapping type.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// Request is an outgoing JSON-RPC request envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Src     string          `json:"src"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// rawFrame is used only to sniff id/result/error/method without
// committing to a full response or notification shape: config payloads
// vary by method, so the frame classifier and dispatcher decode `result`
// and `params` themselves once they know which one they're holding.
type rawFrame struct {
	ID     *int            `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// Kind distinguishes a solicited response from a device-initiated
// notification.
type Kind int

const (
	// KindNotification: device-initiated, no correlation id.
	KindNotification Kind = iota
	// KindResponse: carries an id matching a request this session sent.
	KindResponse
)

// Frame is the classified result of an inbound text frame.
type Frame struct {
	Kind Kind

	// Populated for KindResponse.
	ID      int
	Result  json.RawMessage
	Err     *RPCError
	IsError bool

	// Populated for KindNotification.
	Method string
	Params json.RawMessage

	// Raw holds the original bytes, for handlers that want to
	// re-unmarshal into a method-specific struct.
	Raw []byte
}

// ErrMalformedFrame is returned when the inbound text isn't valid JSON at
// all; the caller logs and skips the frame.
type ErrMalformedFrame struct {
	Cause error
}

func (e *ErrMalformedFrame) Error() string {
	return "malformed JSON-RPC frame: " + e.Cause.Error()
}

// Classify implements C2: it extracts the numeric id (if present) and
// tests whether result or error is present. id >= 0 plus a result-or-error
// body means a response for that id; anything else — no id, or an id but
// neither result nor error — is a notification, since the device never
// sends a notification carrying an id.
func Classify(frame []byte) (Frame, error) {
	var raw rawFrame
	if err := json.Unmarshal(frame, &raw); err != nil {
		return Frame{}, &ErrMalformedFrame{Cause: err}
	}

	hasResultOrError := raw.Result != nil || raw.Error != nil

	if raw.ID != nil && *raw.ID >= 0 && hasResultOrError {
		return Frame{
			Kind:    KindResponse,
			ID:      *raw.ID,
			Result:  raw.Result,
			Err:     raw.Error,
			IsError: raw.Error != nil,
			Raw:     frame,
		}, nil
	}

	return Frame{
		Kind:   KindNotification,
		Method: raw.Method,
		Params: raw.Params,
		Raw:    frame,
	}, nil
}
