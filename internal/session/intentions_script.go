package session

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shusefs/shusefs/internal/state"
)

type scriptGetCodeParams struct {
	ID     int `json:"id" validate:"gte=0,lt=10"`
	Offset int `json:"offset" validate:"gte=0"`
}

type scriptPutCodeParams struct {
	ID     int    `json:"id" validate:"gte=0,lt=10"`
	Code   string `json:"code"`
	Append bool   `json:"append"`
}

// uploadChunkDelay is the per-chunk pacing interval the original source
// enforced with a blocking sleep(50ms). UploadScript does not apply it:
// every chunk is enqueued at once, and the network loop sends queued
// requests in FIFO order on its tick.
const uploadChunkDelay = 50 * time.Millisecond

// RefreshScriptList enqueues Script.List with no params.
func (s *Session) RefreshScriptList() (int, error) {
	return s.buildAndEnqueue(rpcParamsJSON{Method: "Script.List"})
}

// fetchScriptCode enqueues one Script.GetCode{id,offset} request,
// advancing a chunked retrieval already started in the cache.
func (s *Session) fetchScriptCode(id, offset int) (int, error) {
	p := scriptGetCodeParams{ID: id, Offset: offset}
	if err := s.validate.Struct(&p); err != nil {
		return 0, err
	}
	params, err := json.Marshal(p)
	if err != nil {
		return 0, err
	}
	return s.buildAndEnqueue(rpcParamsJSON{Method: "Script.GetCode", Params: params})
}

// BeginScriptCodeRetrieval starts a chunked Script.GetCode sequence for
// id: marks the cache's retrieval cursor busy and enqueues the first
// request at offset 0.
func (s *Session) BeginScriptCodeRetrieval(id int) (int, error) {
	if !s.Cache.IsRetrievalIdle() {
		return 0, &ErrRetrievalBusy{}
	}
	if err := s.Cache.BeginCodeRetrieval(id); err != nil {
		return 0, err
	}
	return s.fetchScriptCode(id, 0)
}

// escapeScriptChunk drops control bytes below 0x20 other than \n, \r,
// and \t, mirroring the source's ad hoc chunk sanitiser. It must never
// perform JSON string escaping itself: the result is placed into
// scriptPutCodeParams.Code and handed to json.Marshal, which is what
// actually escapes ", \, and the control bytes for the wire. Escaping
// here too would double-escape the chunk.
func escapeScriptChunk(chunk []byte) string {
	var b strings.Builder
	b.Grow(len(chunk))
	for _, c := range chunk {
		if c < 0x20 && c != '\n' && c != '\r' && c != '\t' {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

// UploadScript splits code into chunks of at most
// state.ScriptChunkSize raw bytes, JSON-escapes each, and enqueues one
// Script.PutCode{id,code,append} request per chunk — the first with
// append=false, the rest append=true. It records the final chunk's
// request id as the slot's last-upload id so the dispatcher recognises
// completion purely by comparing an incoming response id against it.
// It returns every enqueued request id in order.
func (s *Session) UploadScript(id int, code []byte) ([]int, error) {
	p := scriptGetCodeParams{ID: id, Offset: 0}
	if err := s.validate.Struct(&p); err != nil {
		return nil, err
	}

	if len(code) == 0 {
		code = []byte{}
	}

	var ids []int
	for off := 0; off == 0 || off < len(code); off += state.ScriptChunkSize {
		end := off + state.ScriptChunkSize
		if end > len(code) {
			end = len(code)
		}
		chunk := code[off:end]
		params, err := json.Marshal(scriptPutCodeParams{
			ID:     id,
			Code:   escapeScriptChunk(chunk),
			Append: off > 0,
		})
		if err != nil {
			return ids, err
		}
		reqID, err := s.buildAndEnqueue(rpcParamsJSON{Method: "Script.PutCode", Params: params})
		if err != nil {
			return ids, err
		}
		ids = append(ids, reqID)
		if len(code) == 0 {
			break
		}
	}

	if len(ids) > 0 {
		if err := s.Cache.BeginCodeUpload(id, ids[len(ids)-1]); err != nil {
			return ids, err
		}
	}
	return ids, nil
}
