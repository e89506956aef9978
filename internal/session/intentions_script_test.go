package session

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shusefs/shusefs/internal/state"
)

func TestUploadScriptChunksAtBoundary(t *testing.T) {
	s := newTestSession()

	// Exactly 2*ScriptChunkSize bytes must produce exactly 2 chunks, not
	// 2 full chunks plus a trailing empty one.
	code := make([]byte, 2*state.ScriptChunkSize)
	for i := range code {
		code[i] = 'a'
	}
	ids, err := s.UploadScript(0, code)
	assert.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestUploadScriptUnevenLastChunk(t *testing.T) {
	s := newTestSession()

	code := make([]byte, 2*state.ScriptChunkSize+904)
	ids, err := s.UploadScript(0, code)
	assert.NoError(t, err)
	assert.Len(t, ids, 3)
}

func TestUploadScriptEmptyCodeStillSendsOneChunk(t *testing.T) {
	s := newTestSession()
	ids, err := s.UploadScript(0, nil)
	assert.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestUploadScriptRecordsLastChunkIDForCompletion(t *testing.T) {
	s := newTestSession()
	code := make([]byte, state.ScriptChunkSize+10)
	ids, err := s.UploadScript(3, code)
	assert.NoError(t, err)

	sc, err := s.Cache.GetScript(3)
	assert.NoError(t, err)
	assert.Equal(t, ids[len(ids)-1], sc.LastUploadReqID)
}

func TestBeginScriptCodeRetrievalBusy(t *testing.T) {
	s := newTestSession()
	_, err := s.BeginScriptCodeRetrieval(0)
	assert.NoError(t, err)

	_, err = s.BeginScriptCodeRetrieval(1)
	assert.IsType(t, &ErrRetrievalBusy{}, err)
}

// escapeScriptChunk must leave ", \, \n, \r, \t as raw bytes -- JSON
// escaping is json.Marshal's job when UploadScript builds the request.
// Escaping here too would double-escape the chunk.
func TestEscapeScriptChunkLeavesQuotingCharactersRaw(t *testing.T) {
	got := escapeScriptChunk([]byte("a\"b\\c\nd\te"))
	assert.Equal(t, "a\"b\\c\nd\te", got)
}

func TestEscapeScriptChunkDropsOtherControlBytes(t *testing.T) {
	got := escapeScriptChunk([]byte{'a', 0x01, 'b'})
	assert.Equal(t, "ab", got)
}

// Regression for the double-escaping bug: the chunk sanitiser's output
// must survive an unmodified round trip through json.Marshal, matching
// what UploadScript actually sends on the wire.
func TestEscapeScriptChunkSurvivesJSONMarshalRoundTrip(t *testing.T) {
	original := []byte("line one\n\"quoted\"\t\\backslash\\\r\n")
	sanitised := escapeScriptChunk(original)

	raw, err := json.Marshal(sanitised)
	assert.NoError(t, err)

	var roundTripped string
	assert.NoError(t, json.Unmarshal(raw, &roundTripped))
	assert.Equal(t, string(original), roundTripped)
}
