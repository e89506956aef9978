package session

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shusefs/shusefs/internal/wire"
)

func respond(t *testing.T, s *Session, id int, result string) {
	t.Helper()
	frame, err := wire.Classify([]byte(`{"id":` + strconv.Itoa(id) + `,"result":` + result + `}`))
	assert.NoError(t, err)
	s.Dispatch(frame)
}

func TestDispatchSysGetConfigApplies(t *testing.T) {
	s := newTestSession()
	id, err := s.RefreshSysConfig()
	assert.NoError(t, err)

	respond(t, s, id, `{"name":"kitchen","location":"home","tz":"UTC"}`)

	j, ok := s.Cache.SysConfigJSON()
	assert.True(t, ok)
	assert.Contains(t, j, "kitchen")
}

func TestDispatchSwitchSetRefreshesStatus(t *testing.T) {
	s := newTestSession()
	id, err := s.SetSwitchOutput(0, true)
	assert.NoError(t, err)

	before := s.Pending.Len()
	respond(t, s, id, `{"was_on":false}`)
	// Switch.Set's handler enqueues a confirming Switch.GetStatus; the
	// original entry isn't reclaimed until the next sweep, so the table
	// grows by exactly one.
	assert.Equal(t, before+1, s.Pending.Len())
}

func TestDispatchUnsolicitedResponseIsLoggedNotPanicked(t *testing.T) {
	s := newTestSession()
	frame, err := wire.Classify([]byte(`{"id":999,"result":{}}`))
	assert.NoError(t, err)
	assert.NotPanics(t, func() { s.Dispatch(frame) })
}

func TestDispatchErrorResponseDoesNotCorruptCache(t *testing.T) {
	s := newTestSession()
	id, err := s.SetSwitchConfig(0, []byte(`{"name":"x"}`))
	assert.NoError(t, err)

	frame, err := wire.Classify([]byte(`{"id":` + strconv.Itoa(id) + `,"error":{"code":-103,"message":"invalid argument"}}`))
	assert.NoError(t, err)
	assert.NotPanics(t, func() { s.Dispatch(frame) })

	sw, _ := s.Cache.GetSwitch(0)
	assert.False(t, sw.Valid, "a rejected SetConfig must never mark the cache valid")
}

// Tests the full chunked Script.GetCode sequence driven end to end
// through Dispatch: Script.List discovers one script, which triggers a
// GetCode at offset 0; a partial chunk triggers a follow-up GetCode at
// the new offset; the final chunk (left=0) completes the retrieval.
func TestDispatchScriptRetrievalChain(t *testing.T) {
	s := newTestSession()

	listID, err := s.RefreshScriptList()
	assert.NoError(t, err)
	assert.NoError(t, s.Pending.MarkSent(listID))
	respond(t, s, listID, `{"scripts":[{"id":0,"name":"a","enable":true}]}`)

	// Script.List's handler should have enqueued Script.GetCode{id:0,offset:0}.
	getID, _, ok := s.Pending.TakeNextQueued()
	assert.True(t, ok)
	assert.NoError(t, s.Pending.MarkSent(getID))

	respond(t, s, getID, `{"data":"partA","left":5}`)

	nextID, _, ok := s.Pending.TakeNextQueued()
	assert.True(t, ok)
	assert.NoError(t, s.Pending.MarkSent(nextID))

	respond(t, s, nextID, `{"data":"partB","left":0}`)

	code, err := s.Cache.GetScriptCodeStr(0)
	assert.NoError(t, err)
	assert.Equal(t, "partApartB", code)
}
