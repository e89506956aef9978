package state

import (
	"encoding/json"
	"time"
)

// scriptListEntryWire mirrors one element of Script.List's result array.
type scriptListEntryWire struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Enable bool   `json:"enable"`
	Running bool  `json:"running"`
}

// GetScript returns a snapshot copy of one script slot.
func (c *Cache) GetScript(id int) (Script, error) {
	if id < 0 || id >= MaxScripts {
		return Script{}, &ErrUnknownInstance{}
	}
	var out Script
	c.withLock(func() {
		out = c.scripts[id]
	})
	return out, nil
}

// UpdateScriptList applies a Script.List result, marking every listed
// script valid and clearing any slot the device no longer reports.
func (c *Cache) UpdateScriptList(resultJSON []byte) error {
	var wire struct {
		Scripts []scriptListEntryWire `json:"scripts"`
	}
	if err := json.Unmarshal(resultJSON, &wire); err != nil {
		return &ErrInvalidJSON{Cause: err}
	}

	now := time.Now()
	c.withLock(func() {
		seen := make(map[int]bool, len(wire.Scripts))
		for _, e := range wire.Scripts {
			if e.ID < 0 || e.ID >= MaxScripts {
				continue
			}
			seen[e.ID] = true
			s := &c.scripts[e.ID]
			s.ID = e.ID
			s.Name = e.Name
			s.Enable = e.Enable
			s.Status.Running = e.Running
			s.Valid = true
			s.CodeFetched = false
			s.ModifyTime = now
		}
		for i := range c.scripts {
			if !seen[i] {
				c.scripts[i].Valid = false
			}
		}
	})
	return nil
}

// UpdateScriptStatus applies a Script.GetStatus result or NotifyStatus
// fragment for one script slot.
func (c *Cache) UpdateScriptStatus(id int, statusJSON []byte, now time.Time) error {
	if id < 0 || id >= MaxScripts {
		return &ErrUnknownInstance{}
	}
	var wire struct {
		Running bool   `json:"running"`
		MemUsed int    `json:"mem_used"`
		MemPeak int    `json:"mem_peak"`
		Errors  []string `json:"errors"`
	}
	if err := json.Unmarshal(statusJSON, &wire); err != nil {
		return &ErrInvalidJSON{Cause: err}
	}

	c.withLock(func() {
		s := &c.scripts[id]
		s.Status.Running = wire.Running
		s.Status.MemUsed = wire.MemUsed
		s.Status.MemPeak = wire.MemPeak
		if len(wire.Errors) > 0 {
			s.Status.Errors = wire.Errors[0]
		} else {
			s.Status.Errors = ""
		}
		s.Status.LastStatusUpdate = now
	})
	return nil
}

// BeginCodeRetrieval starts a chunked Script.GetCode sequence for id.
// Only one retrieval may be in flight across the whole cache at a time;
// callers must check IsRetrievalIdle first.
func (c *Cache) BeginCodeRetrieval(id int) error {
	if id < 0 || id >= MaxScripts {
		return &ErrUnknownInstance{}
	}
	c.withLock(func() {
		c.cursor.retrievingID = id
		c.cursor.currentOffset = 0
		c.cursor.chunkBuffer = c.cursor.chunkBuffer[:0]
	})
	return nil
}

// IsRetrievalIdle reports whether no code retrieval is in flight.
func (c *Cache) IsRetrievalIdle() bool {
	var idle bool
	c.withLock(func() {
		idle = c.cursor.retrievingID < 0
	})
	return idle
}

// ApplyCodeChunk appends one Script.GetCode response's data to the
// in-flight retrieval. When left is 0 the transfer is complete: the
// accumulated buffer replaces the script's cached code and the cursor
// resets to idle. The returned bool reports completion.
func (c *Cache) ApplyCodeChunk(data string, left int) (done bool, err error) {
	c.withLock(func() {
		if c.cursor.retrievingID < 0 {
			err = &ErrUnknownInstance{}
			return
		}
		c.cursor.chunkBuffer = append(c.cursor.chunkBuffer, []byte(data)...)
		c.cursor.currentOffset += len(data)
		if left == 0 {
			id := c.cursor.retrievingID
			c.scripts[id].Code = string(c.cursor.chunkBuffer)
			c.scripts[id].CodeFetched = true
			c.scripts[id].ModifyTime = time.Now()
			c.cursor.retrievingID = -1
			c.cursor.currentOffset = 0
			c.cursor.chunkBuffer = nil
			done = true
		}
	})
	return done, err
}

// NextCodeOffset returns the script id and byte offset the next
// Script.GetCode request should ask for, if a retrieval is in flight.
func (c *Cache) NextCodeOffset() (id int, offset int, ok bool) {
	c.withLock(func() {
		if c.cursor.retrievingID >= 0 {
			id, offset, ok = c.cursor.retrievingID, c.cursor.currentOffset, true
		}
	})
	return id, offset, ok
}

// GetScriptCodeStr returns the cached code for id.
func (c *Cache) GetScriptCodeStr(id int) (string, error) {
	if id < 0 || id >= MaxScripts {
		return "", &ErrUnknownInstance{}
	}
	var out string
	c.withLock(func() {
		out = c.scripts[id].Code
	})
	return out, nil
}

// NextPendingScript returns the lowest-id valid script slot whose code
// hasn't been fetched since the last Script.List, if any. The
// dispatcher uses this to chain Script.GetCode requests one script at
// a time after Script.List and after each retrieval completes.
func (c *Cache) NextPendingScript() (id int, ok bool) {
	c.withLock(func() {
		for i := range c.scripts {
			if c.scripts[i].Valid && !c.scripts[i].CodeFetched {
				id, ok = i, true
				return
			}
		}
	})
	return id, ok
}

// BeginCodeUpload records the request id of the final chunk of a
// Script.PutCode upload sequence in progress for id. The network loop's
// response handler recognises upload completion solely by comparing an
// incoming response id against this value.
func (c *Cache) BeginCodeUpload(id int, lastChunkReqID int) error {
	if id < 0 || id >= MaxScripts {
		return &ErrUnknownInstance{}
	}
	c.withLock(func() {
		c.scripts[id].LastUploadReqID = lastChunkReqID
	})
	return nil
}

// CompleteCodeUpload clears the pending upload marker for whichever
// slot's LastUploadReqID equals respID and marks that slot's code as not
// fetched, so NextPendingScript hands it out for a re-fetch. Per §4.3, an
// acked final chunk only triggers a canonical re-fetch via
// Script.GetCode; it does not itself set the cached code. It reports the
// matching slot's id and whether any slot matched.
func (c *Cache) CompleteCodeUpload(respID int) (id int, ok bool) {
	c.withLock(func() {
		for i := range c.scripts {
			if c.scripts[i].LastUploadReqID == respID {
				c.scripts[i].LastUploadReqID = -1
				c.scripts[i].CodeFetched = false
				id, ok = i, true
				return
			}
		}
	})
	return id, ok
}
