package state

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func setupCrontabCache(t *testing.T) *Cache {
	t.Helper()
	c := New()
	err := c.UpdateScheduleList([]byte(`{"jobs":[
		{"id":1,"enable":true,"timespec":"0 0 6 * * *","calls":[{"method":"Switch.Set","params":{"id":0,"on":true}}]},
		{"id":2,"enable":true,"timespec":"0 0 18 * * *","calls":[{"method":"Switch.Set","params":{"id":0,"on":false}}]}
	]}`))
	assert.NoError(t, err)
	return c
}

func TestRenderCrontabFormat(t *testing.T) {
	c := setupCrontabCache(t)
	text := c.RenderCrontab()

	assert.Contains(t, text, "# id:1")
	assert.Contains(t, text, "# id:2")
	assert.Contains(t, text, "0 0 6 * * * Switch.Set {\"id\":0,\"on\":true}")
	assert.True(t, strings.HasSuffix(text, "\n\n") || strings.Contains(text, "\n\n"), "each schedule block ends with a blank line")
}

// Round-trip law (restricted to 0-or-1-call schedules, per spec.md):
// parsing a freshly rendered crontab against the same cache it was
// rendered from must yield zero operations.
func TestParseCrontabRoundTripIsIdempotent(t *testing.T) {
	c := setupCrontabCache(t)
	text := c.RenderCrontab()

	ops, warnings := c.ParseCrontab(text)
	assert.Empty(t, warnings)
	assert.Empty(t, ops, "re-parsing an unmodified render must queue nothing")
}

// Tests spec.md §8 scenario 5: cache holds schedules {id:1} and {id:2}.
// The user's file keeps only id:1's block and adds one new line with no
// id. Sync must emit zero operations for id:1 (unchanged), one Delete
// for id:2, and one Create for the new line.
func TestParseCrontabDifferentialSync(t *testing.T) {
	c := setupCrontabCache(t)

	text := "# id:1\n0 0 6 * * * Switch.Set {\"id\":0,\"on\":true}\n\n0 0 12 * * * Switch.Set {\"id\":1,\"on\":true}\n"

	ops, warnings := c.ParseCrontab(text)
	assert.Empty(t, warnings)

	var deletes, creates int
	for _, op := range ops {
		switch op.Kind {
		case OpDelete:
			deletes++
			assert.Equal(t, 2, op.ID)
		case OpCreate:
			creates++
			assert.Equal(t, "0 0 12 * * *", op.Timespec)
		case OpUpdate:
			t.Fatalf("id:1 is unchanged and must not produce an update, got %+v", op)
		}
	}
	assert.Equal(t, 1, deletes)
	assert.Equal(t, 1, creates)
}

func TestParseCrontabMalformedLineWarns(t *testing.T) {
	c := setupCrontabCache(t)
	text := "# id:1\n0 0 6 Switch.Set\n"

	ops, warnings := c.ParseCrontab(text)
	assert.Len(t, warnings, 1)
	// id:1 is untouched by the malformed line, so it must still be
	// reported as deleted since it was never marked seen.
	found := false
	for _, op := range ops {
		if op.Kind == OpDelete && op.ID == 1 {
			found = true
		}
	}
	assert.True(t, found)
}

func TestParseCrontabUnknownIDWarns(t *testing.T) {
	c := setupCrontabCache(t)
	text := "# id:99\n0 0 6 * * * Switch.Set\n"

	_, warnings := c.ParseCrontab(text)
	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0].Reason, "id not present")
}

func TestParseCrontabDisabledPrefix(t *testing.T) {
	c := setupCrontabCache(t)
	text := "# id:1 (disabled)\n#! 0 0 6 * * * Switch.Set {\"id\":0,\"on\":true}\n"

	ops, warnings := c.ParseCrontab(text)
	assert.Empty(t, warnings)
	var gotUpdate bool
	for _, op := range ops {
		if op.Kind == OpUpdate && op.ID == 1 {
			gotUpdate = true
			assert.False(t, op.Enable)
		}
	}
	assert.True(t, gotUpdate, "flipping enable must produce an update")
}
