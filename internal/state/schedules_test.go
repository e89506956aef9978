package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateScheduleListBumpsRevision(t *testing.T) {
	c := New()
	assert.Equal(t, 0, c.ScheduleRevision())

	err := c.UpdateScheduleList([]byte(`{"jobs_count":1,"jobs":[
		{"id":1,"enable":true,"timespec":"0 0 6 * * *","calls":[{"method":"Switch.Set","params":{"id":0,"on":true}}]}
	]}`))
	assert.NoError(t, err)
	assert.Equal(t, 1, c.ScheduleRevision())

	s, err := c.GetSchedule(1)
	assert.NoError(t, err)
	assert.True(t, s.Valid)
	assert.Equal(t, "0 0 6 * * *", s.Timespec)
	assert.Len(t, s.Calls, 1)
	assert.Equal(t, "Switch.Set", s.Calls[0].Method)
}

func TestUpdateScheduleListInvalidatesDropped(t *testing.T) {
	c := New()
	assert.NoError(t, c.UpdateScheduleList([]byte(`{"jobs":[{"id":2,"enable":true,"timespec":"0 0 6 * * *","calls":[]}]}`)))
	s, _ := c.GetSchedule(2)
	assert.True(t, s.Valid)

	assert.NoError(t, c.UpdateScheduleList([]byte(`{"jobs":[]}`)))
	s, _ = c.GetSchedule(2)
	assert.False(t, s.Valid)
}

func TestGetScheduleUnknownInstance(t *testing.T) {
	c := New()
	_, err := c.GetSchedule(MaxSchedules)
	assert.IsType(t, &ErrUnknownInstance{}, err)
}
