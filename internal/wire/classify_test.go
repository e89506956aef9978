package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyResponseWithResult(t *testing.T) {
	f, err := Classify([]byte(`{"id":3,"result":{"name":"kitchen"}}`))
	assert.NoError(t, err)
	assert.Equal(t, KindResponse, f.Kind)
	assert.Equal(t, 3, f.ID)
	assert.False(t, f.IsError)
}

func TestClassifyResponseWithError(t *testing.T) {
	f, err := Classify([]byte(`{"id":4,"error":{"code":-103,"message":"invalid argument"}}`))
	assert.NoError(t, err)
	assert.Equal(t, KindResponse, f.Kind)
	assert.True(t, f.IsError)
	assert.Equal(t, "invalid argument", f.Err.Message)
}

func TestClassifyNotificationHasNoID(t *testing.T) {
	f, err := Classify([]byte(`{"method":"NotifyStatus","params":{"switch:0":{"apower":7.3}}}`))
	assert.NoError(t, err)
	assert.Equal(t, KindNotification, f.Kind)
	assert.Equal(t, "NotifyStatus", f.Method)
}

func TestClassifyFrameWithIDButNoBodyIsNotification(t *testing.T) {
	// No device notification carries an id, but the classifier's contract
	// is defined on the (id present, result-or-error present) pair, not on
	// id alone: an id with neither result nor error doesn't happen on the
	// wire, but must not be mis-routed as a response either.
	f, err := Classify([]byte(`{"id":5,"method":"weird"}`))
	assert.NoError(t, err)
	assert.Equal(t, KindNotification, f.Kind)
}

func TestClassifyMalformedFrame(t *testing.T) {
	_, err := Classify([]byte(`not json`))
	assert.Error(t, err)
	assert.IsType(t, &ErrMalformedFrame{}, err)
}
