package ticktick

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindForStatus(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
	}{
		{401, KindAuthentication},
		{403, KindPermission},
		{404, KindNotFound},
		{429, KindRateLimit},
		{500, KindServer},
		{502, KindServer},
		{503, KindServer},
		{504, KindServer},
		{400, KindUnknown},
		{418, KindUnknown},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.kind, kindForStatus(tc.status), "status %d", tc.status)
	}
}

func TestKindOf(t *testing.T) {
	err := newError(KindTimeout, "deadline passed")
	assert.Equal(t, KindTimeout, KindOf(err))
	assert.True(t, IsKind(err, KindTimeout))

	wrapped := fmt.Errorf("scanning project: %w", err)
	assert.Equal(t, KindTimeout, KindOf(wrapped))

	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestErrorString(t *testing.T) {
	e := &Error{Kind: KindNotFound, StatusCode: 404, Message: "gone"}
	assert.Equal(t, "ticktick: not_found (404): gone", e.Error())

	e = &Error{Kind: KindValidation, Message: "task title cannot be empty"}
	assert.Equal(t, "ticktick: validation: task title cannot be empty", e.Error())
}
