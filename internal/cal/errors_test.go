package cal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHTTPStatus(t *testing.T) {
	cases := []struct {
		status int
		want   FailureKind
	}{
		{404, NotFound},
		{401, Forbidden},
		{403, Forbidden},
		{429, Throttled},
		{408, Transient},
		{500, Transient},
		{503, Transient},
		{418, Malformed},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyHTTPStatus(tc.status), "status %d", tc.status)
	}
}

func TestFailureRetryable(t *testing.T) {
	assert.True(t, NewThrottled("r", "c", nil).Retryable())
	assert.True(t, NewTransient("r", "c", nil).Retryable())
	assert.True(t, NewNetwork("r", nil).Retryable())
	assert.False(t, NewNotFound("r", "c").Retryable())
	assert.False(t, NewForbidden("r", "c").Retryable())
	assert.False(t, NewMalformed("r", "c").Retryable())
}
