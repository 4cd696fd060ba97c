package enginerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineErrorIsMatchesType(t *testing.T) {
	err := NewProviderError("subscription not accessible", "req-123", nil)
	assert.True(t, errors.Is(err, NewProviderError("different message", "", nil)))
	assert.False(t, errors.Is(err, NewConfigError("unrelated")))
}

func TestIsTypeHelper(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NewInputError("machine:web01", "missing target_sku"))
	assert.True(t, IsType(err, TypeInput))
	assert.False(t, IsType(err, TypeConfig))
}

func TestUnwrapPreservesCause(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := NewProviderError("network failure", "", cause)
	assert.ErrorIs(t, err, cause)
}
