package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeModelUnavailable, "model call failed", CategoryTemporary)

	assert.ErrorIs(t, err, cause)
	assert.True(t, HasCode(err, CodeModelUnavailable))
	assert.False(t, HasCode(err, CodeLoopLimitExceeded))
	assert.Equal(t, CategoryTemporary, GetCategory(err))
}

func TestBuilderProducesCompleteError(t *testing.T) {
	err := NewBuilder(CodeLoopLimitExceeded, "query did not settle").
		Permanent().
		WithSuggestion("break the request into smaller steps").
		Build()

	require.True(t, HasCode(err, CodeLoopLimitExceeded))
	assert.Equal(t, CategoryPermanent, GetCategory(err))
	assert.False(t, IsRetryable(err))
	assert.Contains(t, FormatUserMessage(err), "break the request")
}

func TestTemporaryIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(Temporary(CodeModelUnavailable, "api down")))
	assert.False(t, IsRetryable(Permanent(CodeConfigInvalid, "bad config")))
}

func TestHasCodeOnPlainError(t *testing.T) {
	assert.False(t, HasCode(errors.New("plain"), CodeModelUnavailable))
	assert.False(t, HasCode(nil, CodeModelUnavailable))
}
