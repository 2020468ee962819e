package apperr

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAndAs(t *testing.T) {
	err := fmt.Errorf("record payment: %w", InvalidAmount("amount must be positive"))

	assert.True(t, Is(err, CodeInvalidAmount))
	assert.False(t, Is(err, CodeNotFound))
	assert.False(t, Is(fmt.Errorf("plain"), CodeNotFound))

	appErr, ok := As(err)
	assert.True(t, ok)
	assert.Equal(t, "amount must be positive", appErr.Message)
	assert.Equal(t, "INVALID_AMOUNT: amount must be positive", appErr.Error())

	assert.True(t, Is(ErrConcurrentUpdate, CodeConcurrentUpdate))
	assert.Equal(t, "event not found", NotFound("event").Message)
}
