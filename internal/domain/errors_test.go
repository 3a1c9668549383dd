package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	err := Errorf(ErrUserNotFound, "user with id %d not found", 42)

	assert.True(t, errors.Is(err, ErrUserNotFound))
	assert.False(t, errors.Is(err, ErrItemNotFound))
	assert.Equal(t, "user not found: user with id 42 not found", err.Error())
	assert.Equal(t, "user with id 42 not found", Describe(err))

	wrapped := fmt.Errorf("failed to add booking: %w", err)
	assert.True(t, errors.Is(wrapped, ErrUserNotFound))
	assert.Equal(t, "user with id 42 not found", Describe(wrapped))

	assert.Equal(t, "boom", Describe(errors.New("boom")))
}
