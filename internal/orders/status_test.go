package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusAwaitingConfirmation, StatusPaid))
	assert.True(t, CanTransition(StatusAwaitingConfirmation, StatusCancelled))

	// terminal states allow nothing
	assert.False(t, CanTransition(StatusPaid, StatusCancelled))
	assert.False(t, CanTransition(StatusPaid, StatusAwaitingConfirmation))
	assert.False(t, CanTransition(StatusCancelled, StatusPaid))
	assert.False(t, CanTransition(StatusCancelled, StatusAwaitingConfirmation))

	// no self loops
	assert.False(t, CanTransition(StatusAwaitingConfirmation, StatusAwaitingConfirmation))

	// unknown states allow nothing
	assert.False(t, CanTransition(Status("mystery"), StatusPaid))
}
