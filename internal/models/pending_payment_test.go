package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaymentStateTransitions(t *testing.T) {
	assert.False(t, PaymentStatePending.IsTerminal())
	assert.True(t, PaymentStateCompleted.IsTerminal())
	assert.True(t, PaymentStateFailed.IsTerminal())

	assert.True(t, PaymentStatePending.CanTransition(PaymentStateCompleted))
	assert.True(t, PaymentStatePending.CanTransition(PaymentStateFailed))

	// Terminal states never move again, not even to each other.
	assert.False(t, PaymentStateCompleted.CanTransition(PaymentStateFailed))
	assert.False(t, PaymentStateFailed.CanTransition(PaymentStateCompleted))
	assert.False(t, PaymentStateCompleted.CanTransition(PaymentStatePending))
	assert.False(t, PaymentStatePending.CanTransition(PaymentStatePending))
}
