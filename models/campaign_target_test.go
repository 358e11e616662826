package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailStatus(t *testing.T) {
	assert.True(t, EmailStatusPending.Valid())
	assert.True(t, EmailStatusSent.Valid())
	assert.False(t, EmailStatus("BOUNCED").Valid())

	// The only legal transition is PENDING -> SENT
	assert.True(t, EmailStatusPending.CanTransitionTo(EmailStatusSent))
	assert.False(t, EmailStatusSent.CanTransitionTo(EmailStatusPending))
	assert.False(t, EmailStatusSent.CanTransitionTo(EmailStatusSent))
}
