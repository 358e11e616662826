package services

import (
	"testing"

	"github.com/jphish/campaign-service/app/dto"
	"github.com/jphish/campaign-service/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProfile(port string) *dto.SendingProfile {
	return &dto.SendingProfile{
		ClientID:       5,
		DomainTLD:      utils.ToPtr("http://phish.example.com"),
		ProfileEmailID: "phisher@example.com",
		SMTPHost:       "smtp.example.com",
		SMTPPort:       port,
		SMTPUsername:   "phisher",
		SMTPPassword:   "secret",
	}
}

func TestGoMailProvisioner(t *testing.T) {
	provisioner := NewGoMailProvisioner()

	t.Run("SubmissionPort", func(t *testing.T) {
		mailer, err := provisioner.Provision(testProfile("587"))
		require.NoError(t, err)
		assert.NotNil(t, mailer)
	})

	t.Run("SMTPSPort", func(t *testing.T) {
		mailer, err := provisioner.Provision(testProfile("465"))
		require.NoError(t, err)
		assert.NotNil(t, mailer)
	})

	t.Run("NonStandardPort", func(t *testing.T) {
		mailer, err := provisioner.Provision(testProfile("2525"))
		require.NoError(t, err)
		assert.NotNil(t, mailer)
	})

	t.Run("PortWithWhitespace", func(t *testing.T) {
		mailer, err := provisioner.Provision(testProfile(" 587 "))
		require.NoError(t, err)
		assert.NotNil(t, mailer)
	})

	t.Run("NonNumericPort", func(t *testing.T) {
		_, err := provisioner.Provision(testProfile("smtp"))
		assert.ErrorIs(t, err, ErrInvalidSMTPPort)
	})

	t.Run("OutOfRangePort", func(t *testing.T) {
		_, err := provisioner.Provision(testProfile("70000"))
		assert.ErrorIs(t, err, ErrInvalidSMTPPort)

		_, err = provisioner.Provision(testProfile("0"))
		assert.ErrorIs(t, err, ErrInvalidSMTPPort)

		_, err = provisioner.Provision(testProfile("-25"))
		assert.ErrorIs(t, err, ErrInvalidSMTPPort)
	})

	t.Run("EmptyPort", func(t *testing.T) {
		_, err := provisioner.Provision(testProfile(""))
		assert.ErrorIs(t, err, ErrInvalidSMTPPort)
	})
}
