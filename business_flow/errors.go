// Package businessflow contains the core business logic and use cases for campaign dispatch workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access denied")

	// Resource lookup errors
	ErrUserGroupNotFound           = errors.New("user group not found")
	ErrEmailTemplateNotFound       = errors.New("email template not found")
	ErrLandingPageTemplateNotFound = errors.New("landing page template not found")
	ErrSendingProfileNotFound      = errors.New("sending profile not found")
	ErrCampaignNotFound            = errors.New("campaign not found")

	// Dispatch precondition errors
	ErrMissingDomain   = errors.New("sending profile has no domain configured")
	ErrInvalidSMTPPort = errors.New("sending profile SMTP port is invalid")
	ErrNoRecipients    = errors.New("user group has no members")

	// Delivery errors
	ErrAllDeliveriesFailed = errors.New("all email deliveries failed")

	// Status update errors
	ErrStatusRequired = errors.New("campaign status is required")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsForbidden(err error) bool {
	return errors.Is(err, ErrForbidden)
}

func IsUserGroupNotFound(err error) bool {
	return errors.Is(err, ErrUserGroupNotFound)
}

func IsEmailTemplateNotFound(err error) bool {
	return errors.Is(err, ErrEmailTemplateNotFound)
}

func IsLandingPageTemplateNotFound(err error) bool {
	return errors.Is(err, ErrLandingPageTemplateNotFound)
}

func IsSendingProfileNotFound(err error) bool {
	return errors.Is(err, ErrSendingProfileNotFound)
}

func IsCampaignNotFound(err error) bool {
	return errors.Is(err, ErrCampaignNotFound)
}

func IsMissingDomain(err error) bool {
	return errors.Is(err, ErrMissingDomain)
}

func IsInvalidSMTPPort(err error) bool {
	return errors.Is(err, ErrInvalidSMTPPort)
}

func IsNoRecipients(err error) bool {
	return errors.Is(err, ErrNoRecipients)
}

func IsAllDeliveriesFailed(err error) bool {
	return errors.Is(err, ErrAllDeliveriesFailed)
}
