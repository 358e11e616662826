// Package businessflow contains the business logic for the application.
package businessflow

import (
	"time"

	"github.com/jphish/campaign-service/app/dto"
	"github.com/jphish/campaign-service/models"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds all client-related information for audit logging and request tracking
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// SetRequestID sets the request ID
func (cm *ClientMetadata) SetRequestID(requestID string) {
	cm.RequestID = requestID
}

// ToCampaignDTO converts a campaign model to its API representation
func ToCampaignDTO(campaign models.Campaign) dto.CampaignDTO {
	out := dto.CampaignDTO{
		ID:              campaign.ID,
		UUID:            campaign.UUID.String(),
		Name:            campaign.Name,
		ClientID:        campaign.ClientID,
		Status:          campaign.Status,
		LandingPageLink: campaign.LandingPageLink,
		RecipientEmails: campaign.RecipientEmails,
	}
	if campaign.SenderEmail != nil {
		out.SenderEmail = *campaign.SenderEmail
	}
	if campaign.Description != nil {
		out.Description = *campaign.Description
	}
	if !campaign.CreatedAt.IsZero() {
		out.CreatedAt = campaign.CreatedAt.Format(time.RFC3339)
	}
	return out
}

// ToCampaignTargetDTO converts a campaign target model to its API representation
func ToCampaignTargetDTO(target models.CampaignTarget) dto.CampaignTargetDTO {
	out := dto.CampaignTargetDTO{
		ID:          target.ID,
		CampaignID:  target.CampaignID,
		UserID:      target.UserID,
		UserEmail:   target.UserEmail,
		UniqueLink:  target.UniqueLink,
		EmailStatus: target.EmailStatus.String(),
		EmailOpened: target.EmailOpened,
	}
	if !target.CreatedAt.IsZero() {
		out.CreatedAt = target.CreatedAt.Format(time.RFC3339)
	}
	return out
}
