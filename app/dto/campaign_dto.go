package dto

// CreateAndSendRequest is the body of POST /api/campaigns/create_and_send.
type CreateAndSendRequest struct {
	UserGroupID           uint   `json:"userGroupId" validate:"required,min=1"`
	EmailTemplateID       uint   `json:"emailTemplateId" validate:"required,min=1"`
	LandingPageTemplateID uint   `json:"landingPageTemplateId" validate:"required,min=1"`
	ProfileID             uint   `json:"profileId" validate:"required,min=1"`
	CampaignName          string `json:"campaignName" validate:"required,min=1,max=255"`
	Description           string `json:"description,omitempty" validate:"omitempty,max=1024"`
}

// CreateAndSendResponse reports the dispatch outcome.
type CreateAndSendResponse struct {
	Message      string   `json:"message"`
	CampaignID   uint     `json:"campaign_id"`
	UUID         string   `json:"uuid"`
	SentCount    int      `json:"sent_count"`
	FailedCount  int      `json:"failed_count"`
	FailedEmails []string `json:"failed_emails,omitempty"`
}

// CampaignDTO is the read representation of a campaign.
type CampaignDTO struct {
	ID              uint     `json:"id"`
	UUID            string   `json:"uuid"`
	Name            string   `json:"name"`
	ClientID        uint     `json:"client_id"`
	Status          string   `json:"status"`
	SenderEmail     string   `json:"sender_email,omitempty"`
	Description     string   `json:"description,omitempty"`
	LandingPageLink string   `json:"landing_page_link"`
	RecipientEmails []string `json:"recipient_emails"`
	CreatedAt       string   `json:"created_at"`
}

// CampaignTargetDTO is the read representation of a delivery-tracking row.
type CampaignTargetDTO struct {
	ID          uint   `json:"id"`
	CampaignID  uint   `json:"campaign_id"`
	UserID      uint   `json:"user_id"`
	UserEmail   string `json:"user_email"`
	UniqueLink  string `json:"unique_link"`
	EmailStatus string `json:"email_status"`
	EmailOpened bool   `json:"email_opened"`
	CreatedAt   string `json:"created_at"`
}
