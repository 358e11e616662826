package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/jphish/campaign-service/utils"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// CampaignStatus is a free-text lifecycle label. The dispatcher only ever
// writes CampaignStatusActive itself; administrative status updates may set
// arbitrary labels.
type CampaignStatus = string

const (
	CampaignStatusActive    CampaignStatus = "ACTIVE"
	CampaignStatusCompleted CampaignStatus = "COMPLETED"
	CampaignStatusArchived  CampaignStatus = "ARCHIVED"
)

// Campaign represents one send job. Recipient emails are snapshotted at
// creation time in insertion order; later changes to the upstream user
// group do not propagate.
type Campaign struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	UUID            uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uk_campaigns_uuid" json:"uuid"`
	Name            string         `gorm:"not null" json:"name"`
	ClientID        uint           `gorm:"not null;index:idx_campaigns_client_id" json:"client_id"`
	Status          CampaignStatus `gorm:"not null;default:'ACTIVE';index:idx_campaigns_status" json:"status"`
	SenderEmail     *string        `json:"sender_email,omitempty"`
	Description     *string        `gorm:"type:text" json:"description,omitempty"`
	LandingPageLink string         `json:"landing_page_link"`
	RecipientEmails pq.StringArray `gorm:"type:text[];not null" json:"recipient_emails"`
	CreatedAt       time.Time      `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_campaigns_created_at" json:"created_at"`
	UpdatedAt       *time.Time     `json:"updated_at,omitempty"`

	// Relations
	Targets []CampaignTarget `gorm:"foreignKey:CampaignID" json:"targets,omitempty"`
}

// TableName returns the table name for the model
func (Campaign) TableName() string {
	return "campaigns"
}

// BeforeCreate is called before creating a new record
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.UUID == uuid.Nil {
		c.UUID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CampaignStatusActive
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (c *Campaign) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	c.UpdatedAt = &now
	return nil
}

// CampaignFilter represents filter criteria for campaigns
type CampaignFilter struct {
	ID            *uint      `json:"id,omitempty"`
	UUID          *uuid.UUID `json:"uuid,omitempty"`
	ClientID      *uint      `json:"client_id,omitempty"`
	Status        *string    `json:"status,omitempty"`
	Name          *string    `json:"name,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}
