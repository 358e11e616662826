package models

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/jphish/campaign-service/utils"
	"gorm.io/gorm"
)

// EmailStatus represents the delivery status of a single target.
type EmailStatus string

const (
	EmailStatusPending EmailStatus = "PENDING"
	EmailStatusSent    EmailStatus = "SENT"
)

// String returns the string representation of the status
func (s EmailStatus) String() string {
	return string(s)
}

// Valid checks if the status is valid
func (s EmailStatus) Valid() bool {
	switch s {
	case EmailStatusPending, EmailStatusSent:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if the status may move to the given status.
// Delivery status only ever moves forward: PENDING → SENT.
func (s EmailStatus) CanTransitionTo(next EmailStatus) bool {
	return s == EmailStatusPending && next == EmailStatusSent
}

// Scan implements the sql.Scanner interface for EmailStatus
func (s *EmailStatus) Scan(value any) error {
	if value == nil {
		*s = ""
		return nil
	}

	switch v := value.(type) {
	case string:
		*s = EmailStatus(v)
	case []byte:
		*s = EmailStatus(string(v))
	default:
		return fmt.Errorf("cannot scan %T into EmailStatus", value)
	}

	return nil
}

// Value implements the driver.Valuer interface for EmailStatus
func (s EmailStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid EmailStatus: %s", s)
	}
	return string(s), nil
}

// CampaignTarget is one recipient's delivery-tracking row within a
// campaign. User id and email are snapshotted from the upstream group, not
// live references. EmailOpened is monotonic: once true it is never reset.
type CampaignTarget struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	CampaignID  uint        `gorm:"not null;index:idx_campaign_targets_campaign_id" json:"campaign_id"`
	UserID      uint        `gorm:"not null" json:"user_id"`
	UserEmail   string      `gorm:"not null" json:"user_email"`
	UniqueLink  string      `gorm:"not null" json:"unique_link"`
	EmailStatus EmailStatus `gorm:"not null;default:'PENDING';index:idx_campaign_targets_email_status" json:"email_status"`
	EmailOpened bool        `gorm:"not null;default:false" json:"email_opened"`
	CreatedAt   time.Time   `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt   *time.Time  `json:"updated_at,omitempty"`

	// Relations
	Campaign *Campaign `gorm:"foreignKey:CampaignID;references:ID" json:"-"`
}

// TableName returns the table name for the model
func (CampaignTarget) TableName() string {
	return "campaign_targets"
}

// BeforeCreate is called before creating a new record
func (t *CampaignTarget) BeforeCreate(tx *gorm.DB) error {
	if t.EmailStatus == "" {
		t.EmailStatus = EmailStatusPending
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = utils.UTCNow()
	}
	return nil
}

// BeforeUpdate is called before updating a record
func (t *CampaignTarget) BeforeUpdate(tx *gorm.DB) error {
	now := utils.UTCNow()
	t.UpdatedAt = &now
	return nil
}

// CampaignTargetFilter represents filter criteria for campaign targets
type CampaignTargetFilter struct {
	ID          *uint        `json:"id,omitempty"`
	CampaignID  *uint        `json:"campaign_id,omitempty"`
	UserEmail   *string      `json:"user_email,omitempty"`
	EmailStatus *EmailStatus `json:"email_status,omitempty"`
	EmailOpened *bool        `json:"email_opened,omitempty"`
}
