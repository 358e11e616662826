package models

import (
	"time"

	"github.com/jphish/campaign-service/utils"
	"gorm.io/gorm"
)

// Admin is a registered superuser. Only the directory lives here; admin
// account issuance and password storage belong to the identity service.
type Admin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"not null;uniqueIndex:uk_admins_email" json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
}

// TableName returns the table name for the model
func (Admin) TableName() string {
	return "admins"
}

// BeforeCreate is called before creating a new record
func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = utils.UTCNow()
	}
	return nil
}

// AdminFilter represents filter criteria for admins
type AdminFilter struct {
	ID    *uint   `json:"id,omitempty"`
	Email *string `json:"email,omitempty"`
}
