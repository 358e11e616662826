// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/jphish/campaign-service/models"
)

// contextKey for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	ByFilter(ctx context.Context, filter F, orderBy string, limit, offset int) ([]*T, error)
	Save(ctx context.Context, entity *T) error
	SaveBatch(ctx context.Context, entities []*T) error
}

// CampaignRepository defines operations for campaigns
type CampaignRepository interface {
	Repository[models.Campaign, models.CampaignFilter]
	ByClientID(ctx context.Context, clientID uint, limit, offset int) ([]*models.Campaign, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.Campaign, error)
	Update(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id uint) error
}

// CampaignTargetRepository defines operations for campaign targets
type CampaignTargetRepository interface {
	Repository[models.CampaignTarget, models.CampaignTargetFilter]
	ByCampaignID(ctx context.Context, campaignID uint) ([]*models.CampaignTarget, error)
	Update(ctx context.Context, target *models.CampaignTarget) error
}

// AdminRepository defines read operations against the admin directory
type AdminRepository interface {
	Repository[models.Admin, models.AdminFilter]
	ByEmail(ctx context.Context, email string) (*models.Admin, error)
}
