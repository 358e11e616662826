package repository

import (
	"context"
	"fmt"

	"github.com/jphish/campaign-service/models"
	"gorm.io/gorm"
)

// CampaignTargetRepositoryImpl implements the CampaignTargetRepository interface
type CampaignTargetRepositoryImpl struct {
	*BaseRepository[models.CampaignTarget, models.CampaignTargetFilter]
}

// NewCampaignTargetRepository creates a new campaign target repository
func NewCampaignTargetRepository(db *gorm.DB) CampaignTargetRepository {
	return &CampaignTargetRepositoryImpl{
		BaseRepository: NewBaseRepository[models.CampaignTarget, models.CampaignTargetFilter](db),
	}
}

// ByFilter retrieves targets matching the filter criteria
func (r *CampaignTargetRepositoryImpl) ByFilter(ctx context.Context, filter models.CampaignTargetFilter, orderBy string, limit, offset int) ([]*models.CampaignTarget, error) {
	db := r.getDB(ctx)

	query := db.Model(&models.CampaignTarget{})
	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.CampaignID != nil {
		query = query.Where("campaign_id = ?", *filter.CampaignID)
	}
	if filter.UserEmail != nil {
		query = query.Where("user_email = ?", *filter.UserEmail)
	}
	if filter.EmailStatus != nil {
		query = query.Where("email_status = ?", *filter.EmailStatus)
	}
	if filter.EmailOpened != nil {
		query = query.Where("email_opened = ?", *filter.EmailOpened)
	}

	if orderBy != "" {
		query = query.Order(orderBy)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	var targets []*models.CampaignTarget
	if err := query.Find(&targets).Error; err != nil {
		return nil, fmt.Errorf("failed to find campaign targets by filter: %w", err)
	}

	return targets, nil
}

// ByCampaignID retrieves all targets of a campaign in stored order
func (r *CampaignTargetRepositoryImpl) ByCampaignID(ctx context.Context, campaignID uint) ([]*models.CampaignTarget, error) {
	filter := models.CampaignTargetFilter{CampaignID: &campaignID}
	return r.ByFilter(ctx, filter, "id ASC", 0, 0)
}

// Update updates a single target
func (r *CampaignTargetRepositoryImpl) Update(ctx context.Context, target *models.CampaignTarget) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	err = db.Save(target).Error
	if err != nil {
		return fmt.Errorf("failed to update campaign target: %w", err)
	}

	return nil
}
