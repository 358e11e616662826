// Package businessflow contains the core business logic and use cases for campaign workflows
package businessflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/jphish/campaign-service/app/dto"
	"github.com/jphish/campaign-service/app/services"
	"github.com/jphish/campaign-service/models"
	"github.com/jphish/campaign-service/repository"
)

// CampaignFlow handles campaign read, lifecycle and tracking operations
type CampaignFlow interface {
	ListAll(ctx context.Context, identity services.Identity) ([]dto.CampaignDTO, error)
	ListByClient(ctx context.Context, identity services.Identity, clientID uint) ([]dto.CampaignDTO, error)
	Targets(ctx context.Context, identity services.Identity, campaignID uint) ([]dto.CampaignTargetDTO, error)
	Delete(ctx context.Context, identity services.Identity, campaignID uint) error
	UpdateStatus(ctx context.Context, identity services.Identity, campaignID uint, status string) (*dto.CampaignDTO, error)
	TrackOpen(ctx context.Context, targetID uint) error
}

// CampaignFlowImpl implements the campaign business flow
type CampaignFlowImpl struct {
	campaignRepo repository.CampaignRepository
	targetRepo   repository.CampaignTargetRepository
}

// NewCampaignFlow creates a new campaign flow instance
func NewCampaignFlow(
	campaignRepo repository.CampaignRepository,
	targetRepo repository.CampaignTargetRepository,
) CampaignFlow {
	return &CampaignFlowImpl{
		campaignRepo: campaignRepo,
		targetRepo:   targetRepo,
	}
}

// ListAll returns every campaign across all clients. Admin only.
func (s *CampaignFlowImpl) ListAll(ctx context.Context, identity services.Identity) ([]dto.CampaignDTO, error) {
	if !identity.Admin {
		return nil, NewBusinessError("ACCESS_DENIED", "Listing all campaigns requires admin access", ErrForbidden)
	}
	campaigns, err := s.campaignRepo.ListAll(ctx, 0, 0)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}
	return toCampaignDTOs(campaigns), nil
}

// ListByClient returns the campaigns owned by one client.
func (s *CampaignFlowImpl) ListByClient(ctx context.Context, identity services.Identity, clientID uint) ([]dto.CampaignDTO, error) {
	if !identity.MayAccess(clientID) {
		return nil, NewBusinessError("ACCESS_DENIED", "Campaigns belong to another client", ErrForbidden)
	}
	campaigns, err := s.campaignRepo.ByClientID(ctx, clientID, 0, 0)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LIST_FAILED", "Failed to list campaigns", err)
	}
	return toCampaignDTOs(campaigns), nil
}

// Targets returns the per-recipient tracking rows of one campaign.
func (s *CampaignFlowImpl) Targets(ctx context.Context, identity services.Identity, campaignID uint) ([]dto.CampaignTargetDTO, error) {
	campaign, err := s.ownedCampaign(ctx, identity, campaignID)
	if err != nil {
		return nil, err
	}

	targets, err := s.targetRepo.ByCampaignID(ctx, campaign.ID)
	if err != nil {
		return nil, NewBusinessError("TARGET_LIST_FAILED", "Failed to list campaign targets", err)
	}
	out := make([]dto.CampaignTargetDTO, 0, len(targets))
	for _, t := range targets {
		out = append(out, ToCampaignTargetDTO(*t))
	}
	return out, nil
}

// Delete removes a campaign and its tracking rows.
func (s *CampaignFlowImpl) Delete(ctx context.Context, identity services.Identity, campaignID uint) error {
	campaign, err := s.ownedCampaign(ctx, identity, campaignID)
	if err != nil {
		return err
	}
	if err := s.campaignRepo.Delete(ctx, campaign.ID); err != nil {
		return NewBusinessError("CAMPAIGN_DELETE_FAILED", "Failed to delete campaign", err)
	}
	return nil
}

// UpdateStatus sets the free-text lifecycle status of a campaign.
func (s *CampaignFlowImpl) UpdateStatus(ctx context.Context, identity services.Identity, campaignID uint, status string) (*dto.CampaignDTO, error) {
	status = strings.TrimSpace(status)
	if status == "" {
		return nil, NewBusinessError("STATUS_REQUIRED", "Campaign status is required", ErrStatusRequired)
	}

	campaign, err := s.ownedCampaign(ctx, identity, campaignID)
	if err != nil {
		return nil, err
	}

	campaign.Status = status
	if err := s.campaignRepo.Update(ctx, campaign); err != nil {
		return nil, NewBusinessError("CAMPAIGN_UPDATE_FAILED", "Failed to update campaign status", err)
	}

	out := ToCampaignDTO(*campaign)
	return &out, nil
}

// TrackOpen marks a tracking row as opened. Unknown ids are ignored so
// the pixel endpoint never leaks whether a target exists.
func (s *CampaignFlowImpl) TrackOpen(ctx context.Context, targetID uint) error {
	target, err := s.targetRepo.ByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("failed to lookup campaign target: %w", err)
	}
	if target == nil || target.EmailOpened {
		return nil
	}
	target.EmailOpened = true
	if err := s.targetRepo.Update(ctx, target); err != nil {
		return fmt.Errorf("failed to record email open: %w", err)
	}
	return nil
}

func (s *CampaignFlowImpl) ownedCampaign(ctx context.Context, identity services.Identity, campaignID uint) (*models.Campaign, error) {
	campaign, err := s.campaignRepo.ByID(ctx, campaignID)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_LOOKUP_FAILED", "Failed to lookup campaign", err)
	}
	if campaign == nil {
		return nil, NewBusinessError("CAMPAIGN_NOT_FOUND", "Campaign not found", ErrCampaignNotFound)
	}
	if !identity.MayAccess(campaign.ClientID) {
		return nil, NewBusinessError("ACCESS_DENIED", "Campaign belongs to another client", ErrForbidden)
	}
	return campaign, nil
}

func toCampaignDTOs(campaigns []*models.Campaign) []dto.CampaignDTO {
	out := make([]dto.CampaignDTO, 0, len(campaigns))
	for _, c := range campaigns {
		out = append(out, ToCampaignDTO(*c))
	}
	return out
}
