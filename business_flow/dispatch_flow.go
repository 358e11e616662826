// Package businessflow contains the core business logic and use cases for campaign dispatch workflows
package businessflow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/jphish/campaign-service/app/dto"
	"github.com/jphish/campaign-service/app/services"
	"github.com/jphish/campaign-service/config"
	"github.com/jphish/campaign-service/models"
	"github.com/jphish/campaign-service/repository"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// AuthContext carries the resolved caller identity together with the raw
// credentials, which are forwarded on every upstream resource fetch.
type AuthContext struct {
	Identity  services.Identity
	Token     string
	Clearance string
}

// DispatchFlow handles the create-and-send campaign pipeline
type DispatchFlow interface {
	CreateAndSend(ctx context.Context, req *dto.CreateAndSendRequest, auth *AuthContext, metadata *ClientMetadata) (*dto.CreateAndSendResponse, error)
}

// DispatchFlowImpl implements the campaign dispatch business flow
type DispatchFlowImpl struct {
	campaignRepo repository.CampaignRepository
	targetRepo   repository.CampaignTargetRepository
	provider     services.ResourceProvider
	provisioner  services.TransportProvisioner
	trackerCfg   config.TrackerConfig
	db           *gorm.DB
}

// NewDispatchFlow creates a new dispatch flow instance
func NewDispatchFlow(
	campaignRepo repository.CampaignRepository,
	targetRepo repository.CampaignTargetRepository,
	provider services.ResourceProvider,
	provisioner services.TransportProvisioner,
	db *gorm.DB,
	trackerCfg config.TrackerConfig,
) DispatchFlow {
	return &DispatchFlowImpl{
		campaignRepo: campaignRepo,
		targetRepo:   targetRepo,
		provider:     provider,
		provisioner:  provisioner,
		trackerCfg:   trackerCfg,
		db:           db,
	}
}

// dispatchResources bundles everything fetched from the phish server for
// one dispatch.
type dispatchResources struct {
	group   *dto.UserGroup
	email   *dto.EmailTemplate
	landing *dto.LandingPageTemplate
	profile *dto.SendingProfile
	domain  string
}

// CreateAndSend runs the complete dispatch pipeline: fetch and authorize
// the four referenced resources, persist the campaign with one tracking
// row per recipient, then deliver the personalized emails sequentially.
// Delivery failures are isolated per recipient; only a dispatch where no
// email leaves at all is reported as an error.
func (s *DispatchFlowImpl) CreateAndSend(ctx context.Context, req *dto.CreateAndSendRequest, auth *AuthContext, metadata *ClientMetadata) (*dto.CreateAndSendResponse, error) {
	res, err := s.fetchResources(ctx, req, auth)
	if err != nil {
		return nil, err
	}

	res.group.Users = filterRecipients(res.group.Users)
	if len(res.group.Users) == 0 {
		return nil, NewBusinessError("NO_RECIPIENTS", "User group has no members", ErrNoRecipients)
	}

	// Validate the port before any side effect so a malformed profile
	// rejects the request without touching upstream state.
	if err := validateSMTPPort(res.profile.SMTPPort); err != nil {
		return nil, NewBusinessError("INVALID_SMTP_PORT", "Sending profile SMTP port is invalid", err)
	}

	body, err := DecodeTemplateBody(res.email.Body)
	if err != nil {
		return nil, NewBusinessError("TEMPLATE_DECODE_FAILED", "Failed to decode email template body", err)
	}

	// Point the landing page template at the profile domain. This happens
	// exactly once per dispatch, before any email goes out, so every
	// unique link resolves by the time a recipient can click it.
	if err := s.provider.UpdateLandingPageURL(ctx, req.LandingPageTemplateID, res.domain, auth.Token, auth.Clearance); err != nil {
		return nil, NewBusinessError("LANDING_PAGE_UPDATE_FAILED", "Failed to update landing page URL", err)
	}

	campaign, targets, err := s.persistCampaign(ctx, req, auth, res)
	if err != nil {
		return nil, NewBusinessError("CAMPAIGN_CREATION_FAILED", "Campaign creation failed", err)
	}

	mailer, err := s.provisioner.Provision(res.profile)
	if err != nil {
		if errors.Is(err, services.ErrInvalidSMTPPort) {
			return nil, NewBusinessError("INVALID_SMTP_PORT", "Sending profile SMTP port is invalid", ErrInvalidSMTPPort)
		}
		return nil, NewBusinessError("TRANSPORT_PROVISION_FAILED", "Failed to provision SMTP transport", err)
	}

	sent, failed := s.deliverAll(ctx, mailer, res, body, targets)
	log.Printf("campaign %d dispatched: sent=%d failed=%d client_ip=%s request_id=%s",
		campaign.ID, sent, len(failed), metadata.IPAddress, metadata.RequestID)
	if sent == 0 {
		return nil, NewBusinessError("ALL_DELIVERIES_FAILED", "All email deliveries failed", ErrAllDeliveriesFailed)
	}

	return &dto.CreateAndSendResponse{
		Message:      "Campaign created and emails sent successfully!",
		CampaignID:   campaign.ID,
		UUID:         campaign.UUID.String(),
		SentCount:    sent,
		FailedCount:  len(failed),
		FailedEmails: failed,
	}, nil
}

// fetchResources pulls the four referenced resources and checks that the
// caller may act on each of them.
func (s *DispatchFlowImpl) fetchResources(ctx context.Context, req *dto.CreateAndSendRequest, auth *AuthContext) (*dispatchResources, error) {
	group, err := s.provider.GetUserGroup(ctx, req.UserGroupID, auth.Token, auth.Clearance)
	if err != nil {
		return nil, mapProviderError(err, "USER_GROUP_LOOKUP_FAILED", "Failed to lookup user group")
	}
	if group == nil {
		return nil, NewBusinessError("USER_GROUP_NOT_FOUND", "User group not found", ErrUserGroupNotFound)
	}
	if !auth.Identity.MayAccess(group.ClientID) {
		return nil, NewBusinessError("ACCESS_DENIED", "User group belongs to another client", ErrForbidden)
	}

	email, err := s.provider.GetEmailTemplate(ctx, req.EmailTemplateID, auth.Token, auth.Clearance)
	if err != nil {
		return nil, mapProviderError(err, "EMAIL_TEMPLATE_LOOKUP_FAILED", "Failed to lookup email template")
	}
	if email == nil {
		return nil, NewBusinessError("EMAIL_TEMPLATE_NOT_FOUND", "Email template not found", ErrEmailTemplateNotFound)
	}
	if !auth.Identity.MayAccess(email.ClientID) {
		return nil, NewBusinessError("ACCESS_DENIED", "Email template belongs to another client", ErrForbidden)
	}

	landing, err := s.provider.GetLandingPageTemplate(ctx, req.LandingPageTemplateID, auth.Token, auth.Clearance)
	if err != nil {
		return nil, mapProviderError(err, "LANDING_PAGE_LOOKUP_FAILED", "Failed to lookup landing page template")
	}
	if landing == nil {
		return nil, NewBusinessError("LANDING_PAGE_NOT_FOUND", "Landing page template not found", ErrLandingPageTemplateNotFound)
	}
	if !auth.Identity.MayAccess(landing.ClientID) {
		return nil, NewBusinessError("ACCESS_DENIED", "Landing page template belongs to another client", ErrForbidden)
	}

	profile, err := s.provider.GetSendingProfile(ctx, req.ProfileID, auth.Token, auth.Clearance)
	if err != nil {
		return nil, mapProviderError(err, "SENDING_PROFILE_LOOKUP_FAILED", "Failed to lookup sending profile")
	}
	if profile == nil {
		return nil, NewBusinessError("SENDING_PROFILE_NOT_FOUND", "Sending profile not found", ErrSendingProfileNotFound)
	}
	if !auth.Identity.MayAccess(profile.ClientID) {
		return nil, NewBusinessError("ACCESS_DENIED", "Sending profile belongs to another client", ErrForbidden)
	}

	if profile.DomainTLD == nil || strings.TrimSpace(*profile.DomainTLD) == "" {
		return nil, NewBusinessError("MISSING_DOMAIN", "Sending profile has no domain configured", ErrMissingDomain)
	}

	return &dispatchResources{
		group:   group,
		email:   email,
		landing: landing,
		profile: profile,
		domain:  strings.TrimSpace(*profile.DomainTLD),
	}, nil
}

// persistCampaign writes the campaign row and its pending tracking rows
// in one transaction. Unique links need the generated campaign id, so the
// targets are built inside the transaction after the campaign insert.
func (s *DispatchFlowImpl) persistCampaign(ctx context.Context, req *dto.CreateAndSendRequest, auth *AuthContext, res *dispatchResources) (*models.Campaign, []*models.CampaignTarget, error) {
	var campaign *models.Campaign
	var targets []*models.CampaignTarget

	err := repository.WithTransaction(ctx, s.db, func(txCtx context.Context) error {
		emails := make(pq.StringArray, 0, len(res.group.Users))
		for _, u := range res.group.Users {
			emails = append(emails, u.Email)
		}

		campaign = &models.Campaign{
			Name:            req.CampaignName,
			ClientID:        auth.Identity.StorageClientID(),
			SenderEmail:     &res.profile.ProfileEmailID,
			LandingPageLink: res.domain,
			RecipientEmails: emails,
		}
		if req.Description != "" {
			campaign.Description = &req.Description
		}
		if err := s.campaignRepo.Save(txCtx, campaign); err != nil {
			return fmt.Errorf("failed to save campaign: %w", err)
		}

		targets = make([]*models.CampaignTarget, 0, len(res.group.Users))
		for _, u := range res.group.Users {
			targets = append(targets, &models.CampaignTarget{
				CampaignID:  campaign.ID,
				UserID:      u.ID,
				UserEmail:   u.Email,
				UniqueLink:  BuildUniqueLink(res.domain, campaign.ID, u.ID, req.LandingPageTemplateID),
				EmailStatus: models.EmailStatusPending,
			})
		}
		if err := s.targetRepo.SaveBatch(txCtx, targets); err != nil {
			return fmt.Errorf("failed to save campaign targets: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return campaign, targets, nil
}

// deliverAll sends the personalized email to every target sequentially.
// Each successful delivery flips its tracking row to SENT immediately, so
// a crash mid-loop leaves an accurate record of what actually went out.
func (s *DispatchFlowImpl) deliverAll(ctx context.Context, mailer services.Mailer, res *dispatchResources, body string, targets []*models.CampaignTarget) (sent int, failed []string) {
	trackerBase := BuildTrackerBase(res.domain, s.trackerCfg.Host, s.trackerCfg.Port)

	for _, target := range targets {
		pixel := BuildTrackerPixel(trackerBase, target.ID)
		personalized := Personalize(body, target.UniqueLink, pixel)

		if err := mailer.Send(ctx, target.UserEmail, res.email.Subject, personalized); err != nil {
			failed = append(failed, target.UserEmail)
			continue
		}

		target.EmailStatus = models.EmailStatusSent
		if err := s.targetRepo.Update(ctx, target); err != nil {
			// The email is already out; the row stays PENDING and the
			// delivery still counts.
			sent++
			continue
		}
		sent++
	}
	return sent, failed
}

// filterRecipients drops group members without a usable email address so
// the snapshot never carries blank recipients.
func filterRecipients(users []dto.GroupUser) []dto.GroupUser {
	out := make([]dto.GroupUser, 0, len(users))
	for _, u := range users {
		u.Email = strings.TrimSpace(u.Email)
		if u.Email == "" {
			continue
		}
		out = append(out, u)
	}
	return out
}

func validateSMTPPort(raw string) error {
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("%w: %q", ErrInvalidSMTPPort, raw)
	}
	return nil
}

// mapProviderError keeps upstream auth failures distinguishable from
// transport errors.
func mapProviderError(err error, code, message string) error {
	if errors.Is(err, services.ErrUnauthorized) {
		return NewBusinessError("UNAUTHORIZED", "Unauthorized", ErrUnauthorized)
	}
	return NewBusinessError(code, message, err)
}
