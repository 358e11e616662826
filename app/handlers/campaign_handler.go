// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"encoding/base64"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/jphish/campaign-service/app/dto"
	"github.com/jphish/campaign-service/app/middleware"
	businessflow "github.com/jphish/campaign-service/business_flow"
	"github.com/jphish/campaign-service/utils"
)

// CampaignHandlerInterface defines the contract for campaign handlers
type CampaignHandlerInterface interface {
	CreateAndSend(c fiber.Ctx) error
	ListAll(c fiber.Ctx) error
	ListByClient(c fiber.Ctx) error
	Targets(c fiber.Ctx) error
	Delete(c fiber.Ctx) error
	UpdateStatus(c fiber.Ctx) error
	Tracker(c fiber.Ctx) error
	Health(c fiber.Ctx) error
}

// trackingPixel is served on every tracker hit, decoded once at startup.
var trackingPixel = mustDecodePixel()

func mustDecodePixel() []byte {
	pixel, err := base64.StdEncoding.DecodeString(utils.TrackingPixelBase64)
	if err != nil {
		panic("invalid tracking pixel constant: " + err.Error())
	}
	return pixel
}

// CampaignHandler handles campaign-related HTTP requests
type CampaignHandler struct {
	dispatchFlow businessflow.DispatchFlow
	campaignFlow businessflow.CampaignFlow
	validator    *validator.Validate
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(dispatchFlow businessflow.DispatchFlow, campaignFlow businessflow.CampaignFlow) *CampaignHandler {
	return &CampaignHandler{
		dispatchFlow: dispatchFlow,
		campaignFlow: campaignFlow,
		validator:    validator.New(),
	}
}

func (h *CampaignHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *CampaignHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// CreateAndSend handles the full campaign dispatch pipeline
// @Summary Create and send a campaign
// @Description Create a campaign from referenced resources and send the personalized emails
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param request body dto.CreateAndSendRequest true "Campaign dispatch data"
// @Success 200 {object} dto.APIResponse{data=dto.CreateAndSendResponse} "Campaign dispatched"
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 403 {object} dto.APIResponse "Resource owned by another client"
// @Failure 404 {object} dto.APIResponse "Referenced resource not found"
// @Router /api/campaigns/create_and_send [post]
func (h *CampaignHandler) CreateAndSend(c fiber.Ctx) error {
	var req dto.CreateAndSendRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	auth, err := h.authContext(c)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", "UNAUTHORIZED", nil)
	}

	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	metadata.SetRequestID(c.Get(businessflow.RequestIDKey))

	// Dispatch can take a while on large groups; give it a generous timeout.
	ctx, cancel := h.createRequestContextWithTimeout(c, "/api/campaigns/create_and_send", 5*time.Minute)
	defer cancel()

	result, err := h.dispatchFlow.CreateAndSend(ctx, &req, auth, metadata)
	if err != nil {
		return h.mapDispatchError(c, err)
	}

	middleware.RecordDispatch(result.SentCount, result.FailedCount)
	return h.SuccessResponse(c, fiber.StatusOK, result.Message, result)
}

// ListAll returns every campaign. Admin only.
// @Summary List all campaigns
// @Tags Campaigns
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.CampaignDTO}
// @Router /api/campaigns/all [get]
func (h *CampaignHandler) ListAll(c fiber.Ctx) error {
	identity, ok := middleware.IdentityFromLocals(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", "UNAUTHORIZED", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/campaigns/all")
	defer cancel()

	campaigns, err := h.campaignFlow.ListAll(ctx, identity)
	if err != nil {
		return h.mapCampaignError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaigns retrieved successfully", campaigns)
}

// ListByClient returns the campaigns owned by one client
// @Summary List campaigns of a client
// @Tags Campaigns
// @Produce json
// @Param id path int true "Client ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CampaignDTO}
// @Router /api/campaigns/client/{id} [get]
func (h *CampaignHandler) ListByClient(c fiber.Ctx) error {
	identity, ok := middleware.IdentityFromLocals(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", "UNAUTHORIZED", nil)
	}

	clientID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid client ID", "INVALID_CLIENT_ID", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/campaigns/client/:id")
	defer cancel()

	campaigns, err := h.campaignFlow.ListByClient(ctx, identity, clientID)
	if err != nil {
		return h.mapCampaignError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaigns retrieved successfully", campaigns)
}

// Targets returns the per-recipient tracking rows of a campaign
// @Summary List campaign targets
// @Tags Campaigns
// @Produce json
// @Param id path int true "Campaign ID"
// @Success 200 {object} dto.APIResponse{data=[]dto.CampaignTargetDTO}
// @Router /api/campaigns/{id}/targets [get]
func (h *CampaignHandler) Targets(c fiber.Ctx) error {
	identity, ok := middleware.IdentityFromLocals(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", "UNAUTHORIZED", nil)
	}

	campaignID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", "INVALID_CAMPAIGN_ID", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/campaigns/:id/targets")
	defer cancel()

	targets, err := h.campaignFlow.Targets(ctx, identity, campaignID)
	if err != nil {
		return h.mapCampaignError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign targets retrieved successfully", targets)
}

// Delete removes a campaign and its tracking rows
// @Summary Delete a campaign
// @Tags Campaigns
// @Produce json
// @Param id path int true "Campaign ID"
// @Success 200 {object} dto.APIResponse
// @Router /api/campaigns/{id} [delete]
func (h *CampaignHandler) Delete(c fiber.Ctx) error {
	identity, ok := middleware.IdentityFromLocals(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", "UNAUTHORIZED", nil)
	}

	campaignID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", "INVALID_CAMPAIGN_ID", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/campaigns/:id")
	defer cancel()

	if err := h.campaignFlow.Delete(ctx, identity, campaignID); err != nil {
		return h.mapCampaignError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign deleted successfully", nil)
}

// UpdateStatus sets the lifecycle status of a campaign
// @Summary Update campaign status
// @Tags Campaigns
// @Accept json
// @Produce json
// @Param id path int true "Campaign ID"
// @Param status query string true "New status"
// @Success 200 {object} dto.APIResponse{data=dto.CampaignDTO}
// @Router /api/campaigns/{id}/status [put]
func (h *CampaignHandler) UpdateStatus(c fiber.Ctx) error {
	identity, ok := middleware.IdentityFromLocals(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", "UNAUTHORIZED", nil)
	}

	campaignID, err := parseIDParam(c, "id")
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid campaign ID", "INVALID_CAMPAIGN_ID", nil)
	}

	ctx, cancel := h.createRequestContext(c, "/api/campaigns/:id/status")
	defer cancel()

	campaign, err := h.campaignFlow.UpdateStatus(ctx, identity, campaignID, c.Query("status"))
	if err != nil {
		return h.mapCampaignError(c, err)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Campaign status updated successfully", campaign)
}

// Tracker serves the open-tracking pixel. It always answers 200 with the
// same GIF regardless of whether the target exists, so mail scanners
// cannot enumerate valid ids.
// @Summary Email open tracking pixel
// @Tags Campaigns
// @Produce image/gif
// @Param id path int true "Target ID"
// @Success 200 {string} binary "1x1 GIF"
// @Router /api/campaigns/tracker/{id} [get]
func (h *CampaignHandler) Tracker(c fiber.Ctx) error {
	middleware.RecordOpenTracked()

	if targetID, err := parseIDParam(c, "id"); err == nil {
		ctx, cancel := h.createRequestContext(c, "/api/campaigns/tracker/:id")
		defer cancel()

		if err := h.campaignFlow.TrackOpen(ctx, targetID); err != nil {
			// Best effort only; the pixel is served no matter what.
			log.Printf("tracker: %v", err)
		}
	}

	c.Set(fiber.HeaderContentType, "image/gif")
	c.Set(fiber.HeaderCacheControl, "no-store, no-cache, must-revalidate")
	return c.Status(fiber.StatusOK).Send(trackingPixel)
}

// Health performs a health check for campaign endpoints
// @Summary Campaign service health check
// @Tags Campaigns
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/campaigns/health [get]
func (h *CampaignHandler) Health(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "campaign-handler",
	})
}

func (h *CampaignHandler) mapDispatchError(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsUnauthorized(err):
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Unauthorized", "UNAUTHORIZED", nil)
	case businessflow.IsForbidden(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Resource belongs to another client", "ACCESS_DENIED", nil)
	case businessflow.IsUserGroupNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "User group not found", "USER_GROUP_NOT_FOUND", nil)
	case businessflow.IsEmailTemplateNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Email template not found", "EMAIL_TEMPLATE_NOT_FOUND", nil)
	case businessflow.IsLandingPageTemplateNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Landing page template not found", "LANDING_PAGE_NOT_FOUND", nil)
	case businessflow.IsSendingProfileNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Sending profile not found", "SENDING_PROFILE_NOT_FOUND", nil)
	case businessflow.IsMissingDomain(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Sending profile has no domain configured", "MISSING_DOMAIN", nil)
	case businessflow.IsInvalidSMTPPort(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Sending profile SMTP port is invalid", "INVALID_SMTP_PORT", nil)
	case businessflow.IsNoRecipients(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "User group has no members", "NO_RECIPIENTS", nil)
	case businessflow.IsAllDeliveriesFailed(err):
		return h.ErrorResponse(c, fiber.StatusBadGateway, "All email deliveries failed", "ALL_DELIVERIES_FAILED", nil)
	default:
		log.Printf("create_and_send: %v", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Campaign dispatch failed", "DISPATCH_FAILED", nil)
	}
}

func (h *CampaignHandler) mapCampaignError(c fiber.Ctx, err error) error {
	switch {
	case businessflow.IsForbidden(err):
		return h.ErrorResponse(c, fiber.StatusForbidden, "Access denied", "ACCESS_DENIED", nil)
	case businessflow.IsCampaignNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", "CAMPAIGN_NOT_FOUND", nil)
	default:
		log.Printf("campaign: %v", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Campaign operation failed", "CAMPAIGN_OPERATION_FAILED", nil)
	}
}

// authContext bundles the identity and raw credentials stored by the
// auth middleware for flows that call the phish server.
func (h *CampaignHandler) authContext(c fiber.Ctx) (*businessflow.AuthContext, error) {
	identity, ok := middleware.IdentityFromLocals(c)
	if !ok {
		return nil, businessflow.ErrUnauthorized
	}
	token, _ := c.Locals(middleware.LocalsToken).(string)
	clearance, _ := c.Locals(middleware.LocalsClearance).(string)
	return &businessflow.AuthContext{
		Identity:  identity,
		Token:     token,
		Clearance: clearance,
	}, nil
}

func parseIDParam(c fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, strconv.ErrSyntax
	}
	return uint(id), nil
}

// createRequestContext creates a context with request-scoped values for observability and timeout
func (h *CampaignHandler) createRequestContext(c fiber.Ctx, endpoint string) (context.Context, context.CancelFunc) {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *CampaignHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	// Add request-scoped values for observability
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)

	return ctx, cancel
}

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	default:
		return err.Field() + " is invalid"
	}
}
