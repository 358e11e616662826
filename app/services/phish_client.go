package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jphish/campaign-service/app/dto"
	"github.com/jphish/campaign-service/config"
)

const defaultPhishAPIDomain = "http://localhost:8080"

// ErrUnauthorized is returned when the upstream server rejects the
// caller's credentials.
var ErrUnauthorized = errors.New("unauthorized")

// ResourceProvider fetches tenant-owned resources from the phish server.
// Lookup methods return (nil, nil) when the resource does not exist.
type ResourceProvider interface {
	ValidateToken(ctx context.Context, token, clearance string) (uint, error)
	GetUserGroup(ctx context.Context, id uint, token, clearance string) (*dto.UserGroup, error)
	GetEmailTemplate(ctx context.Context, id uint, token, clearance string) (*dto.EmailTemplate, error)
	GetLandingPageTemplate(ctx context.Context, id uint, token, clearance string) (*dto.LandingPageTemplate, error)
	UpdateLandingPageURL(ctx context.Context, id uint, pageURL, token, clearance string) error
	GetSendingProfile(ctx context.Context, id uint, token, clearance string) (*dto.SendingProfile, error)
}

type httpResourceProvider struct {
	cfg    config.PhishServerConfig
	client *http.Client
}

// NewHTTPResourceProvider returns a ResourceProvider backed by the phish
// server's REST API.
func NewHTTPResourceProvider(cfg config.PhishServerConfig) ResourceProvider {
	if cfg.APIDomain == "" {
		cfg.APIDomain = defaultPhishAPIDomain
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &httpResourceProvider{
		cfg: cfg,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *httpResourceProvider) ValidateToken(ctx context.Context, token, clearance string) (uint, error) {
	reqBody := dto.ValidateTokenRequest{Token: token}
	payload, _ := json.Marshal(reqBody)
	endpoint := c.cfg.APIDomain + "/auth/validateToken"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("clearance", clearance)
	resp, err := c.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return 0, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("validate token http status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to read response body: %w", err)
	}

	var tokenResp dto.ValidateTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return 0, fmt.Errorf("failed to decode JSON into ValidateTokenResponse: %w", err)
	}

	return tokenResp.ClientID, nil
}

func (c *httpResourceProvider) GetUserGroup(ctx context.Context, id uint, token, clearance string) (*dto.UserGroup, error) {
	var group dto.UserGroup
	found, err := c.getJSON(ctx, fmt.Sprintf("/usergroup/%d", id), token, clearance, &group)
	if err != nil || !found {
		return nil, err
	}
	return &group, nil
}

func (c *httpResourceProvider) GetEmailTemplate(ctx context.Context, id uint, token, clearance string) (*dto.EmailTemplate, error) {
	var tmpl dto.EmailTemplate
	found, err := c.getJSON(ctx, fmt.Sprintf("/emailTemplate/ID/%d", id), token, clearance, &tmpl)
	if err != nil || !found {
		return nil, err
	}
	return &tmpl, nil
}

func (c *httpResourceProvider) GetLandingPageTemplate(ctx context.Context, id uint, token, clearance string) (*dto.LandingPageTemplate, error) {
	var tmpl dto.LandingPageTemplate
	found, err := c.getJSON(ctx, fmt.Sprintf("/landingPageTemplate/ID/%d", id), token, clearance, &tmpl)
	if err != nil || !found {
		return nil, err
	}
	return &tmpl, nil
}

func (c *httpResourceProvider) GetSendingProfile(ctx context.Context, id uint, token, clearance string) (*dto.SendingProfile, error) {
	var profile dto.SendingProfile
	found, err := c.getJSON(ctx, fmt.Sprintf("/profile/%d", id), token, clearance, &profile)
	if err != nil || !found {
		return nil, err
	}
	return &profile, nil
}

func (c *httpResourceProvider) UpdateLandingPageURL(ctx context.Context, id uint, pageURL, token, clearance string) error {
	endpoint := fmt.Sprintf("%s/landingPageTemplate/updateUrl/%d?url=%s", c.cfg.APIDomain, id, url.QueryEscape(pageURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	c.setAuthHeaders(req, token, clearance)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("update landing page url http status: %d", resp.StatusCode)
	}
	return nil
}

// getJSON performs an authenticated GET and decodes the body into out.
// A 404 reports found=false without error.
func (c *httpResourceProvider) getJSON(ctx context.Context, path, token, clearance string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.APIDomain+path, http.NoBody)
	if err != nil {
		return false, err
	}
	c.setAuthHeaders(req, token, clearance)
	resp, err := c.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return false, nil
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return false, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("phish server http status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return false, fmt.Errorf("failed to decode JSON response: %w", err)
	}
	return true, nil
}

func (c *httpResourceProvider) setAuthHeaders(req *http.Request, token, clearance string) {
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("clearance", clearance)
}
