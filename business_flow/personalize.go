package businessflow

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// Template placeholders understood by the personalizer.
const (
	placeholderFirstName  = "{{.FirstName}}"
	placeholderURL        = "{{.URL}}"
	placeholderTrackerURL = "{{.TrackerURL}}"
)

// Recipient display names are not stored upstream, so every greeting
// falls back to this value.
const defaultFirstName = "User"

var htmlEntityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&amp;", "&",
	"&quot;", `"`,
	"&nbsp;", " ",
)

var hostPortPattern = regexp.MustCompile(`:\d+`)

// DecodeTemplateBody turns a stored email template body into renderable
// HTML. Bodies arrive base64-encoded with a handful of HTML entities
// escaped; both layers are undone here, placeholders untouched.
func DecodeTemplateBody(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode template body: %w", err)
	}
	return htmlEntityReplacer.Replace(string(raw)), nil
}

// BuildUniqueLink returns the per-recipient landing page link.
func BuildUniqueLink(domain string, campaignID, userID, landingPageTemplateID uint) string {
	return fmt.Sprintf("%s/%d/%d/%d", domain, campaignID, userID, landingPageTemplateID)
}

// BuildTrackerBase rewrites the profile domain so the open-tracking pixel
// points at this service's port. An existing port is replaced, a bare host
// gets one appended. A non-empty hostOverride wins over the domain
// entirely, for deployments where the tracker is reachable at a different
// address than the landing pages.
func BuildTrackerBase(domain, hostOverride string, trackerPort int) string {
	if hostOverride != "" {
		return hostOverride
	}
	port := fmt.Sprintf(":%d", trackerPort)
	if hostPortPattern.MatchString(domain) {
		return hostPortPattern.ReplaceAllString(domain, port)
	}
	return domain + port
}

// BuildTrackerPixel returns the invisible image tag embedded in each
// outgoing email, unique per target row.
func BuildTrackerPixel(trackerBase string, targetID uint) string {
	trackerURL := fmt.Sprintf("%s/api/campaigns/tracker/%d", trackerBase, targetID)
	return fmt.Sprintf(`<img src="%s" alt="" width="1" height="1" />`, trackerURL)
}

// Personalize renders the decoded template body for one recipient.
func Personalize(body, uniqueLink, trackerPixel string) string {
	replacer := strings.NewReplacer(
		placeholderFirstName, defaultFirstName,
		placeholderURL, uniqueLink,
		placeholderTrackerURL, trackerPixel,
	)
	return replacer.Replace(body)
}
