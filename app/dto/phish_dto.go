package dto

// Payloads exchanged with the phish server. Field names follow its wire
// format, not this service's snake_case convention.

// ValidateTokenRequest is the body of POST /auth/validateToken.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse carries the resolved tenant id. Zero means admin.
type ValidateTokenResponse struct {
	ClientID uint `json:"clientId"`
}

// GroupUser is one recipient inside a user group.
type GroupUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// UserGroup is the payload of GET /usergroup/{id}.
type UserGroup struct {
	ClientID  uint        `json:"clientId"`
	GroupName string      `json:"groupName"`
	Users     []GroupUser `json:"users"`
}

// EmailTemplate is the payload of GET /emailTemplate/ID/{id}. Body is
// base64-encoded HTML.
type EmailTemplate struct {
	ClientID uint   `json:"clientId"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
}

// LandingPageTemplate is the payload of GET /landingPageTemplate/ID/{id}.
type LandingPageTemplate struct {
	ClientID uint   `json:"clientId"`
	Code     string `json:"code"`
}

// SendingProfile is the payload of GET /profile/{id}. The SMTP port comes
// over the wire as a string and is validated during transport provisioning.
type SendingProfile struct {
	ClientID       uint    `json:"clientId"`
	DomainTLD      *string `json:"domainTld"`
	ProfileEmailID string  `json:"profileEmailId"`
	SMTPHost       string  `json:"profileSMTPHost"`
	SMTPPort       string  `json:"profileSMTPPort"`
	SMTPUsername   string  `json:"profileSMTPUsername"`
	SMTPPassword   string  `json:"profileSMTPPassword"`
}
