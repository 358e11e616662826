package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jphish/campaign-service/app/dto"
	"github.com/wneessen/go-mail"
)

// ErrInvalidSMTPPort is returned when a sending profile carries a port
// value that is not a usable TCP port.
var ErrInvalidSMTPPort = errors.New("invalid SMTP port")

const (
	smtpPortSubmission = 587
	smtpPortSMTPS      = 465
)

// Mailer delivers one HTML email over an already-provisioned transport.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// TransportProvisioner builds a Mailer from a tenant's sending profile.
// A fresh transport is provisioned per dispatch; nothing is pooled across
// campaigns.
type TransportProvisioner interface {
	Provision(profile *dto.SendingProfile) (Mailer, error)
}

type goMailProvisioner struct{}

// NewGoMailProvisioner returns the production TransportProvisioner.
func NewGoMailProvisioner() TransportProvisioner {
	return &goMailProvisioner{}
}

func (p *goMailProvisioner) Provision(profile *dto.SendingProfile) (Mailer, error) {
	port, err := strconv.Atoi(strings.TrimSpace(profile.SMTPPort))
	if err != nil || port <= 0 || port > 65535 {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSMTPPort, profile.SMTPPort)
	}

	opts := []mail.Option{
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(profile.SMTPUsername),
		mail.WithPassword(profile.SMTPPassword),
	}
	// Port decides the TLS mode: submission requires STARTTLS, SMTPS is
	// TLS from the first byte, anything else upgrades when offered.
	switch port {
	case smtpPortSubmission:
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	case smtpPortSMTPS:
		opts = append(opts, mail.WithSSLPort(false))
	default:
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(profile.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &goMailTransport{
		client: client,
		from:   profile.ProfileEmailID,
	}, nil
}

type goMailTransport struct {
	client *mail.Client
	from   string
}

func (t *goMailTransport) Send(ctx context.Context, to, subject, htmlBody string) error {
	// Strip CR/LF from the subject to prevent header injection.
	subject = strings.NewReplacer("\r", "", "\n", "").Replace(subject)

	m := mail.NewMsg()
	if err := m.From(t.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := t.client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}
