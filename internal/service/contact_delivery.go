package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/rs/zerolog"

	"github.com/noah-isme/firmsite-api/internal/models"
	"github.com/noah-isme/firmsite-api/pkg/mailer"
)

// Mailer sends a composed email.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// LogContactDelivery is a basic provider that logs submissions instead of mailing them.
type LogContactDelivery struct {
	logger zerolog.Logger
}

// NewLogContactDelivery constructs a logging provider.
func NewLogContactDelivery(logger zerolog.Logger) *LogContactDelivery {
	return &LogContactDelivery{logger: logger.With().Str("component", "contact_delivery").Logger()}
}

// Deliver logs the submission and returns nil to indicate success.
func (l *LogContactDelivery) Deliver(ctx context.Context, submission models.ContactSubmission) error {
	l.logger.Info().
		Str("reference_id", submission.ReferenceID).
		Str("service", submission.Service).
		Msg("contact submission delivered to log inbox")
	return nil
}

var notificationTemplate = template.Must(template.New("contact").Parse(`<!DOCTYPE html>
<html><body style="font-family:Arial,sans-serif;color:#1f2937">
<h2>New enquiry from the website</h2>
<table cellpadding="6" style="border-collapse:collapse">
<tr><td><strong>Reference</strong></td><td>{{.ReferenceID}}</td></tr>
<tr><td><strong>Name</strong></td><td>{{.Name}}</td></tr>
<tr><td><strong>Phone</strong></td><td>{{.Phone}}</td></tr>
<tr><td><strong>Email</strong></td><td>{{.Email}}</td></tr>
<tr><td><strong>Service</strong></td><td>{{.ServiceLabel}}</td></tr>
{{- if .SocialHandle}}
<tr><td><strong>{{.PlatformLabel}}</strong></td><td>{{.SocialHandle}}</td></tr>
{{- end}}
{{- if .Locale}}
<tr><td><strong>Language</strong></td><td>{{.Locale}}</td></tr>
{{- end}}
</table>
{{- if .Message}}
<h3>Message</h3>
<p style="white-space:pre-wrap">{{.Message}}</p>
{{- end}}
</body></html>
`))

type notificationView struct {
	models.ContactSubmission
	ServiceLabel  string
	PlatformLabel string
}

// EmailContactDelivery mails each submission to the operator inbox.
type EmailContactDelivery struct {
	mailer   Mailer
	inbox    string
	siteName string
	logger   zerolog.Logger
}

// NewEmailContactDelivery constructs a delivery that mails inbox through m.
func NewEmailContactDelivery(m Mailer, inbox, siteName string, logger zerolog.Logger) *EmailContactDelivery {
	return &EmailContactDelivery{
		mailer:   m,
		inbox:    inbox,
		siteName: siteName,
		logger:   logger.With().Str("component", "contact_delivery").Logger(),
	}
}

// Deliver composes the notification email and hands it to the mailer.
func (d *EmailContactDelivery) Deliver(ctx context.Context, submission models.ContactSubmission) error {
	msg, err := d.Compose(submission)
	if err != nil {
		return err
	}
	if err := d.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("send contact notification %s: %w", submission.ReferenceID, err)
	}
	d.logger.Info().Str("reference_id", submission.ReferenceID).Msg("contact notification sent")
	return nil
}

// Compose renders the notification for submission.
func (d *EmailContactDelivery) Compose(submission models.ContactSubmission) (mailer.Message, error) {
	view := notificationView{
		ContactSubmission: submission,
		ServiceLabel:      models.ServiceCategory(submission.Service).Label(),
		PlatformLabel:     platformLabel(submission.SocialPlatform),
	}

	var body bytes.Buffer
	if err := notificationTemplate.Execute(&body, view); err != nil {
		return mailer.Message{}, fmt.Errorf("render contact notification: %w", err)
	}

	subject := fmt.Sprintf("New enquiry: %s - %s", view.ServiceLabel, submission.Name)
	if d.siteName != "" {
		subject = fmt.Sprintf("[%s] %s", d.siteName, subject)
	}

	return mailer.Message{
		MessageID: submission.ReferenceID + "@" + messageIDDomain(d.inbox),
		To:        []string{d.inbox},
		ReplyTo:   submission.Email,
		Subject:   subject,
		HTMLBody:  body.String(),
	}, nil
}

func platformLabel(platform string) string {
	switch strings.ToLower(platform) {
	case "whatsapp":
		return "WhatsApp"
	case "wechat":
		return "WeChat"
	case "telegram":
		return "Telegram"
	case "facebook":
		return "Facebook"
	default:
		return "LINE ID"
	}
}

func messageIDDomain(address string) string {
	if at := strings.LastIndex(address, "@"); at >= 0 && at < len(address)-1 {
		return strings.Trim(address[at+1:], "<> ")
	}
	return "localhost"
}
