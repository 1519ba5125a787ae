package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/firmsite-api/internal/models"
	"github.com/noah-isme/firmsite-api/pkg/mailer"
)

type mailerStub struct {
	sent []mailer.Message
	err  error
}

func (m *mailerStub) Send(ctx context.Context, msg mailer.Message) error {
	m.sent = append(m.sent, msg)
	return m.err
}

func sampleSubmission() models.ContactSubmission {
	return models.ContactSubmission{
		ReferenceID:    "0f8fad5b-d9cb-469f-a165-70867728950e",
		Name:           "Tom & Jerry",
		Phone:          "0812345678",
		Email:          "tom@example.com",
		Service:        string(models.ServiceWorkPermit),
		Message:        "Need help with <visa> paperwork",
		SocialHandle:   "tomj",
		SocialPlatform: "whatsapp",
		Locale:         "th",
	}
}

func TestEmailContactDeliveryCompose(t *testing.T) {
	delivery := NewEmailContactDelivery(&mailerStub{}, "office@firm.example", "Siam Accounting", testLogger())

	msg, err := delivery.Compose(sampleSubmission())
	require.NoError(t, err)
	require.Equal(t, []string{"office@firm.example"}, msg.To)
	require.Equal(t, "tom@example.com", msg.ReplyTo)
	require.Equal(t, "0f8fad5b-d9cb-469f-a165-70867728950e@firm.example", msg.MessageID)
	require.Equal(t, "[Siam Accounting] New enquiry: "+models.ServiceWorkPermit.Label()+" - Tom & Jerry", msg.Subject)
	require.Contains(t, msg.HTMLBody, "Tom &amp; Jerry")
	require.Contains(t, msg.HTMLBody, "&lt;visa&gt;")
	require.Contains(t, msg.HTMLBody, "WhatsApp")
	require.Contains(t, msg.HTMLBody, "tomj")
	require.NotContains(t, msg.HTMLBody, "<visa>")
}

func TestEmailContactDeliveryOmitsOptionalRows(t *testing.T) {
	delivery := NewEmailContactDelivery(&mailerStub{}, "office@firm.example", "", testLogger())

	submission := sampleSubmission()
	submission.SocialHandle = ""
	submission.Message = ""
	submission.Locale = ""

	msg, err := delivery.Compose(submission)
	require.NoError(t, err)
	require.Equal(t, "New enquiry: "+models.ServiceWorkPermit.Label()+" - Tom & Jerry", msg.Subject)
	require.NotContains(t, msg.HTMLBody, "WhatsApp")
	require.NotContains(t, msg.HTMLBody, "<h3>Message</h3>")
	require.NotContains(t, msg.HTMLBody, "Language")
}

func TestEmailContactDeliveryWrapsMailerError(t *testing.T) {
	stub := &mailerStub{err: errors.New("relay refused")}
	delivery := NewEmailContactDelivery(stub, "office@firm.example", "Siam Accounting", testLogger())

	err := delivery.Deliver(context.Background(), sampleSubmission())
	require.Error(t, err)
	require.ErrorIs(t, err, stub.err)
	require.Len(t, stub.sent, 1)
}

func TestLogContactDeliveryAlwaysSucceeds(t *testing.T) {
	delivery := NewLogContactDelivery(testLogger())
	require.NoError(t, delivery.Deliver(context.Background(), sampleSubmission()))
}

func TestPlatformLabelDefaultsToLine(t *testing.T) {
	require.Equal(t, "LINE ID", platformLabel(""))
	require.Equal(t, "LINE ID", platformLabel("line"))
	require.Equal(t, "WeChat", platformLabel("WeChat"))
	require.Equal(t, "localhost", messageIDDomain("nobody"))
}
