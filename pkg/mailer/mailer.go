package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Message is an outbound email.
type Message struct {
	MessageID string
	From      string
	To        []string
	ReplyTo   string
	Subject   string
	HTMLBody  string
	TextBody  string
}

// Config describes how to reach the SMTP relay.
type Config struct {
	Host      string
	Port      int
	User      string
	Pass      string
	From      string
	HelloName string
}

// Dialer abstracts net.Dialer to simplify testing.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Option configures the SMTP mailer.
type Option func(*SMTPMailer)

// WithDialer swaps the network dialer used to reach the relay.
func WithDialer(d Dialer) Option {
	return func(m *SMTPMailer) {
		if d != nil {
			m.dialer = d
		}
	}
}

// WithTLSConfig overrides the TLS configuration used for STARTTLS.
func WithTLSConfig(cfg *tls.Config) Option {
	return func(m *SMTPMailer) {
		m.tlsConfig = cfg
	}
}

// WithClock replaces the clock used for the Date header.
func WithClock(now func() time.Time) Option {
	return func(m *SMTPMailer) {
		if now != nil {
			m.now = now
		}
	}
}

// WithMaxTries bounds the number of delivery attempts for transient failures.
func WithMaxTries(tries uint) Option {
	return func(m *SMTPMailer) {
		if tries > 0 {
			m.maxTries = tries
		}
	}
}

// SMTPMailer sends messages through an SMTP relay.
type SMTPMailer struct {
	logger    zerolog.Logger
	host      string
	port      int
	from      string
	helloName string
	auth      smtp.Auth
	tlsConfig *tls.Config
	dialer    Dialer
	now       func() time.Time
	maxTries  uint
}

// NewSMTPMailer constructs a mailer for the configured relay.
func NewSMTPMailer(cfg Config, logger zerolog.Logger, opts ...Option) (*SMTPMailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("mailer: host is required")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("mailer: invalid port %d", cfg.Port)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(cfg.From)); err != nil {
		return nil, fmt.Errorf("mailer: invalid from address: %w", err)
	}

	m := &SMTPMailer{
		logger:    logger.With().Str("component", "smtp_mailer").Logger(),
		host:      strings.TrimSpace(cfg.Host),
		port:      cfg.Port,
		from:      strings.TrimSpace(cfg.From),
		helloName: "localhost",
		dialer:    &net.Dialer{Timeout: 30 * time.Second},
		now:       time.Now,
		maxTries:  3,
		tlsConfig: &tls.Config{ServerName: strings.TrimSpace(cfg.Host), MinVersion: tls.VersionTLS12},
	}
	if name := strings.TrimSpace(cfg.HelloName); name != "" {
		m.helloName = name
	}
	if strings.TrimSpace(cfg.User) != "" {
		m.auth = smtp.PlainAuth("", cfg.User, cfg.Pass, m.host)
	}

	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}

	return m, nil
}

// Send delivers msg, retrying transient relay failures with exponential backoff.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("mailer: at least one recipient is required")
	}

	from := strings.TrimSpace(msg.From)
	if from == "" {
		from = m.from
	}
	envelopeFrom, err := envelopeAddress(from)
	if err != nil {
		return fmt.Errorf("mailer: invalid from address: %w", err)
	}

	recipients := make([]string, 0, len(msg.To))
	for _, to := range msg.To {
		addr, err := envelopeAddress(to)
		if err != nil {
			return fmt.Errorf("mailer: invalid recipient %q: %w", to, err)
		}
		recipients = append(recipients, addr)
	}

	body := m.Build(msg, from)

	ctx, span := otel.Tracer("github.com/noah-isme/firmsite-api/pkg/mailer").Start(ctx, "smtp.send")
	defer span.End()
	span.SetAttributes(attribute.String("smtp.host", m.host), attribute.Int("smtp.recipients", len(recipients)))

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = 500 * time.Millisecond
	exp.MaxInterval = 5 * time.Second

	attempt := 0
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := m.deliver(ctx, envelopeFrom, recipients, body)
		if err == nil {
			return struct{}{}, nil
		}
		if !isTransient(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		m.logger.Warn().Err(err).Int("attempt", attempt).Str("message_id", msg.MessageID).Msg("smtp delivery attempt failed")
		return struct{}{}, err
	}, backoff.WithBackOff(exp), backoff.WithMaxTries(m.maxTries))

	span.SetAttributes(attribute.Int("smtp.attempts", attempt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "smtp delivery failed")
	}
	return err
}

// Build renders msg as an RFC 5322 message with CRLF line endings.
func (m *SMTPMailer) Build(msg Message, from string) []byte {
	headers := map[string]string{
		"From":         sanitizeHeaderValue(from),
		"To":           sanitizeHeaderValue(strings.Join(msg.To, ", ")),
		"Subject":      sanitizeHeaderValue(msg.Subject),
		"Date":         m.now().UTC().Format(time.RFC1123Z),
		"Mime-Version": "1.0",
	}
	if replyTo := sanitizeHeaderValue(msg.ReplyTo); replyTo != "" {
		headers["Reply-To"] = replyTo
	}
	if id := sanitizeHeaderValue(msg.MessageID); id != "" {
		headers["Message-Id"] = "<" + strings.Trim(id, "<>") + ">"
	}

	content := msg.HTMLBody
	headers["Content-Type"] = "text/html; charset=UTF-8"
	if content == "" {
		content = msg.TextBody
		headers["Content-Type"] = "text/plain; charset=UTF-8"
	}

	keys := make([]string, 0, len(headers))
	for key := range headers {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, key := range keys {
		if headers[key] == "" {
			continue
		}
		buf.WriteString(key)
		buf.WriteString(": ")
		buf.WriteString(headers[key])
		buf.WriteString("\r\n")
	}
	buf.WriteString("\r\n")
	buf.WriteString(normalizeBody(content))

	return buf.Bytes()
}

func (m *SMTPMailer) deliver(ctx context.Context, from string, recipients []string, message []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	conn, err := m.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("mailer: dial: %w", err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return fmt.Errorf("mailer: new client: %w", err)
	}
	defer client.Close()

	if err := client.Hello(m.helloName); err != nil {
		return fmt.Errorf("mailer: hello: %w", err)
	}

	if m.tlsConfig != nil {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(m.tlsConfig.Clone()); err != nil {
				return fmt.Errorf("mailer: starttls: %w", err)
			}
		}
	}

	if m.auth != nil {
		if ok, _ := client.Extension("AUTH"); ok {
			if err := client.Auth(m.auth); err != nil {
				return fmt.Errorf("mailer: auth: %w", err)
			}
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mailer: mail from: %w", err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("mailer: rcpt to %s: %w", rcpt, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("mailer: data: %w", err)
	}
	if _, err := writer.Write(message); err != nil {
		_ = writer.Close()
		return fmt.Errorf("mailer: data write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("mailer: data close: %w", err)
	}

	if err := client.Quit(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("mailer: quit: %w", err)
	}
	return nil
}

// isTransient reports whether a relay failure is worth another attempt.
// 4xx replies and network errors are retried; 5xx replies are final.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return tpErr.Code >= 400 && tpErr.Code < 500
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func envelopeAddress(value string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(value))
	if err != nil {
		return "", err
	}
	return addr.Address, nil
}

func normalizeBody(body string) string {
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")
	return strings.ReplaceAll(normalized, "\n", "\r\n")
}

func sanitizeHeaderValue(value string) string {
	clean := strings.ReplaceAll(value, "\r", " ")
	clean = strings.ReplaceAll(clean, "\n", " ")
	return strings.TrimSpace(clean)
}
