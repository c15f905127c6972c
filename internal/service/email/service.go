package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"sync"

	"github.com/resend/resend-go/v3"

	"ham-backend/internal/config"
	"ham-backend/internal/domain"
	"ham-backend/internal/pkg/i18n"
)

var (
	ErrDisabled    = errors.New("email delivery is not configured")
	ErrNoRecipient = errors.New("no email address known for user")
)

type Service interface {
	SendNotificationEmail(ctx context.Context, notif *domain.Notification) error
}

// Directory resolves a user id to the address notification mail goes to.
type Directory interface {
	EmailFor(userID string) (string, bool)
}

// ContactBook is a Directory filled from verified token claims as users
// authenticate.
type ContactBook struct {
	addresses sync.Map
}

func NewContactBook() *ContactBook {
	return &ContactBook{}
}

func (b *ContactBook) Remember(userID, address string) {
	if userID == "" || address == "" {
		return
	}
	b.addresses.Store(userID, address)
}

func (b *ContactBook) EmailFor(userID string) (string, bool) {
	v, ok := b.addresses.Load(userID)
	if !ok {
		return "", false
	}
	return v.(string), true
}

var notificationTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: sans-serif">
  <h2>{{.Title}}</h2>
  <p>{{.Content}}</p>
  <hr>
  <p style="color: #888; font-size: 12px">{{.Footer}}</p>
</body>
</html>`))

type service struct {
	client    *resend.Client
	config    *config.Config
	directory Directory
}

func NewService(cfg *config.Config, directory Directory) Service {
	var client *resend.Client
	if cfg.ResendAPIKey != "" {
		client = resend.NewClient(cfg.ResendAPIKey)
	}
	return &service{
		client:    client,
		config:    cfg,
		directory: directory,
	}
}

func (s *service) SendNotificationEmail(ctx context.Context, notif *domain.Notification) error {
	if s.client == nil {
		return ErrDisabled
	}

	to, ok := s.directory.EmailFor(notif.UserID)
	if !ok {
		return ErrNoRecipient
	}

	subject, body, err := renderNotification(s.config.DefaultLocale, notif)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("HAM Marketplace <%s>", s.config.FromEmail),
		To:      []string{to},
		Html:    body,
		Subject: subject,
	}

	_, err = s.client.Emails.Send(params)
	return err
}

func renderNotification(locale string, notif *domain.Notification) (string, string, error) {
	subject := i18n.Translate(locale, "subject."+string(notif.Type))
	if notif.Title != "" {
		subject = subject + ": " + notif.Title
	}

	data := struct {
		Title   string
		Content string
		Footer  string
	}{
		Title:   notif.Title,
		Content: notif.Content,
		Footer:  i18n.Translate(locale, "footer"),
	}

	var body bytes.Buffer
	if err := notificationTemplate.Execute(&body, data); err != nil {
		return "", "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return subject, body.String(), nil
}
