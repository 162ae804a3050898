package core

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
	"whisp.dev/chat-widget/internal/config"
	"whisp.dev/chat-widget/internal/store"
)

// Notifier tells the site owner about new leads and messages.
type Notifier interface {
	NotifyNewLead(lead *store.Lead) error
	NotifyNewMessage(lead *store.Lead, message string) error
}

// NewNotifier returns a mail notifier when SMTP is configured, otherwise one
// that only logs.
func NewNotifier(cfg config.Config) Notifier {
	if !cfg.SMTPEnabled() {
		logrus.Info("SMTP not configured, lead notifications will only be logged")
		return LogNotifier{}
	}
	return &MailNotifier{
		dialer:    gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		from:      fmt.Sprintf("%s <%s>", cfg.SMTPFromName, cfg.SMTPFromEmail),
		to:        cfg.AdminEmail,
		detailURL: strings.TrimRight(cfg.AdminBaseURL, "/") + "/api/admin/leads/",
	}
}

type LogNotifier struct{}

func (LogNotifier) NotifyNewLead(lead *store.Lead) error {
	logrus.WithFields(logrus.Fields{"lead_id": lead.ID, "email": lead.Email}).Info("New chat lead")
	return nil
}

func (LogNotifier) NotifyNewMessage(lead *store.Lead, message string) error {
	logrus.WithFields(logrus.Fields{"lead_id": lead.ID, "length": len(message)}).Info("New chat message")
	return nil
}

type MailNotifier struct {
	dialer    *gomail.Dialer
	from      string
	to        string
	detailURL string
}

func (n *MailNotifier) NotifyNewLead(lead *store.Lead) error {
	body := fmt.Sprintf("New chat lead received:\n\nName: %s\nEmail: %s\nPhone: %s\nCountry: %s\n\nView lead details: %s%s\n",
		lead.Name, lead.Email, lead.Phone, lead.Country, n.detailURL, lead.ID)
	return n.send("New Chat Lead", body)
}

func (n *MailNotifier) NotifyNewMessage(lead *store.Lead, message string) error {
	body := fmt.Sprintf("New chat message from %s (%s):\n\nMessage: %s\n\nView full conversation: %s%s\n",
		lead.Name, lead.Email, message, n.detailURL, lead.ID)
	return n.send("New Chat Message from "+lead.Name, body)
}

func (n *MailNotifier) send(subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}
