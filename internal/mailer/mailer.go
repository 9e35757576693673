package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	"github.com/stayora/stayora-auth/pkg/config"
	"gopkg.in/gomail.v2"
)

//go:embed templates
var templatesFS embed.FS

// Mailer renders embedded HTML templates and delivers them over SMTP.
type Mailer struct {
	dialer    *gomail.Dialer
	from      string
	templates *template.Template
}

func New(cfg *config.SMTPConfig) (*Mailer, error) {
	templates, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing email templates: %w", err)
	}

	return &Mailer{
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:      cfg.From,
		templates: templates,
	}, nil
}

// Send renders the named template with data and delivers it. The context is
// accepted for interface symmetry; gomail has no cancellation hook.
func (m *Mailer) Send(ctx context.Context, to, subject, templateName string, data map[string]any) error {
	var body bytes.Buffer
	if err := m.templates.ExecuteTemplate(&body, templateName+".html", data); err != nil {
		return fmt.Errorf("rendering template %s: %w", templateName, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email to %s: %w", to, err)
	}
	return nil
}
