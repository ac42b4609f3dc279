package email

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/config"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Renderer builds client emails from stored templates. Messages are rendered
// for preview and export only; nothing is sent.
type Renderer struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewRenderer creates a new email renderer
func NewRenderer(cfg *config.Config, logger *logrus.Logger) *Renderer {
	return &Renderer{
		cfg:    cfg,
		logger: logger,
	}
}

// Validate checks that subject and body parse as templates
func Validate(subject, body string) error {
	if _, err := parse("subject", subject); err != nil {
		return apperr.Validation("subject", "%v", err)
	}
	if _, err := parse("body", body); err != nil {
		return apperr.Validation("body", "%v", err)
	}
	return nil
}

func parse(name, src string) (*template.Template, error) {
	return template.New(name).Option("missingkey=error").Parse(src)
}

func execute(name, src string, vars map[string]any) (string, error) {
	tpl, err := parse(name, src)
	if err != nil {
		return "", apperr.Validation(name, "%v", err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, vars); err != nil {
		return "", apperr.Validation("variables", "%v", err)
	}
	return buf.String(), nil
}

// Render fills a template for one recipient
func (r *Renderer) Render(tpl *models.EmailTemplate, to string, vars map[string]any) (*email.Email, error) {
	if to == "" {
		return nil, apperr.Validation("to", "recipient is required")
	}
	subject, err := execute("subject", tpl.Subject, vars)
	if err != nil {
		return nil, err
	}
	body, err := execute("body", tpl.Body, vars)
	if err != nil {
		return nil, err
	}

	e := email.NewEmail()
	e.From = r.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)
	return e, nil
}

// Preview renders a template into an RFC 5322 message
func (r *Renderer) Preview(tpl *models.EmailTemplate, to string, vars map[string]any) ([]byte, error) {
	e, err := r.Render(tpl, to, vars)
	if err != nil {
		return nil, err
	}
	raw, err := e.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to build message: %w", err)
	}
	r.logger.Debugf("Rendered template %s for %s", tpl.Name, to)
	return raw, nil
}
