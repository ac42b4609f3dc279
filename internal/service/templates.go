package service

import (
	"context"
	"strings"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/Dan9191/advisor-crm/internal/utils/email"
)

// CreateEmailTemplate validates and stores a template
func (s *Service) CreateEmailTemplate(ctx context.Context, t *models.EmailTemplate) (*models.EmailTemplate, error) {
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return nil, apperr.Validation("name", "is required")
	}
	if err := email.Validate(t.Subject, t.Body); err != nil {
		return nil, err
	}
	if err := s.repo.CreateEmailTemplate(ctx, t); err != nil {
		return nil, err
	}
	s.log.Infof("Email template %s created", t.Name)
	return t, nil
}

// GetEmailTemplate returns a template by ID
func (s *Service) GetEmailTemplate(ctx context.Context, id string) (*models.EmailTemplate, error) {
	return s.repo.FindEmailTemplateByID(ctx, id)
}

// ListEmailTemplates returns all templates
func (s *Service) ListEmailTemplates(ctx context.Context) ([]*models.EmailTemplate, error) {
	return s.repo.ListEmailTemplates(ctx)
}

// PreviewEmailTemplate renders a template for a recipient as an RFC 5322 message
func (s *Service) PreviewEmailTemplate(ctx context.Context, id, to string, vars map[string]any) ([]byte, error) {
	t, err := s.repo.FindEmailTemplateByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.renderer.Preview(t, to, vars)
}
