package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/google/uuid"
)

// CreateEmailTemplate stores a template; names are unique
func (r *Repository) CreateEmailTemplate(ctx context.Context, t *models.EmailTemplate) error {
	t.ID = uuid.NewString()
	t.CreatedAt = now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO email_templates (id, name, subject, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.Name, t.Subject, t.Body, t.CreatedAt)
	if isUniqueViolation(err) {
		return apperr.Conflict("email template", t.Name)
	}
	if err != nil {
		return fmt.Errorf("failed to create email template: %w", err)
	}
	return nil
}

// FindEmailTemplateByID retrieves a template
func (r *Repository) FindEmailTemplateByID(ctx context.Context, id string) (*models.EmailTemplate, error) {
	t := &models.EmailTemplate{}
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, subject, body, created_at
		FROM email_templates
		WHERE id = $1`, id).
		Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("email template", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find email template: %w", err)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

// ListEmailTemplates returns templates ordered by name
func (r *Repository) ListEmailTemplates(ctx context.Context) ([]*models.EmailTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, subject, body, created_at FROM email_templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list email templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.EmailTemplate
	for rows.Next() {
		t := &models.EmailTemplate{}
		if err := rows.Scan(&t.ID, &t.Name, &t.Subject, &t.Body, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan email template: %w", err)
		}
		t.CreatedAt = t.CreatedAt.UTC()
		templates = append(templates, t)
	}
	return templates, rows.Err()
}
