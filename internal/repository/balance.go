package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/google/uuid"
)

const balanceColumns = `id, entity_type, entity_id, as_of, amount, source, account_mask, account_cipher, created_at`

// CreateBalance records a billable balance snapshot
func (r *Repository) CreateBalance(ctx context.Context, b *models.BalanceRecord) error {
	return insertBalance(ctx, r.db, b)
}

// CreateBalances records several balances in one transaction. Either all of
// them are stored or none are.
func (r *Repository) CreateBalances(ctx context.Context, balances []*models.BalanceRecord) error {
	err := r.withTx(ctx, func(q queryer) error {
		for _, b := range balances {
			if err := insertBalance(ctx, q, b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		for _, b := range balances {
			b.ID = ""
		}
	}
	return err
}

func insertBalance(ctx context.Context, q queryer, b *models.BalanceRecord) error {
	b.ID = uuid.NewString()
	b.CreatedAt = now()
	query := `
		INSERT INTO balances (` + balanceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := q.ExecContext(ctx, query,
		b.ID, b.EntityType, b.EntityID, b.AsOf.UTC(), b.Amount, b.Source, b.AccountMask, b.AccountCipher, b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create balance: %w", err)
	}
	return nil
}

// FindBalanceByID retrieves a balance record
func (r *Repository) FindBalanceByID(ctx context.Context, id string) (*models.BalanceRecord, error) {
	b, err := scanBalance(r.db.QueryRowContext(ctx, `SELECT `+balanceColumns+` FROM balances WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("balance", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find balance: %w", err)
	}
	return b, nil
}

// LatestBalance returns the most recent balance for an entity on or before asOf
func (r *Repository) LatestBalance(ctx context.Context, entityType models.EntityType, entityID string, asOf time.Time) (*models.BalanceRecord, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM balances
		WHERE entity_type = $1 AND entity_id = $2 AND as_of <= $3
		ORDER BY as_of DESC, created_at DESC
		LIMIT 1`
	b, err := scanBalance(r.db.QueryRowContext(ctx, query, entityType, entityID, asOf.UTC()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("balance", entityKey(entityType, entityID))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find balance: %w", err)
	}
	return b, nil
}

// ListBalances returns an entity's balance history, newest first
func (r *Repository) ListBalances(ctx context.Context, entityType models.EntityType, entityID string) ([]*models.BalanceRecord, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM balances
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY as_of DESC, created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list balances: %w", err)
	}
	defer rows.Close()

	var balances []*models.BalanceRecord
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan balance: %w", err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func scanBalance(row rowScanner) (*models.BalanceRecord, error) {
	b := &models.BalanceRecord{}
	err := row.Scan(&b.ID, &b.EntityType, &b.EntityID, &b.AsOf, &b.Amount, &b.Source,
		&b.AccountMask, &b.AccountCipher, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.AsOf = b.AsOf.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}
