package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dan9191/advisor-crm/internal/apperr"
	"github.com/Dan9191/advisor-crm/internal/integrations/custodian"
	"github.com/Dan9191/advisor-crm/internal/metrics"
	"github.com/Dan9191/advisor-crm/internal/middleware"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/Dan9191/advisor-crm/internal/utils"
	"github.com/sirupsen/logrus"
)

// StatementFetcher retrieves a custodian position file
type StatementFetcher interface {
	FetchStatement(ctx context.Context) (*custodian.Statement, error)
}

// ImportStatement records one balance per custodial account in the statement.
// Account numbers are stored encrypted alongside a masked copy. Every account
// is checked before anything is written, and the balances are stored in one
// transaction, so a rejected file leaves no balances behind.
func (s *Service) ImportStatement(ctx context.Context, st *custodian.Statement) ([]*models.BalanceRecord, error) {
	records := make([]*models.BalanceRecord, 0, len(st.Accounts))
	for i, acct := range st.Accounts {
		rec := &models.BalanceRecord{
			EntityType:  acct.EntityType,
			EntityID:    acct.EntityID,
			AsOf:        st.AsOf,
			Amount:      acct.Balance(),
			Source:      st.Custodian,
			AccountMask: utils.MaskAccountNumber(acct.Number),
		}
		if err := prepareBalance(rec); err != nil {
			var verr *apperr.ValidationError
			if errors.As(err, &verr) {
				return nil, apperr.Validation(fmt.Sprintf("Account[%d].%s", i, verr.Field), "%s", verr.Message)
			}
			return nil, err
		}
		cipher, err := utils.Encrypt(acct.Number, s.config.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to encrypt account number: %w", err)
		}
		rec.AccountCipher = cipher
		records = append(records, rec)
	}

	if err := s.repo.CreateBalances(ctx, records); err != nil {
		return nil, err
	}
	metrics.CustodianBalancesImported.WithLabelValues(st.Custodian).Add(float64(len(records)))
	s.log.Infof("Imported %d balances from %s as of %s", len(records), st.Custodian, st.AsOf.Format("2006-01-02"))
	return records, nil
}

// SyncCustodian fetches the latest position file and imports it
func (s *Service) SyncCustodian(ctx context.Context, fetcher StatementFetcher) ([]*models.BalanceRecord, error) {
	st, err := fetcher.FetchStatement(ctx)
	if err != nil {
		s.log.Errorf("Custodian sync failed: %v", err)
		return nil, fmt.Errorf("failed to fetch custodian statement: %w", err)
	}
	return s.ImportStatement(ctx, st)
}

// RevealAccountNumber decrypts the custodian account number behind a balance.
// Every reveal is logged with the requesting advisor.
func (s *Service) RevealAccountNumber(ctx context.Context, balanceID string) (string, error) {
	b, err := s.repo.FindBalanceByID(ctx, balanceID)
	if err != nil {
		return "", err
	}
	if b.AccountCipher == "" {
		return "", apperr.NotFound("account number", balanceID)
	}
	number, err := utils.Decrypt(b.AccountCipher, s.config.EncryptionKey)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt account number: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"balance": balanceID,
		"user":    middleware.UserID(ctx),
	}).Info("Custodian account number revealed")
	return number, nil
}
