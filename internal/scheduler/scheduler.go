package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/advisor-crm/internal/config"
	"github.com/Dan9191/advisor-crm/internal/models"
	"github.com/Dan9191/advisor-crm/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// jobTimeout bounds a single scheduled run
const jobTimeout = 10 * time.Minute

// Jobs is the part of the service the scheduler drives
type Jobs interface {
	RunBilling(ctx context.Context, asOf time.Time) (*models.BillingRunSummary, error)
	SyncCustodian(ctx context.Context, fetcher service.StatementFetcher) ([]*models.BalanceRecord, error)
}

// Scheduler runs billing and custodian sync on cron schedules in UTC
type Scheduler struct {
	cron    *cron.Cron
	jobs    Jobs
	fetcher service.StatementFetcher
	log     *logrus.Logger
	now     func() time.Time
}

// New registers the billing job and, when fetcher is non-nil, the custodian sync job
func New(jobs Jobs, fetcher service.StatementFetcher, cfg *config.Config, log *logrus.Logger) (*Scheduler, error) {
	cronLog := cron.PrintfLogger(log)
	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		),
		jobs:    jobs,
		fetcher: fetcher,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}

	if _, err := s.cron.AddFunc(cfg.BillingCron, s.runBilling); err != nil {
		return nil, fmt.Errorf("invalid BILLING_CRON %q: %w", cfg.BillingCron, err)
	}
	if fetcher != nil {
		if _, err := s.cron.AddFunc(cfg.CustodianSyncCron, s.syncCustodian); err != nil {
			return nil, fmt.Errorf("invalid CUSTODIAN_SYNC_CRON %q: %w", cfg.CustodianSyncCron, err)
		}
	}
	return s, nil
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.log.Infof("Scheduler started with %d jobs", len(s.cron.Entries()))
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs until ctx expires
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
		s.log.Info("Scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("Scheduler stop timed out with jobs still running")
	}
}

func (s *Scheduler) runBilling() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	summary, err := s.jobs.RunBilling(ctx, s.now())
	if err != nil {
		s.log.Errorf("Scheduled billing run failed: %v", err)
		return
	}
	s.log.WithFields(logrus.Fields{
		"invoiced": len(summary.Invoiced),
		"skipped":  len(summary.Skipped),
	}).Info("Scheduled billing run completed")
}

func (s *Scheduler) syncCustodian() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	records, err := s.jobs.SyncCustodian(ctx, s.fetcher)
	if err != nil {
		s.log.Errorf("Scheduled custodian sync failed: %v", err)
		return
	}
	s.log.Infof("Scheduled custodian sync imported %d balances", len(records))
}
