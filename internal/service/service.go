package service

import (
	"github.com/Dan9191/advisor-crm/internal/config"
	"github.com/Dan9191/advisor-crm/internal/repository"
	"github.com/Dan9191/advisor-crm/internal/summary"
	"github.com/Dan9191/advisor-crm/internal/utils/email"
	"github.com/sirupsen/logrus"
)

// Service handles business logic
type Service struct {
	repo       *repository.Repository
	log        *logrus.Logger
	config     *config.Config
	summarizer summary.SummaryGenerator
	renderer   *email.Renderer
}

// NewService initializes a new service. Meeting summaries use the keyword
// summarizer until another generator is set.
func NewService(repo *repository.Repository, log *logrus.Logger, cfg *config.Config) *Service {
	return &Service{
		repo:       repo,
		log:        log,
		config:     cfg,
		summarizer: summary.NewKeywordSummarizer(),
		renderer:   email.NewRenderer(cfg, log),
	}
}

// SetSummaryGenerator replaces the meeting summary backend
func (s *Service) SetSummaryGenerator(g summary.SummaryGenerator) {
	s.summarizer = g
}
