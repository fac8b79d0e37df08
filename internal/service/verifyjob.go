package service

import (
	"context"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// VerifyScheduler runs the chain verifier on a cron schedule so a break
// is noticed without waiting for someone to open the audit screen.
type VerifyScheduler struct {
	cron   *cron.Cron
	audit  *AuditService
	logger *slog.Logger
}

// NewVerifyScheduler registers the verification job on the given cron
// expression (standard five-field syntax).
func NewVerifyScheduler(audit *AuditService, schedule string, logger *slog.Logger) (*VerifyScheduler, error) {
	s := &VerifyScheduler{
		cron:   cron.New(),
		audit:  audit,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(schedule, s.run); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *VerifyScheduler) Start() {
	s.cron.Start()
	s.logger.Info("audit verification scheduler started")
}

func (s *VerifyScheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("audit verification scheduler stopped")
}

func (s *VerifyScheduler) run() {
	ctx := context.Background()
	res, err := s.audit.Verify(ctx)
	if err != nil {
		s.logger.Error("scheduled audit verification failed", "error", err)
		return
	}
	if res.Valid {
		s.logger.Info("scheduled audit verification passed",
			"entries_checked", res.EntriesChecked)
	}
	// An invalid chain is already logged at error level by Verify.
}
