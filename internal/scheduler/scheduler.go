// Package scheduler owns the background maintenance jobs: the daily SLA
// decay and the minutely categorical-field cleanup. The scheduler is built
// and stopped by the application lifecycle, never a package singleton.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/uatas-cs/complaint-service/internal/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Scheduler struct {
	db   *gorm.DB
	cron *cron.Cron
	log  *zap.Logger
	loc  *time.Location

	now func() time.Time

	// lastDecayDay guards against a second decay within one calendar day,
	// e.g. a manual trigger next to the cron entry.
	lastDecayDay string
}

// New builds the scheduler in the given timezone (the SLA decay runs at
// midnight of that zone).
func New(db *gorm.DB, tz string, log *zap.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return &Scheduler{
		db:   db,
		log:  log,
		loc:  loc,
		now:  time.Now,
		cron: cron.New(cron.WithLocation(loc)),
	}, nil
}

// Start registers both jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 * * *", func() {
		if err := s.RunSLADecay(context.Background()); err != nil {
			s.log.Error("sla decay job", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("register sla decay: %w", err)
	}
	if _, err := s.cron.AddFunc("@every 1m", func() {
		if err := s.RunFieldNormalize(context.Background()); err != nil {
			s.log.Error("field normalize job", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("register field normalize: %w", err)
	}
	s.cron.Start()
	s.log.Info("scheduler started", zap.String("timezone", s.loc.String()))
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info("scheduler stopped")
}

// RunSLADecay decrements every positive SLA counter by one, as a single
// batch commit. At most once per calendar day: a repeat call on the same day
// is a no-op.
func (s *Scheduler) RunSLADecay(ctx context.Context) error {
	day := s.now().In(s.loc).Format("2006-01-02")
	if day == s.lastDecayDay {
		s.log.Info("sla decay already ran today", zap.String("day", day))
		return nil
	}

	res := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("sla > 0").
		UpdateColumn("sla", gorm.Expr("sla - 1"))
	if res.Error != nil {
		return res.Error
	}
	s.lastDecayDay = day
	s.log.Info("sla decay done", zap.String("day", day), zap.Int64("tickets", res.RowsAffected))
	return nil
}

// RunFieldNormalize rewrites legacy placeholder values in nama_os and
// nama_bucket (NULL, "-", "None") to the empty string. Idempotent; a single
// batch commit per field.
func (s *Scheduler) RunFieldNormalize(ctx context.Context) error {
	placeholders := []string{"-", "None"}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Ticket{}).
			Where("nama_os IS NULL OR nama_os IN ?", placeholders).
			UpdateColumn("nama_os", "").Error; err != nil {
			return err
		}
		return tx.Model(&model.Ticket{}).
			Where("nama_bucket IS NULL OR nama_bucket IN ?", placeholders).
			UpdateColumn("nama_bucket", "").Error
	})
}
