package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"cartside/api/internal/repository"
)

// Scheduler runs the periodic cleanup of accounts that never finished OTP
// verification. Unverified rows older than a day past their OTP expiry are
// dead weight; their emails become registerable again once purged.
type Scheduler struct {
	cron  *cron.Cron
	users *repository.UserRepository
	shops *repository.ShopRepository
	log   zerolog.Logger
}

func NewScheduler(users *repository.UserRepository, shops *repository.ShopRepository, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithSeconds()),
		users: users,
		shops: shops,
		log:   log,
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 3 * * *", s.purgeStaleAccounts); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop waits for any running job, up to a bounded grace period.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
}

func (s *Scheduler) purgeStaleAccounts() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-24 * time.Hour)

	users, err := s.users.PurgeUnverified(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("purge unverified users failed")
	}
	shops, err := s.shops.PurgeUnverified(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Msg("purge unverified shops failed")
	}

	s.log.Info().Int64("users", users).Int64("shops", shops).Msg("stale account purge done")
}
