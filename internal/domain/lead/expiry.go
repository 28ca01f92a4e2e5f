package lead

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/leadflow/leadflow-api/internal/domain/deposit"
)

// ExpiryJob writes off pending leads whose validation window has closed and
// returns their reservations. Safe to run concurrently: the release is
// replay-safe per lead and the status transition is guarded.
type ExpiryJob struct {
	repo     *Repository
	deposits *deposit.Service
	now      func() time.Time
}

func NewExpiryJob(repo *Repository, deposits *deposit.Service) *ExpiryJob {
	return &ExpiryJob{
		repo:     repo,
		deposits: deposits,
		now:      time.Now,
	}
}

// Run executes one expiry sweep.
func (j *ExpiryJob) Run(ctx context.Context) error {
	expired, err := j.repo.ListExpired(ctx, j.now(), 500)
	if err != nil {
		return err
	}

	released := 0
	for _, l := range expired {
		if err := j.expireOne(ctx, l); err != nil {
			log.Error().Err(err).Str("lead_id", l.ID.String()).Msg("failed to expire lead")
			continue
		}
		released++
	}

	if len(expired) > 0 {
		log.Info().
			Int("expired", len(expired)).
			Int("released", released).
			Msg("lead expiry sweep finished")
	}
	return nil
}

// expireOne releases the reservation first: if the transition then fails the
// next sweep replays the release as a no-op and retries the transition.
func (j *ExpiryJob) expireOne(ctx context.Context, l *Lead) error {
	if _, err := j.deposits.Release(ctx, l.DepositID, l.CommissionAmount, l.ID.String()); err != nil {
		return err
	}
	return j.repo.MarkLost(ctx, l.ID)
}
