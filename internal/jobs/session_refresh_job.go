package jobs

import (
	"context"
	"time"

	"github.com/straye-as/projecthub/internal/domain"
	"github.com/straye-as/projecthub/internal/session"
	"go.uber.org/zap"
)

// SessionRefreshJobName is the scheduler name of the keep-alive job
const SessionRefreshJobName = "session_refresh"

// ProfileFetcher loads the signed-in member; api.UserAPI implements it
type ProfileFetcher interface {
	Me(ctx context.Context) (*domain.Member, error)
}

// SessionRefreshJob keeps the stored session warm. Each run calls the
// profile endpoint so a token rotated by the server is persisted and the
// stored profile stays current. Failures are logged and never retried.
type SessionRefreshJob struct {
	users   ProfileFetcher
	store   session.Store
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time
}

// NewSessionRefreshJob creates a new keep-alive job
func NewSessionRefreshJob(users ProfileFetcher, store session.Store, logger *zap.Logger, timeout time.Duration) *SessionRefreshJob {
	return &SessionRefreshJob{
		users:   users,
		store:   store,
		logger:  logger,
		timeout: timeout,
		now:     time.Now,
	}
}

// Run performs one refresh. It does nothing while no one is signed in.
func (j *SessionRefreshJob) Run() {
	token := j.store.Token()
	if token == "" {
		j.logger.Debug("no stored session, skipping refresh")
		return
	}

	fields := []zap.Field{}
	if claims, err := session.ParseClaims(token); err == nil && !claims.ExpiresAt.IsZero() {
		fields = append(fields, zap.Duration("time_left", claims.TimeLeft(j.now())))
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := j.now()
	member, err := j.users.Me(ctx)
	fields = append(fields, zap.Duration("duration", j.now().Sub(start)))
	if err != nil {
		j.logger.Warn("session refresh failed", append(fields, zap.Error(err))...)
		return
	}

	j.logger.Info("session refreshed",
		append(fields,
			zap.Int64("member_id", member.ID),
			zap.Bool("token_rotated", j.store.Token() != token),
		)...,
	)
}

// RegisterSessionRefreshJob registers the keep-alive job with the scheduler.
// An empty cronExpr leaves the job disabled.
func RegisterSessionRefreshJob(scheduler *Scheduler, users ProfileFetcher, store session.Store, logger *zap.Logger, cronExpr string, timeout time.Duration) (bool, error) {
	if cronExpr == "" {
		return false, nil
	}
	job := NewSessionRefreshJob(users, store, logger, timeout)
	if err := scheduler.AddJob(SessionRefreshJobName, cronExpr, job.Run); err != nil {
		return false, err
	}
	return true, nil
}
