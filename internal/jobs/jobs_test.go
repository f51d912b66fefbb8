package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/straye-as/projecthub/internal/domain"
	"github.com/straye-as/projecthub/internal/jobs"
	"github.com/straye-as/projecthub/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// ============================================================================
// Scheduler
// ============================================================================

func TestScheduler_AddJob(t *testing.T) {
	tests := []struct {
		name     string
		cronExpr string
		wantErr  bool
	}{
		{name: "five fields", cronExpr: "*/10 * * * *"},
		{name: "six fields with seconds", cronExpr: "0 */10 * * * *"},
		{name: "descriptor", cronExpr: "@every 5m"},
		{name: "invalid", cronExpr: "every ten minutes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := jobs.NewScheduler(zap.NewNop())
			err := s.AddJob("job", tt.cronExpr, func() {})
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, s.JobNames())
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, []string{"job"}, s.JobNames())
		})
	}
}

func TestScheduler_DuplicateAndRemove(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())

	require.NoError(t, s.AddJob("b", "@hourly", func() {}))
	require.NoError(t, s.AddJob("a", "@hourly", func() {}))
	assert.Error(t, s.AddJob("a", "@hourly", func() {}))
	assert.Equal(t, []string{"a", "b"}, s.JobNames())

	require.NoError(t, s.RemoveJob("a"))
	assert.Equal(t, []string{"b"}, s.JobNames())
	assert.Error(t, s.RemoveJob("a"))
}

func TestScheduler_RunsJobs(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())
	ran := make(chan struct{}, 1)
	require.NoError(t, s.AddJob("tick", "@every 1s", func() {
		select {
		case ran <- struct{}{}:
		default:
		}
	}))

	s.Start()
	defer func() { <-s.Stop().Done() }()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run")
	}
}

// ============================================================================
// Session refresh
// ============================================================================

type fakeProfile struct {
	calls  int
	member *domain.Member
	err    error
	rotate func()
}

func (f *fakeProfile) Me(ctx context.Context) (*domain.Member, error) {
	f.calls++
	if f.rotate != nil {
		f.rotate()
	}
	return f.member, f.err
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"exp": exp.Unix(),
	})
	s, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return s
}

func TestSessionRefreshJob_SkipsWithoutSession(t *testing.T) {
	fetcher := &fakeProfile{member: &domain.Member{ID: 1}}
	job := jobs.NewSessionRefreshJob(fetcher, session.NewMemoryStore(), zap.NewNop(), time.Second)

	job.Run()

	assert.Zero(t, fetcher.calls)
}

func TestSessionRefreshJob_LogsRotation(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken(signedToken(t, time.Now().Add(time.Hour))))

	fetcher := &fakeProfile{
		member: &domain.Member{ID: 42},
		rotate: func() { _ = store.SetToken("rotated") },
	}
	job := jobs.NewSessionRefreshJob(fetcher, store, zap.New(core), time.Second)

	job.Run()

	assert.Equal(t, 1, fetcher.calls)
	entries := logs.FilterMessage("session refreshed").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, int64(42), ctx["member_id"])
	assert.Equal(t, true, ctx["token_rotated"])
	assert.Contains(t, ctx, "time_left")
}

func TestSessionRefreshJob_FailureIsNotRetried(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	store := session.NewMemoryStore()
	require.NoError(t, store.SetToken("opaque-token"))

	fetcher := &fakeProfile{err: errors.New("backend unavailable")}
	job := jobs.NewSessionRefreshJob(fetcher, store, zap.New(core), time.Second)

	job.Run()

	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, 1, logs.FilterMessage("session refresh failed").Len())
}

func TestRegisterSessionRefreshJob(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())
	fetcher := &fakeProfile{}

	registered, err := jobs.RegisterSessionRefreshJob(s, fetcher, session.NewMemoryStore(), zap.NewNop(), "", time.Second)
	require.NoError(t, err)
	assert.False(t, registered)
	assert.Empty(t, s.JobNames())

	registered, err = jobs.RegisterSessionRefreshJob(s, fetcher, session.NewMemoryStore(), zap.NewNop(), "*/5 * * * *", time.Second)
	require.NoError(t, err)
	assert.True(t, registered)
	assert.Equal(t, []string{jobs.SessionRefreshJobName}, s.JobNames())
}
