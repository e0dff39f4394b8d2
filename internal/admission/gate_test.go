package admission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kioskbooth/portraits/internal/store"
	"github.com/kioskbooth/portraits/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubVerifier struct {
	err   error
	calls int
}

func (v *stubVerifier) Verify(_ context.Context, _ string) error {
	v.calls++
	return v.err
}

type gateFixture struct {
	gate     *Gate
	jobs     *store.MemoryStore
	daily    *DailyCounter
	verifier *stubVerifier
}

func newGateFixture(t *testing.T, dailyMax int) *gateFixture {
	t.Helper()
	clock := &fakeClock{t: time.Now()}
	jobs := store.NewMemoryStore()
	verifier := &stubVerifier{}
	daily := newTestCounter(dailyMax, clock)
	gate := NewGate(jobs, NewIdempotencyIndex(), newTestLimiter(clock), daily, verifier, 10)
	return &gateFixture{gate: gate, jobs: jobs, daily: daily, verifier: verifier}
}

func validParams() Params {
	return Params{
		StyleID:        "cyberpunk",
		IdempotencyKey: "key-abc",
		BotToken:       "placeholder",
		ClientID:       "10.0.0.1",
	}
}

func TestAdmit_FreshSubmissionCreatesQueuedJob(t *testing.T) {
	f := newGateFixture(t, 100)

	job, created, err := f.gate.Admit(context.Background(), validParams())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.JobStatusQueued, job.Status)
	assert.Equal(t, 0, job.Progress)
	assert.Equal(t, "cyberpunk", job.StyleID)
	assert.Nil(t, job.ImageURL)
	assert.Nil(t, job.ResultURL)
	assert.Nil(t, job.Error)
	assert.Equal(t, 1, f.daily.Count())
}

func TestAdmit_InvalidStyle(t *testing.T) {
	f := newGateFixture(t, 100)
	p := validParams()
	p.StyleID = "not-a-style"

	_, _, err := f.gate.Admit(context.Background(), p)
	require.Error(t, err)
	assert.Equal(t, models.CodeRunwareBadInput, models.AsDomainError(err).Code)
	assert.Equal(t, 0, f.daily.Count())
	assert.Equal(t, 0, f.verifier.calls)
}

func TestAdmit_InvalidIdempotencyKey(t *testing.T) {
	longKey := make([]byte, 256)
	for i := range longKey {
		longKey[i] = 'x'
	}

	tests := []struct {
		name string
		key  string
	}{
		{"empty", ""},
		{"too long", string(longKey)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGateFixture(t, 100)
			p := validParams()
			p.IdempotencyKey = tt.key

			_, _, err := f.gate.Admit(context.Background(), p)
			require.Error(t, err)
			assert.Equal(t, models.CodeRunwareBadInput, models.AsDomainError(err).Code)
		})
	}
}

func TestAdmit_ReplayReturnsExistingJob(t *testing.T) {
	f := newGateFixture(t, 100)
	ctx := context.Background()

	first, created, err := f.gate.Admit(ctx, validParams())
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := f.gate.Admit(ctx, validParams())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.daily.Count(), "replay must not consume a daily slot")
}

func TestAdmit_ReplaySkipsBotCheck(t *testing.T) {
	f := newGateFixture(t, 100)
	ctx := context.Background()

	_, _, err := f.gate.Admit(ctx, validParams())
	require.NoError(t, err)

	// A retried submission passes even when bot verification would now fail.
	f.verifier.err = models.NewDomainError(models.CodeBotCheckFailed, "Bot check failed")
	job, created, err := f.gate.Admit(ctx, validParams())
	require.NoError(t, err)
	assert.False(t, created)
	assert.NotNil(t, job)
}

func TestAdmit_BotCheckFailure(t *testing.T) {
	f := newGateFixture(t, 100)
	f.verifier.err = models.NewDomainError(models.CodeBotCheckFailed, "Bot check failed")

	_, _, err := f.gate.Admit(context.Background(), validParams())
	require.Error(t, err)
	assert.Equal(t, models.CodeBotCheckFailed, models.AsDomainError(err).Code)
	assert.Equal(t, 0, f.daily.Count())
}

func TestAdmit_RateLimited(t *testing.T) {
	f := newGateFixture(t, 100)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		p := validParams()
		p.IdempotencyKey = string(rune('a' + i))
		_, _, err := f.gate.Admit(ctx, p)
		require.NoError(t, err)
	}

	p := validParams()
	p.IdempotencyKey = "eleventh"
	_, _, err := f.gate.Admit(ctx, p)
	require.Error(t, err)
	assert.Equal(t, models.CodeRateLimited, models.AsDomainError(err).Code)
}

func TestAdmit_DailyCapExceeded(t *testing.T) {
	f := newGateFixture(t, 1)
	ctx := context.Background()

	_, _, err := f.gate.Admit(ctx, validParams())
	require.NoError(t, err)

	p := validParams()
	p.IdempotencyKey = "another"
	p.ClientID = "10.0.0.2"
	_, _, err = f.gate.Admit(ctx, p)
	require.Error(t, err)
	assert.Equal(t, models.CodeDailyCap, models.AsDomainError(err).Code)
}

func TestAdmit_ConcurrentSameKeyCreatesOneJob(t *testing.T) {
	f := newGateFixture(t, 100)
	ctx := context.Background()

	const n = 16
	var wg sync.WaitGroup
	ids := make([]string, n)
	createdCount := make([]bool, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			job, created, err := f.gate.Admit(ctx, validParams())
			require.NoError(t, err)
			ids[i] = job.ID
			createdCount[i] = created
		}(i)
	}
	wg.Wait()

	creates := 0
	for i := 1; i < n; i++ {
		assert.Equal(t, ids[0], ids[i], "all callers must see the same job")
	}
	for _, c := range createdCount {
		if c {
			creates++
		}
	}
	assert.Equal(t, 1, creates)
}
