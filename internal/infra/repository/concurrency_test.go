package repository

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/domain"
	"github.com/NEO-KLIZZERX/Anon-Messages-Bot/internal/infra/database"
)

// fileDB opens a file-backed sqlite database the way the entrypoint does.
func fileDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.New("sqlite", filepath.Join(t.TempDir(), "relay.db"), database.Pool{}, false)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func TestRateLimitConcurrentSamePair(t *testing.T) {
	repo := NewRateLimitRepository(fileDB(t))
	ctx := context.Background()

	const workers = 24
	const limit = 5
	p := domain.RatePolicy{Cooldown: 0, DailyLimit: limit, Location: time.UTC}

	var wg sync.WaitGroup
	decisions := make(chan domain.RateDecision, workers)
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := repo.CheckAndConsume(ctx, 1, 2, p, t0)
			if err != nil {
				errs <- err
				return
			}
			decisions <- d
		}()
	}
	wg.Wait()
	close(decisions)
	close(errs)

	for err := range errs {
		t.Fatalf("CheckAndConsume failed: %v", err)
	}

	accepted := 0
	for d := range decisions {
		if d.Accepted {
			accepted++
		} else {
			assert.Equal(t, domain.RateReasonDailyCapped, d.Reason)
		}
	}
	assert.Equal(t, limit, accepted)
}

func TestRateLimitConcurrentCooldown(t *testing.T) {
	repo := NewRateLimitRepository(fileDB(t))
	ctx := context.Background()

	const workers = 16
	p := domain.RatePolicy{Cooldown: 15 * time.Second, DailyLimit: 30, Location: time.UTC}

	var wg sync.WaitGroup
	var mu sync.Mutex
	accepted := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := repo.CheckAndConsume(ctx, 1, 2, p, t0)
			assert.NoError(t, err)
			if d.Accepted {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, accepted)
}

func TestThreadForConcurrentSamePair(t *testing.T) {
	repo := NewThreadRepository(fileDB(t))
	ctx := context.Background()

	const workers = 24
	var wg sync.WaitGroup
	ids := make(chan int64, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			thread, err := repo.ThreadFor(ctx, 2, 1, t0.Add(time.Duration(i)*time.Millisecond))
			if !assert.NoError(t, err) {
				return
			}
			ids <- thread.ID
		}(i)
	}
	wg.Wait()
	close(ids)

	var first int64
	received := 0
	for id := range ids {
		received++
		if first == 0 {
			first = id
		}
		assert.Equal(t, first, id)
	}
	assert.Equal(t, workers, received)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDeliveryStoresUnderConcurrentSenders(t *testing.T) {
	stores := NewStores(fileDB(t))
	ctx := context.Background()
	p := domain.RatePolicy{Cooldown: 15 * time.Second, DailyLimit: 30, Location: time.UTC}

	const senders = 40
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(sender int64) {
			defer wg.Done()
			d, err := stores.Rates.CheckAndConsume(ctx, sender, 999, p, t0)
			if !assert.NoError(t, err) {
				return
			}
			assert.True(t, d.Accepted)
			_, err = stores.Threads.ThreadFor(ctx, 999, sender%3, t0)
			assert.NoError(t, err)
		}(int64(i))
	}
	wg.Wait()

	count, err := stores.Threads.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
