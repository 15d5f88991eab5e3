package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	anonbot "github.com/NEO-KLIZZERX/Anon-Messages-Bot"
)

func TestSignalServiceRealtime(t *testing.T) {
	addr := os.Getenv("ANONRELAY_TEST_REDIS")
	if addr == "" {
		t.Skip("ANONRELAY_TEST_REDIS not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	defer rdb.Close()

	signal := NewSignalService(rdb, "anonrelay:test:"+time.Now().Format(time.RFC3339Nano))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	events := make(chan anonbot.Event, 1)
	go signal.Realtime(ctx, events)

	sent := anonbot.NewEvent(anonbot.EventDelivered, 1, 2, 3, time.Now())
	require.Eventually(t, func() bool {
		require.NoError(t, signal.Publish(ctx, sent))
		select {
		case got := <-events:
			assert.Equal(t, sent.ID, got.ID)
			return true
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 4*time.Second, 200*time.Millisecond)
}
