package bot

import (
	"alcyxob/fitlog-bot/internal/logging"
	"context"
	"errors"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderRecorder struct {
	mu     sync.Mutex
	byUser map[int64][]int
}

func (o *orderRecorder) HandleUpdate(_ context.Context, update tgbotapi.Update) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	key := userKey(update)
	o.byUser[key] = append(o.byUser[key], update.UpdateID)
	if update.UpdateID == 3 {
		return errors.New("handler failure is logged only")
	}
	if update.UpdateID == 4 {
		panic("recovered by the worker")
	}
	return nil
}

func TestDispatcherKeepsPerUserOrder(t *testing.T) {
	rec := &orderRecorder{byUser: map[int64][]int{}}
	d := NewDispatcher(rec, 3, logging.NewNop())
	ctx := context.Background()
	d.Start(ctx)

	for i := 1; i <= 60; i++ {
		upd := message(int64(i%5+1), "80 8")
		upd.UpdateID = i
		require.True(t, d.Submit(ctx, upd))
	}
	d.Stop()

	total := 0
	for user, ids := range rec.byUser {
		total += len(ids)
		for i := 1; i < len(ids); i++ {
			assert.Less(t, ids[i-1], ids[i], "user %d out of order", user)
		}
	}
	assert.Equal(t, 60, total)
}

func TestDispatcherSubmitHonorsContext(t *testing.T) {
	rec := &orderRecorder{byUser: map[int64][]int{}}
	d := NewDispatcher(rec, 1, logging.NewNop())

	// Not started: fill the queue, then a cancelled submit gives up.
	ctx := context.Background()
	for i := 0; i < cap(d.shards[0]); i++ {
		require.True(t, d.Submit(ctx, message(1, "x")))
	}
	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	assert.False(t, d.Submit(cancelled, message(1, "x")))

	d.Start(ctx)
	d.Stop()
	assert.Len(t, rec.byUser[1], cap(d.shards[0]))
}

func TestShardOfNegativeKeys(t *testing.T) {
	assert.Equal(t, shardOf(7, 4), shardOf(-7, 4))
	assert.Equal(t, 0, shardOf(0, 4))
}
