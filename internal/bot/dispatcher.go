package bot

import (
	"alcyxob/fitlog-bot/internal/logging"
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// UpdateHandler processes a single update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

// DefaultWorkers is the number of shards used when none is configured.
const DefaultWorkers = 8

// Dispatcher fans updates out to a fixed set of workers. Updates of one user
// always land on the same worker, so each user is served in order while
// different users proceed in parallel.
type Dispatcher struct {
	handler UpdateHandler
	shards  []chan tgbotapi.Update
	log     logging.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(handler UpdateHandler, workers int, log logging.Logger) *Dispatcher {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	shards := make([]chan tgbotapi.Update, workers)
	for i := range shards {
		shards[i] = make(chan tgbotapi.Update, 64)
	}
	return &Dispatcher{handler: handler, shards: shards, log: log}
}

// Start launches the workers. They drain their queues and exit after Stop.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.shards {
		d.wg.Add(1)
		go func(id int, ch <-chan tgbotapi.Update) {
			defer d.wg.Done()
			for update := range ch {
				d.handle(ctx, update)
			}
			d.log.Debugf("bot: worker %d stopped", id)
		}(i, ch)
	}
}

// Submit queues an update. It blocks while the user's shard is full and
// gives up when ctx is done.
func (d *Dispatcher) Submit(ctx context.Context, update tgbotapi.Update) bool {
	ch := d.shards[shardOf(userKey(update), len(d.shards))]
	select {
	case ch <- update:
		return true
	case <-ctx.Done():
		return false
	}
}

// Stop closes the queues and waits for in-flight updates. Submit must not be
// called afterwards.
func (d *Dispatcher) Stop() {
	for _, ch := range d.shards {
		close(ch)
	}
	d.wg.Wait()
}

func (d *Dispatcher) handle(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if p := recover(); p != nil {
			d.log.Errorf("bot: panic handling update %d: %v", update.UpdateID, p)
		}
	}()
	if err := d.handler.HandleUpdate(ctx, update); err != nil {
		d.log.Errorf("bot: update %d: %v", update.UpdateID, err)
	}
}

func userKey(update tgbotapi.Update) int64 {
	switch {
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID
	}
	return 0
}

func shardOf(key int64, n int) int {
	if key < 0 {
		key = -key
	}
	return int(key % int64(n))
}
