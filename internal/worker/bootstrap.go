package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/BuzzLyutic/todo-api/internal/model"
)

// Initializer - то, что нужно Bootstrap от сервиса
type Initializer interface {
	InitData(ctx context.Context) error
	HighestID(ctx context.Context) (int64, error)
}

// Bootstrap в фоне готовит хранилище: повторяет InitData, пока не получится,
// затем поднимает отметку аллокатора до максимального сохраненного id.
type Bootstrap struct {
	svc      Initializer
	ids      *model.IDAllocator
	logger   *zap.Logger
	interval time.Duration
	ready    atomic.Bool
	wg       sync.WaitGroup
	stop     chan struct{}
	once     sync.Once
}

func NewBootstrap(svc Initializer, ids *model.IDAllocator, logger *zap.Logger, interval time.Duration) *Bootstrap {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Bootstrap{
		svc:      svc,
		ids:      ids,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
	}
}

func (b *Bootstrap) Start(ctx context.Context) {
	b.wg.Add(1)
	go b.run(ctx)
}

func (b *Bootstrap) Stop() {
	b.once.Do(func() { close(b.stop) })
	b.wg.Wait()
}

// Ready сообщает, что хранилище инициализировано
func (b *Bootstrap) Ready() bool {
	return b.ready.Load()
}

func (b *Bootstrap) run(ctx context.Context) {
	defer b.wg.Done()

	if b.attempt(ctx) {
		return
	}

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if b.attempt(ctx) {
				return
			}
		}
	}
}

func (b *Bootstrap) attempt(ctx context.Context) bool {
	if err := b.svc.InitData(ctx); err != nil {
		b.logger.Error("persistence service is not running", zap.Duration("retry_in", b.interval), zap.Error(err))
		return false
	}

	highest, err := b.svc.HighestID(ctx)
	if err != nil {
		b.logger.Error("failed to read highest todo id", zap.Duration("retry_in", b.interval), zap.Error(err))
		return false
	}
	b.ids.AdvanceTo(highest)

	b.ready.Store(true)
	b.logger.Info("storage initialized", zap.Int64("id_mark", b.ids.Mark()))
	return true
}
