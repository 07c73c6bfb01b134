// Package notifier delivers seller notifications through a broker in the
// background. Delivery never feeds back into order processing.
package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/MikeRez0/ypstore/internal/adapter/config"
	"github.com/MikeRez0/ypstore/internal/core/port"
	"go.uber.org/zap"
)

const (
	publishAttempts = 3
	publishTimeout  = 5 * time.Second
)

// Publisher hands one event to a broker.
type Publisher interface {
	Publish(ctx context.Context, event port.SellerNotification) error
	Close() error
}

type Notifier struct {
	logger    *zap.Logger
	publisher Publisher
	queue     chan port.SellerNotification
	workers   int
	backoff   time.Duration
	wg        sync.WaitGroup
}

var _ port.SellerNotifier = (*Notifier)(nil)

func NewNotifier(cfg *config.Notifier, publisher Publisher, log *zap.Logger) *Notifier {
	return &Notifier{
		logger:    log,
		publisher: publisher,
		queue:     make(chan port.SellerNotification, max(cfg.QueueSize, 1)),
		workers:   max(cfg.Workers, 1),
		backoff:   time.Second,
	}
}

// ScheduleSellerNotification enqueues without blocking. A full queue drops the event.
func (n *Notifier) ScheduleSellerNotification(event port.SellerNotification) {
	select {
	case n.queue <- event:
		n.logger.Debug("seller notification queued",
			zap.Stringer("event", event.EventID), zap.Uint64("seller", event.SellerID))
	default:
		n.logger.Warn("seller notification queue is full, event dropped",
			zap.Stringer("event", event.EventID),
			zap.Stringer("order", event.OrderID),
			zap.Uint64("seller", event.SellerID))
	}
}

// Run starts the worker pool. Workers drain until ctx is done; Wait blocks
// until all of them have returned.
func (n *Notifier) Run(ctx context.Context) {
	for range n.workers {
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			for {
				select {
				case event := <-n.queue:
					n.deliver(ctx, event)
				case <-ctx.Done():
					n.logger.Debug("Finished worker")
					return
				}
			}
		}()
	}
}

func (n *Notifier) Wait() {
	n.wg.Wait()
}

func (n *Notifier) deliver(ctx context.Context, event port.SellerNotification) {
	for attempt := 1; attempt <= publishAttempts; attempt++ {
		pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
		err := n.publisher.Publish(pubCtx, event)
		cancel()
		if err == nil {
			return
		}

		n.logger.Warn("publish seller notification",
			zap.Stringer("event", event.EventID),
			zap.Int("attempt", attempt),
			zap.Error(err))
		if attempt == publishAttempts {
			break
		}

		r := time.NewTimer(n.backoff * time.Duration(attempt))
		select {
		case <-r.C:
		case <-ctx.Done():
			r.Stop()
			return
		}
	}

	n.logger.Error("seller notification lost",
		zap.Stringer("event", event.EventID),
		zap.Stringer("order", event.OrderID),
		zap.Uint64("seller", event.SellerID))
}
