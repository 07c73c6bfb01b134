package notifier

import (
	"context"

	"github.com/MikeRez0/ypstore/internal/core/port"
	"go.uber.org/zap"
)

// LogPublisher stands in for a broker when none is configured.
type LogPublisher struct {
	logger *zap.Logger
}

func NewLogPublisher(log *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: log}
}

func (p *LogPublisher) Publish(_ context.Context, event port.SellerNotification) error {
	p.logger.Info("seller notification",
		zap.Stringer("event", event.EventID),
		zap.Uint64("seller", event.SellerID),
		zap.Stringer("order", event.OrderID),
		zap.String("message", event.Message))
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
