package notifier

import (
	"fmt"

	"github.com/MikeRez0/ypstore/internal/adapter/config"
	"go.uber.org/zap"
)

// NewPublisher picks the broker named in the config.
func NewPublisher(cfg *config.Notifier, log *zap.Logger) (Publisher, error) {
	switch cfg.Broker {
	case config.BrokerKafka:
		return NewKafkaPublisher(cfg)
	case config.BrokerAMQP:
		return NewAMQPPublisher(cfg)
	case config.BrokerNone:
		return NewLogPublisher(log), nil
	}
	return nil, fmt.Errorf("unknown notifier broker %q", cfg.Broker)
}
