package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/MikeRez0/ypstore/internal/adapter/config"
	"github.com/MikeRez0/ypstore/internal/core/port"
	"github.com/segmentio/kafka-go"
)

// KafkaPublisher keys messages by seller so one seller's events stay ordered.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(cfg *config.Notifier) (*KafkaPublisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("kafka brokers are not configured")
	}

	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.KafkaBrokers...),
			Topic:        cfg.KafkaTopic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, event port.SellerNotification) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(strconv.FormatUint(event.SellerID, 10)),
		Value: data,
		Time:  event.CreatedAt.UTC(),
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
