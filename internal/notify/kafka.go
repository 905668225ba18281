package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"oxigo-server/internal/logging"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaDispatcher publishes notifications as JSON events for an external
// mailer service instead of calling an e-mail API directly.
type KafkaDispatcher struct {
	w   messageWriter
	log logging.Logger
}

func NewKafkaDispatcher(brokers []string, topic string, log logging.Logger) *KafkaDispatcher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaDispatcher{w: w, log: log}
}

func (k *KafkaDispatcher) Send(ctx context.Context, msg Message) bool {
	value, err := json.Marshal(msg)
	if err != nil {
		k.log.Error(ctx, "notification encode failed", "kind", msg.Kind, "error", err)
		return false
	}
	err = k.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Key()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "kind", Value: []byte(msg.Kind)},
		},
	})
	if err != nil {
		k.log.Error(ctx, "kafka publish failed", "kind", msg.Kind, "error", err)
		return false
	}
	return true
}

func (k *KafkaDispatcher) Close() error {
	return k.w.Close()
}
