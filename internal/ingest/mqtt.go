// Package ingest receives sensor readings pushed over MQTT and stores them
// through the same path as POST /v1/data/reading.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"oxigo-server/internal/logging"
	"oxigo-server/internal/models"
	"oxigo-server/internal/sensors"
)

// ReadingStore persists a single reading.
type ReadingStore interface {
	AddReading(ctx context.Context, in sensors.ReadingInput) (*models.Reading, error)
}

type Recorder interface {
	ReadingIngested(source string)
}

const source = "mqtt"

type Subscriber struct {
	client  mqtt.Client
	topic   string
	store   ReadingStore
	rec     Recorder
	log     logging.Logger
	timeout time.Duration
}

func NewSubscriber(broker, clientID, topic string, store ReadingStore, rec Recorder, log logging.Logger) *Subscriber {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	s := &Subscriber{
		topic:   topic,
		store:   store,
		rec:     rec,
		log:     log.With("component", "mqtt", "topic", topic),
		timeout: 5 * time.Second,
	}
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		// Subscriptions are not restored by paho after a reconnect.
		if tok := c.Subscribe(topic, 1, s.handle); tok.Wait() && tok.Error() != nil {
			s.log.Error(context.Background(), "subscribe failed", "error", tok.Error())
			return
		}
		s.log.Info(context.Background(), "subscribed")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.log.Warn(context.Background(), "connection lost", "error", err)
	})
	s.client = mqtt.NewClient(opts)
	return s
}

// Start connects to the broker. It returns once the first connection attempt
// finished or ctx is done; later reconnects happen in the background.
func (s *Subscriber) Start(ctx context.Context) error {
	tok := s.client.Connect()
	select {
	case <-tok.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

func (s *Subscriber) Stop() {
	s.client.Disconnect(250)
}

func (s *Subscriber) handle(_ mqtt.Client, m mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.ingest(ctx, m.Payload()); err != nil {
		s.log.Warn(ctx, "reading rejected", "error", err, "message_id", m.MessageID())
		return
	}
	s.rec.ReadingIngested(source)
}

var errMissingUUID = errors.New("missing associated_uuid")

func (s *Subscriber) ingest(ctx context.Context, payload []byte) error {
	var in sensors.ReadingInput
	if err := json.Unmarshal(payload, &in); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	if in.UUID == "" {
		return errMissingUUID
	}
	_, err := s.store.AddReading(ctx, in)
	return err
}
