// Package ingest pulls submission events off a message bus and stores them
// through the service facade.
package ingest

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/segmentio/kafka-go"
)

// ConsumerMessage is one event pulled off the bus.
type ConsumerMessage struct {
	Topic string
	Key   []byte
	Value []byte
}

// Consumer abstracts the intake source so the listener can run against
// Kafka in production and an in-process channel in tests.
type Consumer interface {
	Start(ctx context.Context) error
	Messages() <-chan ConsumerMessage
	Close() error
}

// KafkaConsumer implements Consumer using segmentio/kafka-go with
// consumer-group semantics.
type KafkaConsumer struct {
	brokers  string
	group    string
	topic    string
	messages chan ConsumerMessage

	mu     sync.Mutex
	reader *kafka.Reader
}

func NewKafkaConsumer(brokers, group, topic string) *KafkaConsumer {
	return &KafkaConsumer{
		brokers:  brokers,
		group:    group,
		topic:    topic,
		messages: make(chan ConsumerMessage, 100),
	}
}

func (c *KafkaConsumer) Start(ctx context.Context) error {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(c.brokers, ","),
		Topic:    c.topic,
		GroupID:  c.group,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	c.mu.Lock()
	c.reader = reader
	c.mu.Unlock()

	go func() {
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Warn("KafkaConsumer: read error", "topic", c.topic, "error", err)
				continue
			}
			c.messages <- ConsumerMessage{Topic: c.topic, Key: msg.Key, Value: msg.Value}
		}
	}()
	return nil
}

func (c *KafkaConsumer) Messages() <-chan ConsumerMessage {
	return c.messages
}

func (c *KafkaConsumer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reader != nil {
		c.reader.Close()
	}
	close(c.messages)
	return nil
}

// ChannelConsumer is an in-process Consumer backed by a Go channel.
type ChannelConsumer struct {
	ch chan ConsumerMessage
}

func NewChannelConsumer() *ChannelConsumer {
	return &ChannelConsumer{ch: make(chan ConsumerMessage, 100)}
}

func (c *ChannelConsumer) Start(ctx context.Context) error { return nil }

func (c *ChannelConsumer) Messages() <-chan ConsumerMessage { return c.ch }

func (c *ChannelConsumer) Close() error {
	close(c.ch)
	return nil
}

// Send pushes a message into the channel consumer.
func (c *ChannelConsumer) Send(msg ConsumerMessage) {
	c.ch <- msg
}
