// Package kafka sends solver frames as Kafka messages keyed by correlation id,
// so every frame of one notification lands in the same partition in order.
package kafka

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/Shopify/sarama"

	"github.com/janelia-flyem/labelpaint/labelpaint"
	"github.com/janelia-flyem/labelpaint/solver"
)

// DefaultTopic receives solver frames when no topic is configured.
const DefaultTopic = "labelpaint-solver"

// MaxMessageSize is the max message size in bytes for a Kafka message.
const MaxMessageSize = 980 * labelpaint.Kilo

// Header keys attached to every message.
const (
	TypeHeader = "solver-type"
	MoreHeader = "solver-more"
)

// Config describes the kafka brokers and topic.
type Config struct {
	Servers []string
	Topic   string
	Timeout time.Duration
}

var topicChars = regexp.MustCompile(`[^a-zA-Z0-9\._\-]+`)

// Sender publishes frames through a synchronous producer.
type Sender struct {
	producer sarama.SyncProducer
	topic    string
}

// NewConfig returns the sarama configuration used for solver frames.
func NewConfig(timeout time.Duration) *sarama.Config {
	config := sarama.NewConfig()
	config.Version = sarama.V2_0_0_0 // record headers
	config.Producer.MaxMessageBytes = MaxMessageSize
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Return.Successes = true
	if timeout > 0 {
		config.Producer.Timeout = timeout
	}
	return config
}

// NewSender connects a producer to the configured brokers.
func NewSender(c Config) (*Sender, error) {
	if len(c.Servers) == 0 {
		return nil, fmt.Errorf("kafka solver transport requires at least one server")
	}
	producer, err := sarama.NewSyncProducer(c.Servers, NewConfig(c.Timeout))
	if err != nil {
		return nil, err
	}
	s := NewSenderWithProducer(producer, c.Topic)
	labelpaint.Infof("Kafka topic for solver frames: %s\n", s.topic)
	return s, nil
}

// NewSenderWithProducer wraps an existing producer.  The topic is sanitized
// and defaults to DefaultTopic.
func NewSenderWithProducer(producer sarama.SyncProducer, topic string) *Sender {
	if topic == "" {
		topic = DefaultTopic
	}
	return &Sender{producer: producer, topic: topicChars.ReplaceAllString(topic, "-")}
}

// Topic returns the topic frames are published to.
func (s *Sender) Topic() string {
	return s.topic
}

func (s *Sender) Send(ctx context.Context, f solver.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(f.CorrelationID),
		Value: sarama.ByteEncoder(f.Data),
		Headers: []sarama.RecordHeader{
			{Key: []byte(TypeHeader), Value: []byte(f.Type.String())},
			{Key: []byte(MoreHeader), Value: []byte(strconv.FormatBool(f.More))},
		},
	}
	partition, offset, err := s.producer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("error on kafka send to topic %s: %v", s.topic, err)
	}
	labelpaint.Debugf("Sent solver %s frame to %s partition %d offset %d\n", f.Type, s.topic, partition, offset)
	return nil
}

// Close flushes and closes the producer.
func (s *Sender) Close() error {
	if err := s.producer.Close(); err != nil {
		labelpaint.Errorf("Kafka producer had error on close: %v\n", err)
		return err
	}
	labelpaint.Infof("Successfully shut down kafka producer.\n")
	return nil
}
