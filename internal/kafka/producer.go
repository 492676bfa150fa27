// Package kafka carries conversation events over Kafka: the confluent client
// publishes them for the service and a franz-go consumer group feeds them to
// the repair worker.
package kafka

import (
	"context"
	"errors"
	"strings"

	confluent "github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

const (
	contentTypeHeader = "content-type"
	contentTypeJSON   = "application/json"

	closeFlushTimeoutMs = 5000
)

var ErrNoBrokers = errors.New("kafka: no brokers configured")

type ProducerConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// Producer publishes conversation events. Events for one conversation share
// a key and therefore a partition, so consumers see them in send order.
type Producer struct {
	p     *confluent.Producer
	topic string
	log   *zap.Logger
}

func NewProducer(cfg ProducerConfig, log *zap.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}

	p, err := confluent.NewProducer(&confluent.ConfigMap{
		"bootstrap.servers":                     strings.Join(cfg.Brokers, ","),
		"client.id":                             cfg.ClientID,
		"acks":                                  "all",
		"enable.idempotence":                    true,
		"max.in.flight.requests.per.connection": 5,
		"linger.ms":                             5,
		"compression.type":                      "lz4",
	})
	if err != nil {
		return nil, err
	}

	prod := &Producer{
		p:     p,
		topic: cfg.Topic,
		log:   log,
	}
	go prod.watchErrors()
	return prod, nil
}

// watchErrors drains client-level events. Per-message delivery reports go to
// the channel passed to Produce and never arrive here.
func (p *Producer) watchErrors() {
	for e := range p.p.Events() {
		if kerr, ok := e.(confluent.Error); ok {
			p.log.Warn("kafka producer error",
				zap.String("code", kerr.Code().String()),
				zap.Bool("fatal", kerr.IsFatal()),
				zap.Error(kerr),
			)
		}
	}
}

// Publish sends one event and waits for the broker ack or ctx.
func (p *Producer) Publish(ctx context.Context, key string, value []byte) error {
	headers := []confluent.Header{{Key: contentTypeHeader, Value: []byte(contentTypeJSON)}}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{headers: &headers})

	report := make(chan confluent.Event, 1)
	err := p.p.Produce(&confluent.Message{
		TopicPartition: confluent.TopicPartition{
			Topic:     &p.topic,
			Partition: confluent.PartitionAny,
		},
		Key:     []byte(key),
		Value:   value,
		Headers: headers,
	}, report)
	if err != nil {
		return err
	}

	select {
	case e := <-report:
		return deliveryError(e)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func deliveryError(e confluent.Event) error {
	switch ev := e.(type) {
	case *confluent.Message:
		return ev.TopicPartition.Error
	case confluent.Error:
		return ev
	default:
		return nil
	}
}

// Close waits for in-flight events before closing the client. Events still
// queued after the flush timeout are dropped and logged.
func (p *Producer) Close() {
	if remaining := p.p.Flush(closeFlushTimeoutMs); remaining > 0 {
		p.log.Warn("kafka producer closed with undelivered events", zap.Int("remaining", remaining))
	}
	p.p.Close()
}
