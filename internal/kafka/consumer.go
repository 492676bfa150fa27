package kafka

import (
	"context"
	"errors"

	"github.com/twmb/franz-go/pkg/kgo"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/convsync/internal/observability"
)

type Handler interface {
	Handle(ctx context.Context, record []byte)
}

type ConsumerConfig struct {
	Brokers  []string
	Group    string
	Topic    string
	ClientID string
}

// Consumer feeds one topic to a Handler through a consumer group. Offsets
// are committed only after every record of a fetch has been handled, so a
// crash replays rather than skips events.
type Consumer struct {
	client  *kgo.Client
	group   string
	handler Handler
	done    chan struct{}
}

func NewConsumer(cfg ConsumerConfig, handler Handler) (*Consumer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, ErrNoBrokers
	}

	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.ConsumerGroup(cfg.Group),
		kgo.ConsumeTopics(cfg.Topic),
		kgo.DisableAutoCommit(),
		kgo.OnPartitionsAssigned(func(ctx context.Context, _ *kgo.Client, assigned map[string][]int32) {
			observability.GetLogger(ctx).Info("kafka partitions assigned", zap.Any("partitions", assigned))
		}),
		kgo.OnPartitionsRevoked(func(ctx context.Context, cl *kgo.Client, revoked map[string][]int32) {
			if err := cl.CommitUncommittedOffsets(ctx); err != nil {
				observability.GetLogger(ctx).Warn("kafka commit on revoke failed", zap.Error(err))
			}
			observability.GetLogger(ctx).Info("kafka partitions revoked", zap.Any("partitions", revoked))
		}),
	)
	if err != nil {
		return nil, err
	}
	return &Consumer{client: cl, group: cfg.Group, handler: handler, done: make(chan struct{})}, nil
}

func (c *Consumer) Start(ctx context.Context) {
	go func() {
		defer close(c.done)
		log := observability.GetLogger(ctx).With(zap.String("group", c.group))
		log.Info("kafka consumer started")

		for ctx.Err() == nil {
			fetches := c.client.PollFetches(ctx)
			if fetches.IsClientClosed() {
				return
			}
			for _, ferr := range fetches.Errors() {
				if errors.Is(ferr.Err, context.Canceled) {
					return
				}
				log.Error("kafka fetch error",
					zap.String("topic", ferr.Topic),
					zap.Int32("partition", ferr.Partition),
					zap.Error(ferr.Err),
				)
			}

			handled := 0
			fetches.EachPartition(func(p kgo.FetchTopicPartition) {
				for _, r := range p.Records {
					rctx := otel.GetTextMapPropagator().Extract(ctx, recordCarrier{record: r})
					c.handler.Handle(rctx, r.Value)
					handled++
				}
			})
			if handled == 0 {
				continue
			}
			observability.EventsConsumedTotal.WithLabelValues(c.group).Add(float64(handled))

			if err := c.client.CommitUncommittedOffsets(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Warn("kafka offset commit failed", zap.Error(err))
			}
		}
		log.Info("kafka consumer stopped")
	}()
}

func (c *Consumer) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *Consumer) Done() <-chan struct{} {
	return c.done
}
