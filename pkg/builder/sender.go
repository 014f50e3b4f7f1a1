// Package builder is the public entry point: thin re-exported constructors
// and functional options over pkg/internal/outbound and pkg/internal/inbound,
// mirroring the teacher's pkg/builder/kafkaclient_adapter.go re-export
// pattern (exported NewXxx/WithXxx wrappers delegating to internal types).
package builder

import (
	"context"

	"reactivekafka/pkg/internal/outbound"
	"reactivekafka/pkg/internal/streams"
	"reactivekafka/pkg/internal/types"
)

// Re-exported domain types so callers never need to import pkg/internal/*.
type (
	SenderConfig      = types.SenderConfig
	Record[T any]     = types.Record[T]
	Metadata          = types.Metadata
	TopicPartition    = types.TopicPartition
	ComponentMetadata = types.ComponentMetadata
	Sensor[T any]     = types.Sensor[T]
	Logger            = types.Logger
	SendResult[T any] = outbound.SendResult[T]
	SendOptions       = outbound.SendOptions
	Delivery[T any]   = streams.Delivery[T]
	Scheduler         = streams.Scheduler
	Lazy[T any]       = streams.Lazy[T]
)

// SenderOption configures a Sender at construction time.
type SenderOption[T any] outbound.Option[T]

// WithSenderLogger attaches one or more loggers to a Sender.
func WithSenderLogger[T any](loggers ...Logger) SenderOption[T] {
	return SenderOption[T](outbound.WithLogger[T](loggers...))
}

// WithSenderSensor attaches a sensor to a Sender.
func WithSenderSensor[T any](s Sensor[T]) SenderOption[T] {
	return SenderOption[T](outbound.WithSensor[T](s))
}

// WithSenderName sets the Sender's display name.
func WithSenderName[T any](name string) SenderOption[T] {
	return SenderOption[T](outbound.WithName[T](name))
}

// Sender is the public handle for producing records of type T onto Kafka. It
// wraps a ProducerHandle (lazy kafka-go Writer) and offers both a
// single-record Send and a streaming SendMany built on SendPipeline.
type Sender[T any] struct {
	handle *outbound.ProducerHandle[T]
}

// NewSender constructs a Sender. encode converts a Record's Value into the
// wire bytes written to Kafka; the underlying broker connection is not
// dialed until the first Send/SendMany/PartitionsFor call.
func NewSender[T any](cfg SenderConfig, encode func(Record[T]) ([]byte, error), opts ...SenderOption[T]) *Sender[T] {
	oopts := make([]outbound.Option[T], len(opts))
	for i, o := range opts {
		oopts[i] = outbound.Option[T](o)
	}
	return &Sender[T]{handle: outbound.NewProducerHandle(cfg, encode, oopts...)}
}

// Send produces a single record, returning a Lazy that resolves to its
// broker metadata (or the send error) once the write completes.
func (s *Sender[T]) Send(ctx context.Context, rec Record[T]) *streams.Lazy[Metadata] {
	return s.handle.Send(ctx, rec)
}

// SendMany drains upstream, producing every record while preserving
// per-(topic,partition) order, and returns a stream of SendResult
// deliveries correlated back via Record.Correlator.
func (s *Sender[T]) SendMany(ctx context.Context, upstream <-chan Delivery[Record[T]], opts SendOptions) <-chan Delivery[SendResult[T]] {
	pipeline := outbound.NewSendPipeline(s.handle, opts)
	return pipeline.Run(ctx, upstream)
}

// SendAll drains upstream, producing every record, and returns a Lazy that
// resolves once upstream has terminated and every send has completed. Unlike
// SendMany, it carries no per-record correlator or result — only whether the
// whole batch succeeded, and if not, the first error encountered.
func (s *Sender[T]) SendAll(ctx context.Context, upstream <-chan Delivery[Record[T]], opts SendOptions) *Lazy[struct{}] {
	pipeline := outbound.NewSendPipeline(s.handle, opts)
	return pipeline.RunAll(ctx, upstream)
}

// PartitionsFor returns topic's partition ids. Each call dials the first
// configured broker directly, whether or not the producer has been
// initialized.
func (s *Sender[T]) PartitionsFor(ctx context.Context, topic string) ([]int, error) {
	return s.handle.PartitionsFor(ctx, topic)
}

// Close idempotently shuts down the underlying Kafka writer.
func (s *Sender[T]) Close(ctx context.Context) error {
	return s.handle.Close(ctx)
}
