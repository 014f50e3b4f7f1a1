package builder

import (
	"context"
	"time"

	"reactivekafka/pkg/internal/inbound"
	"reactivekafka/pkg/internal/types"
)

// Re-exported receiver-side domain types.
type (
	ReceiverConfig       = types.ReceiverConfig
	ConsumerMessage[T any] = inbound.ConsumerMessage[T]
	OffsetHandle         = inbound.OffsetHandle
	SeekablePartition    = inbound.SeekablePartition
	PartitionState       = types.PartitionState
	AckMode              = inbound.AckMode
	AssignmentHooks      = inbound.AssignmentHooks
	RetriablePredicate   = inbound.RetriablePredicate
)

// Ack modes, re-exported for callers that don't want to import
// pkg/internal/inbound directly.
const (
	AutoAck     = inbound.AutoAck
	AtMostOnce  = inbound.AtMostOnce
	ManualAck   = inbound.ManualAck
	ManualCommit = inbound.ManualCommit
)

// ReceiverOption configures a Receiver's underlying event loop.
type ReceiverOption[T any] inbound.Option[T]

// WithReceiverLogger attaches one or more loggers to a Receiver.
func WithReceiverLogger[T any](loggers ...Logger) ReceiverOption[T] {
	return ReceiverOption[T](inbound.WithLogger[T](loggers...))
}

// WithReceiverSensor attaches a sensor to a Receiver.
func WithReceiverSensor[T any](s Sensor[any]) ReceiverOption[T] {
	return ReceiverOption[T](inbound.WithSensor[T](s))
}

// WithReceiverName sets the Receiver's display name.
func WithReceiverName[T any](name string) ReceiverOption[T] {
	return ReceiverOption[T](inbound.WithName[T](name))
}

// ReceiverParams collects the knobs this client's specification assigns to
// the receiver beyond plain connectivity: the ack mode, the auto-commit
// interval (AutoAck/ManualAck only), how many times an automatic commit
// retries before it gives up (the failure is logged; the subscription keeps
// running), which commit errors are worth retrying, and the
// partition-assignment lifecycle hooks.
type ReceiverParams struct {
	AckMode        AckMode
	CommitInterval time.Duration
	// CommitBatchSize, when positive, triggers an immediate commit on a
	// partition as soon as it accumulates this many acknowledged-but-
	// uncommitted records, independent of CommitInterval. Applies to
	// AutoAck and ManualAck; ManualCommit's caller-driven commits are
	// unaffected.
	CommitBatchSize       int
	MaxAutoCommitAttempts int
	Retriable             RetriablePredicate
	Hooks                 AssignmentHooks
}

// Receiver is the public handle for consuming records of type T from Kafka.
// It pairs a ConsumerEventLoop (kafka-go reader(s)) with an OffsetManager and
// applies the configured AckMode's acknowledge/commit policy.
type Receiver[T any] struct {
	loop     *inbound.ConsumerEventLoop[T]
	mgr      *inbound.OffsetManager
	pipeline *inbound.InboundPipeline[T]
}

// NewReceiver constructs a Receiver. decode converts raw Kafka bytes into T.
func NewReceiver[T any](cfg ReceiverConfig, decode func([]byte) (T, error), params ReceiverParams, opts ...ReceiverOption[T]) *Receiver[T] {
	iopts := make([]inbound.Option[T], len(opts))
	for i, o := range opts {
		iopts[i] = inbound.Option[T](o)
	}
	loop := inbound.NewConsumerEventLoop(cfg, decode, params.Hooks, iopts...)

	// committer is nil here: the underlying readers don't exist until the
	// loop starts. OffsetManager.SetCommitter is called once InboundPipeline
	// starts the loop, below in Run.
	mgr := inbound.NewOffsetManager(nil, params.MaxAutoCommitAttempts, params.Retriable, params.CommitBatchSize)

	pipeline := inbound.NewInboundPipeline(loop, mgr, params.AckMode, params.CommitInterval)
	return &Receiver[T]{loop: loop, mgr: mgr, pipeline: pipeline}
}

// ConnectSensor attaches a sensor to both the event loop and the offset
// manager, so assignment/poll/pause events and acknowledge/commit events
// share one telemetry sink.
func (r *Receiver[T]) ConnectSensor(s Sensor[any]) {
	r.loop.ConnectSensor(s)
	r.mgr.ConnectSensor(s)
}

// ConnectLogger attaches loggers to the event loop, the offset manager and
// the inbound pipeline.
func (r *Receiver[T]) ConnectLogger(loggers ...Logger) {
	r.loop.ConnectLogger(loggers...)
	r.mgr.ConnectLogger(loggers...)
	r.pipeline.ConnectLogger(loggers...)
}

// Run starts consuming and returns the ack-mode-applied message stream.
func (r *Receiver[T]) Run(ctx context.Context) (<-chan Delivery[ConsumerMessage[T]], error) {
	return r.pipeline.Run(ctx)
}

// Pause stops fetching for tp without affecting group-membership heartbeats.
// It takes effect in explicit-assignment mode only; a group-subscription
// receiver keeps fetching every partition.
func (r *Receiver[T]) Pause(tp TopicPartition) { r.loop.Pause(tp) }

// Resume resumes fetching for a previously-paused partition.
func (r *Receiver[T]) Resume(tp TopicPartition) { r.loop.Resume(tp) }

// CommitPartition synchronously commits one partition's acknowledged offset.
// Intended for ManualAck/ManualCommit callers driving their own commit
// cadence.
func (r *Receiver[T]) CommitPartition(tp TopicPartition) error {
	return r.mgr.CommitPartition(tp)
}

// Commit performs a batched commit of the given partition states. Intended
// for ManualCommit callers.
func (r *Receiver[T]) Commit(ctx context.Context, states []PartitionState) error {
	return r.mgr.Commit(ctx, states)
}
