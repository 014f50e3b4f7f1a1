package outbound

import (
	"context"
	"fmt"
	"sync"

	"reactivekafka/pkg/internal/kafkaerr"
	"reactivekafka/pkg/internal/streams"
	"reactivekafka/pkg/internal/types"
)

// sendState is the tagged state of one SendPipeline run, confined to the
// single owner goroutine below — never touched from any other goroutine.
// This resolves the memory-ordering open question left by
// AbstractSendSubscriber in the original source: rather than specify an
// explicit happens-before relationship between the producer network thread
// and the downstream thread, all mutable state is owned by one goroutine.
type sendState int

const (
	stateInit sendState = iota
	stateActive
	stateOutboundDone
	stateComplete
	stateFailed
)

// SendResult pairs a completed send's outcome with the Correlator the
// caller attached to the originating Record, so a streaming caller can
// match acknowledgements back to requests without relying on slice order.
type SendResult[T any] struct {
	Metadata   types.Metadata
	Correlator any
	Err        error
}

// SendOptions configures one SendPipeline run.
type SendOptions struct {
	// MaxInFlight bounds concurrent outstanding sends. Sends to the same
	// explicit partition are always serialized regardless of this value,
	// to preserve per-partition order; MaxInFlight bounds concurrency
	// across distinct partitions/topics. Zero or negative means 1.
	MaxInFlight int
	// DelayError, when true, continues draining upstream after a send
	// fails: each failed send is emitted as it completes, as a SendResult
	// with Err set, interleaved with successes, and once upstream is done
	// and nothing is in flight the stream ends with one terminal error
	// carrying the first failure. When false the first failure terminates
	// the pipeline.
	DelayError bool
	// Scheduler, if non-nil, runs downstream emission of SendResults on the
	// scheduler instead of inline on the pipeline's owner goroutine.
	Scheduler streams.Scheduler
}

type sendEvent struct {
	result SendResult[any]
	err    error // upstream error (nil for a normal completion event)
	done   bool  // upstream exhausted
	issued bool  // a record was just handed to a partition worker
}

// SendPipeline drives one run of records-in, acknowledgements-out over a
// ProducerHandle. Grounded on reactor.kafka.KafkaSender's
// AbstractSendSubscriber/SendSubscriber: onNext increments inflight and
// issues a send, onComplete marks OUTBOUND_DONE and completes immediately
// if nothing is inflight, each send completion decrements inflight and
// completes the pipeline if upstream is already done.
type SendPipeline[T any] struct {
	producer *ProducerHandle[T]
	opts     SendOptions

	state    sendState
	inflight int
	firstErr error

	events chan sendEvent
	out    chan streams.Delivery[SendResult[T]]

	partitionWorkersMu sync.Mutex
	partitionWorkers   map[types.TopicPartition]chan workItem[T]
	sem                chan struct{}
}

type workItem[T any] struct {
	rec types.Record[T]
}

// NewSendPipeline constructs a SendPipeline bound to producer.
func NewSendPipeline[T any](producer *ProducerHandle[T], opts SendOptions) *SendPipeline[T] {
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = 1
	}
	return &SendPipeline[T]{
		producer:         producer,
		opts:             opts,
		state:            stateInit,
		events:           make(chan sendEvent, opts.MaxInFlight+1),
		out:              make(chan streams.Delivery[SendResult[T]]),
		partitionWorkers: make(map[types.TopicPartition]chan workItem[T]),
		sem:              make(chan struct{}, opts.MaxInFlight),
	}
}

// Run consumes upstream and returns the result stream. Run may only be
// called once per SendPipeline.
func (sp *SendPipeline[T]) Run(ctx context.Context, upstream <-chan streams.Delivery[types.Record[T]]) <-chan streams.Delivery[SendResult[T]] {
	sp.state = stateActive

	go sp.pumpUpstream(ctx, upstream)
	go sp.ownerLoop(ctx)

	return sp.out
}

// RunAll drives one send run to completion without surfacing individual
// SendResult values, matching KafkaSender.sendAll's void-valued batch-send
// API: the caller only learns when every record has been produced (or the
// first error, if any). Every delivery is still drained internally so the
// underlying run always reaches completion even though the caller never
// sees per-record results.
func (sp *SendPipeline[T]) RunAll(ctx context.Context, upstream <-chan streams.Delivery[types.Record[T]]) *streams.Lazy[struct{}] {
	future, resolve := streams.FromCallback[struct{}]()
	out := sp.Run(ctx, upstream)
	go func() {
		var firstErr error
		for delivery := range out {
			if delivery.Err != nil && firstErr == nil {
				firstErr = delivery.Err
			}
		}
		resolve(struct{}{}, firstErr)
	}()
	return future
}

// pumpUpstream reads the source stream and fans each record out to its
// partition worker, bounded by the global semaphore. It never touches
// sp.state/sp.inflight/sp.firstErr directly — only the owner goroutine does,
// via events sent on sp.events.
func (sp *SendPipeline[T]) pumpUpstream(ctx context.Context, upstream <-chan streams.Delivery[types.Record[T]]) {
	for delivery := range upstream {
		if delivery.Err != nil {
			sp.events <- sendEvent{err: delivery.Err}
			return
		}

		rec := delivery.Value
		select {
		case sp.sem <- struct{}{}:
		case <-ctx.Done():
			sp.events <- sendEvent{err: ctx.Err()}
			return
		}

		// The issued event is sent strictly before the item reaches its
		// worker, so the happens-before chain
		// (issue-send -> worker-receive -> worker-processes -> completion-send)
		// guarantees ownerLoop observes "issued" before the matching
		// completion event on sp.events, even though they come from two
		// different goroutines.
		sp.events <- sendEvent{issued: true}
		worker := sp.workerFor(ctx, rec)
		select {
		case worker <- workItem[T]{rec: rec}:
		case <-ctx.Done():
			<-sp.sem
			sp.events <- sendEvent{err: ctx.Err()}
			return
		}
	}
	sp.events <- sendEvent{done: true}
}

// workerFor returns the serializing worker goroutine for rec's destination,
// creating it lazily. Records with an explicit partition are serialized per
// (topic, partition) to preserve broker order for that partition; records
// with no explicit partition (broker/balancer chooses) are serialized per
// topic, since the destination partition is not known until the balancer
// runs inside WriteMessages.
func (sp *SendPipeline[T]) workerFor(ctx context.Context, rec types.Record[T]) chan workItem[T] {
	key := types.TopicPartition{Topic: rec.Topic, Partition: -1}
	if rec.Partition != nil {
		key.Partition = *rec.Partition
	}

	sp.partitionWorkersMu.Lock()
	defer sp.partitionWorkersMu.Unlock()

	if ch, ok := sp.partitionWorkers[key]; ok {
		return ch
	}
	ch := make(chan workItem[T], 1)
	sp.partitionWorkers[key] = ch
	go sp.partitionLoop(ctx, ch)
	return ch
}

func (sp *SendPipeline[T]) partitionLoop(ctx context.Context, in chan workItem[T]) {
	for item := range in {
		md, err := sp.producer.sendSync(ctx, item.rec)
		<-sp.sem

		res := SendResult[any]{
			Metadata:   md,
			Correlator: item.rec.Correlator,
			Err:        err,
		}
		sp.events <- sendEvent{result: res}
	}
}

// ownerLoop is the single goroutine that owns state, inflight, and firstErr.
// It is the Go realization of AbstractSendSubscriber.onNext/onComplete/
// onError/complete/error, all confined to one thread.
func (sp *SendPipeline[T]) ownerLoop(ctx context.Context) {
	defer close(sp.out)

	upstreamDone := false

	emit := func(sr SendResult[T]) {
		if sp.opts.Scheduler != nil {
			sp.opts.Scheduler.Run(func() {
				sp.out <- streams.Ok(sr)
			})
			return
		}
		sp.out <- streams.Ok(sr)
	}

	finishIfDone := func() {
		if upstreamDone && sp.inflight == 0 {
			if sp.firstErr != nil {
				sp.state = stateFailed
				sp.out <- streams.Error[SendResult[T]](fmt.Errorf("%w: %v", kafkaerr.ErrSend, sp.firstErr))
			} else {
				sp.state = stateComplete
			}
		}
	}

	for {
		select {
		case ev := <-sp.events:
			switch {
			case ev.issued:
				sp.inflight++
			case ev.done:
				upstreamDone = true
				sp.state = stateOutboundDone
				finishIfDone()
				if sp.state == stateComplete || sp.state == stateFailed {
					return
				}
			case ev.err != nil:
				// A genuine upstream-publisher error (as opposed to a
				// per-record send failure handled below) is unconditional:
				// it fails the pipeline immediately regardless of
				// DelayError, which only governs how per-record send
				// failures are reported.
				upstreamDone = true
				if sp.firstErr == nil {
					sp.firstErr = ev.err
				}
				sp.state = stateFailed
				sp.out <- streams.Error[SendResult[T]](fmt.Errorf("%w: %v", kafkaerr.ErrSend, ev.err))
				return
			default:
				sp.inflight--
				sr := SendResult[T]{
					Metadata:   ev.result.Metadata,
					Correlator: ev.result.Correlator,
					Err:        ev.result.Err,
				}
				if sr.Err != nil {
					if sp.firstErr == nil {
						sp.firstErr = sr.Err
					}
					if !sp.opts.DelayError {
						sp.state = stateFailed
						sp.out <- streams.Error[SendResult[T]](fmt.Errorf("%w: %v", kafkaerr.ErrSend, sr.Err))
						return
					}
				}
				emit(sr)
				finishIfDone()
				if sp.state == stateComplete || sp.state == stateFailed {
					return
				}
			}
		case <-ctx.Done():
			sp.state = stateFailed
			sp.out <- streams.Error[SendResult[T]](ctx.Err())
			return
		}
	}
}
