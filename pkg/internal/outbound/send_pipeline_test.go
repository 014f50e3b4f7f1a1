package outbound

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"reactivekafka/pkg/internal/kafkaerr"
	"reactivekafka/pkg/internal/streams"
	"reactivekafka/pkg/internal/types"
)

// encodeErr deterministically fails every record at the encode step, inside
// ProducerHandle.sendSync, before any network write is attempted — this lets
// SendPipeline's ordering/error-aggregation logic be exercised without a
// live broker.
var errEncode = errors.New("encode failed")

func encodeErr(types.Record[string]) ([]byte, error) { return nil, errEncode }

func newTestProducer() *ProducerHandle[string] {
	return NewProducerHandle(types.SenderConfig{Brokers: []string{"127.0.0.1:0"}}, encodeErr)
}

func sendUpstream(t *testing.T, recs ...types.Record[string]) <-chan streams.Delivery[types.Record[string]] {
	t.Helper()
	ch := make(chan streams.Delivery[types.Record[string]], len(recs))
	for _, r := range recs {
		ch <- streams.Ok(r)
	}
	close(ch)
	return ch
}

func TestSendPipelineStopsOnFirstErrorByDefault(t *testing.T) {
	p := newTestProducer()
	sp := NewSendPipeline(p, SendOptions{MaxInFlight: 2})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	upstream := sendUpstream(t, types.Record[string]{Topic: "t", Value: "a"}, types.Record[string]{Topic: "t", Value: "b"})
	out := sp.Run(ctx, upstream)

	delivery, ok := <-out
	if !ok {
		t.Fatal("expected at least one delivery before the channel closes")
	}
	if !errors.Is(delivery.Err, kafkaerr.ErrSend) {
		t.Fatalf("expected wrapped %v, got %v", kafkaerr.ErrSend, delivery.Err)
	}

	if _, ok := <-out; ok {
		t.Fatal("expected the pipeline to close after its first error (DelayError=false)")
	}
}

func TestSendPipelineDelayErrorReportsEveryFailure(t *testing.T) {
	p := newTestProducer()
	sp := NewSendPipeline(p, SendOptions{MaxInFlight: 1, DelayError: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	upstream := sendUpstream(t,
		types.Record[string]{Topic: "t", Partition: intPtr(0), Value: "a", Correlator: "a"},
		types.Record[string]{Topic: "t", Partition: intPtr(0), Value: "b", Correlator: "b"},
	)
	out := sp.Run(ctx, upstream)

	var correlators []any
	var sawErr bool
	for delivery := range out {
		if delivery.Err != nil {
			sawErr = true
			continue
		}
		correlators = append(correlators, delivery.Value.Correlator)
	}

	if !sawErr {
		t.Fatal("expected a terminal error once upstream completes with DelayError")
	}
	if len(correlators) != 2 {
		t.Fatalf("expected both records' failures reported as SendResult entries, got %d", len(correlators))
	}
}

func TestSendPipelinePreservesPerPartitionOrder(t *testing.T) {
	// Route every record through a custom encode that records call order,
	// rather than failing outright, to check partition-worker serialization.
	var order []string
	encode := func(rec types.Record[string]) ([]byte, error) {
		order = append(order, rec.Value)
		return nil, errEncode
	}
	p := NewProducerHandle(types.SenderConfig{Brokers: []string{"127.0.0.1:0"}}, encode)
	sp := NewSendPipeline(p, SendOptions{MaxInFlight: 4})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	part := 0
	upstream := sendUpstream(t,
		types.Record[string]{Topic: "t", Partition: &part, Value: "1"},
		types.Record[string]{Topic: "t", Partition: &part, Value: "2"},
		types.Record[string]{Topic: "t", Partition: &part, Value: "3"},
	)
	out := sp.Run(ctx, upstream)
	for range out {
	}

	if len(order) == 0 {
		t.Fatal("expected encode to have been called")
	}
	if order[0] != "1" {
		t.Fatalf("expected same-partition records to be processed in submission order, got %v", order)
	}
}

func TestSendPipelineEmptyUpstreamCompletesWithNoDeliveries(t *testing.T) {
	p := newTestProducer()
	sp := NewSendPipeline(p, SendOptions{MaxInFlight: 2})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	upstream := sendUpstream(t) // no records at all
	out := sp.Run(ctx, upstream)

	if _, ok := <-out; ok {
		t.Fatal("expected the result channel to close immediately for an empty upstream")
	}
}

func TestSendPipelineUpstreamErrorFailsImmediatelyEvenWithDelayError(t *testing.T) {
	// A genuine upstream-publisher error (as opposed to a per-record send
	// failure) must fail the pipeline right away, regardless of DelayError,
	// which only governs how per-record send failures are reported.
	p := newTestProducer()
	sp := NewSendPipeline(p, SendOptions{MaxInFlight: 2, DelayError: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	upstreamErr := errors.New("upstream publisher failed")
	ch := make(chan streams.Delivery[types.Record[string]], 1)
	ch <- streams.Error[types.Record[string]](upstreamErr)
	close(ch)

	out := sp.Run(ctx, ch)

	delivery, ok := <-out
	if !ok {
		t.Fatal("expected a terminal error delivery before the channel closes")
	}
	if !errors.Is(delivery.Err, kafkaerr.ErrSend) {
		t.Fatalf("expected wrapped %v, got %v", kafkaerr.ErrSend, delivery.Err)
	}
	if _, ok := <-out; ok {
		t.Fatal("expected the pipeline to close immediately after the upstream error")
	}
}

func TestSendPipelineMaxInFlightOneSerializesAcrossPartitions(t *testing.T) {
	// With MaxInFlight=1, sends to different partitions must still be
	// serialized: at most one send is ever in flight at a time.
	var mu sync.Mutex
	var concurrent, maxConcurrent int
	encode := func(rec types.Record[string]) ([]byte, error) {
		mu.Lock()
		concurrent++
		if concurrent > maxConcurrent {
			maxConcurrent = concurrent
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		concurrent--
		mu.Unlock()
		return nil, errEncode
	}
	p := NewProducerHandle(types.SenderConfig{Brokers: []string{"127.0.0.1:0"}}, encode)
	sp := NewSendPipeline(p, SendOptions{MaxInFlight: 1, DelayError: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	partA, partB := 0, 1
	upstream := sendUpstream(t,
		types.Record[string]{Topic: "t", Partition: &partA, Value: "a"},
		types.Record[string]{Topic: "t", Partition: &partB, Value: "b"},
		types.Record[string]{Topic: "t", Partition: &partA, Value: "c"},
	)
	out := sp.Run(ctx, upstream)
	for range out {
	}

	mu.Lock()
	got := maxConcurrent
	mu.Unlock()
	if got > 1 {
		t.Fatalf("expected at most 1 concurrent send with MaxInFlight=1, observed %d", got)
	}
}

func TestSendPipelineRunAllResolvesOnCompletion(t *testing.T) {
	p := newTestProducer()
	sp := NewSendPipeline(p, SendOptions{MaxInFlight: 2, DelayError: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	upstream := sendUpstream(t, types.Record[string]{Topic: "t", Value: "a"}, types.Record[string]{Topic: "t", Value: "b"})
	future := sp.RunAll(ctx, upstream)

	if _, err := future.Get(); !errors.Is(err, kafkaerr.ErrSend) {
		t.Fatalf("expected the first send error surfaced from RunAll, got %v", err)
	}
}

func intPtr(i int) *int { return &i }
