// Package outbound implements the reactive send side: ProducerHandle wraps a
// lazily-initialized kafka-go Writer, and SendPipeline turns a stream of
// outbound records into a stream of broker acknowledgements while preserving
// per-partition order and bounding in-flight concurrency.
//
// Grounded on reactor.kafka.KafkaSender (original_source/reactor-kafka-api):
// the producerMono/hasProducer pair, the AbstractSendSubscriber state
// machine, and the send/sendAll/send(Publisher) API surface are all ported
// from that file, re-expressed with kafka-go's synchronous WriteMessages in
// place of the Java client's async Callback.
package outbound

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"reactivekafka/pkg/internal/kafkaerr"
	"reactivekafka/pkg/internal/streams"
	"reactivekafka/pkg/internal/types"
)

// ProducerHandle owns a single kafka.Writer, created lazily on first use and
// shared by every SendPipeline built against it. Close is idempotent.
type ProducerHandle[T any] struct {
	cfg types.SenderConfig

	writer      *streams.Lazy[*kafka.Writer]
	hasProducer atomic.Bool
	closed      atomic.Bool

	componentMetadata types.ComponentMetadata
	loggers           []types.Logger
	sensor            types.Sensor[T]

	encode func(types.Record[T]) ([]byte, error)
}

// NewProducerHandle constructs a ProducerHandle. The underlying kafka.Writer
// is not created until the first send; PartitionsFor dials its own
// connection and does not create it.
func NewProducerHandle[T any](cfg types.SenderConfig, encode func(types.Record[T]) ([]byte, error), opts ...Option[T]) *ProducerHandle[T] {
	p := &ProducerHandle[T]{
		cfg:    cfg,
		encode: encode,
		componentMetadata: types.ComponentMetadata{
			ID:   uuid.NewString(),
			Type: "PRODUCER_HANDLE",
			Name: "producer",
		},
	}
	p.writer = streams.NewLazy(func() (*kafka.Writer, error) {
		w := newKafkaWriter(cfg)
		p.hasProducer.Store(true)
		p.notify(types.InfoLevel, "producer initialized", "brokers", cfg.Brokers)
		if p.sensor != nil {
			p.sensor.InvokeOnProducerCreated(p.componentMetadata)
		}
		return w, nil
	})
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func newKafkaWriter(cfg types.SenderConfig) *kafka.Writer {
	transport := &kafka.Transport{}
	if cfg.Security != nil {
		transport.SASL = cfg.Security.SASL
		transport.TLS = cfg.Security.TLS
		transport.ClientID = cfg.Security.ClientID
	}

	var requiredAcks kafka.RequiredAcks
	switch cfg.Acks {
	case "none":
		requiredAcks = kafka.RequireNone
	case "one":
		requiredAcks = kafka.RequireOne
	default:
		requiredAcks = kafka.RequireAll
	}

	batchTimeout := cfg.LingerDuration
	if batchTimeout <= 0 {
		batchTimeout = 10 * time.Millisecond
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: requiredAcks,
		BatchTimeout: batchTimeout,
		BatchSize:    cfg.BatchSize,
		Compression:  compressionCodec(cfg.Compression),
		Async:        false,
		Transport:    transport,
	}
	if cfg.MaxBlockDuration > 0 {
		w.WriteTimeout = cfg.MaxBlockDuration
	}
	if cfg.BatchSize <= 0 {
		w.BatchSize = 100
	}
	return w
}

func compressionCodec(name string) kafka.Compression {
	switch name {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return 0 // uncompressed
	}
}

func (p *ProducerHandle[T]) notify(level types.LogLevel, msg string, kv ...interface{}) {
	for _, l := range p.loggers {
		if l == nil {
			continue
		}
		switch level {
		case types.DebugLevel:
			l.Debug(msg, kv...)
		case types.WarnLevel:
			l.Warn(msg, kv...)
		case types.ErrorLevel:
			l.Error(msg, kv...)
		default:
			l.Info(msg, kv...)
		}
	}
}

// writerOrError resolves the lazily-constructed writer.
func (p *ProducerHandle[T]) writerOrError() (*kafka.Writer, error) {
	if p.closed.Load() {
		return nil, fmt.Errorf("%w: producer handle", kafkaerr.ErrClosedResource)
	}
	w, err := p.writer.Get()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kafkaerr.ErrProducerInit, err)
	}
	return w, nil
}

// Send produces a single record and returns a Lazy resolving to its
// broker-assigned Metadata, or the send error. It is the Go analogue of
// KafkaSender.send(SenderRecord).
func (p *ProducerHandle[T]) Send(ctx context.Context, rec types.Record[T]) *streams.Lazy[types.Metadata] {
	future, resolve := streams.FromCallback[types.Metadata]()
	go func() {
		md, err := p.sendSync(ctx, rec)
		resolve(md, err)
	}()
	// The write starts in the goroutine above right away, whether or not
	// the caller ever calls Get; Get only waits for its outcome.
	return future
}

func (p *ProducerHandle[T]) sendSync(ctx context.Context, rec types.Record[T]) (md types.Metadata, err error) {
	if p.sensor != nil {
		p.sensor.InvokeOnSendAttempt(p.componentMetadata, rec)
		defer func() {
			if err != nil {
				p.sensor.InvokeOnSendError(p.componentMetadata, rec, err)
			} else {
				p.sensor.InvokeOnSendSuccess(p.componentMetadata, rec, md)
			}
		}()
	}

	w, err := p.writerOrError()
	if err != nil {
		return types.Metadata{}, err
	}

	value, err := p.encode(rec)
	if err != nil {
		return types.Metadata{}, fmt.Errorf("%w: encode: %v", kafkaerr.ErrSend, err)
	}

	msg := kafka.Message{
		Topic: rec.Topic,
		Key:   rec.Key,
		Value: value,
		Time:  time.Now(),
	}
	if rec.Partition != nil {
		msg.Partition = *rec.Partition
		msg.WriterData = nil
	}
	for k, v := range rec.Headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: k, Value: []byte(v)})
	}

	if err := w.WriteMessages(ctx, msg); err != nil {
		return types.Metadata{}, fmt.Errorf("%w: %v", kafkaerr.ErrSend, err)
	}

	return types.Metadata{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    -1, // kafka-go's high-level Writer does not report assigned offsets
		Timestamp: msg.Time,
	}, nil
}

// PartitionsFor returns the partition ids for topic, dialing the first
// configured broker on every call. Grounded on KafkaSender.partitionsFor.
func (p *ProducerHandle[T]) PartitionsFor(ctx context.Context, topic string) ([]int, error) {
	if len(p.cfg.Brokers) == 0 {
		return nil, fmt.Errorf("%w: no brokers configured", kafkaerr.ErrProducerInit)
	}
	conn, err := kafka.DialContext(ctx, "tcp", p.cfg.Brokers[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kafkaerr.ErrProducerInit, err)
	}
	defer conn.Close()

	partitions, err := conn.ReadPartitions(topic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kafkaerr.ErrProducerInit, err)
	}
	ids := make([]int, len(partitions))
	for i, part := range partitions {
		ids[i] = part.ID
	}
	return ids, nil
}

// Close idempotently shuts down the underlying writer, bounded by
// cfg.CloseTimeout.
func (p *ProducerHandle[T]) Close(ctx context.Context) error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil // already closed; Close is idempotent
	}
	if !p.hasProducer.Load() {
		return nil // never initialized, nothing to close
	}
	w, err := p.writer.Get()
	if err != nil {
		return nil
	}

	timeout := p.cfg.CloseTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	done := make(chan error, 1)
	go func() { done <- w.Close() }()

	select {
	case err := <-done:
		p.notify(types.InfoLevel, "producer closed")
		return err
	case <-time.After(timeout):
		return fmt.Errorf("producer close timed out after %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ConnectLogger attaches loggers.
func (p *ProducerHandle[T]) ConnectLogger(loggers ...types.Logger) {
	p.loggers = append(p.loggers, loggers...)
}

// ConnectSensor attaches a sensor.
func (p *ProducerHandle[T]) ConnectSensor(s types.Sensor[T]) {
	p.sensor = s
}

// GetComponentMetadata returns this handle's identity.
func (p *ProducerHandle[T]) GetComponentMetadata() types.ComponentMetadata {
	return p.componentMetadata
}
