package inbound

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"reactivekafka/pkg/internal/kafkaerr"
	"reactivekafka/pkg/internal/streams"
	"reactivekafka/pkg/internal/types"
)

// RawMessage is one fetched-and-decoded record, before ack-mode policy is
// applied by InboundPipeline.
type RawMessage[T any] struct {
	Metadata types.Metadata
	Decoded  T
	raw      kafka.Message
}

func (r RawMessage[T]) topicPartition() types.TopicPartition {
	return types.TopicPartition{Topic: r.Metadata.Topic, Partition: r.Metadata.Partition}
}

// AssignmentHooks are invoked synchronously when partitions are assigned or
// revoked. In explicit-assignment mode OnAssigned runs inside Run, before
// polling starts, so its seeks apply before any record is delivered. In
// group mode it runs on the loop goroutine after the first record of a
// partition has been fetched, and that record is delivered as fetched.
type AssignmentHooks struct {
	OnAssigned func(partitions []*SeekablePartition)
	OnRevoked  func(partitions []types.TopicPartition)
}

// ConsumerEventLoop bridges kafka-go's poll/fetch consumer API into a
// backpressure-aware stream of RawMessage deliveries. Grounded on the
// adapter's reader.go Serve loop: a windowed context.WithTimeout around
// FetchMessage, generalized here to also support explicit-partition
// assignment and a paused-partition set.
//
// Heartbeat safety: kafka-go's *kafka.Reader, once constructed with a
// GroupID, runs consumer-group heartbeats on its own background goroutine
// for as long as the Reader is open — independent of whether this loop is
// currently calling FetchMessage. While downstream is slow the loop blocks on
// its unbuffered output channel; it does not pause partitions on its own.
// Pause/Resume are caller-driven and take effect in explicit-assignment mode
// only.
type ConsumerEventLoop[T any] struct {
	cfg    types.ReceiverConfig
	decode func([]byte) (T, error)
	hooks  AssignmentHooks

	componentMetadata types.ComponentMetadata
	loggers           []types.Logger
	sensor            types.Sensor[any]

	explicit bool
	readers  map[types.TopicPartition]*kafka.Reader
	groupRdr *kafka.Reader

	pausedMu sync.Mutex
	paused   map[types.TopicPartition]bool

	lastSeenMu sync.Mutex
	lastSeen   map[types.TopicPartition]time.Time
	assigned   map[types.TopicPartition]bool
}

// NewConsumerEventLoop constructs a ConsumerEventLoop. A non-empty
// cfg.Partitions selects explicit per-partition assignment; otherwise the
// loop uses group/topic subscription (cfg.GroupID + cfg.Topics).
func NewConsumerEventLoop[T any](cfg types.ReceiverConfig, decode func([]byte) (T, error), hooks AssignmentHooks, opts ...Option[T]) *ConsumerEventLoop[T] {
	c := &ConsumerEventLoop[T]{
		cfg:      cfg,
		decode:   decode,
		hooks:    hooks,
		explicit: len(cfg.Partitions) > 0,
		readers:  make(map[types.TopicPartition]*kafka.Reader),
		paused:   make(map[types.TopicPartition]bool),
		lastSeen: make(map[types.TopicPartition]time.Time),
		assigned: make(map[types.TopicPartition]bool),
		componentMetadata: types.ComponentMetadata{
			ID:   uuid.NewString(),
			Type: "CONSUMER_EVENT_LOOP",
			Name: "consumer",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ConsumerEventLoop[T]) ConnectLogger(loggers ...types.Logger) { c.loggers = append(c.loggers, loggers...) }
func (c *ConsumerEventLoop[T]) ConnectSensor(s types.Sensor[any])     { c.sensor = s }

func (c *ConsumerEventLoop[T]) notify(level types.LogLevel, msg string, kv ...interface{}) {
	for _, l := range c.loggers {
		if l == nil {
			continue
		}
		switch level {
		case types.WarnLevel:
			l.Warn(msg, kv...)
		case types.ErrorLevel:
			l.Error(msg, kv...)
		case types.DebugLevel:
			l.Debug(msg, kv...)
		default:
			l.Info(msg, kv...)
		}
	}
}

func startOffset(cfg types.ReceiverConfig) int64 {
	if cfg.AutoOffsetReset == "latest" {
		return kafka.LastOffset
	}
	return kafka.FirstOffset
}

func (c *ConsumerEventLoop[T]) dialer() *kafka.Dialer {
	d := &kafka.Dialer{Timeout: 10 * time.Second, DualStack: true}
	if c.cfg.Security != nil {
		d.SASLMechanism = c.cfg.Security.SASL
		d.TLS = c.cfg.Security.TLS
		if c.cfg.Security.DialerTO > 0 {
			d.Timeout = c.cfg.Security.DialerTO
		}
		d.DualStack = c.cfg.Security.DualStack
	}
	return d
}

// start initializes the underlying kafka-go reader(s) and fires the initial
// assignment callback. Explicit-assignment mode knows its partitions up
// front, so assignment is synchronous and complete before Run begins
// polling.
func (c *ConsumerEventLoop[T]) start(ctx context.Context) error {
	if c.explicit {
		var assigned []*SeekablePartition
		for _, tp := range c.cfg.Partitions {
			r := kafka.NewReader(kafka.ReaderConfig{
				Brokers:        c.cfg.Brokers,
				Topic:          tp.Topic,
				Partition:      tp.Partition,
				Dialer:         c.dialer(),
				MinBytes:       1,
				MaxBytes:       10e6,
				QueueCapacity:  100,
			})
			if err := r.SetOffset(startOffset(c.cfg)); err != nil {
				return fmt.Errorf("%w: %v", kafkaerr.ErrConsumerPoll, err)
			}
			c.readers[tp] = r
			assigned = append(assigned, &SeekablePartition{tp: tp, reader: r, position: startOffset(c.cfg)})
		}
		if c.hooks.OnAssigned != nil {
			c.hooks.OnAssigned(assigned)
		}
		if c.sensor != nil {
			tps := make([]types.TopicPartition, len(c.cfg.Partitions))
			copy(tps, c.cfg.Partitions)
			c.sensor.InvokeOnPartitionsAssigned(c.componentMetadata, tps)
		}
		return nil
	}

	rc := kafka.ReaderConfig{
		Brokers:        c.cfg.Brokers,
		GroupID:        c.cfg.GroupID,
		GroupTopics:    c.cfg.Topics,
		Dialer:         c.dialer(),
		MinBytes:       1,
		MaxBytes:       10e6,
		QueueCapacity:  100,
	}
	if c.cfg.SessionTimeout > 0 {
		rc.SessionTimeout = c.cfg.SessionTimeout
	}
	if len(c.cfg.Topics) == 1 {
		rc.GroupTopics = nil
		rc.Topic = c.cfg.Topics[0]
	}
	c.groupRdr = kafka.NewReader(rc)
	return nil
}

// Run begins polling and returns the raw delivery stream. Ctx cancellation
// stops the loop and closes every underlying reader.
func (c *ConsumerEventLoop[T]) Run(ctx context.Context) (<-chan streams.Delivery[RawMessage[T]], error) {
	if err := c.start(ctx); err != nil {
		return nil, err
	}

	out := make(chan streams.Delivery[RawMessage[T]])
	go c.loop(ctx, out)
	return out, nil
}

func (c *ConsumerEventLoop[T]) loop(ctx context.Context, out chan streams.Delivery[RawMessage[T]]) {
	defer close(out)
	defer c.closeReaders()

	pollEvery := c.cfg.PollTimeout
	if pollEvery <= 0 {
		pollEvery = 250 * time.Millisecond
	}
	sessionTimeout := c.cfg.SessionTimeout
	if sessionTimeout <= 0 {
		sessionTimeout = 30 * time.Second
	}

	for {
		if ctx.Err() != nil {
			return
		}

		var (
			msg kafka.Message
			err error
		)

		if c.explicit {
			msg, _, err = c.fetchExplicit(ctx, pollEvery)
		} else {
			msg, _, err = c.fetchGroup(ctx, pollEvery, sessionTimeout)
		}

		if err != nil {
			if err == errNoMessage {
				continue
			}
			select {
			case out <- streams.Error[RawMessage[T]](fmt.Errorf("%w: %v", kafkaerr.ErrConsumerPoll, err)):
			case <-ctx.Done():
			}
			if c.sensor != nil {
				c.sensor.InvokeOnPollError(c.componentMetadata, err)
			}
			return
		}

		decoded, derr := c.decode(msg.Value)
		if derr != nil {
			select {
			case out <- streams.Error[RawMessage[T]](fmt.Errorf("decode: %w", derr)):
			case <-ctx.Done():
			}
			return
		}

		raw := RawMessage[T]{
			Metadata: types.Metadata{Topic: msg.Topic, Partition: msg.Partition, Offset: msg.Offset, Timestamp: msg.Time},
			Decoded:  decoded,
			raw:      msg,
		}
		select {
		case out <- streams.Ok(raw):
		case <-ctx.Done():
			return
		}
	}
}

var errNoMessage = fmt.Errorf("no message available this poll window")

func (c *ConsumerEventLoop[T]) fetchExplicit(ctx context.Context, pollEvery time.Duration) (kafka.Message, types.TopicPartition, error) {
	for tp, r := range c.readers {
		if c.isPaused(tp) {
			continue
		}
		wctx, cancel := context.WithTimeout(ctx, pollEvery)
		msg, err := r.FetchMessage(wctx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return kafka.Message{}, types.TopicPartition{}, ctx.Err()
			}
			continue // timed out this window; try the next partition
		}
		return msg, tp, nil
	}
	return kafka.Message{}, types.TopicPartition{}, errNoMessage
}

func (c *ConsumerEventLoop[T]) fetchGroup(ctx context.Context, pollEvery, sessionTimeout time.Duration) (kafka.Message, types.TopicPartition, error) {
	wctx, cancel := context.WithTimeout(ctx, pollEvery)
	msg, err := c.groupRdr.FetchMessage(wctx)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return kafka.Message{}, types.TopicPartition{}, ctx.Err()
		}
		c.sweepRevoked(sessionTimeout)
		return kafka.Message{}, types.TopicPartition{}, errNoMessage
	}

	tp := types.TopicPartition{Topic: msg.Topic, Partition: msg.Partition}
	c.lastSeenMu.Lock()
	c.lastSeen[tp] = time.Now()
	firstSeen := !c.assigned[tp]
	if firstSeen {
		c.assigned[tp] = true
	}
	c.lastSeenMu.Unlock()

	if firstSeen {
		if c.hooks.OnAssigned != nil {
			c.hooks.OnAssigned([]*SeekablePartition{{tp: tp, position: msg.Offset}})
		}
		if c.sensor != nil {
			c.sensor.InvokeOnPartitionsAssigned(c.componentMetadata, []types.TopicPartition{tp})
		}
	}
	return msg, tp, nil
}

// sweepRevoked fires a heuristic revocation for any group-mode partition
// silent for more than 2x the session timeout, per the documented tradeoff
// of subscribing via kafka-go's high-level Reader (no native rebalance
// listener is exposed).
func (c *ConsumerEventLoop[T]) sweepRevoked(sessionTimeout time.Duration) {
	threshold := 2 * sessionTimeout
	c.lastSeenMu.Lock()
	var revoked []types.TopicPartition
	for tp, seen := range c.lastSeen {
		if time.Since(seen) > threshold && c.assigned[tp] {
			revoked = append(revoked, tp)
			delete(c.assigned, tp)
			delete(c.lastSeen, tp)
		}
	}
	c.lastSeenMu.Unlock()

	if len(revoked) == 0 {
		return
	}
	if c.hooks.OnRevoked != nil {
		c.hooks.OnRevoked(revoked)
	}
	if c.sensor != nil {
		c.sensor.InvokeOnPartitionsRevoked(c.componentMetadata, revoked)
	}
}

func (c *ConsumerEventLoop[T]) isPaused(tp types.TopicPartition) bool {
	c.pausedMu.Lock()
	defer c.pausedMu.Unlock()
	return c.paused[tp]
}

// Pause stops fetching for tp in explicit-assignment mode. Group mode reads
// from its single reader regardless of the paused set, so Pause there only
// records the flag and fires the sensor hook.
func (c *ConsumerEventLoop[T]) Pause(tp types.TopicPartition) {
	c.pausedMu.Lock()
	c.paused[tp] = true
	c.pausedMu.Unlock()
	if c.sensor != nil {
		c.sensor.InvokeOnPause(c.componentMetadata, tp)
	}
}

// Resume resumes fetching for a previously-paused partition.
func (c *ConsumerEventLoop[T]) Resume(tp types.TopicPartition) {
	c.pausedMu.Lock()
	c.paused[tp] = false
	c.pausedMu.Unlock()
	if c.sensor != nil {
		c.sensor.InvokeOnResume(c.componentMetadata, tp)
	}
}

// Committer returns the Committer backing this loop's readers, for wiring
// into an OffsetManager. Only valid after Run (or start) has been called.
func (c *ConsumerEventLoop[T]) Committer() Committer { return c.committer() }

func (c *ConsumerEventLoop[T]) committer() Committer {
	if c.explicit {
		return &multiReaderCommitter{readers: c.readers}
	}
	return c.groupRdr
}

func (c *ConsumerEventLoop[T]) closeReaders() {
	for _, r := range c.readers {
		_ = r.Close()
	}
	if c.groupRdr != nil {
		_ = c.groupRdr.Close()
	}
}

// multiReaderCommitter routes each message's commit to its owning
// low-level Reader, since explicit-assignment mode has one Reader per
// partition rather than one shared group-managed Reader.
type multiReaderCommitter struct {
	readers map[types.TopicPartition]*kafka.Reader
}

func (m *multiReaderCommitter) CommitMessages(ctx context.Context, msgs ...kafka.Message) error {
	byReader := make(map[*kafka.Reader][]kafka.Message)
	for _, msg := range msgs {
		tp := types.TopicPartition{Topic: msg.Topic, Partition: msg.Partition}
		r, ok := m.readers[tp]
		if !ok {
			continue
		}
		byReader[r] = append(byReader[r], msg)
	}
	for r, batch := range byReader {
		if err := r.CommitMessages(ctx, batch...); err != nil {
			return err
		}
	}
	return nil
}
