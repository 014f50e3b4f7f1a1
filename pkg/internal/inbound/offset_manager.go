package inbound

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"

	"reactivekafka/pkg/internal/kafkaerr"
	"reactivekafka/pkg/internal/types"
)

// RetriablePredicate decides whether a commit failure is worth retrying.
// Defaults to "retry everything".
type RetriablePredicate func(error) bool

// Committer abstracts the broker commit call so OffsetManager can be unit
// tested against a fake. *kafka.Reader satisfies it via CommitMessages.
type Committer interface {
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// partitionEntry is a PartitionState plus the atomic high-water mark backing
// the any-goroutine-callable Acknowledge fast path described in the
// concurrency model: the mark itself advances by compare-and-swap, and the
// manager's mutex is held only briefly to look up the entry.
type partitionEntry struct {
	state            types.PartitionState
	lastAcknowledged atomic.Int64
	committing       atomic.Bool // guards against overlapping batch-size-triggered commits
}

// OffsetManager owns per-partition acknowledge/commit bookkeeping for one
// ConsumerEventLoop. All methods are safe for concurrent use; Acknowledge in
// particular advances its high-water mark with compare-and-swap, holding the
// mutex only for the partition lookup, so it can be called from arbitrary
// downstream-processing goroutines at high frequency.
type OffsetManager struct {
	mu         sync.Mutex
	partitions map[types.TopicPartition]*partitionEntry

	committer       Committer
	retriable       RetriablePredicate
	maxAttempts     int
	commitBatchSize int64

	sensor  types.Sensor[any]
	loggers []types.Logger
	owner   types.ComponentMetadata
}

// SetCommitter binds (or rebinds) the Committer used by Commit. Exists so a
// manager can be constructed before its owning ConsumerEventLoop has started
// and its readers (and therefore its Committer) exist.
func (m *OffsetManager) SetCommitter(c Committer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committer = c
}

// NewOffsetManager constructs an OffsetManager bound to committer. committer
// may be nil if it will be supplied later via SetCommitter, e.g. once the
// owning ConsumerEventLoop has started and its readers exist. commitBatchSize
// triggers an immediate out-of-band commit on a partition as soon as its
// acknowledged-but-uncommitted count reaches that many records, in addition
// to whatever interval-based commit the caller runs; zero or negative
// disables the count-based trigger.
func NewOffsetManager(committer Committer, maxAutoCommitAttempts int, retriable RetriablePredicate, commitBatchSize int) *OffsetManager {
	if retriable == nil {
		retriable = func(error) bool { return true }
	}
	if maxAutoCommitAttempts <= 0 {
		maxAutoCommitAttempts = 5
	}
	return &OffsetManager{
		partitions:      make(map[types.TopicPartition]*partitionEntry),
		committer:       committer,
		retriable:       retriable,
		maxAttempts:     maxAutoCommitAttempts,
		commitBatchSize: int64(commitBatchSize),
	}
}

// ConnectSensor attaches a sensor for commit/acknowledge telemetry.
func (m *OffsetManager) ConnectSensor(s types.Sensor[any]) { m.sensor = s }

// ConnectLogger attaches loggers.
func (m *OffsetManager) ConnectLogger(loggers ...types.Logger) {
	m.loggers = append(m.loggers, loggers...)
}

func (m *OffsetManager) notify(level types.LogLevel, msg string, kv ...interface{}) {
	for _, l := range m.loggers {
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

// InitializePartition registers a partition assigned to this manager,
// seeding LastAcknowledged/LastCommitted at -1 (nothing processed yet).
func (m *OffsetManager) InitializePartition(tp types.TopicPartition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.partitions[tp]; ok {
		return
	}
	entry := &partitionEntry{state: types.PartitionState{TopicPartition: tp, LastAcknowledged: -1, LastCommitted: -1}}
	entry.lastAcknowledged.Store(-1)
	m.partitions[tp] = entry
}

// ReleasePartition drops bookkeeping for a revoked partition.
func (m *OffsetManager) ReleasePartition(tp types.TopicPartition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.partitions, tp)
}

// Acknowledge records offset+1 (the next offset to consume) as processed for
// tp, monotonically: Acknowledge(tp, n) never moves LastAcknowledged
// backwards. Safe to call from any goroutine without holding m.mu.
func (m *OffsetManager) Acknowledge(tp types.TopicPartition, offset int64) {
	m.mu.Lock()
	entry, ok := m.partitions[tp]
	m.mu.Unlock()
	if !ok {
		return
	}

	next := offset + 1
	for {
		cur := entry.lastAcknowledged.Load()
		if next <= cur {
			return
		}
		if entry.lastAcknowledged.CompareAndSwap(cur, next) {
			break
		}
	}
	if m.sensor != nil {
		m.sensor.InvokeOnAcknowledge(m.owner, tp, next)
	}
	m.maybeTriggerBatchCommit(tp, entry, next)
}

// maybeTriggerBatchCommit fires an async CommitPartition once tp's
// acknowledged-but-uncommitted count reaches commitBatchSize, so a consumer
// with a long commit interval still bounds its worst-case redelivery count on
// restart to commitBatchSize records rather than a whole interval's worth.
// committing guards against piling up concurrent commits for the same
// partition while one is already in flight. Until a partition's first
// commit, the count is measured from offset 0.
func (m *OffsetManager) maybeTriggerBatchCommit(tp types.TopicPartition, entry *partitionEntry, acknowledged int64) {
	if m.commitBatchSize <= 0 {
		return
	}
	m.mu.Lock()
	lastCommitted := entry.state.LastCommitted
	m.mu.Unlock()
	if lastCommitted < 0 {
		lastCommitted = 0
	}
	if acknowledged-lastCommitted < m.commitBatchSize {
		return
	}
	if !entry.committing.CompareAndSwap(false, true) {
		return
	}
	go func() {
		defer entry.committing.Store(false)
		if err := m.CommitPartition(tp); err != nil {
			m.notify(types.WarnLevel, "batch-size commit failed", "topic", tp.Topic, "partition", tp.Partition, "error", err.Error())
		}
	}()
}

// SnapshotForCommit returns the partitions with acknowledged offsets not yet
// committed, for building a batched commit.
func (m *OffsetManager) SnapshotForCommit() []types.PartitionState {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []types.PartitionState
	for tp, entry := range m.partitions {
		acked := entry.lastAcknowledged.Load()
		if acked > entry.state.LastCommitted {
			entry.state.LastAcknowledged = acked
			out = append(out, types.PartitionState{
				TopicPartition:   tp,
				LastAcknowledged: acked,
				LastCommitted:    entry.state.LastCommitted,
				PendingCommit:    true,
			})
		}
	}
	return out
}

// RecordCommitted updates bookkeeping after a successful broker commit.
func (m *OffsetManager) RecordCommitted(states []types.PartitionState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range states {
		if entry, ok := m.partitions[s.TopicPartition]; ok {
			entry.state.LastCommitted = s.LastAcknowledged
			entry.state.PendingCommit = false
		}
	}
}

// CommitPartition synchronously commits one partition's acknowledged offset.
func (m *OffsetManager) CommitPartition(tp types.TopicPartition) error {
	m.mu.Lock()
	entry, ok := m.partitions[tp]
	var lastCommitted int64
	if ok {
		lastCommitted = entry.state.LastCommitted
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: unknown partition %+v", kafkaerr.ErrClosedResource, tp)
	}
	acked := entry.lastAcknowledged.Load()
	if acked <= lastCommitted {
		return nil
	}
	state := types.PartitionState{TopicPartition: tp, LastAcknowledged: acked, LastCommitted: lastCommitted}
	return m.Commit(context.Background(), []types.PartitionState{state})
}

// Commit performs a batched commit of states with exponential-backoff retry,
// grounded on cenkalti/backoff/v4's ExponentialBackOff bounded by
// WithMaxRetries. maxAttempts exhaustion returns a wrapped kafkaerr.ErrCommit
// to the caller. InboundPipeline's interval commit only logs that error; the
// subscription keeps running and no error is delivered downstream.
func (m *OffsetManager) Commit(ctx context.Context, states []types.PartitionState) error {
	if len(states) == 0 {
		return nil
	}
	if m.sensor != nil {
		m.sensor.InvokeOnCommitAttempt(m.owner, states)
	}

	// states carry LastAcknowledged as "offset+1" (the next offset to
	// consume, per Acknowledge). kafka-go's CommitMessages expects the
	// actual last-consumed offset and adds its own +1 when building the
	// broker OffsetCommit, so the -1 here undoes our bookkeeping convention
	// rather than duplicating it.
	msgs := make([]kafka.Message, len(states))
	for i, s := range states {
		msgs[i] = kafka.Message{Topic: s.Topic, Partition: s.Partition, Offset: s.LastAcknowledged - 1}
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(m.maxAttempts)), ctx)

	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		cerr := m.committer.CommitMessages(ctx, msgs...)
		if cerr != nil && !m.retriable(cerr) {
			return backoff.Permanent(cerr)
		}
		return cerr
	}, bo, func(err error, wait time.Duration) {
		m.notify(types.WarnLevel, "commit retry", "attempt", attempt, "wait", wait.String(), "error", err.Error())
		if m.sensor != nil {
			m.sensor.InvokeOnCommitRetry(m.owner, attempt, wait, err)
		}
	})

	if err != nil {
		if m.sensor != nil {
			m.sensor.InvokeOnCommitError(m.owner, states, err)
		}
		return fmt.Errorf("%w: %v", kafkaerr.ErrCommit, err)
	}

	m.RecordCommitted(states)
	if m.sensor != nil {
		m.sensor.InvokeOnCommitSuccess(m.owner, states)
	}
	return nil
}
