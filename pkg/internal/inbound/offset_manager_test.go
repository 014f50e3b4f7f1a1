package inbound

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"reactivekafka/pkg/internal/kafkaerr"
	"reactivekafka/pkg/internal/types"
)

type fakeCommitter struct {
	mu        sync.Mutex
	calls     int
	failUntil int
	failWith  error
	got       []kafka.Message
}

func (f *fakeCommitter) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failUntil {
		return f.failWith
	}
	f.got = append(f.got, msgs...)
	return nil
}

var tp1 = types.TopicPartition{Topic: "orders", Partition: 0}

func TestOffsetManagerAcknowledgeIsMonotonic(t *testing.T) {
	m := NewOffsetManager(&fakeCommitter{}, 3, nil, 0)
	m.InitializePartition(tp1)

	m.Acknowledge(tp1, 5)
	m.Acknowledge(tp1, 2) // stale, must not move backwards
	m.Acknowledge(tp1, 9)

	snap := m.SnapshotForCommit()
	if len(snap) != 1 {
		t.Fatalf("expected 1 pending partition, got %d", len(snap))
	}
	if snap[0].LastAcknowledged != 10 {
		t.Fatalf("expected LastAcknowledged 10 (offset 9 + 1), got %d", snap[0].LastAcknowledged)
	}
}

func TestOffsetManagerCommitPassesLastConsumedOffset(t *testing.T) {
	fc := &fakeCommitter{}
	m := NewOffsetManager(fc, 3, nil, 0)
	m.InitializePartition(tp1)
	m.Acknowledge(tp1, 4) // LastAcknowledged becomes 5 (offset 4 + 1)

	if err := m.Commit(context.Background(), m.SnapshotForCommit()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(fc.got) != 1 {
		t.Fatalf("expected exactly 1 committed message, got %d", len(fc.got))
	}
	// kafka-go's CommitMessages itself adds +1 when it builds the broker
	// OffsetCommit, so the manager must hand it the real last-consumed
	// offset (4), not its own "next offset to consume" bookkeeping value
	// (5) — passing 5 here would make the broker commit 6 and permanently
	// skip offset 5 on the next restart.
	if fc.got[0].Offset != 4 {
		t.Fatalf("expected the committed message to carry the last-consumed offset 4, got %d", fc.got[0].Offset)
	}
}

func TestOffsetManagerAcknowledgeTriggersBatchSizeCommit(t *testing.T) {
	fc := &fakeCommitter{}
	m := NewOffsetManager(fc, 3, nil, 3)
	m.InitializePartition(tp1)

	m.Acknowledge(tp1, 0)
	m.Acknowledge(tp1, 1)
	m.Acknowledge(tp1, 2) // 3rd acknowledged record crosses commitBatchSize=3

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		fc.mu.Lock()
		calls := fc.calls
		fc.mu.Unlock()
		if calls > 0 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	fc.mu.Lock()
	calls := fc.calls
	fc.mu.Unlock()
	if calls == 0 {
		t.Fatal("expected crossing commitBatchSize to trigger an async commit without waiting for an interval")
	}
}

func TestOffsetManagerCommitSuccessUpdatesBookkeeping(t *testing.T) {
	fc := &fakeCommitter{}
	m := NewOffsetManager(fc, 3, nil, 0)
	m.InitializePartition(tp1)
	m.Acknowledge(tp1, 4)

	states := m.SnapshotForCommit()
	if err := m.Commit(context.Background(), states); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m.SnapshotForCommit()) != 0 {
		t.Fatal("expected no pending partitions after a successful commit")
	}
	if fc.calls != 1 {
		t.Fatalf("expected exactly 1 commit call, got %d", fc.calls)
	}
}

func TestOffsetManagerCommitRetriesThenSucceeds(t *testing.T) {
	fc := &fakeCommitter{failUntil: 2, failWith: errors.New("transient broker error")}
	m := NewOffsetManager(fc, 5, nil, 0)
	m.InitializePartition(tp1)
	m.Acknowledge(tp1, 0)

	states := m.SnapshotForCommit()
	if err := m.Commit(context.Background(), states); err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if fc.calls != 3 {
		t.Fatalf("expected 3 attempts (2 failures + 1 success), got %d", fc.calls)
	}
}

func TestOffsetManagerCommitExhaustsRetries(t *testing.T) {
	fc := &fakeCommitter{failUntil: 100, failWith: errors.New("broker down")}
	m := NewOffsetManager(fc, 2, nil, 0)
	m.InitializePartition(tp1)
	m.Acknowledge(tp1, 0)

	states := m.SnapshotForCommit()
	err := m.Commit(context.Background(), states)
	if !errors.Is(err, kafkaerr.ErrCommit) {
		t.Fatalf("expected wrapped %v, got %v", kafkaerr.ErrCommit, err)
	}
}

func TestOffsetManagerCommitPermanentErrorStopsRetrying(t *testing.T) {
	fc := &fakeCommitter{failUntil: 100, failWith: errors.New("auth failure")}
	neverRetry := func(error) bool { return false }
	m := NewOffsetManager(fc, 5, neverRetry, 0)
	m.InitializePartition(tp1)
	m.Acknowledge(tp1, 0)

	states := m.SnapshotForCommit()
	err := m.Commit(context.Background(), states)
	if !errors.Is(err, kafkaerr.ErrCommit) {
		t.Fatalf("expected wrapped %v, got %v", kafkaerr.ErrCommit, err)
	}
	if fc.calls != 1 {
		t.Fatalf("expected the predicate to stop retries after 1 attempt, got %d calls", fc.calls)
	}
}

func TestOffsetManagerCommitEmptyIsNoop(t *testing.T) {
	fc := &fakeCommitter{}
	m := NewOffsetManager(fc, 3, nil, 0)
	if err := m.Commit(context.Background(), nil); err != nil {
		t.Fatalf("expected nil error for empty commit, got %v", err)
	}
	if fc.calls != 0 {
		t.Fatalf("expected no committer calls for an empty batch, got %d", fc.calls)
	}
}

func TestOffsetManagerSetCommitterRebinds(t *testing.T) {
	m := NewOffsetManager(nil, 3, nil, 0)
	m.InitializePartition(tp1)
	m.Acknowledge(tp1, 0)

	fc := &fakeCommitter{}
	m.SetCommitter(fc)

	if err := m.CommitPartition(tp1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fc.calls != 1 {
		t.Fatalf("expected the late-bound committer to be used, got %d calls", fc.calls)
	}
}

func TestOffsetManagerReleasePartitionDropsBookkeeping(t *testing.T) {
	m := NewOffsetManager(&fakeCommitter{}, 3, nil, 0)
	m.InitializePartition(tp1)
	m.Acknowledge(tp1, 3)
	m.ReleasePartition(tp1)

	if err := m.CommitPartition(tp1); !errors.Is(err, kafkaerr.ErrClosedResource) {
		t.Fatalf("expected %v for a released partition, got %v", kafkaerr.ErrClosedResource, err)
	}
}
