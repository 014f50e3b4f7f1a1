package inbound

import (
	"context"
	"testing"

	"github.com/segmentio/kafka-go"

	"reactivekafka/pkg/internal/types"
)

func TestStartOffsetDefaultsToEarliest(t *testing.T) {
	if got := startOffset(types.ReceiverConfig{}); got != kafka.FirstOffset {
		t.Fatalf("expected FirstOffset by default, got %v", got)
	}
	if got := startOffset(types.ReceiverConfig{AutoOffsetReset: "earliest"}); got != kafka.FirstOffset {
		t.Fatalf("expected FirstOffset for %q, got %v", "earliest", got)
	}
}

func TestStartOffsetLatest(t *testing.T) {
	if got := startOffset(types.ReceiverConfig{AutoOffsetReset: "latest"}); got != kafka.LastOffset {
		t.Fatalf("expected LastOffset for %q, got %v", "latest", got)
	}
}

func TestNewConsumerEventLoopSelectsExplicitAssignment(t *testing.T) {
	decode := func(b []byte) (string, error) { return string(b), nil }

	explicit := NewConsumerEventLoop[string](types.ReceiverConfig{
		Partitions: []types.TopicPartition{{Topic: "t", Partition: 0}},
	}, decode, AssignmentHooks{})
	if !explicit.explicit {
		t.Fatal("expected explicit-assignment mode when Partitions is set")
	}

	grouped := NewConsumerEventLoop[string](types.ReceiverConfig{
		GroupID: "g", Topics: []string{"t"},
	}, decode, AssignmentHooks{})
	if grouped.explicit {
		t.Fatal("expected group-subscription mode when only GroupID/Topics are set")
	}
}

func TestConsumerEventLoopExplicitModeCommitterRoutesByPartition(t *testing.T) {
	decode := func(b []byte) (string, error) { return string(b), nil }
	loop := NewConsumerEventLoop[string](types.ReceiverConfig{
		Partitions: []types.TopicPartition{{Topic: "t", Partition: 0}},
	}, decode, AssignmentHooks{})

	// Explicit mode's Committer is a *multiReaderCommitter keyed by
	// partition, built from whatever readers exist at call time; before
	// start() runs the reader map is empty, so it always routes to "no
	// matching reader" rather than panicking.
	c := loop.Committer()
	if c == nil {
		t.Fatal("expected a non-nil Committer in explicit-assignment mode")
	}
}

func TestMultiReaderCommitterIgnoresUnknownPartitions(t *testing.T) {
	m := &multiReaderCommitter{readers: map[types.TopicPartition]*kafka.Reader{}}

	err := m.CommitMessages(context.Background(), kafka.Message{Topic: "t", Partition: 0, Offset: 5})
	if err != nil {
		t.Fatalf("expected no error for a message with no matching reader, got %v", err)
	}
}
