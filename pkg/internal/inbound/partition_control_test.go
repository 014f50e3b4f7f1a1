package inbound

import (
	"context"
	"errors"
	"testing"

	"reactivekafka/pkg/internal/kafkaerr"
	"reactivekafka/pkg/internal/types"
)

func TestSeekablePartitionGroupModeUnsupported(t *testing.T) {
	s := &SeekablePartition{tp: types.TopicPartition{Topic: "t", Partition: 0}}

	if err := s.SeekToBeginning(context.Background()); !errors.Is(err, kafkaerr.ErrSeekUnsupported) {
		t.Fatalf("expected %v, got %v", kafkaerr.ErrSeekUnsupported, err)
	}
	if err := s.SeekToEnd(context.Background()); !errors.Is(err, kafkaerr.ErrSeekUnsupported) {
		t.Fatalf("expected %v, got %v", kafkaerr.ErrSeekUnsupported, err)
	}
}

func TestSeekablePartitionReportsIdentityAndPosition(t *testing.T) {
	tp := types.TopicPartition{Topic: "orders", Partition: 2}
	s := &SeekablePartition{tp: tp, position: 42}

	if got := s.TopicPartition(); got != tp {
		t.Fatalf("expected %+v, got %+v", tp, got)
	}
	if got := s.Position(); got != 42 {
		t.Fatalf("expected position 42, got %d", got)
	}
}
