package inbound

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"

	"reactivekafka/pkg/internal/kafkaerr"
	"reactivekafka/pkg/internal/types"
)

// SeekablePartition is handed to DoOnPartitionsAssigned callbacks so callers
// can control where consumption starts for a newly-assigned partition.
// Explicit-assignment mode backs every operation with a real kafka-go
// low-level Reader seek; group-subscription mode cannot seek (kafka-go's
// high-level, group-managed Reader owns offset positioning internally) and
// Seek/SeekToBeginning/SeekToEnd return kafkaerr.ErrSeekUnsupported there.
type SeekablePartition struct {
	tp       types.TopicPartition
	reader   *kafka.Reader // non-nil only in explicit-assignment mode
	position int64
}

// TopicPartition returns the partition this handle controls.
func (s *SeekablePartition) TopicPartition() types.TopicPartition { return s.tp }

// Position returns the next offset that will be fetched.
func (s *SeekablePartition) Position() int64 { return s.position }

// SeekToBeginning repositions to the earliest available offset.
func (s *SeekablePartition) SeekToBeginning(ctx context.Context) error {
	return s.Seek(ctx, kafka.FirstOffset)
}

// SeekToEnd repositions to the latest offset (next produced record).
func (s *SeekablePartition) SeekToEnd(ctx context.Context) error {
	return s.Seek(ctx, kafka.LastOffset)
}

// Seek repositions to an explicit offset (or kafka.FirstOffset/LastOffset).
func (s *SeekablePartition) Seek(ctx context.Context, offset int64) error {
	if s.reader == nil {
		return fmt.Errorf("%w: partition %+v", kafkaerr.ErrSeekUnsupported, s.tp)
	}
	if err := s.reader.SetOffset(offset); err != nil {
		return fmt.Errorf("seek: %w", err)
	}
	s.position = offset
	return nil
}
