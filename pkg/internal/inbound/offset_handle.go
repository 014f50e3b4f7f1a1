// Package inbound implements the reactive receive side: ConsumerEventLoop
// turns kafka-go's poll/fetch API into a backpressure-aware record stream,
// OffsetManager tracks per-partition acknowledge/commit bookkeeping, and
// InboundPipeline applies the four ack-mode policies on top.
//
// Grounded on the adapter's reader.go poll loop (windowed FetchMessage,
// commit-policy branching) and on other_examples/funkygao-kafka-cg's
// OffsetManager interface shape and abd-ulbasit-goqueue's hybrid
// ack/offset commit model. A commit carries the highest acknowledged offset
// of each partition, not the last contiguous one.
package inbound

import (
	"context"

	"reactivekafka/pkg/internal/types"
)

// OffsetHandle is attached to every delivered ConsumerMessage so a caller in
// MANUAL_ACK/MANUAL_COMMIT mode can acknowledge or commit without the
// OffsetManager needing a back-reference to the message itself — it carries
// only the (partition, offset) coordinate and a reference to its owning
// manager, avoiding the cyclic message<->offset-manager reference the
// original API shape would otherwise require.
type OffsetHandle struct {
	tp      types.TopicPartition
	offset  int64
	manager *OffsetManager
}

// TopicPartition returns the partition this handle belongs to.
func (h OffsetHandle) TopicPartition() types.TopicPartition { return h.tp }

// Offset returns the offset of the record this handle was attached to.
func (h OffsetHandle) Offset() int64 { return h.offset }

// Acknowledge marks this record (and, transitively, every lower offset on
// its partition) as processed.
func (h OffsetHandle) Acknowledge() {
	h.manager.Acknowledge(h.tp, h.offset)
}

// Commit synchronously commits this handle's own offset, independent of
// whatever the partition's shared acknowledge high-water mark currently is.
// This is the primitive MANUAL_COMMIT mode relies on: it never calls
// Acknowledge, so CommitPartition's acked-vs-LastCommitted guard would
// otherwise make every commit a no-op.
func (h OffsetHandle) Commit() error {
	state := types.PartitionState{TopicPartition: h.tp, LastAcknowledged: h.offset + 1}
	return h.manager.Commit(context.Background(), []types.PartitionState{state})
}

// ConsumerMessage is a decoded inbound record plus its offset coordinate.
type ConsumerMessage[T any] struct {
	Value    T
	Metadata types.Metadata
	Offset   OffsetHandle
}
