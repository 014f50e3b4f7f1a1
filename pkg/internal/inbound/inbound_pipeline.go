package inbound

import (
	"context"
	"time"

	"reactivekafka/pkg/internal/streams"
	"reactivekafka/pkg/internal/types"
)

// AckMode selects when and how offsets move from "delivered" to
// "committed", per the four modes this client supports.
type AckMode int

const (
	// AutoAck acknowledges every record immediately on delivery and commits
	// on a background interval; a crash between delivery and commit can
	// redeliver up to one commit interval's worth of records.
	AutoAck AckMode = iota
	// AtMostOnce commits each record's offset before it is delivered
	// downstream, trading possible data loss (if processing then fails) for
	// the guarantee that a record is never redelivered.
	AtMostOnce
	// ManualAck delivers records without acknowledging them; the caller
	// must call OffsetHandle.Acknowledge() once processing succeeds.
	// Background commit still runs on the configured interval, committing
	// whatever has been acknowledged so far.
	ManualAck
	// ManualCommit delivers records without acknowledging or committing;
	// the caller owns both Acknowledge and Commit. No background commit
	// runs, and Close does not commit outstanding offsets.
	ManualCommit
)

// InboundPipeline applies one AckMode's policy on top of a
// ConsumerEventLoop's raw delivery stream, producing ConsumerMessage[T]
// values a caller can range over. Grounded on the ack-mode/commit-trigger
// table this client's specification defines; the auto-commit ticker mirrors
// the adapter's reader.go interval-commit branch.
type InboundPipeline[T any] struct {
	loop    *ConsumerEventLoop[T]
	mgr     *OffsetManager
	ackMode AckMode

	commitInterval time.Duration
	loggers        []types.Logger
}

// NewInboundPipeline constructs an InboundPipeline over loop and mgr. The
// count-based commit trigger (CommitBatchSize) lives on mgr itself, since it
// must fire from Acknowledge regardless of which ack mode called it.
func NewInboundPipeline[T any](loop *ConsumerEventLoop[T], mgr *OffsetManager, ackMode AckMode, commitInterval time.Duration) *InboundPipeline[T] {
	if commitInterval <= 0 {
		commitInterval = 5 * time.Second
	}
	return &InboundPipeline[T]{loop: loop, mgr: mgr, ackMode: ackMode, commitInterval: commitInterval}
}

func (p *InboundPipeline[T]) ConnectLogger(loggers ...types.Logger) { p.loggers = append(p.loggers, loggers...) }

// Run starts the underlying event loop and returns the policy-applied
// delivery stream.
func (p *InboundPipeline[T]) Run(ctx context.Context) (<-chan streams.Delivery[ConsumerMessage[T]], error) {
	raw, err := p.loop.Run(ctx)
	if err != nil {
		return nil, err
	}
	p.mgr.SetCommitter(p.loop.Committer())

	out := make(chan streams.Delivery[ConsumerMessage[T]])

	if p.ackMode == AutoAck || p.ackMode == ManualAck {
		go p.autoCommitLoop(ctx)
	}

	go func() {
		defer close(out)
		for delivery := range raw {
			if delivery.Err != nil {
				select {
				case out <- streams.Error[ConsumerMessage[T]](delivery.Err):
				case <-ctx.Done():
				}
				return
			}
			p.handle(ctx, delivery.Value, out)
		}
	}()

	return out, nil
}

func (p *InboundPipeline[T]) handle(ctx context.Context, msg RawMessage[T], out chan streams.Delivery[ConsumerMessage[T]]) {
	tp := msg.topicPartition()
	p.mgr.InitializePartition(tp)

	handle := OffsetHandle{tp: tp, offset: msg.Metadata.Offset, manager: p.mgr}

	switch p.ackMode {
	case AtMostOnce:
		p.mgr.Acknowledge(tp, msg.Metadata.Offset)
		if err := p.mgr.CommitPartition(tp); err != nil {
			for _, l := range p.loggers {
				if l != nil {
					l.Error("at-most-once pre-commit failed, dropping record", "error", err.Error())
				}
			}
			return // never redeliver; dropping is the at-most-once tradeoff
		}
	case AutoAck:
		p.mgr.Acknowledge(tp, msg.Metadata.Offset)
	case ManualAck, ManualCommit:
		// caller drives acknowledge/commit explicitly via handle.
	}

	cm := ConsumerMessage[T]{Value: msg.Decoded, Metadata: msg.Metadata, Offset: handle}
	select {
	case out <- streams.Ok(cm):
	case <-ctx.Done():
	}
}

func (p *InboundPipeline[T]) autoCommitLoop(ctx context.Context) {
	ticker := time.NewTicker(p.commitInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			states := p.mgr.SnapshotForCommit()
			if len(states) == 0 {
				continue
			}
			if err := p.mgr.Commit(ctx, states); err != nil {
				for _, l := range p.loggers {
					if l != nil {
						l.Error("auto-commit failed", "error", err.Error())
					}
				}
			}
		case <-ctx.Done():
			return
		}
	}
}
