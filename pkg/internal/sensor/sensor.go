// Package sensor provides the observer hub attached to senders and receivers:
// register a callback for a lifecycle event, the owning component invokes it.
package sensor

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"reactivekafka/pkg/internal/types"
)

// Sensor is the concrete implementation of types.Sensor[T].
type Sensor[T any] struct {
	componentMetadata types.ComponentMetadata
	metadataLock      sync.Mutex

	callbackLock sync.Mutex

	onProducerCreated []func(types.ComponentMetadata)

	onSendAttempt []func(types.ComponentMetadata, types.Record[T])
	onSendSuccess []func(types.ComponentMetadata, types.Record[T], types.Metadata)
	onSendError   []func(types.ComponentMetadata, types.Record[T], error)
	onItemDropped []func(types.ComponentMetadata, types.Record[T], error)

	onPartitionsAssigned []func(types.ComponentMetadata, []types.TopicPartition)
	onPartitionsRevoked  []func(types.ComponentMetadata, []types.TopicPartition)
	onPollError          []func(types.ComponentMetadata, error)

	onAcknowledge []func(types.ComponentMetadata, types.TopicPartition, int64)
	onCommitAttempt []func(types.ComponentMetadata, []types.PartitionState)
	onCommitSuccess []func(types.ComponentMetadata, []types.PartitionState)
	onCommitError   []func(types.ComponentMetadata, []types.PartitionState, error)
	onCommitRetry   []func(types.ComponentMetadata, int, time.Duration, error)

	onPause  []func(types.ComponentMetadata, types.TopicPartition)
	onResume []func(types.ComponentMetadata, types.TopicPartition)

	onStart []func(types.ComponentMetadata)
	onStop  []func(types.ComponentMetadata)

	loggersLock sync.Mutex
	loggers     []types.Logger
}

// New constructs a Sensor with optional configuration.
func New[T any](options ...types.Option[types.Sensor[T]]) types.Sensor[T] {
	s := &Sensor[T]{
		componentMetadata: types.ComponentMetadata{
			ID:   uuid.NewString(),
			Type: "SENSOR",
		},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

func (s *Sensor[T]) GetComponentMetadata() types.ComponentMetadata {
	s.metadataLock.Lock()
	defer s.metadataLock.Unlock()
	return s.componentMetadata
}

func (s *Sensor[T]) SetComponentMetadata(name, id string) {
	s.metadataLock.Lock()
	defer s.metadataLock.Unlock()
	s.componentMetadata.Name = name
	s.componentMetadata.ID = id
}

func (s *Sensor[T]) ConnectLogger(loggers ...types.Logger) {
	s.loggersLock.Lock()
	defer s.loggersLock.Unlock()
	for _, l := range loggers {
		if l == nil {
			continue
		}
		s.loggers = append(s.loggers, l)
	}
}
