package sensor

import (
	"time"

	"reactivekafka/pkg/internal/types"
)

func (s *Sensor[T]) InvokeOnProducerCreated(cm types.ComponentMetadata) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata){}, s.onProducerCreated...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm)
	}
}

func (s *Sensor[T]) InvokeOnSendAttempt(cm types.ComponentMetadata, r types.Record[T]) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, types.Record[T]){}, s.onSendAttempt...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm, r)
	}
}

func (s *Sensor[T]) InvokeOnSendSuccess(cm types.ComponentMetadata, r types.Record[T], md types.Metadata) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, types.Record[T], types.Metadata){}, s.onSendSuccess...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm, r, md)
	}
}

func (s *Sensor[T]) InvokeOnSendError(cm types.ComponentMetadata, r types.Record[T], err error) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, types.Record[T], error){}, s.onSendError...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm, r, err)
	}
}

func (s *Sensor[T]) InvokeOnItemDropped(cm types.ComponentMetadata, r types.Record[T], err error) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, types.Record[T], error){}, s.onItemDropped...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm, r, err)
	}
}

func (s *Sensor[T]) InvokeOnPartitionsAssigned(cm types.ComponentMetadata, tps []types.TopicPartition) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, []types.TopicPartition){}, s.onPartitionsAssigned...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm, tps)
	}
}

func (s *Sensor[T]) InvokeOnPartitionsRevoked(cm types.ComponentMetadata, tps []types.TopicPartition) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, []types.TopicPartition){}, s.onPartitionsRevoked...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm, tps)
	}
}

func (s *Sensor[T]) InvokeOnPollError(cm types.ComponentMetadata, err error) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, error){}, s.onPollError...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm, err)
	}
}

func (s *Sensor[T]) InvokeOnAcknowledge(cm types.ComponentMetadata, tp types.TopicPartition, offset int64) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, types.TopicPartition, int64){}, s.onAcknowledge...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm, tp, offset)
	}
}

func (s *Sensor[T]) InvokeOnCommitAttempt(cm types.ComponentMetadata, states []types.PartitionState) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, []types.PartitionState){}, s.onCommitAttempt...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm, states)
	}
}

func (s *Sensor[T]) InvokeOnCommitSuccess(cm types.ComponentMetadata, states []types.PartitionState) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, []types.PartitionState){}, s.onCommitSuccess...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm, states)
	}
}

func (s *Sensor[T]) InvokeOnCommitError(cm types.ComponentMetadata, states []types.PartitionState, err error) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, []types.PartitionState, error){}, s.onCommitError...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm, states, err)
	}
}

func (s *Sensor[T]) InvokeOnCommitRetry(cm types.ComponentMetadata, attempt int, wait time.Duration, err error) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, int, time.Duration, error){}, s.onCommitRetry...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm, attempt, wait, err)
	}
}

func (s *Sensor[T]) InvokeOnPause(cm types.ComponentMetadata, tp types.TopicPartition) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, types.TopicPartition){}, s.onPause...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm, tp)
	}
}

func (s *Sensor[T]) InvokeOnResume(cm types.ComponentMetadata, tp types.TopicPartition) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata, types.TopicPartition){}, s.onResume...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm, tp)
	}
}

func (s *Sensor[T]) InvokeOnStart(cm types.ComponentMetadata) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata){}, s.onStart...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm)
	}
}

func (s *Sensor[T]) InvokeOnStop(cm types.ComponentMetadata) {
	s.callbackLock.Lock()
	cbs := append([]func(types.ComponentMetadata){}, s.onStop...)
	s.callbackLock.Unlock()
	for _, cb := range cbs {
		cb(cm)
	}
}
