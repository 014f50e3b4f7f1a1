package sensor

import (
	"time"

	"reactivekafka/pkg/internal/types"
)

func (s *Sensor[T]) RegisterOnProducerCreated(cb ...func(types.ComponentMetadata)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onProducerCreated = append(s.onProducerCreated, cb...)
}

func (s *Sensor[T]) RegisterOnSendAttempt(cb ...func(types.ComponentMetadata, types.Record[T])) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onSendAttempt = append(s.onSendAttempt, cb...)
}

func (s *Sensor[T]) RegisterOnSendSuccess(cb ...func(types.ComponentMetadata, types.Record[T], types.Metadata)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onSendSuccess = append(s.onSendSuccess, cb...)
}

func (s *Sensor[T]) RegisterOnSendError(cb ...func(types.ComponentMetadata, types.Record[T], error)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onSendError = append(s.onSendError, cb...)
}

func (s *Sensor[T]) RegisterOnItemDropped(cb ...func(types.ComponentMetadata, types.Record[T], error)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onItemDropped = append(s.onItemDropped, cb...)
}

func (s *Sensor[T]) RegisterOnPartitionsAssigned(cb ...func(types.ComponentMetadata, []types.TopicPartition)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onPartitionsAssigned = append(s.onPartitionsAssigned, cb...)
}

func (s *Sensor[T]) RegisterOnPartitionsRevoked(cb ...func(types.ComponentMetadata, []types.TopicPartition)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onPartitionsRevoked = append(s.onPartitionsRevoked, cb...)
}

func (s *Sensor[T]) RegisterOnPollError(cb ...func(types.ComponentMetadata, error)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onPollError = append(s.onPollError, cb...)
}

func (s *Sensor[T]) RegisterOnAcknowledge(cb ...func(types.ComponentMetadata, types.TopicPartition, int64)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onAcknowledge = append(s.onAcknowledge, cb...)
}

func (s *Sensor[T]) RegisterOnCommitAttempt(cb ...func(types.ComponentMetadata, []types.PartitionState)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onCommitAttempt = append(s.onCommitAttempt, cb...)
}

func (s *Sensor[T]) RegisterOnCommitSuccess(cb ...func(types.ComponentMetadata, []types.PartitionState)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onCommitSuccess = append(s.onCommitSuccess, cb...)
}

func (s *Sensor[T]) RegisterOnCommitError(cb ...func(types.ComponentMetadata, []types.PartitionState, error)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onCommitError = append(s.onCommitError, cb...)
}

func (s *Sensor[T]) RegisterOnCommitRetry(cb ...func(types.ComponentMetadata, int, time.Duration, error)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onCommitRetry = append(s.onCommitRetry, cb...)
}

func (s *Sensor[T]) RegisterOnPause(cb ...func(types.ComponentMetadata, types.TopicPartition)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onPause = append(s.onPause, cb...)
}

func (s *Sensor[T]) RegisterOnResume(cb ...func(types.ComponentMetadata, types.TopicPartition)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onResume = append(s.onResume, cb...)
}

func (s *Sensor[T]) RegisterOnStart(cb ...func(types.ComponentMetadata)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onStart = append(s.onStart, cb...)
}

func (s *Sensor[T]) RegisterOnStop(cb ...func(types.ComponentMetadata)) {
	s.callbackLock.Lock()
	defer s.callbackLock.Unlock()
	s.onStop = append(s.onStop, cb...)
}
