package builder

import (
	"time"

	"reactivekafka/pkg/internal/sensor"
	"reactivekafka/pkg/internal/types"
)

// NewSensor constructs a types.Sensor[T] wired to the given hook options.
func NewSensor[T any](opts ...types.Option[types.Sensor[T]]) types.Sensor[T] {
	return sensor.New[T](opts...)
}

// SensorWithName sets the sensor's display name.
func SensorWithName[T any](name string) types.Option[types.Sensor[T]] {
	return sensor.WithName[T](name)
}

// SensorWithLogger attaches one or more loggers to every event the sensor emits.
func SensorWithLogger[T any](loggers ...Logger) types.Option[types.Sensor[T]] {
	return sensor.WithLogger[T](loggers...)
}

func SensorWithOnProducerCreated[T any](cb ...func(types.ComponentMetadata)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnProducerCreated(cb...) }
}

func SensorWithOnSendAttempt[T any](cb ...func(types.ComponentMetadata, Record[T])) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnSendAttempt(cb...) }
}

func SensorWithOnSendSuccess[T any](cb ...func(types.ComponentMetadata, Record[T], Metadata)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnSendSuccess(cb...) }
}

func SensorWithOnSendError[T any](cb ...func(types.ComponentMetadata, Record[T], error)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnSendError(cb...) }
}

func SensorWithOnItemDropped[T any](cb ...func(types.ComponentMetadata, Record[T], error)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnItemDropped(cb...) }
}

func SensorWithOnPartitionsAssigned[T any](cb ...func(types.ComponentMetadata, []TopicPartition)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnPartitionsAssigned(cb...) }
}

func SensorWithOnPartitionsRevoked[T any](cb ...func(types.ComponentMetadata, []TopicPartition)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnPartitionsRevoked(cb...) }
}

func SensorWithOnPollError[T any](cb ...func(types.ComponentMetadata, error)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnPollError(cb...) }
}

func SensorWithOnAcknowledge[T any](cb ...func(types.ComponentMetadata, TopicPartition, int64)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnAcknowledge(cb...) }
}

func SensorWithOnCommitAttempt[T any](cb ...func(types.ComponentMetadata, []PartitionState)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnCommitAttempt(cb...) }
}

func SensorWithOnCommitSuccess[T any](cb ...func(types.ComponentMetadata, []PartitionState)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnCommitSuccess(cb...) }
}

func SensorWithOnCommitError[T any](cb ...func(types.ComponentMetadata, []PartitionState, error)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnCommitError(cb...) }
}

func SensorWithOnCommitRetry[T any](cb ...func(types.ComponentMetadata, int, time.Duration, error)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnCommitRetry(cb...) }
}

func SensorWithOnPause[T any](cb ...func(types.ComponentMetadata, TopicPartition)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnPause(cb...) }
}

func SensorWithOnResume[T any](cb ...func(types.ComponentMetadata, TopicPartition)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnResume(cb...) }
}

func SensorWithOnStart[T any](cb ...func(types.ComponentMetadata)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnStart(cb...) }
}

func SensorWithOnStop[T any](cb ...func(types.ComponentMetadata)) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) { s.RegisterOnStop(cb...) }
}
