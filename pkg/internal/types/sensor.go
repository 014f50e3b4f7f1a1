package types

import "time"

// Sensor is the observer hub attached to senders and receivers. It follows the
// teacher's register/invoke pairing: callers register zero or more callbacks
// for an event, and the owning component invokes them whenever that event
// occurs, in registration order. The callback list is copied under the
// sensor's lock and the callbacks run after it is released.
type Sensor[T any] interface {
	ConnectLogger(...Logger)
	GetComponentMetadata() ComponentMetadata
	SetComponentMetadata(name, id string)
	NotifyLoggers(level LogLevel, msg string, keysAndValues ...interface{})

	RegisterOnProducerCreated(...func(ComponentMetadata))
	InvokeOnProducerCreated(ComponentMetadata)

	RegisterOnSendAttempt(...func(ComponentMetadata, Record[T]))
	InvokeOnSendAttempt(ComponentMetadata, Record[T])

	RegisterOnSendSuccess(...func(ComponentMetadata, Record[T], Metadata))
	InvokeOnSendSuccess(ComponentMetadata, Record[T], Metadata)

	RegisterOnSendError(...func(ComponentMetadata, Record[T], error))
	InvokeOnSendError(ComponentMetadata, Record[T], error)

	RegisterOnItemDropped(...func(ComponentMetadata, Record[T], error))
	InvokeOnItemDropped(ComponentMetadata, Record[T], error)

	RegisterOnPartitionsAssigned(...func(ComponentMetadata, []TopicPartition))
	InvokeOnPartitionsAssigned(ComponentMetadata, []TopicPartition)

	RegisterOnPartitionsRevoked(...func(ComponentMetadata, []TopicPartition))
	InvokeOnPartitionsRevoked(ComponentMetadata, []TopicPartition)

	RegisterOnPollError(...func(ComponentMetadata, error))
	InvokeOnPollError(ComponentMetadata, error)

	RegisterOnAcknowledge(...func(ComponentMetadata, TopicPartition, int64))
	InvokeOnAcknowledge(ComponentMetadata, TopicPartition, int64)

	RegisterOnCommitAttempt(...func(ComponentMetadata, []PartitionState))
	InvokeOnCommitAttempt(ComponentMetadata, []PartitionState)

	RegisterOnCommitSuccess(...func(ComponentMetadata, []PartitionState))
	InvokeOnCommitSuccess(ComponentMetadata, []PartitionState)

	RegisterOnCommitError(...func(ComponentMetadata, []PartitionState, error))
	InvokeOnCommitError(ComponentMetadata, []PartitionState, error)

	RegisterOnCommitRetry(...func(ComponentMetadata, int, time.Duration, error))
	InvokeOnCommitRetry(ComponentMetadata, int, time.Duration, error)

	RegisterOnPause(...func(ComponentMetadata, TopicPartition))
	InvokeOnPause(ComponentMetadata, TopicPartition)

	RegisterOnResume(...func(ComponentMetadata, TopicPartition))
	InvokeOnResume(ComponentMetadata, TopicPartition)

	RegisterOnStart(...func(ComponentMetadata))
	InvokeOnStart(ComponentMetadata)

	RegisterOnStop(...func(ComponentMetadata))
	InvokeOnStop(ComponentMetadata)
}
