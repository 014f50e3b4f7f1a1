// Package kafkaerr defines the typed error kinds this client raises, as
// sentinel values usable with errors.Is/errors.As. Errors are always wrapped
// with fmt.Errorf("...: %w", Kind) at the point they are raised, matching
// the plain stdlib-errors idiom used throughout the adapter this client is
// built from — no third-party error-handling library is introduced for
// this concern, since none of the examples use one either.
package kafkaerr

import "errors"

var (
	// ErrProducerInit is returned when the underlying producer fails to
	// initialize on first use.
	ErrProducerInit = errors.New("producer initialization failed")

	// ErrSend is returned when a broker rejects or fails to acknowledge a
	// produced record.
	ErrSend = errors.New("send failed")

	// ErrConsumerPoll is returned when a poll/fetch against the broker fails.
	ErrConsumerPoll = errors.New("consumer poll failed")

	// ErrCommit is returned when an offset commit fails after exhausting
	// retries.
	ErrCommit = errors.New("offset commit failed")

	// ErrAssignmentCallback names a failed caller-supplied
	// assignment/revocation callback. No component in this module returns
	// it: the hooks return no error, and a panicking hook is not recovered.
	ErrAssignmentCallback = errors.New("assignment callback failed")

	// ErrClosedResource is returned when an operation is attempted against a
	// ProducerHandle, ConsumerEventLoop, or OffsetManager that has already
	// been closed.
	ErrClosedResource = errors.New("resource already closed")

	// ErrSeekUnsupported is returned by SeekablePartition.Seek when the
	// underlying subscription mode cannot support an explicit seek (group
	// subscription mode, where kafka-go manages offsets internally).
	ErrSeekUnsupported = errors.New("seek unsupported in this subscription mode")
)
