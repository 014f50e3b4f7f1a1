package inbound

import "reactivekafka/pkg/internal/types"

// Option configures a ConsumerEventLoop at construction time.
type Option[T any] func(*ConsumerEventLoop[T])

// WithLogger attaches one or more loggers.
func WithLogger[T any](loggers ...types.Logger) Option[T] {
	return func(c *ConsumerEventLoop[T]) { c.ConnectLogger(loggers...) }
}

// WithSensor attaches a sensor.
func WithSensor[T any](s types.Sensor[any]) Option[T] {
	return func(c *ConsumerEventLoop[T]) { c.ConnectSensor(s) }
}

// WithName sets the component's display name.
func WithName[T any](name string) Option[T] {
	return func(c *ConsumerEventLoop[T]) { c.componentMetadata.Name = name }
}
