package outbound

import "reactivekafka/pkg/internal/types"

// Option configures a ProducerHandle at construction time, matching the
// teacher's functional-options convention (WithXxx over a generic adapter).
type Option[T any] func(*ProducerHandle[T])

// WithLogger attaches one or more loggers.
func WithLogger[T any](loggers ...types.Logger) Option[T] {
	return func(p *ProducerHandle[T]) {
		p.ConnectLogger(loggers...)
	}
}

// WithSensor attaches a sensor.
func WithSensor[T any](s types.Sensor[T]) Option[T] {
	return func(p *ProducerHandle[T]) {
		p.ConnectSensor(s)
	}
}

// WithName sets the component's display name.
func WithName[T any](name string) Option[T] {
	return func(p *ProducerHandle[T]) {
		p.componentMetadata.Name = name
	}
}
