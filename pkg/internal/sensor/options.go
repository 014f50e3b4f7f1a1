package sensor

import "reactivekafka/pkg/internal/types"

// WithName sets the sensor's human-readable name.
func WithName[T any](name string) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) {
		s.SetComponentMetadata(name, s.GetComponentMetadata().ID)
	}
}

// WithLogger attaches one or more loggers at construction time.
func WithLogger[T any](loggers ...types.Logger) types.Option[types.Sensor[T]] {
	return func(s types.Sensor[T]) {
		s.ConnectLogger(loggers...)
	}
}
