package builder_test

import (
	"testing"
	"time"

	"reactivekafka/pkg/builder"
)

func TestReceiverConnectSensorFiresNoHooksBeforeRun(t *testing.T) {
	decode := func(b []byte) (string, error) { return string(b), nil }

	var assigned, committed int
	sensor := builder.NewSensor[any](
		builder.SensorWithOnPartitionsAssigned[any](func(builder.ComponentMetadata, []builder.TopicPartition) { assigned++ }),
		builder.SensorWithOnCommitSuccess[any](func(builder.ComponentMetadata, []builder.PartitionState) { committed++ }),
	)

	receiver := builder.NewReceiver[string](builder.ReceiverConfig{
		Brokers: []string{"127.0.0.1:0"},
		GroupID: "g",
		Topics:  []string{"t"},
	}, decode, builder.ReceiverParams{
		AckMode:        builder.AutoAck,
		CommitInterval: time.Second,
	})

	receiver.ConnectSensor(sensor)
	receiver.ConnectLogger()

	// Constructing and wiring a Receiver must not itself touch the network
	// or invoke any sensor hook; hooks only fire once Run starts polling.
	if assigned != 0 || committed != 0 {
		t.Fatalf("expected no sensor callbacks before Run, got assigned=%d committed=%d", assigned, committed)
	}
}

func TestReceiverParamsCommitBatchSizeConstructsWithoutError(t *testing.T) {
	decode := func(b []byte) (string, error) { return string(b), nil }

	// CommitBatchSize threads through to the underlying OffsetManager's
	// count-based commit trigger; constructing a Receiver with it set must
	// not panic or otherwise fail, even before Run is ever called.
	receiver := builder.NewReceiver[string](builder.ReceiverConfig{
		Brokers: []string{"127.0.0.1:0"},
		GroupID: "g",
		Topics:  []string{"t"},
	}, decode, builder.ReceiverParams{
		AckMode:         builder.AutoAck,
		CommitInterval:  time.Second,
		CommitBatchSize: 10,
	})
	if receiver == nil {
		t.Fatal("expected a non-nil Receiver")
	}
}
