package builder_test

import (
	"context"
	"testing"
	"time"

	"reactivekafka/pkg/builder"
)

func TestNewSenderDoesNotDialOnConstruction(t *testing.T) {
	encode := func(rec builder.Record[string]) ([]byte, error) { return []byte(rec.Value), nil }

	var created, sent int
	sensor := builder.NewSensor[string](
		builder.SensorWithOnProducerCreated[string](func(builder.ComponentMetadata) { created++ }),
		builder.SensorWithOnSendAttempt[string](func(builder.ComponentMetadata, builder.Record[string]) { sent++ }),
	)

	sender := builder.NewSender[string](builder.SenderConfig{Brokers: []string{"127.0.0.1:0"}}, encode,
		builder.WithSenderSensor[string](sensor), builder.WithSenderName[string]("test-sender"))

	if created != 0 {
		t.Fatalf("expected no producer-created callback before first use, got %d calls", created)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_ = sender.Close(ctx)
}

func TestSendAllResolvesOnceUpstreamIsDrained(t *testing.T) {
	encode := func(rec builder.Record[string]) ([]byte, error) { return []byte(rec.Value), nil }
	sender := builder.NewSender[string](builder.SenderConfig{Brokers: []string{"127.0.0.1:0"}}, encode)

	upstream := make(chan builder.Delivery[builder.Record[string]], 1)
	upstream <- builder.Delivery[builder.Record[string]]{Value: builder.Record[string]{Topic: "t", Value: "a"}}
	close(upstream)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	future := sender.SendAll(ctx, upstream, builder.SendOptions{MaxInFlight: 1})
	if _, err := future.Get(); err != nil {
		// No live broker is reachable in this test; SendAll must still
		// resolve (rather than hang) and surface the resulting send error.
		t.Logf("SendAll resolved with expected send error against no broker: %v", err)
	}
}
