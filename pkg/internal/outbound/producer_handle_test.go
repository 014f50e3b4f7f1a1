package outbound

import (
	"context"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"

	"reactivekafka/pkg/internal/kafkaerr"
	"reactivekafka/pkg/internal/types"
)

func TestCompressionCodec(t *testing.T) {
	cases := []struct {
		name string
		want kafka.Compression
	}{
		{"gzip", kafka.Gzip},
		{"snappy", kafka.Snappy},
		{"lz4", kafka.Lz4},
		{"zstd", kafka.Zstd},
		{"", 0},
		{"unknown", 0},
	}
	for _, c := range cases {
		if got := compressionCodec(c.name); got != c.want {
			t.Errorf("compressionCodec(%q) = %v, want %v", c.name, got, c.want)
		}
	}
}

func TestProducerHandleSendEncodeError(t *testing.T) {
	wantErr := errors.New("encode boom")
	p := NewProducerHandle(types.SenderConfig{Brokers: []string{"127.0.0.1:0"}},
		func(types.Record[string]) ([]byte, error) { return nil, wantErr })

	_, err := p.Send(context.Background(), types.Record[string]{Topic: "t", Value: "x"}).Get()
	if !errors.Is(err, kafkaerr.ErrSend) {
		t.Fatalf("expected wrapped %v, got %v", kafkaerr.ErrSend, err)
	}
}

func TestProducerHandleCloseBeforeUseIsNoop(t *testing.T) {
	p := NewProducerHandle(types.SenderConfig{Brokers: []string{"127.0.0.1:0"}},
		func(types.Record[string]) ([]byte, error) { return []byte("x"), nil })

	if err := p.Close(context.Background()); err != nil {
		t.Fatalf("expected nil error closing an unused handle, got %v", err)
	}
}

func TestProducerHandleCloseIsIdempotent(t *testing.T) {
	p := NewProducerHandle(types.SenderConfig{Brokers: []string{"127.0.0.1:0"}},
		func(types.Record[string]) ([]byte, error) { return []byte("x"), nil })

	if err := p.Close(context.Background()); err != nil {
		t.Fatalf("unexpected error on first close: %v", err)
	}
	if err := p.Close(context.Background()); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}
}

func TestProducerHandleSendAfterCloseFails(t *testing.T) {
	p := NewProducerHandle(types.SenderConfig{Brokers: []string{"127.0.0.1:0"}},
		func(types.Record[string]) ([]byte, error) { return []byte("x"), nil })
	_ = p.Close(context.Background())

	_, err := p.Send(context.Background(), types.Record[string]{Topic: "t", Value: "x"}).Get()
	if !errors.Is(err, kafkaerr.ErrClosedResource) {
		t.Fatalf("expected wrapped %v, got %v", kafkaerr.ErrClosedResource, err)
	}
}

func TestProducerHandlePartitionsForNoBrokers(t *testing.T) {
	p := NewProducerHandle(types.SenderConfig{},
		func(types.Record[string]) ([]byte, error) { return []byte("x"), nil })

	_, err := p.PartitionsFor(context.Background(), "t")
	if !errors.Is(err, kafkaerr.ErrProducerInit) {
		t.Fatalf("expected wrapped %v, got %v", kafkaerr.ErrProducerInit, err)
	}
}
