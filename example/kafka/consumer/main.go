package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"reactivekafka/pkg/builder"
)

type Feedback struct {
	CustomerID string   `json:"customerId"`
	Content    string   `json:"content"`
	Category   string   `json:"category,omitempty"`
	IsNegative bool     `json:"isNegative"`
	Tags       []string `json:"tags,omitempty"`
}

const (
	brokersCSV = "127.0.0.1:19092"
	topic      = "feedback-demo"
	groupID    = "feedback-consumers"

	tlsServerName = "localhost"
	caPathCSV     = "../tls/ca.crt"

	saslUser = "app"
	saslPass = "app-secret"
	saslMech = "SCRAM-SHA-256"
)

func splitCSV(csv string) []string {
	var out []string
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func decode(b []byte) (Feedback, error) {
	var fb Feedback
	err := json.Unmarshal(b, &fb)
	return fb, err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tlsCfg, err := builder.TLSFromCAPathCSV(caPathCSV, tlsServerName)
	if err != nil {
		fmt.Println("tls config:", err)
		return
	}
	mech, err := builder.SASLSCRAM(saslUser, saslPass, saslMech)
	if err != nil {
		fmt.Println("sasl mechanism:", err)
		return
	}
	sec := builder.NewKafkaSecurity(builder.WithTLS(tlsCfg), builder.WithSASL(mech))

	sensor := builder.NewSensor[any](
		builder.SensorWithOnPartitionsAssigned[any](func(_ builder.ComponentMetadata, tps []builder.TopicPartition) {
			fmt.Printf("[sensor] assigned %v\n", tps)
		}),
		builder.SensorWithOnCommitSuccess[any](func(_ builder.ComponentMetadata, states []builder.PartitionState) {
			fmt.Printf("[sensor] committed %d partitions\n", len(states))
		}),
	)

	receiver := builder.NewReceiver[Feedback](
		builder.ReceiverConfig{
			Brokers:               splitCSV(brokersCSV),
			Security:              sec,
			GroupID:               groupID,
			Topics:                []string{topic},
			AutoOffsetReset:       "earliest",
			SessionTimeout:        10 * time.Second,
			CommitInterval:        2 * time.Second,
			MaxAutoCommitAttempts: 5,
		},
		decode,
		builder.ReceiverParams{
			AckMode:        builder.AutoAck,
			CommitInterval: 2 * time.Second,
		},
	)
	receiver.ConnectSensor(sensor)

	messages, err := receiver.Run(ctx)
	if err != nil {
		fmt.Println("receiver run:", err)
		return
	}

	for delivery := range messages {
		if delivery.Err != nil {
			fmt.Println("consume error:", delivery.Err)
			continue
		}
		msg := delivery.Value
		fmt.Printf("received customer=%s negative=%v partition=%d offset=%d\n",
			msg.Value.CustomerID, msg.Value.IsNegative, msg.Metadata.Partition, msg.Metadata.Offset)
	}
}
