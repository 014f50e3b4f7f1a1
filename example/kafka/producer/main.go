package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
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
	clientID   = "reactivekafka-producer"

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

func encode(rec builder.Record[Feedback]) ([]byte, error) {
	return json.Marshal(rec.Value)
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

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
	sec := builder.NewKafkaSecurity(
		builder.WithTLS(tlsCfg),
		builder.WithSASL(mech),
		builder.WithClientID(clientID),
	)

	sensor := builder.NewSensor[Feedback](
		builder.SensorWithOnSendSuccess[Feedback](func(_ builder.ComponentMetadata, rec builder.Record[Feedback], md builder.Metadata) {
			fmt.Printf("[sensor] sent customer=%s -> partition=%d offset=%d\n", rec.Value.CustomerID, md.Partition, md.Offset)
		}),
		builder.SensorWithOnSendError[Feedback](func(_ builder.ComponentMetadata, rec builder.Record[Feedback], err error) {
			fmt.Printf("[sensor] send failed customer=%s err=%v\n", rec.Value.CustomerID, err)
		}),
	)

	sender := builder.NewSender[Feedback](
		builder.SenderConfig{
			Brokers:        splitCSV(brokersCSV),
			ClientID:       clientID,
			Security:       sec,
			Acks:           "all",
			Compression:    "snappy",
			LingerDuration: 400 * time.Millisecond,
			BatchSize:      200,
			CloseTimeout:   5 * time.Second,
		},
		encode,
		builder.WithSenderSensor[Feedback](sensor),
	)
	defer sender.Close(context.Background())

	feedbacks := []Feedback{
		{CustomerID: "cust-1", Content: "Loved the onboarding flow", Tags: []string{"onboarding"}},
		{CustomerID: "cust-2", Content: "Checkout was slow", IsNegative: true, Category: "performance"},
		{CustomerID: "cust-3", Content: "Great support response time"},
	}

	for _, fb := range feedbacks {
		md, err := sender.Send(ctx, builder.Record[Feedback]{
			Topic:      topic,
			Key:        []byte(fb.CustomerID),
			Value:      fb,
			Correlator: fb.CustomerID,
		}).Get()
		if err != nil {
			fmt.Println("send error:", err)
			continue
		}
		fmt.Printf("acked topic=%s partition=%d offset=%d\n", md.Topic, md.Partition, md.Offset)
	}
}
