package types

import (
	"crypto/tls"
	"time"

	"github.com/segmentio/kafka-go/sasl"
)

// KafkaSecurity bundles TLS + SASL + ClientID for kafka-go.
type KafkaSecurity struct {
	SASL      sasl.Mechanism // nil => no SASL
	TLS       *tls.Config    // nil => PLAINTEXT
	ClientID  string         // optional
	DialerTO  time.Duration  // optional (defaults 10s)
	DualStack bool           // optional (defaults true)
}

// TopicPartition names one partition of one topic. Comparable, usable as a map key.
type TopicPartition struct {
	Topic     string
	Partition int
}

// SenderConfig configures a ProducerHandle / SendPipeline pair.
type SenderConfig struct {
	Brokers  []string
	ClientID string
	Security *KafkaSecurity

	Acks                             string // "none", "one", "all"
	Compression                      string // "", "gzip", "snappy", "lz4", "zstd"
	MaxBlockDuration                 time.Duration
	LingerDuration                   time.Duration
	BatchSize                        int
	MaxInFlightRequestsPerConnection int
	CloseTimeout                     time.Duration
}

// ReceiverConfig configures a ConsumerEventLoop / InboundPipeline pair.
type ReceiverConfig struct {
	Brokers  []string
	Security *KafkaSecurity

	GroupID    string
	Topics     []string
	Partitions []TopicPartition // explicit assignment; mutually exclusive with GroupID subscription

	AutoOffsetReset string // "earliest" | "latest"
	SessionTimeout  time.Duration
	FetchMinBytes   int
	MaxPollRecords  int
	PollTimeout     time.Duration

	CommitBatchSize       int
	CommitInterval        time.Duration
	MaxAutoCommitAttempts int

	CloseTimeout time.Duration
}

// Record is an outbound message awaiting production.
type Record[T any] struct {
	Topic      string
	Partition  *int // nil => let the partitioner choose
	Key        []byte
	Value      T
	Headers    map[string]string
	Correlator any // opaque value round-tripped into the SendResult for caller-side correlation
}

// Metadata describes where a Record landed once the broker acknowledged it.
type Metadata struct {
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
}

// PartitionState tracks one partition's offset bookkeeping inside an OffsetManager.
type PartitionState struct {
	TopicPartition
	LastAcknowledged int64 // highest offset+1 observed as processed; -1 if none yet
	LastCommitted    int64 // highest offset+1 actually committed to the broker; -1 if none yet
	PendingCommit    bool
}
