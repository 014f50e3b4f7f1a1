package builder

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/scram"

	"reactivekafka/pkg/internal/types"
)

// TLSFromCAFilesStrict loads a strict TLS config (min TLS1.2) from the first
// existing file path among candidates. If serverName != "", it is set for
// SNI and hostname verification.
func TLSFromCAFilesStrict(candidates []string, serverName string) (*tls.Config, error) {
	var picked string
	for _, p := range candidates {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			picked = p
			break
		}
	}
	if picked == "" {
		return nil, fmt.Errorf("no CA file found in candidates: %v", candidates)
	}
	pem, err := os.ReadFile(filepath.Clean(picked))
	if err != nil {
		return nil, fmt.Errorf("read CA: %w", err)
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("invalid CA PEM at %s", picked)
	}
	cfg := &tls.Config{MinVersion: tls.VersionTLS12, RootCAs: cp}
	if serverName != "" {
		cfg.ServerName = serverName
	}
	return cfg, nil
}

// TLSFromCAPathCSV is a convenience wrapper around TLSFromCAFilesStrict that
// accepts a comma-separated list of candidate paths.
func TLSFromCAPathCSV(csv, serverName string) (*tls.Config, error) {
	var paths []string
	for _, p := range strings.Split(csv, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			paths = append(paths, p)
		}
	}
	return TLSFromCAFilesStrict(paths, serverName)
}

// SASLSCRAM returns a sasl.Mechanism for kafka-go from a common name.
// Supported: "SCRAM-SHA-256" (default), "SCRAM-SHA-512".
func SASLSCRAM(user, pass, mech string) (sasl.Mechanism, error) {
	switch strings.ToUpper(strings.ReplaceAll(mech, "_", "-")) {
	case "", "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, user, pass)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, user, pass)
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", mech)
	}
}

// KafkaSecurityOption mutates a types.KafkaSecurity during construction.
type KafkaSecurityOption func(*types.KafkaSecurity)

// NewKafkaSecurity creates a types.KafkaSecurity with sensible defaults
// (10s dial timeout, dual-stack dialing).
func NewKafkaSecurity(opts ...KafkaSecurityOption) *types.KafkaSecurity {
	sec := &types.KafkaSecurity{DialerTO: 10 * time.Second, DualStack: true}
	for _, o := range opts {
		o(sec)
	}
	return sec
}

func WithTLS(cfg *tls.Config) KafkaSecurityOption { return func(s *types.KafkaSecurity) { s.TLS = cfg } }
func WithSASL(mech sasl.Mechanism) KafkaSecurityOption {
	return func(s *types.KafkaSecurity) { s.SASL = mech }
}
func WithClientID(id string) KafkaSecurityOption {
	return func(s *types.KafkaSecurity) { s.ClientID = id }
}
func WithDialer(timeout time.Duration, dualStack bool) KafkaSecurityOption {
	return func(s *types.KafkaSecurity) {
		if timeout > 0 {
			s.DialerTO = timeout
		}
		s.DualStack = dualStack
	}
}
