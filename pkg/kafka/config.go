package kafka

import "time"

// Config holds Kafka producer configuration.
type Config struct {
	Brokers      []string
	ClientID     string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int // 0: no ack, 1: leader ack, -1: all replicas ack
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Brokers:      []string{"localhost:9092"},
		ClientID:     "wave-planning-service",
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1,
	}
}

// Topics contains the Kafka topic names this service publishes to.
var Topics = struct {
	WavesEvents   string
	PickingEvents string
}{
	WavesEvents:   "wms.waves.events",
	PickingEvents: "wms.picking.events",
}
