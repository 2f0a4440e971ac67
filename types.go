package goCred

import (
	"io"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/MrEthical07/goCred/credential"
	internalaudit "github.com/MrEthical07/goCred/internal/audit"
)

// Record is the persisted credential state of one account.
type Record = credential.Record

// Store persists records with optimistic concurrency on Record.Version.
type Store = credential.Store

// AuthResult is the outcome of a verification that was actually performed.
type AuthResult = credential.AuthResult

const (
	Rejected = credential.Rejected
	Accepted = credential.Accepted
)

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's audit dispatcher.
// A sink that also implements io.Closer is closed by Engine.Close.
type AuditSink = internalaudit.Sink

// NoOpSink discards all events.
type NoOpSink = internalaudit.NoOpSink

type (
	ChannelSink    = internalaudit.ChannelSink
	JSONWriterSink = internalaudit.JSONWriterSink
	ZapSink        = internalaudit.ZapSink
	KafkaSink      = internalaudit.KafkaSink
	KafkaConfig    = internalaudit.KafkaConfig
)

func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// NewZapSink logs audit events through logger under the "audit" name.
func NewZapSink(logger *zap.Logger) *ZapSink {
	return internalaudit.NewZapSink(logger)
}

// NewKafkaSink publishes JSON events to topic through producer, keyed by
// record id.
func NewKafkaSink(producer sarama.AsyncProducer, topic string, logger *zap.Logger) *KafkaSink {
	return internalaudit.NewKafkaSink(producer, topic, logger)
}

// NewKafkaAuditSink dials brokers and returns a sink that owns the producer.
func NewKafkaAuditSink(cfg KafkaConfig, logger *zap.Logger) (*KafkaSink, error) {
	producer, err := internalaudit.NewKafkaProducer(cfg)
	if err != nil {
		return nil, err
	}
	return internalaudit.NewKafkaSink(producer, cfg.Topic, logger), nil
}
