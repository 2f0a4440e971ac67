package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// KafkaConfig configures NewKafkaProducer.
type KafkaConfig struct {
	Brokers  []string
	Topic    string
	ClientID string
}

// NewKafkaProducer builds an async producer tuned for audit delivery.
func NewKafkaProducer(cfg KafkaConfig) (sarama.AsyncProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_5_0_0
	if cfg.ClientID != "" {
		saramaConfig.ClientID = cfg.ClientID
	}

	saramaConfig.Producer.RequiredAcks = sarama.WaitForLocal
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Producer.Flush.Frequency = 100 * time.Millisecond
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = false
	saramaConfig.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("create kafka producer: %w", err)
	}
	return producer, nil
}

// KafkaSink publishes audit events as JSON to a topic, keyed by record id so
// events for one record keep their order within a partition.
type KafkaSink struct {
	producer sarama.AsyncProducer
	topic    string
	logger   *zap.Logger

	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewKafkaSink(producer sarama.AsyncProducer, topic string, logger *zap.Logger) *KafkaSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &KafkaSink{
		producer: producer,
		topic:    topic,
		logger:   logger,
		done:     make(chan struct{}),
	}
	s.wg.Add(1)
	go s.handleErrors()
	return s
}

func (s *KafkaSink) handleErrors() {
	defer s.wg.Done()
	errs := s.producer.Errors()
	for {
		select {
		case perr, ok := <-errs:
			if !ok {
				return
			}
			if perr != nil {
				s.logger.Warn("audit publish failed",
					zap.Error(perr.Err),
					zap.String("topic", perr.Msg.Topic),
				)
			}
		case <-s.done:
			return
		}
	}
}

func (s *KafkaSink) Emit(ctx context.Context, event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("audit event encoding failed", zap.Error(err))
		return
	}

	msg := &sarama.ProducerMessage{
		Topic:     s.topic,
		Value:     sarama.ByteEncoder(payload),
		Timestamp: event.Timestamp,
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.EventType)},
		},
	}
	if event.RecordID != "" {
		msg.Key = sarama.StringEncoder(event.RecordID)
	}

	select {
	case s.producer.Input() <- msg:
	case <-ctx.Done():
	case <-s.done:
	}
}

// Close stops the error reader and closes the producer, flushing buffered
// messages.
func (s *KafkaSink) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
		if cerr := s.producer.Close(); cerr != nil {
			err = fmt.Errorf("close kafka producer: %w", cerr)
		}
	})
	return err
}
