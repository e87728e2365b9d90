package kafka

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/IBM/sarama"
	log "github.com/sirupsen/logrus"
)

const clientID = "hotelres"

// Producer отправляет JSON-сообщения в Kafka синхронно: вызов возвращается
// после подтверждения всеми репликами.
type Producer struct {
	sync   sarama.SyncProducer
	logger *log.Entry
}

// newSaramaConfig: идемпотентный producer с подтверждением от всех реплик.
func newSaramaConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Producer.Compression = sarama.CompressionSnappy
	cfg.Producer.Idempotent = true
	// Idempotent требует не более одного запроса в полёте.
	cfg.Net.MaxOpenRequests = 1
	return cfg
}

// NewProducer подключается к брокерам.
func NewProducer(brokers []string, logger *log.Entry) (*Producer, error) {
	sync, err := sarama.NewSyncProducer(brokers, newSaramaConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewProducerFromSync(sync, logger), nil
}

// NewProducerFromSync оборачивает готовый SyncProducer (например, из sarama/mocks).
func NewProducerFromSync(sync sarama.SyncProducer, logger *log.Entry) *Producer {
	if logger == nil {
		logger = log.New().WithField("component", "kafka-producer")
	}
	return &Producer{sync: sync, logger: logger}
}

// PublishEvent сериализует event в JSON и отправляет его в topic с ключом key.
// Заголовки добавляются в порядке имён.
func (p *Producer) PublishEvent(topic string, key string, event any, headers map[string]string) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.StringEncoder(key),
		Value:     sarama.ByteEncoder(payload),
		Headers:   recordHeaders(headers),
		Timestamp: time.Now().UTC(),
	}

	fields := log.Fields{"topic": topic, "key": key}
	partition, offset, err := p.sync.SendMessage(msg)
	if err != nil {
		p.logger.WithError(err).WithFields(fields).Error("failed to send message to kafka")
		return fmt.Errorf("failed to send message: %w", err)
	}

	fields["partition"], fields["offset"] = partition, offset
	p.logger.WithFields(fields).Debug("message sent to kafka")
	return nil
}

func recordHeaders(headers map[string]string) []sarama.RecordHeader {
	if len(headers) == 0 {
		return nil
	}
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]sarama.RecordHeader, 0, len(names))
	for _, name := range names {
		out = append(out, sarama.RecordHeader{Key: []byte(name), Value: []byte(headers[name])})
	}
	return out
}

// Close закрывает producer
func (p *Producer) Close() error {
	if err := p.sync.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
