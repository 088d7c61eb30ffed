package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	kafkaPorts "github.com/admin/tg-bots/dose-bot/internal/ports/kafka"
)

const (
	HeaderMessageID  = "message_id"
	HeaderReceivedAt = "received_at"
)

// Producer кладёт сырые обновления Telegram в топик; ключ - чат, поэтому один чат всегда в одной партиции
type Producer struct {
	syncProducer sarama.SyncProducer
	topic        string
	log          *slog.Logger
	now          func() time.Time
}

var _ kafkaPorts.IKafkaProducer = (*Producer)(nil)

func NewProducer(cfg *Config, log *slog.Logger) (*Producer, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V2_1_0_0
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	// без дублей при ретраях продюсера
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1
	config.Producer.Partitioner = sarama.NewHashPartitioner
	cfg.ApplySecurity(config)

	syncProducer, err := sarama.NewSyncProducer(cfg.GetBrokers(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.Info("kafka producer created", "brokers", cfg.Brokers, "topic", cfg.Topic)
	return NewProducerWith(syncProducer, cfg, log), nil
}

// NewProducerWith поверх готового sarama.SyncProducer, в тестах это mocks.SyncProducer
func NewProducerWith(syncProducer sarama.SyncProducer, cfg *Config, log *slog.Logger) *Producer {
	return &Producer{
		syncProducer: syncProducer,
		topic:        cfg.Topic,
		log:          log,
		now:          time.Now,
	}
}

func (p *Producer) Send(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	messageID := uuid.NewString()
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte(HeaderMessageID), Value: []byte(messageID)},
			{Key: []byte(HeaderReceivedAt), Value: []byte(strconv.FormatInt(p.now().UnixMilli(), 10))},
		},
	}

	partition, offset, err := p.syncProducer.SendMessage(msg)
	if err != nil {
		return fmt.Errorf("kafka send failed [topic=%s, key=%s]: %w", p.topic, key, err)
	}

	p.log.Debug("update published",
		"topic", p.topic,
		"partition", partition,
		"offset", offset,
		"key", key,
		"message_id", messageID,
	)
	return nil
}

func (p *Producer) Close() error {
	if err := p.syncProducer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	p.log.Info("kafka producer closed")
	return nil
}
