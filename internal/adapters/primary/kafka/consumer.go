package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	kafkaAdapter "github.com/admin/tg-bots/dose-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/dose-bot/internal/domain"
	kafkaPorts "github.com/admin/tg-bots/dose-bot/internal/ports/kafka"
)

// повторы одного сообщения до того, как партиция пойдёт дальше
var defaultRetryDelays = []time.Duration{200 * time.Millisecond, time.Second}

// Consumer читает обновления Telegram из топика и отдаёт их обработчику.
// Сообщения одного чата лежат в одной партиции, поэтому порядок команд в чате сохраняется
type Consumer struct {
	group   sarama.ConsumerGroup
	topic   string
	handler kafkaPorts.MessageHandler
	log     *slog.Logger
}

func NewConsumer(cfg *kafkaAdapter.Config, handler kafkaPorts.MessageHandler, log *slog.Logger) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	// обновления, пришедшие пока бот лежал, всё ещё ждут ответа
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Consumer.Return.Errors = true
	cfg.ApplySecurity(config)

	group, err := sarama.NewConsumerGroup(cfg.GetBrokers(), cfg.ConsumerGroup, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	log.Info("kafka consumer created",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
		"consumer_group", cfg.ConsumerGroup,
	)
	return NewConsumerWith(group, cfg.Topic, handler, log), nil
}

func NewConsumerWith(group sarama.ConsumerGroup, topic string, handler kafkaPorts.MessageHandler, log *slog.Logger) *Consumer {
	return &Consumer{group: group, topic: topic, handler: handler, log: log}
}

// Start блокируется до отмены ctx или закрытия группы. Consume возвращается на каждом ребалансе
func (c *Consumer) Start(ctx context.Context) error {
	go c.logErrors(ctx)

	handler := &groupHandler{
		handler: c.handler,
		log:     c.log,
		topic:   c.topic,
		delays:  defaultRetryDelays,
	}

	for ctx.Err() == nil {
		err := c.group.Consume(ctx, []string{c.topic}, handler)
		switch {
		case err == nil:
		case errors.Is(err, sarama.ErrClosedConsumerGroup):
			return nil
		default:
			c.log.Error("kafka consume failed", "error", err, "topic", c.topic)
			return fmt.Errorf("consumer error: %w", err)
		}
	}

	c.log.Info("kafka consumer stopping", "topic", c.topic)
	return nil
}

func (c *Consumer) logErrors(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-c.group.Errors():
			if !ok {
				return
			}
			c.log.Warn("kafka consumer group error", "error", err, "topic", c.topic)
		}
	}
}

func (c *Consumer) Close() error {
	if err := c.group.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	c.log.Info("kafka consumer closed", "topic", c.topic)
	return nil
}

type groupHandler struct {
	handler kafkaPorts.MessageHandler
	log     *slog.Logger
	topic   string
	delays  []time.Duration
}

func (h *groupHandler) Setup(session sarama.ConsumerGroupSession) error {
	h.log.Info("kafka partitions assigned", "topic", h.topic, "claims", session.Claims()[h.topic])
	return nil
}

func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.log.Debug("kafka session cleanup", "topic", h.topic)
	return nil
}

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-session.Context().Done():
			return nil
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if h.process(session.Context(), message) {
				session.MarkMessage(message, "")
			}
		}
	}
}

// process false только при отмене контекста: тогда сообщение не коммитится и придёт снова после ребаланса
func (h *groupHandler) process(ctx context.Context, message *sarama.ConsumerMessage) bool {
	key := string(message.Key)

	var err error
	for attempt := 0; ; attempt++ {
		err = h.handler.HandleMessage(ctx, key, message.Value)
		if err == nil {
			return true
		}
		if domain.IsBusinessError(err) {
			h.log.Debug("skipping kafka message",
				"error", err,
				"topic", message.Topic,
				"offset", message.Offset,
			)
			return true
		}
		if attempt >= len(h.delays) {
			break
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(h.delays[attempt]):
		}
	}

	h.log.Error("failed to handle kafka message, dropping",
		"error", err,
		"topic", message.Topic,
		"key", key,
		"partition", message.Partition,
		"offset", message.Offset,
	)
	// TODO: отправлять такие сообщения в DLQ-топик
	return true
}
