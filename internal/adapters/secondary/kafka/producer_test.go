package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducer_Send(t *testing.T) {
	t.Parallel()

	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		assert.Equal(t, "updates", msg.Topic)
		key, err := msg.Key.Encode()
		require.NoError(t, err)
		assert.Equal(t, "-100", string(key))
		require.Len(t, msg.Headers, 2)
		assert.Equal(t, HeaderMessageID, string(msg.Headers[0].Key))
		assert.Len(t, msg.Headers[0].Value, 36)
		assert.Equal(t, HeaderReceivedAt, string(msg.Headers[1].Key))
		assert.Equal(t, "1714662240000", string(msg.Headers[1].Value))
		return nil
	})

	producer := NewProducerWith(mock, &Config{Topic: "updates"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	producer.now = func() time.Time { return time.Unix(1714662240, 0) }
	require.NoError(t, producer.Send(context.Background(), "-100", []byte(`{"update_id":1}`)))
	require.NoError(t, producer.Close())
}

func TestProducer_SendCancelled(t *testing.T) {
	t.Parallel()

	mock := mocks.NewSyncProducer(t, nil)
	producer := NewProducerWith(mock, &Config{Topic: "updates"}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, producer.Send(ctx, "1", []byte("{}")), context.Canceled)
	require.NoError(t, producer.Close())
}

func TestProducer_SendError(t *testing.T) {
	t.Parallel()

	mock := mocks.NewSyncProducer(t, nil)
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	producer := NewProducerWith(mock, &Config{Topic: "updates"}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := producer.Send(context.Background(), "1", []byte("{}"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sarama.ErrOutOfBrokers))
	assert.Contains(t, err.Error(), "topic=updates")
	require.NoError(t, producer.Close())
}

func TestConfig_GetBrokers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"localhost:9092"}, (&Config{}).GetBrokers())
	assert.Equal(t, []string{"a:9092", "b:9092"}, (&Config{Brokers: "a:9092, b:9092"}).GetBrokers())
}

func TestConfig_ApplySecurity(t *testing.T) {
	t.Parallel()

	plain := sarama.NewConfig()
	(&Config{SecurityProtocol: "PLAINTEXT"}).ApplySecurity(plain)
	assert.False(t, plain.Net.SASL.Enable)

	scram := sarama.NewConfig()
	(&Config{
		SecurityProtocol: "SASL_SSL",
		SASLMechanism:    "SCRAM-SHA-256",
		SASLUsername:     "user",
		SASLPassword:     "secret",
	}).ApplySecurity(scram)
	assert.True(t, scram.Net.SASL.Enable)
	assert.True(t, scram.Net.TLS.Enable)
	assert.Equal(t, sarama.SASLMechanism(sarama.SASLTypeSCRAMSHA256), scram.Net.SASL.Mechanism)
	assert.Equal(t, "user", scram.Net.SASL.User)
}
