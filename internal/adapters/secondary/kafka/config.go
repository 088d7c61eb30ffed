package kafka

import (
	"strings"

	"github.com/IBM/sarama"
)

// Config конфигурация для Kafka producer/consumer
type Config struct {
	Enabled          bool   `envconfig:"ENABLED" default:"false"`
	Brokers          string `envconfig:"BROKERS"`                       // "broker1:9092,broker2:9092"
	Topic            string `envconfig:"TOPIC" default:"updates"`       // топик обновлений Telegram
	ConsumerGroup    string `envconfig:"CONSUMER_GROUP" default:"dose-bot"`
	SecurityProtocol string `envconfig:"SECURITY_PROTOCOL"` // "SASL_SSL", "SASL_PLAINTEXT", "PLAINTEXT"
	SASLMechanism    string `envconfig:"SASL_MECHANISM"`    // "PLAIN", "SCRAM-SHA-256"
	SASLUsername     string `envconfig:"SASL_USERNAME"`
	SASLPassword     string `envconfig:"SASL_PASSWORD"`
}

// GetBrokers возвращает список брокеров из строки
func (c *Config) GetBrokers() []string {
	if c.Brokers == "" {
		return []string{"localhost:9092"}
	}
	brokers := strings.Split(c.Brokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}
	return brokers
}

// ApplySecurity настройки SASL/TLS, общие для producer и consumer
func (c *Config) ApplySecurity(config *sarama.Config) {
	if c.SecurityProtocol != "SASL_SSL" && c.SecurityProtocol != "SASL_PLAINTEXT" {
		return
	}

	config.Net.SASL.Enable = true
	config.Net.SASL.Mechanism = sarama.SASLTypePlaintext
	if c.SASLMechanism == "SCRAM-SHA-256" {
		config.Net.SASL.Mechanism = sarama.SASLTypeSCRAMSHA256
	}
	config.Net.SASL.User = c.SASLUsername
	config.Net.SASL.Password = c.SASLPassword
	// TLS только для SASL_SSL
	if c.SecurityProtocol == "SASL_SSL" {
		config.Net.TLS.Enable = true
	}
}
