package libs

import (
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

const kafkaAttempts = 5

// NewKafkaProducer connects a sync producer to broker, retrying while the
// broker comes up.
func NewKafkaProducer(broker string, logger *zap.Logger) (sarama.SyncProducer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3

	var err error
	for i := 1; i <= kafkaAttempts; i++ {
		var producer sarama.SyncProducer
		producer, err = sarama.NewSyncProducer([]string{broker}, cfg)
		if err == nil {
			logger.Info("kafka producer ready", zap.String("broker", broker))
			return producer, nil
		}

		logger.Warn("waiting for kafka",
			zap.Int("attempt", i),
			zap.Int("of", kafkaAttempts),
			zap.Error(err),
		)
		if i < kafkaAttempts {
			time.Sleep(2 * time.Second)
		}
	}
	return nil, fmt.Errorf("kafka producer: %w", err)
}
