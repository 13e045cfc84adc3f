package kafka

import (
	"Tasbih/internal/api/config"
	log "log/slog"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// EntryAppliedEvent 已生效计数条目事件，供下游分析管道消费
type EntryAppliedEvent struct {
	EntryID     uint64 `json:"entry_id"`
	UserID      uint64 `json:"user_id"`
	ChallengeID uint64 `json:"challenge_id"`
	Count       int64  `json:"count"`
	Completed   bool   `json:"completed"`
	AppliedAt   int64  `json:"applied_at"`
}

// Producer 异步生产者，提交管道事务提交后发布事件，发送失败只记日志不回滚
type Producer struct {
	producer sarama.AsyncProducer
	topic    string
}

func NewProducer(cfg *config.Config) (*Producer, error) {
	if !cfg.Kafka.Enabled {
		log.Info("Kafka 未启用，事件发布关闭")
		return &Producer{}, nil
	}

	saramaCfg := newSaramaConfig(cfg.Kafka)

	producer, err := sarama.NewAsyncProducer(cfg.Kafka.Brokers, saramaCfg)
	if err != nil {
		return nil, err
	}

	p := &Producer{
		producer: producer,
		topic:    cfg.Kafka.Topic,
	}

	go func() {
		for err := range producer.Errors() {
			log.Error("kafka produce error", "topic", err.Msg.Topic, "err", err.Err)
		}
	}()

	return p, nil
}

// PublishEntryApplied 发布条目生效事件
func (s *Producer) PublishEntryApplied(evt *EntryAppliedEvent) error {
	if s.producer == nil {
		return nil
	}

	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	s.producer.Input() <- &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(evt.UserID, 10)),
		Value: sarama.ByteEncoder(payload),
	}
	return nil
}

func (s *Producer) Close() error {
	if s.producer == nil {
		return nil
	}
	return s.producer.Close()
}
