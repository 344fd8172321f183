package kafka

import (
	"context"
	"encoding/json"
	log "log/slog"
	"strconv"
	"time"

	"github.com/IBM/sarama"
	"github.com/pkg/errors"

	"campcircle/internal/api/config"
)

// EngagementEvent 互动事件，投递给下游通知服务消费
type EngagementEvent struct {
	Kind          string    `json:"kind"` // thumb | favour | follow
	State         string    `json:"state"`
	ActorID       uint64    `json:"actorId"`
	TargetID      uint64    `json:"targetId"`
	TargetOwnerID uint64    `json:"targetOwnerId,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Notifier 互动事件的出站契约：只管发出去，不等结果。
// 投递失败绝不能影响互动本身。
type Notifier interface {
	Dispatch(ctx context.Context, event *EngagementEvent)
}

// EngagementProducer 基于 sarama 异步生产者的 Notifier 实现
type EngagementProducer struct {
	producer sarama.AsyncProducer
	topic    string
}

// NewEngagementProducer 按配置建立异步生产者，并后台消化错误回执
func NewEngagementProducer(cfg config.KafkaConfig) (*EngagementProducer, error) {
	saramaCfg := newSaramaConfig(cfg)

	producer, err := sarama.NewAsyncProducer(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, errors.Wrap(err, "create kafka producer")
	}

	p := NewEngagementProducerWith(producer, cfg.Topic)
	return p, nil
}

// NewEngagementProducerWith 基于现成的生产者构造，测试时传入 mock
func NewEngagementProducerWith(producer sarama.AsyncProducer, topic string) *EngagementProducer {
	p := &EngagementProducer{
		producer: producer,
		topic:    topic,
	}

	go func() {
		for err := range producer.Errors() {
			log.Error("engagement event delivery failed", "topic", err.Msg.Topic, "err", err.Err)
		}
	}()

	return p
}

// Dispatch 发送互动事件。编码失败或通道阻塞都只记日志。
func (p *EngagementProducer) Dispatch(ctx context.Context, event *EngagementEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.ErrorContext(ctx, "encode engagement event failed", "err", errors.Wrap(err, "marshal event"))
		return
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		// 同一个 actor 的事件按分区保序
		Key:   sarama.StringEncoder(strconv.FormatUint(event.ActorID, 10)),
		Value: sarama.ByteEncoder(payload),
	}

	select {
	case p.producer.Input() <- msg:
	case <-ctx.Done():
		log.WarnContext(ctx, "engagement event dropped, context done", "kind", event.Kind)
	}
}

// Close 关闭生产者，冲刷未发送完的消息
func (p *EngagementProducer) Close() error {
	return p.producer.Close()
}
