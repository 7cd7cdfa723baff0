package kafka

import (
	"context"
	"encoding/json"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/xiabytes/chatX/internal/service"
)

// Producer mirrors message events onto a kafka topic for downstream consumers
// (notification fan-out, archival). Only message appends are mirrored.
type Producer struct {
	writer *kafka.Writer
	log    *zap.SugaredLogger
}

func NewProducer(brokers []string, topic string, log *zap.SugaredLogger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        true,
	}
	return &Producer{writer: writer, log: log}
}

// Notify implements service.Notifier. Best-effort, async writes.
func (p *Producer) Notify(ctx context.Context, ev service.Event) {
	if ev.Kind != service.EventMessageAppended {
		return
	}
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Errorw("marshal event failed", "kind", ev.Kind, "error", err)
		return
	}
	msg := kafka.Message{
		Key:   []byte(ev.ConversationID),
		Value: data,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Warnw("kafka publish failed", "kind", ev.Kind, "error", err)
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
