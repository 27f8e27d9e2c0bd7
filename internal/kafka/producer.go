package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Lifecycle events published for downstream consumers (reporting, alerting).
const (
	EventComplaintSubmitted = "complaint.submitted"
	EventGroupClosed        = "group.closed"
	EventGroupReopened      = "group.reopened"
	EventGroupEscalated     = "group.escalated"
)

// ComplaintEventProducer is the interface the services publish through,
// swappable for a mock in tests.
type ComplaintEventProducer interface {
	ProduceComplaintEvent(ctx context.Context, event string, payload map[string]interface{})
}

// Producer writes complaint lifecycle events to a Kafka topic (best-effort,
// never blocks or fails the request).
type Producer struct {
	writer *kafka.Writer
	topic  string
	log    *zap.Logger
}

// NewProducer creates the producer. Empty brokers or topic make it a no-op.
func NewProducer(brokers []string, topic string, log *zap.Logger) *Producer {
	if len(brokers) == 0 || topic == "" {
		return &Producer{log: log}
	}
	return &Producer{
		topic: topic,
		log:   log,
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// ProduceComplaintEvent publishes one event. payload carries nomor_ticket,
// ticket_id, order_no, status and the acting user id.
func (p *Producer) ProduceComplaintEvent(ctx context.Context, event string, payload map[string]interface{}) {
	if p.writer == nil {
		return
	}
	msg := map[string]interface{}{"event": event}
	for k, v := range payload {
		msg[k] = v
	}
	body, err := json.Marshal(msg)
	if err != nil {
		p.log.Warn("kafka: marshal complaint event", zap.Error(err))
		return
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Value: body}); err != nil {
		p.log.Warn("kafka: write complaint event", zap.String("event", event), zap.Error(err))
	}
}

func (p *Producer) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

// ParseBrokers splits "host1:9092,host2:9092" into a broker slice.
func ParseBrokers(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
