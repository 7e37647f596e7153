package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/preyalameta02/balance-sheet-analysis/internal/entity"
)

var jsonMarshal = json.Marshal

type EventType string

const (
	DocumentUploaded  EventType = "document_uploaded"
	DocumentProcessed EventType = "document_processed"
	DocumentFailed    EventType = "document_failed"
)

// Event is the document lifecycle message published to Kafka.
type Event struct {
	Type     EventType              `json:"type"`
	Document *entity.SourceDocument `json:"document"`
}

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes document lifecycle events without ever blocking the
// upload path: events queue into a buffered channel and drop with a warning
// when the queue is full. A Producer built with no brokers is a no-op, so
// deployments without Kafka need no special casing.
type Producer struct {
	writer    KafkaWriter
	events    chan Event
	logger    *slog.Logger
	closeChan chan struct{}
}

func NewProducer(brokers []string, topic string, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	if len(brokers) == 0 {
		logger.Info("kafka disabled, document events will not be published")
		return &Producer{logger: logger}
	}

	p := &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
		events:    make(chan Event, 1000),
		logger:    logger,
		closeChan: make(chan struct{}),
	}

	go p.eventLoop()
	return p
}

// Produce enqueues an event. It never blocks; a full queue drops the event.
// Safe on a nil or no-op producer.
func (p *Producer) Produce(eventType EventType, doc *entity.SourceDocument) {
	if p == nil || p.writer == nil {
		return
	}
	select {
	case p.events <- Event{Type: eventType, Document: doc}:
	default:
		p.logger.Warn("event queue full, dropping event",
			"event_type", string(eventType),
			"document_id", doc.ID.String())
	}
}

func (p *Producer) eventLoop() {
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
		case <-p.closeChan:
			return
		}
	}
}

func (p *Producer) sendEvent(ctx context.Context, event Event) {
	value, err := jsonMarshal(event)
	if err != nil {
		p.logger.Error("failed to serialize event",
			"event_type", string(event.Type),
			"document_id", event.Document.ID.String(),
			"error", err)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Document.ID.String()),
		Value: value,
	})
	if err != nil {
		p.logger.Error("failed to publish event",
			"event_type", string(event.Type),
			"document_id", event.Document.ID.String(),
			"error", err)
	}
}

// Close stops the event loop and closes the writer. Safe on a nil or no-op
// producer.
func (p *Producer) Close() {
	if p == nil || p.writer == nil {
		return
	}
	close(p.closeChan)
	if err := p.writer.Close(); err != nil {
		p.logger.Error("failed to close kafka writer", "error", err)
	}
}
