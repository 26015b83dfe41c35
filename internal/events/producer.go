// internal/events/producer.go
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const producerName = "checkout-api"

// Publisher pushes sale events somewhere; the payment and checkout services
// depend on this, so tests can swap in a recorder.
type Publisher interface {
	Publish(eventType, correlationID string, payload interface{})
}

// Producer buffers events in a channel and writes them to Kafka from one
// goroutine. Publishing never blocks the request path: on a full buffer, or
// after shutdown has begun, the event is dropped and logged.
type Producer struct {
	w       *kafka.Writer
	mu      sync.RWMutex
	closed  bool
	inbox   chan kafka.Message
	closeCh chan struct{}
	logger  *zap.Logger
}

func NewProducer(brokers []string, topic string, buf int, logger *zap.Logger) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		inbox:   make(chan kafka.Message, buf),
		closeCh: make(chan struct{}),
		logger:  logger,
	}
}

// Start drains the inbox until ctx is cancelled, then flushes what is left.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				// Flip closed under the lock so no Publish can race the
				// close below, then flush what is buffered.
				p.mu.Lock()
				p.closed = true
				close(p.inbox)
				p.mu.Unlock()
				for m := range p.inbox {
					p.write(m)
				}
				_ = p.w.Close()
				close(p.closeCh)
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		p.logger.Warn("failed to publish sale event",
			zap.String("key", string(m.Key)),
			zap.Error(err),
		)
	}
}

// Publish wraps payload in an Envelope and hands it to the writer goroutine.
func (p *Producer) Publish(eventType, correlationID string, payload interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn("failed to marshal event payload", zap.String("event_type", eventType), zap.Error(err))
		return
	}

	env := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		CorrelationID: correlationID,
		Payload:       raw,
	}

	value, err := json.Marshal(env)
	if err != nil {
		p.logger.Warn("failed to marshal event envelope", zap.String("event_type", eventType), zap.Error(err))
		return
	}

	msg := kafka.Message{
		Key:   []byte(correlationID),
		Value: value,
		Time:  time.Now(),
	}

	// The read lock pairs with the closed flip in Start: a send can never
	// hit a closed inbox.
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		p.logger.Warn("producer is shut down, dropping event",
			zap.String("event_type", eventType),
			zap.String("correlation_id", correlationID),
		)
		return
	}

	select {
	case p.inbox <- msg:
	default:
		p.logger.Warn("event buffer full, dropping event",
			zap.String("event_type", eventType),
			zap.String("correlation_id", correlationID),
		)
	}
}

// WaitClosed blocks until the writer goroutine has flushed and exited.
func (p *Producer) WaitClosed() { <-p.closeCh }
