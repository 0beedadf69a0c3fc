package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// Event types published to the billing topic.
const (
	EventBillGenerated = "bill.generated"
	EventBillPaid      = "bill.paid"
)

const billingTopic = "billing-events"

// Event is a billing lifecycle notification.
type Event struct {
	Type     string  `json:"type"`
	BillID   string  `json:"bill_id"`
	TenantID string  `json:"tenant_id"`
	Month    int     `json:"month"`
	Year     int     `json:"year"`
	Amount   float64 `json:"amount"`
}

// Producer publishes billing events to Kafka through a small worker pool.
// Publication is fire-and-forget: a full queue drops the event rather than
// stalling bill generation.
type Producer struct {
	writer       *kafka.Writer
	eventChan    chan Event
	workerCount  int
	shutdownChan chan struct{}
	wg           sync.WaitGroup
}

// NewProducer creates a Kafka producer for billing events.
func NewProducer(broker string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	p := &Producer{
		writer:       writer,
		eventChan:    make(chan Event, 256),
		workerCount:  4,
		shutdownChan: make(chan struct{}),
	}
	p.startWorkers()
	return p
}

func (p *Producer) startWorkers() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.eventWorker(i)
	}
	logrus.Infof("[Kafka] Started %d billing event workers", p.workerCount)
}

func (p *Producer) eventWorker(id int) {
	defer p.wg.Done()

	for {
		select {
		case event := <-p.eventChan:
			if err := p.sendEventSync(event); err != nil {
				logrus.WithError(err).Errorf("[Kafka Worker %d] Failed to send billing event", id)
			}
		case <-p.shutdownChan:
			return
		}
	}
}

// Publish queues a billing event asynchronously (non-blocking).
func (p *Producer) Publish(event Event) {
	select {
	case p.eventChan <- event:
	default:
		logrus.WithField("bill_id", event.BillID).Warn("Billing event queue full, event dropped")
	}
}

func (p *Producer) sendEventSync(event Event) error {
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal billing event: %w", err)
	}

	msg := kafka.Message{
		Topic: billingTopic,
		Key:   []byte(event.TenantID),
		Value: message,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "tenant_id", Value: []byte(event.TenantID)},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write billing event to Kafka: %w", err)
	}
	return nil
}

// Close gracefully shuts down the producer and its workers.
func (p *Producer) Close() error {
	close(p.shutdownChan)
	p.wg.Wait()
	close(p.eventChan)

	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka writer: %w", err)
	}
	return nil
}
