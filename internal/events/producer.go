package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/IBM/sarama"

	"github.com/zenvx/CodeBattleCoordService/internal/model"
)

// Producer streams battle outcome events to Kafka, fire and forget. The
// battle flow never blocks on the broker; delivery failures are logged and
// dropped.
type Producer struct {
	producer sarama.AsyncProducer
	topic    string
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Return.Successes = false
	config.Producer.Return.Errors = true

	producer, err := sarama.NewAsyncProducer(brokers, config)
	if err != nil {
		return nil, err
	}

	p := &Producer{producer: producer, topic: topic}
	go p.drainErrors()
	return p, nil
}

func (p *Producer) drainErrors() {
	for err := range p.producer.Errors() {
		log.Printf("[Events] outcome publish failed: %v", err)
	}
}

// PublishOutcome enqueues one outcome event, keyed by battle id so replays of
// the same battle land on the same partition.
func (p *Producer) PublishOutcome(event model.OutcomeEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Events] failed to marshal outcome for %s: %v", event.BattleID, err)
		return
	}
	p.producer.Input() <- &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.BattleID),
		Value: sarama.ByteEncoder(data),
	}
}

func (p *Producer) Close() {
	p.producer.AsyncClose()
}
