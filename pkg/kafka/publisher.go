package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/medalboard/backend/pkg/pubsub"

	"github.com/Shopify/sarama"
)

const clientIDHeader = "client_id"

type publisher struct {
	clientID    string
	brokerAddrs []string
	producer    sarama.SyncProducer
}

// NewPublisher connects a synchronous producer. Publish returns only after
// every in-sync replica has acknowledged the message.
func NewPublisher(clientID string, brokerAddrs []string) (*publisher, error) {
	config := sarama.NewConfig()
	config.ClientID = clientID
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Partitioner = sarama.NewHashPartitioner

	producer, err := sarama.NewSyncProducer(brokerAddrs, config)
	if err != nil {
		return nil, fmt.Errorf("sarama.NewSyncProducer: %w", err)
	}

	return &publisher{
		clientID:    clientID,
		brokerAddrs: brokerAddrs,
		producer:    producer,
	}, nil
}

// Publish keys the message by pack.Key so events of one medal or user land on
// the same partition and keep their order.
func (p *publisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	m := &sarama.ProducerMessage{
		Topic:     topic,
		Key:       sarama.ByteEncoder(pack.Key),
		Value:     sarama.ByteEncoder(pack.Msg),
		Timestamp: time.Now(),
		Headers: []sarama.RecordHeader{
			{Key: []byte(clientIDHeader), Value: []byte(p.clientID)},
		},
	}

	if _, _, err := p.producer.SendMessage(m); err != nil {
		return fmt.Errorf("cannot publish to %s: %w", topic, err)
	}

	return nil
}

func (p *publisher) Close() error {
	return p.producer.Close()
}
