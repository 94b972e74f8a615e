package testutil

import (
	"context"
	"sync"

	"github.com/medalboard/backend/pkg/pubsub"
)

type MockPublisher struct {
	PublishFunc func(context.Context, string, *pubsub.Pack) error

	mu     sync.Mutex
	topics []string
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	m.mu.Lock()
	m.topics = append(m.topics, topic)
	m.mu.Unlock()

	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, topic, pack)
	}

	return nil
}

// Topics returns the topics published so far, in order.
func (m *MockPublisher) Topics() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string{}, m.topics...)
}
