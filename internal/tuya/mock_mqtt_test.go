package tuya

import (
	"errors"
	"strings"
	"sync"

	"github.com/nerrad567/gray-logic-tuya/internal/infrastructure/mqtt"
)

type publishedMessage struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

// MockMQTTClient records publishes and lets tests inject inbound messages.
type MockMQTTClient struct {
	mu            sync.Mutex
	published     []publishedMessage
	subscriptions map[string]mqtt.MessageHandler
	unsubscribed  []string
	publishErr    error
	subscribeErr  error
}

func NewMockMQTTClient() *MockMQTTClient {
	return &MockMQTTClient{subscriptions: make(map[string]mqtt.MessageHandler)}
}

func (m *MockMQTTClient) Publish(topic string, payload []byte, qos byte, retained bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, publishedMessage{topic, payload, qos, retained})
	return nil
}

func (m *MockMQTTClient) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscribeErr != nil {
		return m.subscribeErr
	}
	m.subscriptions[topic] = handler
	return nil
}

func (m *MockMQTTClient) Unsubscribe(topic string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions, topic)
	m.unsubscribed = append(m.unsubscribed, topic)
	return nil
}

// SimulateMessage delivers payload to the first subscription matching topic.
func (m *MockMQTTClient) SimulateMessage(topic string, payload []byte) error {
	m.mu.Lock()
	var handler mqtt.MessageHandler
	for pattern, h := range m.subscriptions {
		if topicMatches(pattern, topic) {
			handler = h
			break
		}
	}
	m.mu.Unlock()

	if handler == nil {
		return errors.New("no subscription for " + topic)
	}
	return handler(topic, payload)
}

func (m *MockMQTTClient) Published() []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]publishedMessage, len(m.published))
	copy(out, m.published)
	return out
}

func (m *MockMQTTClient) SubscriptionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subscriptions)
}

// topicMatches supports the single-level + wildcard.
func topicMatches(pattern, topic string) bool {
	p := strings.Split(pattern, "/")
	t := strings.Split(topic, "/")
	if len(p) != len(t) {
		return false
	}
	for i := range p {
		if p[i] != "+" && p[i] != t[i] {
			return false
		}
	}
	return true
}
