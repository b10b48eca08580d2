package tuya

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/gray-logic-tuya/internal/infrastructure/mqtt"
)

const defaultQueueSize = 256

// MQTTClient is the broker surface the manager needs. Satisfied by *mqtt.Client.
type MQTTClient interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Logger is the logging surface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	MQTT MQTTClient

	// CommandQoS is used for outbound commands. Default 1 is applied by config.
	CommandQoS byte

	// QueueSize bounds the dispatch queue. Zero means 256.
	QueueSize int

	Logger Logger
}

// Manager keeps the Tuya device map in sync with the cloud connector and
// carries commands back to it.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
//   - Listener callbacks run serially on the dispatch goroutine.
type Manager struct {
	mqtt       MQTTClient
	commandQoS byte
	logger     Logger

	mu      sync.RWMutex
	devices map[string]*Device
	order   []string

	dispatch *dispatcher

	runMu   sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	topics  []string
}

// NewManager creates a manager. Call Start to begin receiving messages.
func NewManager(opts ManagerOptions) (*Manager, error) {
	if opts.MQTT == nil {
		return nil, errors.New("tuya: mqtt client is required")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	var logger Logger = noopLogger{}
	if opts.Logger != nil {
		logger = opts.Logger
	}

	return &Manager{
		mqtt:       opts.MQTT,
		commandQoS: opts.CommandQoS,
		logger:     logger,
		devices:    make(map[string]*Device),
		dispatch:   newDispatcher(opts.QueueSize),
	}, nil
}

// Start starts the dispatch goroutine and subscribes to discovery, status
// and acknowledgement topics.
func (m *Manager) Start(ctx context.Context) error {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.running {
		return nil
	}

	m.ctx, m.cancel = context.WithCancel(ctx)
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		m.dispatch.run(m.ctx)
	}()

	topics := mqtt.Topics{}
	subs := []struct {
		topic   string
		handler mqtt.MessageHandler
	}{
		{topics.BridgeDiscovery(Protocol), m.handleDiscovery},
		{topics.BridgeStates(Protocol), m.handleStatus},
		{topics.BridgeAcks(Protocol), m.handleAck},
	}
	for _, s := range subs {
		if err := m.mqtt.Subscribe(s.topic, 1, s.handler); err != nil {
			m.stopLocked()
			return fmt.Errorf("subscribing to %s: %w", s.topic, err)
		}
		m.topics = append(m.topics, s.topic)
	}

	m.running = true
	m.logger.Info("tuya manager started", "subscriptions", len(m.topics))
	return nil
}

// Stop unsubscribes and waits for the dispatch goroutine to exit.
func (m *Manager) Stop() {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if !m.running {
		return
	}
	m.stopLocked()
	m.running = false
	m.logger.Info("tuya manager stopped")
}

func (m *Manager) stopLocked() {
	for _, topic := range m.topics {
		if err := m.mqtt.Unsubscribe(topic); err != nil {
			m.logger.Debug("unsubscribe failed", "topic", topic, "error", err)
		}
	}
	m.topics = nil
	m.cancel()
	m.wg.Wait()
}

// Device returns the device with id.
func (m *Manager) Device(id string) (*Device, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.devices[id]
	return d, ok
}

// DeviceIDs returns every known device id in announcement order.
func (m *Manager) DeviceIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.order)
}

// DeviceCount returns the number of known devices.
func (m *Manager) DeviceCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.devices)
}

// Upsert adds a device, or refreshes status and online state of a known
// one. It reports whether the device was new. No listeners are notified.
func (m *Manager) Upsert(info DeviceInfo) (*Device, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d, ok := m.devices[info.ID]; ok {
		online := info.Online
		d.Update(info.Status, &online)
		return d, false
	}

	d := NewDevice(info)
	m.devices[info.ID] = d
	m.order = append(m.order, info.ID)
	return d, true
}

// Remove drops a device from the map. No listeners are notified.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.devices[id]; !ok {
		return false
	}
	delete(m.devices, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })
	return true
}

// OnDiscovery registers fn for newly announced devices. The returned func
// unregisters it.
func (m *Manager) OnDiscovery(fn DiscoveryFunc) (cancel func()) {
	return m.dispatch.discovery.add(fn)
}

// OnStatusUpdate registers fn for devices whose status or online flag changed.
func (m *Manager) OnStatusUpdate(fn DeviceFunc) (cancel func()) {
	return m.dispatch.status.add(fn)
}

// OnRemoval registers fn for devices removed from the map.
func (m *Manager) OnRemoval(fn DeviceFunc) (cancel func()) {
	return m.dispatch.removal.add(fn)
}

// SendCommands publishes commands for deviceID. Only the broker publish is
// awaited; the device's acknowledgement arrives later on the ack topic.
func (m *Manager) SendCommands(ctx context.Context, deviceID string, commands []Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := m.Device(deviceID); !ok {
		return fmt.Errorf("%w: %s", ErrDeviceNotFound, deviceID)
	}

	msg := CommandMessage{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		DeviceID:  deviceID,
		Commands:  commands,
		Source:    CommandSource,
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("%w: marshalling command: %w", ErrCommandFailed, err)
	}

	topic := mqtt.Topics{}.BridgeCommand(Protocol, deviceID)
	if err := m.mqtt.Publish(topic, payload, m.commandQoS, false); err != nil {
		return fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}

	m.logger.Debug("command sent", "device_id", deviceID, "command_id", msg.ID, "commands", len(commands))
	return nil
}

func (m *Manager) runContext() context.Context {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

func (m *Manager) handleDiscovery(_ string, payload []byte) error {
	var msg DiscoveryMessage
	if err := decode(payload, &msg); err != nil {
		m.logger.Warn("dropping discovery message", "error", err)
		return err
	}

	var added, refreshed []string
	for _, info := range msg.Devices {
		if _, isNew := m.Upsert(info); isNew {
			added = append(added, info.ID)
		} else {
			refreshed = append(refreshed, info.ID)
		}
	}

	var removed []string
	for _, id := range msg.Removed {
		if m.Remove(id) {
			removed = append(removed, id)
		}
	}

	m.logger.Info("tuya discovery received",
		"added", len(added), "refreshed", len(refreshed), "removed", len(removed))

	ctx := m.runContext()
	if len(added) > 0 {
		m.dispatch.enqueue(ctx, event{kind: eventDiscovery, deviceIDs: added})
	}
	if len(refreshed) > 0 {
		m.dispatch.enqueue(ctx, event{kind: eventStatus, deviceIDs: refreshed})
	}
	if len(removed) > 0 {
		m.dispatch.enqueue(ctx, event{kind: eventRemoval, deviceIDs: removed})
	}
	return nil
}

func (m *Manager) handleStatus(topic string, payload []byte) error {
	var msg StatusMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		m.logger.Warn("dropping status message", "topic", topic, "error", err)
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if msg.DeviceID == "" {
		msg.DeviceID = mqtt.LastSegment(topic)
	}
	if err := validate.Struct(&msg); err != nil {
		m.logger.Warn("dropping status message", "topic", topic, "error", err)
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}

	d, ok := m.Device(msg.DeviceID)
	if !ok {
		m.logger.Debug("status for unknown device", "device_id", msg.DeviceID)
		return nil
	}

	if d.Update(msg.Status, msg.Online) {
		m.dispatch.enqueue(m.runContext(), event{kind: eventStatus, deviceIDs: []string{msg.DeviceID}})
	}
	return nil
}

func (m *Manager) handleAck(topic string, payload []byte) error {
	var ack AckMessage
	if err := decode(payload, &ack); err != nil {
		m.logger.Warn("dropping ack message", "topic", topic, "error", err)
		return err
	}

	if ack.Success {
		m.logger.Debug("command acknowledged", "command_id", ack.CommandID, "device_id", ack.DeviceID)
	} else {
		m.logger.Warn("command rejected by device",
			"command_id", ack.CommandID, "device_id", ack.DeviceID, "error", ack.Error)
	}
	return nil
}
