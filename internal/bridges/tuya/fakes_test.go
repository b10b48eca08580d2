package tuya

import (
	"context"
	"slices"
	"sync"

	"github.com/nerrad567/gray-logic-tuya/internal/platform"
	iot "github.com/nerrad567/gray-logic-tuya/internal/tuya"
)

type sentCommand struct {
	deviceID string
	commands []iot.Command
}

type fakeManager struct {
	mu       sync.Mutex
	devices  map[string]*iot.Device
	order    []string
	sent     []sentCommand
	sendErr  error
	discover []iot.DiscoveryFunc
	status   []iot.DeviceFunc
	removal  []iot.DeviceFunc

	// afterIDs runs once DeviceIDs has taken its snapshot.
	afterIDs func()
}

func newFakeManager(infos ...iot.DeviceInfo) *fakeManager {
	m := &fakeManager{devices: make(map[string]*iot.Device)}
	for _, info := range infos {
		m.add(info)
	}
	return m
}

func (m *fakeManager) add(info iot.DeviceInfo) *iot.Device {
	m.mu.Lock()
	defer m.mu.Unlock()
	d := iot.NewDevice(info)
	m.devices[info.ID] = d
	m.order = append(m.order, info.ID)
	return d
}

func (m *fakeManager) Device(id string) (*iot.Device, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.devices[id]
	return d, ok
}

func (m *fakeManager) DeviceIDs() []string {
	m.mu.Lock()
	ids := slices.Clone(m.order)
	hook := m.afterIDs
	m.afterIDs = nil
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return ids
}

func (m *fakeManager) DeviceCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.devices)
}

func (m *fakeManager) SendCommands(_ context.Context, deviceID string, commands []iot.Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentCommand{deviceID: deviceID, commands: commands})
	return m.sendErr
}

func (m *fakeManager) sentCommands() []sentCommand {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.sent)
}

func (m *fakeManager) OnDiscovery(fn iot.DiscoveryFunc) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discover = append(m.discover, fn)
	i := len(m.discover) - 1
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.discover[i] = nil
	}
}

func (m *fakeManager) OnStatusUpdate(fn iot.DeviceFunc) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = append(m.status, fn)
	i := len(m.status) - 1
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.status[i] = nil
	}
}

func (m *fakeManager) OnRemoval(fn iot.DeviceFunc) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removal = append(m.removal, fn)
	i := len(m.removal) - 1
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.removal[i] = nil
	}
}

func (m *fakeManager) fireDiscovery(ctx context.Context, ids ...string) {
	m.mu.Lock()
	fns := slices.Clone(m.discover)
	m.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn(ctx, ids)
		}
	}
}

func (m *fakeManager) fireStatus(ctx context.Context, id string) {
	m.mu.Lock()
	fns := slices.Clone(m.status)
	m.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn(ctx, id)
		}
	}
}

func (m *fakeManager) fireRemoval(ctx context.Context, id string) {
	m.mu.Lock()
	fns := slices.Clone(m.removal)
	m.mu.Unlock()
	for _, fn := range fns {
		if fn != nil {
			fn(ctx, id)
		}
	}
}

type fakeHost struct {
	mu        sync.Mutex
	batches   [][]platform.Select
	refreshed []string
	removed   []string
	addErr    error
}

func (h *fakeHost) AddSelects(_ context.Context, batch []platform.Select) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.batches = append(h.batches, batch)
	return h.addErr
}

func (h *fakeHost) RefreshDevice(_ context.Context, deviceID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.refreshed = append(h.refreshed, deviceID)
}

func (h *fakeHost) RemoveDevice(_ context.Context, deviceID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removed = append(h.removed, deviceID)
	return nil
}

func (h *fakeHost) Count() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, b := range h.batches {
		n += len(b)
	}
	return n, n
}

func (h *fakeHost) allBatches() [][]platform.Select {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.batches)
}

type fakePublisher struct {
	mu        sync.Mutex
	connected bool
	topics    []string
	payloads  [][]byte
}

func (p *fakePublisher) Publish(topic string, payload []byte, _ byte, _ bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *fakePublisher) IsConnected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *fakePublisher) messages() ([]string, [][]byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.topics), slices.Clone(p.payloads)
}

// enumFunction declares code as an Enum data point with the given range.
func enumFunction(code iot.DPCode, values string) iot.DeviceFunction {
	return iot.DeviceFunction{Code: code, Type: iot.DPTypeEnum, Values: values}
}

func status(code iot.DPCode, value any) iot.StatusEntry {
	return iot.StatusEntry{Code: code, Value: value}
}
