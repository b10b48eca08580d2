package tuya

import (
	"context"
	"slices"
	"sync"
)

// DiscoveryFunc receives the ids of newly announced devices.
type DiscoveryFunc func(ctx context.Context, deviceIDs []string)

// DeviceFunc receives a single device id.
type DeviceFunc func(ctx context.Context, deviceID string)

type listener[F any] struct {
	id uint64
	fn F
}

// listeners is a registration-ordered callback list.
type listeners[F any] struct {
	mu    sync.Mutex
	next  uint64
	items []listener[F]
}

// add registers fn and returns a func that removes it. The returned func
// is safe to call more than once.
func (l *listeners[F]) add(fn F) func() {
	l.mu.Lock()
	l.next++
	id := l.next
	l.items = append(l.items, listener[F]{id: id, fn: fn})
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.items = slices.DeleteFunc(l.items, func(it listener[F]) bool { return it.id == id })
	}
}

func (l *listeners[F]) snapshot() []F {
	l.mu.Lock()
	defer l.mu.Unlock()
	fns := make([]F, len(l.items))
	for i, it := range l.items {
		fns[i] = it.fn
	}
	return fns
}

type eventKind int

const (
	eventDiscovery eventKind = iota
	eventStatus
	eventRemoval
)

type event struct {
	kind      eventKind
	deviceIDs []string
}

// dispatcher runs every callback from one goroutine so listeners never
// execute concurrently with each other.
type dispatcher struct {
	discovery listeners[DiscoveryFunc]
	status    listeners[DeviceFunc]
	removal   listeners[DeviceFunc]

	events chan event
}

func newDispatcher(queueSize int) *dispatcher {
	return &dispatcher{events: make(chan event, queueSize)}
}

// enqueue blocks while the queue is full, until ctx is done.
func (d *dispatcher) enqueue(ctx context.Context, ev event) bool {
	select {
	case d.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (d *dispatcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-d.events:
			d.deliver(ctx, ev)
		}
	}
}

func (d *dispatcher) deliver(ctx context.Context, ev event) {
	switch ev.kind {
	case eventDiscovery:
		for _, fn := range d.discovery.snapshot() {
			fn(ctx, ev.deviceIDs)
		}
	case eventStatus:
		for _, fn := range d.status.snapshot() {
			for _, id := range ev.deviceIDs {
				fn(ctx, id)
			}
		}
	case eventRemoval:
		for _, fn := range d.removal.snapshot() {
			for _, id := range ev.deviceIDs {
				fn(ctx, id)
			}
		}
	}
}
