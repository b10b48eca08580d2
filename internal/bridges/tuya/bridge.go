package tuya

import (
	"context"
	"errors"
	"sync"
	"time"

	iot "github.com/nerrad567/gray-logic-tuya/internal/tuya"
)

// Logger is the logging surface used by this package.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// DeviceManager is what the select platform needs from the device manager.
// Satisfied by *tuya.Manager.
type DeviceManager interface {
	DeviceLookup
	CommandSender
	DeviceCounter
	DeviceIDs() []string
	OnDiscovery(fn iot.DiscoveryFunc) (cancel func())
	OnStatusUpdate(fn iot.DeviceFunc) (cancel func())
	OnRemoval(fn iot.DeviceFunc) (cancel func())
}

// Host is the entity platform the selects are registered with.
// Satisfied by *platform.Registry.
type Host interface {
	EntityRegistrar
	EntityCounter
	RefreshDevice(ctx context.Context, deviceID string)
	RemoveDevice(ctx context.Context, deviceID string) error
}

// Options configures a SelectPlatform.
type Options struct {
	Manager  DeviceManager
	Host     Host
	Registry *SelectRegistry

	// Health reporting; Publisher may be nil to disable it.
	BridgeID       string
	Version        string
	HealthInterval time.Duration
	Publisher      HealthPublisher
	Counts         CountWriter

	Logger Logger
}

// SelectPlatform wires Tuya device discovery to the entity platform.
//
// Thread Safety: Start and Stop are safe for concurrent use.
type SelectPlatform struct {
	manager    DeviceManager
	host       Host
	discoverer *Discoverer
	health     *HealthReporter
	logger     Logger

	mu       sync.Mutex
	started  bool
	cancels  []func()
	stopOnce sync.Once
}

// New creates a SelectPlatform.
func New(opts Options) (*SelectPlatform, error) {
	if opts.Manager == nil {
		return nil, errors.New("tuya select: device manager is required")
	}
	if opts.Host == nil {
		return nil, errors.New("tuya select: host is required")
	}
	if opts.Registry == nil {
		opts.Registry = NewSelectRegistry()
	}

	var logger Logger = noopLogger{}
	if opts.Logger != nil {
		logger = opts.Logger
	}

	p := &SelectPlatform{
		manager: opts.Manager,
		host:    opts.Host,
		discoverer: NewDiscoverer(DiscovererOptions{
			Devices:   opts.Manager,
			Sender:    opts.Manager,
			Registry:  opts.Registry,
			Registrar: opts.Host,
			Logger:    logger,
		}),
		logger: logger,
	}

	if opts.Publisher != nil {
		p.health = NewHealthReporter(HealthReporterConfig{
			BridgeID:  opts.BridgeID,
			Version:   opts.Version,
			Interval:  opts.HealthInterval,
			Publisher: opts.Publisher,
			Devices:   opts.Manager,
			Entities:  opts.Host,
			Counts:    opts.Counts,
		})
		p.health.SetLogger(logger)
	}

	return p, nil
}

// Start subscribes to discovery, status and removal events, then runs
// discovery over every device already known. Events are followed until Stop.
func (p *SelectPlatform) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return nil
	}

	if p.health != nil {
		if err := p.health.PublishStarting(); err != nil {
			p.logger.Warn("failed to publish starting health", "error", err)
		}
	}

	// Subscribe before the initial pass so a device announced in between is
	// not missed; the registrar skips unique ids it already holds.
	cancels := []func(){
		p.manager.OnDiscovery(p.onDiscovery),
		p.manager.OnStatusUpdate(p.host.RefreshDevice),
		p.manager.OnRemoval(p.onRemoval),
	}

	if err := p.discoverer.DiscoverSelects(ctx, p.manager.DeviceIDs()); err != nil {
		for _, cancel := range cancels {
			cancel()
		}
		return err
	}
	p.cancels = append(p.cancels, cancels...)

	if p.health != nil {
		p.health.Start(ctx)
	}

	p.started = true
	p.logger.Info("tuya select platform started", "devices", p.manager.DeviceCount())
	return nil
}

// Stop cancels every subscription and stops health reporting.
func (p *SelectPlatform) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		cancels := p.cancels
		p.cancels = nil
		p.mu.Unlock()

		for _, cancel := range cancels {
			cancel()
		}
		if p.health != nil {
			p.health.Stop()
		}
		p.logger.Info("tuya select platform stopped")
	})
}

func (p *SelectPlatform) onDiscovery(ctx context.Context, deviceIDs []string) {
	if err := p.discoverer.DiscoverSelects(ctx, deviceIDs); err != nil {
		p.logger.Error("registering discovered selects failed", "devices", len(deviceIDs), "error", err)
	}
}

func (p *SelectPlatform) onRemoval(ctx context.Context, deviceID string) {
	if err := p.host.RemoveDevice(ctx, deviceID); err != nil {
		p.logger.Error("removing selects failed", "device_id", deviceID, "error", err)
	}
}
