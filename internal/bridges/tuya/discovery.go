package tuya

import (
	"context"

	"github.com/nerrad567/gray-logic-tuya/internal/platform"
	iot "github.com/nerrad567/gray-logic-tuya/internal/tuya"
)

// DeviceLookup resolves device ids. Satisfied by *tuya.Manager.
type DeviceLookup interface {
	Device(id string) (*iot.Device, bool)
}

// EntityRegistrar accepts a batch of selects. Satisfied by *platform.Registry.
type EntityRegistrar interface {
	AddSelects(ctx context.Context, batch []platform.Select) error
}

// DiscovererOptions configures a Discoverer. All fields but Logger are required.
type DiscovererOptions struct {
	Devices   DeviceLookup
	Sender    CommandSender
	Registry  *SelectRegistry
	Registrar EntityRegistrar
	Logger    Logger
}

// Discoverer turns announced devices into select entities.
type Discoverer struct {
	devices   DeviceLookup
	sender    CommandSender
	registry  *SelectRegistry
	registrar EntityRegistrar
	logger    Logger
}

// NewDiscoverer creates a Discoverer.
func NewDiscoverer(opts DiscovererOptions) *Discoverer {
	var logger Logger = noopLogger{}
	if opts.Logger != nil {
		logger = opts.Logger
	}
	return &Discoverer{
		devices:   opts.Devices,
		sender:    opts.Sender,
		registry:  opts.Registry,
		registrar: opts.Registrar,
		logger:    logger,
	}
}

// DiscoverSelects builds a select for every description of each device's
// category whose data point is in the device's live status, and registers
// them in one batch. Unknown devices are skipped.
func (d *Discoverer) DiscoverSelects(ctx context.Context, deviceIDs []string) error {
	batch := d.build(deviceIDs)
	return d.registrar.AddSelects(ctx, batch)
}

func (d *Discoverer) build(deviceIDs []string) []platform.Select {
	var batch []platform.Select
	for _, id := range deviceIDs {
		device, ok := d.devices.Device(id)
		if !ok {
			d.logger.Warn("discovered device not in device map", "device_id", id)
			continue
		}

		descriptions, ok := d.registry.Lookup(device.Category)
		if !ok {
			continue
		}

		for _, desc := range descriptions {
			if !device.HasStatus(desc.Key) {
				continue
			}
			batch = append(batch, NewSelectEntity(device, d.sender, desc))
		}
	}
	return batch
}
