package tuya

import (
	"context"
	"slices"

	"github.com/nerrad567/gray-logic-tuya/internal/platform"
	iot "github.com/nerrad567/gray-logic-tuya/internal/tuya"
)

// SelectEntity exposes one Enum data point of a device as a select.
type SelectEntity struct {
	deviceEntity
	description SelectDescription
	uniqueID    string

	// enum is resolved once; nil when the data point has no usable Enum
	// declaration.
	enum *iot.EnumTypeData
}

var _ platform.Select = (*SelectEntity)(nil)

// NewSelectEntity builds the select for description on device.
func NewSelectEntity(device *iot.Device, sender CommandSender, description SelectDescription) *SelectEntity {
	e := &SelectEntity{
		deviceEntity: deviceEntity{device: device, sender: sender},
		description:  description,
	}
	e.uniqueID = e.baseUniqueID() + string(description.Key)

	if enum, ok := e.findEnumType(description.Key, true); ok {
		e.enum = &iot.EnumTypeData{DPCode: enum.DPCode, Range: slices.Clone(enum.Range)}
	}
	return e
}

// UniqueID returns "tuya." followed by the device id and the data point code.
func (e *SelectEntity) UniqueID() string {
	return e.uniqueID
}

// Description returns the entity metadata of the select's description.
func (e *SelectEntity) Description() platform.EntityDescription {
	return e.description.entityDescription()
}

// Options returns a copy of the allowed values in device order.
func (e *SelectEntity) Options() []string {
	if e.enum == nil {
		return []string{}
	}
	return slices.Clone(e.enum.Range)
}

// CurrentOption returns the live value of the data point when it is one
// of the options.
func (e *SelectEntity) CurrentOption() (string, bool) {
	raw, ok := e.device.StatusValue(e.description.Key)
	if !ok {
		return "", false
	}
	value, ok := raw.(string)
	if !ok || e.enum == nil || !e.enum.Contains(value) {
		return "", false
	}
	return value, true
}

// SelectOption sends a single command setting the data point to option.
// The device's status is left alone until the device reports back.
func (e *SelectEntity) SelectOption(ctx context.Context, option string) error {
	return e.sendCommand(ctx, []iot.Command{
		{Code: e.description.Key, Value: option},
	})
}
