package tuya

import (
	"context"

	iot "github.com/nerrad567/gray-logic-tuya/internal/tuya"
)

// CommandSender carries data point writes to a device.
// Satisfied by *tuya.Manager.
type CommandSender interface {
	SendCommands(ctx context.Context, deviceID string, commands []iot.Command) error
}

// deviceEntity is the part shared by every entity backed by a Tuya device.
// The device is owned by the device manager.
type deviceEntity struct {
	device *iot.Device
	sender CommandSender
}

func (e deviceEntity) baseUniqueID() string {
	return "tuya." + e.device.ID
}

func (e deviceEntity) DeviceID() string {
	return e.device.ID
}

func (e deviceEntity) DeviceCategory() string {
	return e.device.Category
}

// Available reports whether the cloud sees the device online.
func (e deviceEntity) Available() bool {
	return e.device.Online()
}

func (e deviceEntity) findEnumType(code iot.DPCode, preferFunction bool) (*iot.EnumTypeData, bool) {
	return e.device.FindEnumType(code, preferFunction)
}

func (e deviceEntity) sendCommand(ctx context.Context, commands []iot.Command) error {
	return e.sender.SendCommands(ctx, e.device.ID, commands)
}
