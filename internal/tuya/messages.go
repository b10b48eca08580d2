package tuya

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// DeviceFunction is one entry of a device's function or status_range list.
// Values is the raw JSON string the cloud reports, parsed on demand.
type DeviceFunction struct {
	Code   DPCode `json:"code" validate:"required"`
	Type   DPType `json:"type"`
	Values string `json:"values"`
}

// StatusEntry is one reported data point value.
type StatusEntry struct {
	Code  DPCode `json:"code" validate:"required"`
	Value any    `json:"value"`
}

// DeviceInfo describes a device as announced by the cloud connector.
type DeviceInfo struct {
	ID          string           `json:"id" validate:"required"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	ProductID   string           `json:"product_id,omitempty"`
	ProductName string           `json:"product_name,omitempty"`
	Online      bool             `json:"online"`
	Functions   []DeviceFunction `json:"functions,omitempty" validate:"dive"`
	StatusRange []DeviceFunction `json:"status_range,omitempty" validate:"dive"`
	Status      []StatusEntry    `json:"status,omitempty" validate:"dive"`
}

// DiscoveryMessage is received on graylogic/discovery/tuya.
// Devices already in the map only have their status and online flag refreshed.
type DiscoveryMessage struct {
	Devices []DeviceInfo `json:"devices" validate:"dive"`
	Removed []string     `json:"removed,omitempty" validate:"dive,required"`
}

// StatusMessage is received on graylogic/state/tuya/{device_id}.
type StatusMessage struct {
	DeviceID  string        `json:"device_id" validate:"required"`
	Status    []StatusEntry `json:"status" validate:"dive"`
	Online    *bool         `json:"online,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Command is a single data point write.
type Command struct {
	Code  DPCode `json:"code"`
	Value any    `json:"value"`
}

// CommandMessage is published on graylogic/command/tuya/{device_id}.
type CommandMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	DeviceID  string    `json:"device_id"`
	Commands  []Command `json:"commands"`
	Source    string    `json:"source"`
}

// AckMessage is received on graylogic/ack/tuya/{device_id}.
type AckMessage struct {
	CommandID string    `json:"command_id" validate:"required"`
	DeviceID  string    `json:"device_id"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// decode unmarshals and validates an inbound payload.
func decode(payload []byte, v any) error {
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMessage, err)
	}
	return nil
}
