package tuya

import "errors"

var (
	// ErrDeviceNotFound is returned when a device id is not in the device map.
	ErrDeviceNotFound = errors.New("tuya: device not found")

	// ErrInvalidTypeData is returned when a data point's values JSON cannot
	// be parsed for its declared type.
	ErrInvalidTypeData = errors.New("tuya: invalid type data")

	// ErrInvalidMessage is returned for payloads that fail decoding or validation.
	ErrInvalidMessage = errors.New("tuya: invalid message")

	// ErrCommandFailed wraps transport failures from SendCommands.
	ErrCommandFailed = errors.New("tuya: command failed")
)
