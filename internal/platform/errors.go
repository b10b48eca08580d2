package platform

import "errors"

var (
	// ErrEntityNotFound is returned when no entity has the unique id.
	ErrEntityNotFound = errors.New("platform: entity not found")

	// ErrEntityDisabled is returned when acting on a disabled entity.
	ErrEntityDisabled = errors.New("platform: entity disabled")

	// ErrEntityUnavailable is returned when the entity's device is offline.
	ErrEntityUnavailable = errors.New("platform: entity unavailable")

	// ErrInvalidOption is returned when an option is not one of the entity's options.
	ErrInvalidOption = errors.New("platform: invalid option")
)
