package platform

import (
	"context"
	"time"
)

// EntityCategory groups an entity outside the primary controls.
type EntityCategory string

const (
	// EntityCategoryNone marks a primary control.
	EntityCategoryNone       EntityCategory = ""
	EntityCategoryConfig     EntityCategory = "config"
	EntityCategoryDiagnostic EntityCategory = "diagnostic"
)

// EntityDescription is the presentation metadata of an entity.
type EntityDescription struct {
	Key              string
	Name             string
	EntityCategory   EntityCategory
	Icon             string
	TranslationKey   string
	EnabledByDefault bool
}

// Entity is anything the registry can host.
type Entity interface {
	UniqueID() string
	DeviceID() string
	DeviceCategory() string
	Description() EntityDescription

	// Available reports whether the backing device is reachable.
	Available() bool
}

// Select is an entity that picks one option from a fixed list.
type Select interface {
	Entity

	// Options returns the allowed values. Empty when unknown.
	Options() []string

	// CurrentOption returns the current value, or false when it is unknown
	// or not one of Options.
	CurrentOption() (string, bool)

	// SelectOption requests a change. The new value is observed later
	// through CurrentOption once the device reports it.
	SelectOption(ctx context.Context, option string) error
}

// SelectState is a point-in-time view of a registered select.
type SelectState struct {
	UniqueID       string         `json:"unique_id"`
	DeviceID       string         `json:"device_id"`
	DeviceCategory string         `json:"device_category"`
	Key            string         `json:"key"`
	Name           string         `json:"name"`
	EntityCategory EntityCategory `json:"entity_category,omitempty"`
	Icon           string         `json:"icon,omitempty"`
	TranslationKey string         `json:"translation_key,omitempty"`
	Options        []string       `json:"options"`
	Option         *string        `json:"option"`
	Available      bool           `json:"available"`
	Enabled        bool           `json:"enabled"`
	Timestamp      time.Time      `json:"timestamp"`
}

func snapshot(s Select, enabled bool) SelectState {
	desc := s.Description()
	state := SelectState{
		UniqueID:       s.UniqueID(),
		DeviceID:       s.DeviceID(),
		DeviceCategory: s.DeviceCategory(),
		Key:            desc.Key,
		Name:           desc.Name,
		EntityCategory: desc.EntityCategory,
		Icon:           desc.Icon,
		TranslationKey: desc.TranslationKey,
		Options:        s.Options(),
		Available:      s.Available(),
		Enabled:        enabled,
		Timestamp:      time.Now().UTC(),
	}
	if state.Options == nil {
		state.Options = []string{}
	}
	if opt, ok := s.CurrentOption(); ok {
		state.Option = &opt
	}
	return state
}
