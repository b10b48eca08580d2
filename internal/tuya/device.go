package tuya

import (
	"maps"
	"sync"
)

// Device is a Tuya device as seen by this process.
//
// Identity and the function/status_range declarations are fixed when the
// device is first announced. Status and online state change as the cloud
// connector reports them and are guarded by mu.
type Device struct {
	ID          string
	Name        string
	Category    string
	ProductID   string
	ProductName string

	// Function holds the writable data point declarations.
	Function map[DPCode]DeviceFunction

	// StatusRange holds the readable data point declarations.
	StatusRange map[DPCode]DeviceFunction

	mu     sync.RWMutex
	status map[DPCode]any
	online bool
}

// NewDevice builds a Device from an announcement.
func NewDevice(info DeviceInfo) *Device {
	d := &Device{
		ID:          info.ID,
		Name:        info.Name,
		Category:    info.Category,
		ProductID:   info.ProductID,
		ProductName: info.ProductName,
		Function:    make(map[DPCode]DeviceFunction, len(info.Functions)),
		StatusRange: make(map[DPCode]DeviceFunction, len(info.StatusRange)),
		status:      make(map[DPCode]any, len(info.Status)),
		online:      info.Online,
	}
	for _, f := range info.Functions {
		d.Function[f.Code] = f
	}
	for _, f := range info.StatusRange {
		d.StatusRange[f.Code] = f
	}
	for _, s := range info.Status {
		d.status[s.Code] = s.Value
	}
	return d
}

// StatusValue returns the last reported value of code.
func (d *Device) StatusValue(code DPCode) (any, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.status[code]
	return v, ok
}

// HasStatus reports whether code is part of the device's live status.
func (d *Device) HasStatus(code DPCode) bool {
	_, ok := d.StatusValue(code)
	return ok
}

// Status returns a copy of the live status map.
func (d *Device) Status() map[DPCode]any {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return maps.Clone(d.status)
}

// Online reports the device's last known connectivity.
func (d *Device) Online() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.online
}

// Update merges status entries and optionally sets the online flag.
// It reports whether anything changed.
func (d *Device) Update(entries []StatusEntry, online *bool) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	changed := false
	for _, e := range entries {
		old, ok := d.status[e.Code]
		if !ok || !sameValue(old, e.Value) {
			changed = true
		}
		d.status[e.Code] = e.Value
	}
	if online != nil && *online != d.online {
		d.online = *online
		changed = true
	}
	return changed
}

// sameValue compares decoded JSON scalars; composite values always count
// as changed.
func sameValue(a, b any) bool {
	switch a.(type) {
	case string, bool, float64, nil:
		return a == b
	default:
		return false
	}
}

// declarations returns the lists searched for a data point declaration.
// With preferFunction the function list comes first, otherwise status_range.
func (d *Device) declarations(preferFunction bool) [2]map[DPCode]DeviceFunction {
	if preferFunction {
		return [2]map[DPCode]DeviceFunction{d.Function, d.StatusRange}
	}
	return [2]map[DPCode]DeviceFunction{d.StatusRange, d.Function}
}

// FindEnumType resolves the Enum declaration of code. A declaration with
// another type, or whose values do not parse, is skipped in favour of the
// other list.
func (d *Device) FindEnumType(code DPCode, preferFunction bool) (*EnumTypeData, bool) {
	for _, decls := range d.declarations(preferFunction) {
		f, ok := decls[code]
		if !ok || f.Type != DPTypeEnum {
			continue
		}
		enum, err := ParseEnumTypeData(code, f.Values)
		if err != nil {
			continue
		}
		return enum, true
	}
	return nil, false
}
