package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/nerrad567/gray-logic-tuya/internal/infrastructure/mqtt"
)

// StatePublisher publishes retained entity state. Satisfied by *mqtt.Client.
type StatePublisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// HistoryWriter records option changes. Satisfied by *influxdb.Client.
type HistoryWriter interface {
	WriteSelectOption(uniqueID, deviceID, code, option string)
}

// StateListener is called with every state the registry writes.
type StateListener func(state SelectState)

// Logger is the logging surface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// RegistryOptions configures a Registry. Only Repository is required.
type RegistryOptions struct {
	Repository Repository
	Publisher  StatePublisher
	History    HistoryWriter
	StateQoS   byte
	Logger     Logger
}

type registration struct {
	entity  Select
	enabled bool

	// lastOption is the option last written to history.
	lastOption *string
}

// Registry hosts select entities: it persists their registration, decides
// whether they are active, enforces option membership on writes, and
// distributes their state.
//
// Thread Safety:
//   - All methods are safe for concurrent use.
type Registry struct {
	repo      Repository
	publisher StatePublisher
	history   HistoryWriter
	stateQoS  byte

	mu       sync.RWMutex
	entities map[string]*registration
	order    []string
	byDevice map[string][]string

	listenerMu sync.RWMutex
	listeners  []StateListener

	loggerMu sync.RWMutex
	logger   Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts RegistryOptions) *Registry {
	var logger Logger = noopLogger{}
	if opts.Logger != nil {
		logger = opts.Logger
	}
	return &Registry{
		repo:      opts.Repository,
		publisher: opts.Publisher,
		history:   opts.History,
		stateQoS:  opts.StateQoS,
		entities:  make(map[string]*registration),
		byDevice:  make(map[string][]string),
		logger:    logger,
	}
}

// SetLogger replaces the registry's logger.
func (r *Registry) SetLogger(logger Logger) {
	r.loggerMu.Lock()
	defer r.loggerMu.Unlock()
	r.logger = logger
}

func (r *Registry) log() Logger {
	r.loggerMu.RLock()
	defer r.loggerMu.RUnlock()
	return r.logger
}

// AddStateListener registers fn for every state write.
func (r *Registry) AddStateListener(fn StateListener) {
	r.listenerMu.Lock()
	defer r.listenerMu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// AddSelects registers a batch of selects in order. Unique ids already
// registered are skipped. A stored enabled flag overrides the entity's
// EnabledByDefault. An empty batch is a no-op.
//
// A select that cannot be persisted is left out and the rest of the batch
// still registers; the persist errors are returned joined.
func (r *Registry) AddSelects(ctx context.Context, batch []Select) error {
	if len(batch) == 0 {
		return nil
	}

	var (
		active []*registration
		errs   []error
	)
	added := 0
	for _, s := range batch {
		id := s.UniqueID()

		r.mu.RLock()
		_, exists := r.entities[id]
		r.mu.RUnlock()
		if exists {
			r.log().Warn("select already registered", "unique_id", id)
			continue
		}

		enabled := s.Description().EnabledByDefault
		if r.repo != nil {
			stored, err := r.repo.Upsert(ctx, recordOf(s, enabled))
			if err != nil {
				r.log().Error("persisting select failed", "unique_id", id, "error", err)
				errs = append(errs, fmt.Errorf("persisting select %s: %w", id, err))
				continue
			}
			enabled = stored.Enabled
		}

		reg := &registration{entity: s, enabled: enabled}
		r.mu.Lock()
		r.entities[id] = reg
		r.order = append(r.order, id)
		r.byDevice[s.DeviceID()] = append(r.byDevice[s.DeviceID()], id)
		r.mu.Unlock()
		added++

		if enabled {
			active = append(active, reg)
		}
		r.log().Debug("select registered", "unique_id", id, "enabled", enabled)
	}

	for _, reg := range active {
		r.writeState(reg)
	}

	if added > 0 {
		r.log().Info("selects added", "count", added, "active", len(active))
	}
	return errors.Join(errs...)
}

func recordOf(s Select, enabled bool) SelectRecord {
	desc := s.Description()
	return SelectRecord{
		UniqueID:       s.UniqueID(),
		DeviceID:       s.DeviceID(),
		DeviceCategory: s.DeviceCategory(),
		Key:            desc.Key,
		Name:           desc.Name,
		EntityCategory: desc.EntityCategory,
		Icon:           desc.Icon,
		TranslationKey: desc.TranslationKey,
		Options:        s.Options(),
		Enabled:        enabled,
	}
}

// SelectOption validates a write against host policy and forwards it to
// the entity.
func (r *Registry) SelectOption(ctx context.Context, uniqueID, option string) error {
	r.mu.RLock()
	reg, ok := r.entities[uniqueID]
	var enabled bool
	if ok {
		enabled = reg.enabled
	}
	r.mu.RUnlock()

	switch {
	case !ok:
		return ErrEntityNotFound
	case !enabled:
		return ErrEntityDisabled
	case !reg.entity.Available():
		return ErrEntityUnavailable
	case !slices.Contains(reg.entity.Options(), option):
		return fmt.Errorf("%w: %q", ErrInvalidOption, option)
	}

	return reg.entity.SelectOption(ctx, option)
}

// RefreshDevice writes the state of every enabled select of deviceID.
func (r *Registry) RefreshDevice(_ context.Context, deviceID string) {
	for _, reg := range r.deviceRegistrations(deviceID) {
		r.mu.RLock()
		enabled := reg.enabled
		r.mu.RUnlock()
		if enabled {
			r.writeState(reg)
		}
	}
}

// RemoveDevice deregisters every select of deviceID, deletes their records
// and clears their retained state.
func (r *Registry) RemoveDevice(ctx context.Context, deviceID string) error {
	r.mu.Lock()
	ids := r.byDevice[deviceID]
	delete(r.byDevice, deviceID)
	for _, id := range ids {
		delete(r.entities, id)
	}
	r.order = slices.DeleteFunc(r.order, func(id string) bool { return slices.Contains(ids, id) })
	r.mu.Unlock()

	for _, id := range ids {
		r.clearState(id)
	}

	if r.repo != nil {
		if _, err := r.repo.DeleteByDevice(ctx, deviceID); err != nil {
			return fmt.Errorf("deleting selects of %s: %w", deviceID, err)
		}
	}

	if len(ids) > 0 {
		r.log().Info("selects removed", "device_id", deviceID, "count", len(ids))
	}
	return nil
}

// SetEnabled stores the enabled choice for uniqueID. Enabling writes the
// current state; disabling clears the retained state.
//
// A select that is persisted but not currently registered only has its
// stored flag updated; it takes effect when the device is rediscovered.
func (r *Registry) SetEnabled(ctx context.Context, uniqueID string, enabled bool) error {
	r.mu.RLock()
	reg, ok := r.entities[uniqueID]
	r.mu.RUnlock()
	if !ok {
		return r.setStoredEnabled(ctx, uniqueID, enabled)
	}

	if r.repo != nil {
		if err := r.repo.SetEnabled(ctx, uniqueID, enabled); err != nil {
			return fmt.Errorf("storing enabled flag: %w", err)
		}
	}

	r.mu.Lock()
	reg.enabled = enabled
	r.mu.Unlock()

	if enabled {
		r.writeState(reg)
	} else {
		r.clearState(uniqueID)
	}
	return nil
}

func (r *Registry) setStoredEnabled(ctx context.Context, uniqueID string, enabled bool) error {
	if r.repo == nil {
		return ErrEntityNotFound
	}
	if _, err := r.repo.Get(ctx, uniqueID); err != nil {
		return err
	}
	if err := r.repo.SetEnabled(ctx, uniqueID, enabled); err != nil {
		return fmt.Errorf("storing enabled flag: %w", err)
	}
	r.log().Info("stored enabled flag for offline select", "unique_id", uniqueID, "enabled", enabled)
	return nil
}

// Unregistered returns the persisted selects that are not registered in
// this process, typically those of devices that are offline or gone. It
// is empty without a repository.
func (r *Registry) Unregistered(ctx context.Context) ([]SelectRecord, error) {
	out := make([]SelectRecord, 0)
	if r.repo == nil {
		return out, nil
	}
	records, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stored selects: %w", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range records {
		if _, ok := r.entities[rec.UniqueID]; !ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Snapshot returns the current state of uniqueID.
func (r *Registry) Snapshot(uniqueID string) (SelectState, error) {
	r.mu.RLock()
	reg, ok := r.entities[uniqueID]
	var enabled bool
	if ok {
		enabled = reg.enabled
	}
	r.mu.RUnlock()

	if !ok {
		return SelectState{}, ErrEntityNotFound
	}
	return snapshot(reg.entity, enabled), nil
}

// List returns the state of every registered select in registration order.
func (r *Registry) List() []SelectState {
	r.mu.RLock()
	regs := make([]*registration, 0, len(r.order))
	enabled := make([]bool, 0, len(r.order))
	for _, id := range r.order {
		reg := r.entities[id]
		regs = append(regs, reg)
		enabled = append(enabled, reg.enabled)
	}
	r.mu.RUnlock()

	states := make([]SelectState, len(regs))
	for i, reg := range regs {
		states[i] = snapshot(reg.entity, enabled[i])
	}
	return states
}

// Count returns the number of registered selects and how many are enabled.
func (r *Registry) Count() (total, enabled int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, reg := range r.entities {
		if reg.enabled {
			enabled++
		}
	}
	return len(r.entities), enabled
}

func (r *Registry) deviceRegistrations(deviceID string) []*registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byDevice[deviceID]
	regs := make([]*registration, 0, len(ids))
	for _, id := range ids {
		regs = append(regs, r.entities[id])
	}
	return regs
}

// writeState publishes, notifies listeners, and records history when the
// option changed since the last write.
func (r *Registry) writeState(reg *registration) {
	state := snapshot(reg.entity, true)

	if r.publisher != nil {
		payload, err := json.Marshal(state)
		if err == nil {
			err = r.publisher.Publish(mqtt.Topics{}.CoreEntityState(state.UniqueID), payload, r.stateQoS, true)
		}
		if err != nil {
			r.log().Warn("publishing select state failed", "unique_id", state.UniqueID, "error", err)
		}
	}

	r.listenerMu.RLock()
	listeners := slices.Clone(r.listeners)
	r.listenerMu.RUnlock()
	for _, fn := range listeners {
		fn(state)
	}

	r.mu.Lock()
	changed := state.Option != nil && (reg.lastOption == nil || *reg.lastOption != *state.Option)
	if changed {
		reg.lastOption = state.Option
	}
	r.mu.Unlock()

	if changed && r.history != nil {
		r.history.WriteSelectOption(state.UniqueID, state.DeviceID, state.Key, *state.Option)
	}
}

// clearState removes retained state by publishing an empty payload.
func (r *Registry) clearState(uniqueID string) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(mqtt.Topics{}.CoreEntityState(uniqueID), nil, r.stateQoS, true); err != nil {
		r.log().Warn("clearing select state failed", "unique_id", uniqueID, "error", err)
	}
}
