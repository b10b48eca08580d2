package platform

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSelect struct {
	id       string
	deviceID string
	desc     EntityDescription
	options  []string

	mu        sync.Mutex
	current   string
	available bool
	selected  []string
	err       error
}

func newFakeSelect(id, deviceID string, enabledByDefault bool) *fakeSelect {
	return &fakeSelect{
		id:       id,
		deviceID: deviceID,
		desc: EntityDescription{
			Key:              "relay_status",
			Name:             "Power on behavior",
			EntityCategory:   EntityCategoryConfig,
			EnabledByDefault: enabledByDefault,
		},
		options:   []string{"power_off", "power_on", "last"},
		current:   "power_on",
		available: true,
	}
}

func (f *fakeSelect) UniqueID() string               { return f.id }
func (f *fakeSelect) DeviceID() string               { return f.deviceID }
func (f *fakeSelect) DeviceCategory() string         { return "kg" }
func (f *fakeSelect) Description() EntityDescription { return f.desc }
func (f *fakeSelect) Options() []string              { return f.options }

func (f *fakeSelect) Available() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.available
}

func (f *fakeSelect) CurrentOption() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.current == "" {
		return "", false
	}
	return f.current, true
}

func (f *fakeSelect) SelectOption(_ context.Context, option string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = append(f.selected, option)
	return f.err
}

func (f *fakeSelect) set(option string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = option
}

type publishedMsg struct {
	topic    string
	payload  []byte
	retained bool
}

type fakePublisher struct {
	mu   sync.Mutex
	msgs []publishedMsg
}

func (p *fakePublisher) Publish(topic string, payload []byte, _ byte, retained bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, publishedMsg{topic: topic, payload: payload, retained: retained})
	return nil
}

func (p *fakePublisher) messages() []publishedMsg {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedMsg(nil), p.msgs...)
}

type historyPoint struct {
	uniqueID, option string
}

type fakeHistory struct {
	mu     sync.Mutex
	points []historyPoint
}

func (h *fakeHistory) WriteSelectOption(uniqueID, _, _, option string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.points = append(h.points, historyPoint{uniqueID: uniqueID, option: option})
}

func (h *fakeHistory) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.points)
}

func newTestRegistry(t *testing.T) (*Registry, *fakePublisher, *fakeHistory) {
	t.Helper()
	pub := &fakePublisher{}
	hist := &fakeHistory{}
	reg := NewRegistry(RegistryOptions{
		Repository: setupTestRepo(t),
		Publisher:  pub,
		History:    hist,
		StateQoS:   1,
	})
	return reg, pub, hist
}

func TestRegistry_AddSelects(t *testing.T) {
	reg, pub, hist := newTestRegistry(t)
	ctx := context.Background()

	a := newFakeSelect("tuya.dev1relay_status", "dev1", true)
	b := newFakeSelect("tuya.dev1light_mode", "dev1", false)
	require.NoError(t, reg.AddSelects(ctx, []Select{a, b}))

	total, enabled := reg.Count()
	assert.Equal(t, 2, total)
	assert.Equal(t, 1, enabled)

	msgs := pub.messages()
	require.Len(t, msgs, 1, "only the enabled select publishes")
	assert.Equal(t, "graylogic/core/entity/tuya.dev1relay_status/state", msgs[0].topic)
	assert.True(t, msgs[0].retained)

	var state SelectState
	require.NoError(t, json.Unmarshal(msgs[0].payload, &state))
	require.NotNil(t, state.Option)
	assert.Equal(t, "power_on", *state.Option)
	assert.Equal(t, 1, hist.count())

	states := reg.List()
	require.Len(t, states, 2)
	assert.Equal(t, a.id, states[0].UniqueID)
	assert.False(t, states[1].Enabled)
}

func TestRegistry_AddSelects_EmptyBatch(t *testing.T) {
	reg, pub, _ := newTestRegistry(t)

	require.NoError(t, reg.AddSelects(context.Background(), nil))

	total, _ := reg.Count()
	assert.Zero(t, total)
	assert.Empty(t, pub.messages())
}

func TestRegistry_AddSelects_SkipsDuplicates(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx := context.Background()

	first := newFakeSelect("tuya.dev1relay_status", "dev1", true)
	require.NoError(t, reg.AddSelects(ctx, []Select{first}))
	require.NoError(t, reg.AddSelects(ctx, []Select{newFakeSelect("tuya.dev1relay_status", "dev1", true)}))

	total, _ := reg.Count()
	assert.Equal(t, 1, total)
	first.set("last")
	state, err := reg.Snapshot("tuya.dev1relay_status")
	require.NoError(t, err)
	require.NotNil(t, state.Option)
	assert.Equal(t, "last", *state.Option, "the first entity stays registered")
}

func TestRegistry_StoredEnabledFlagWins(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	rec := testRecord("tuya.dev1relay_status", "dev1")
	_, err := repo.Upsert(ctx, rec)
	require.NoError(t, err)
	require.NoError(t, repo.SetEnabled(ctx, rec.UniqueID, false))

	reg := NewRegistry(RegistryOptions{Repository: repo})
	require.NoError(t, reg.AddSelects(ctx, []Select{newFakeSelect(rec.UniqueID, "dev1", true)}))

	state, err := reg.Snapshot(rec.UniqueID)
	require.NoError(t, err)
	assert.False(t, state.Enabled)
}

func TestRegistry_SelectOption(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx := context.Background()

	enabled := newFakeSelect("tuya.dev1relay_status", "dev1", true)
	disabled := newFakeSelect("tuya.dev1light_mode", "dev1", false)
	require.NoError(t, reg.AddSelects(ctx, []Select{enabled, disabled}))

	tests := []struct {
		name    string
		id      string
		option  string
		prepare func()
		wantErr error
	}{
		{name: "unknown entity", id: "missing", option: "last", wantErr: ErrEntityNotFound},
		{name: "disabled entity", id: disabled.id, option: "last", wantErr: ErrEntityDisabled},
		{name: "option not offered", id: enabled.id, option: "sideways", wantErr: ErrInvalidOption},
		{
			name:    "device offline",
			id:      enabled.id,
			option:  "last",
			prepare: func() { enabled.available = false },
			wantErr: ErrEntityUnavailable,
		},
		{
			name:    "delegates to entity",
			id:      enabled.id,
			option:  "last",
			prepare: func() { enabled.available = true },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepare != nil {
				tt.prepare()
			}
			err := reg.SelectOption(ctx, tt.id, tt.option)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}

	assert.Equal(t, []string{"last"}, enabled.selected)
	assert.Empty(t, disabled.selected)
}

func TestRegistry_SelectOption_PassesEntityErrorThrough(t *testing.T) {
	reg, _, _ := newTestRegistry(t)
	ctx := context.Background()

	boom := errors.New("publish failed")
	s := newFakeSelect("tuya.dev1relay_status", "dev1", true)
	s.err = boom
	require.NoError(t, reg.AddSelects(ctx, []Select{s}))

	assert.Same(t, boom, reg.SelectOption(ctx, s.id, "last"))
}

func TestRegistry_RefreshDevice(t *testing.T) {
	reg, pub, hist := newTestRegistry(t)
	ctx := context.Background()

	s := newFakeSelect("tuya.dev1relay_status", "dev1", true)
	other := newFakeSelect("tuya.dev2relay_status", "dev2", true)
	require.NoError(t, reg.AddSelects(ctx, []Select{s, other}))

	var seen []SelectState
	reg.AddStateListener(func(state SelectState) { seen = append(seen, state) })

	reg.RefreshDevice(ctx, "dev1")
	assert.Len(t, pub.messages(), 3)
	require.Len(t, seen, 1)
	assert.Equal(t, s.id, seen[0].UniqueID)
	assert.Equal(t, 2, hist.count(), "unchanged option is not recorded again")

	s.set("last")
	reg.RefreshDevice(ctx, "dev1")
	assert.Equal(t, 3, hist.count())

	s.set("")
	reg.RefreshDevice(ctx, "dev1")
	require.Len(t, seen, 3)
	assert.Nil(t, seen[2].Option)
	assert.Equal(t, 3, hist.count())
}

func TestRegistry_SetEnabled(t *testing.T) {
	reg, pub, _ := newTestRegistry(t)
	ctx := context.Background()

	s := newFakeSelect("tuya.dev1light_mode", "dev1", false)
	require.NoError(t, reg.AddSelects(ctx, []Select{s}))
	assert.Empty(t, pub.messages())

	require.NoError(t, reg.SetEnabled(ctx, s.id, true))
	_, enabled := reg.Count()
	assert.Equal(t, 1, enabled)
	require.Len(t, pub.messages(), 1)

	require.NoError(t, reg.SetEnabled(ctx, s.id, false))
	msgs := pub.messages()
	require.Len(t, msgs, 2)
	assert.Empty(t, msgs[1].payload, "disabling clears retained state")

	assert.ErrorIs(t, reg.SetEnabled(ctx, "missing", true), ErrEntityNotFound)
}

func TestRegistry_RemoveDevice(t *testing.T) {
	reg, pub, _ := newTestRegistry(t)
	ctx := context.Background()

	require.NoError(t, reg.AddSelects(ctx, []Select{
		newFakeSelect("tuya.dev1relay_status", "dev1", true),
		newFakeSelect("tuya.dev1light_mode", "dev1", true),
		newFakeSelect("tuya.dev2relay_status", "dev2", true),
	}))

	require.NoError(t, reg.RemoveDevice(ctx, "dev1"))

	total, _ := reg.Count()
	assert.Equal(t, 1, total)
	_, err := reg.Snapshot("tuya.dev1relay_status")
	assert.ErrorIs(t, err, ErrEntityNotFound)

	states := reg.List()
	require.Len(t, states, 1)
	assert.Equal(t, "tuya.dev2relay_status", states[0].UniqueID)

	msgs := pub.messages()
	assert.Empty(t, msgs[len(msgs)-1].payload)

	_, err = reg.Snapshot("tuya.dev1light_mode")
	assert.ErrorIs(t, err, ErrEntityNotFound)

	require.NoError(t, reg.RemoveDevice(ctx, "unknown"))
}

// failingRepo fails Upsert for one unique id and delegates everything else.
type failingRepo struct {
	*SQLiteRepository
	failID string
}

func (f *failingRepo) Upsert(ctx context.Context, rec SelectRecord) (SelectRecord, error) {
	if rec.UniqueID == f.failID {
		return SelectRecord{}, errors.New("disk I/O error")
	}
	return f.SQLiteRepository.Upsert(ctx, rec)
}

func TestRegistry_AddSelects_PersistFailureKeepsRestOfBatch(t *testing.T) {
	pub := &fakePublisher{}
	reg := NewRegistry(RegistryOptions{
		Repository: &failingRepo{SQLiteRepository: setupTestRepo(t), failID: "b"},
		Publisher:  pub,
	})

	err := reg.AddSelects(context.Background(), []Select{
		newFakeSelect("a", "d1", true),
		newFakeSelect("b", "d1", true),
		newFakeSelect("c", "d2", true),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "persisting select b")

	total, enabled := reg.Count()
	assert.Equal(t, 2, total)
	assert.Equal(t, 2, enabled)

	_, err = reg.Snapshot("b")
	assert.ErrorIs(t, err, ErrEntityNotFound)

	var topics []string
	for _, msg := range pub.messages() {
		topics = append(topics, msg.topic)
	}
	assert.Equal(t, []string{
		"graylogic/core/entity/a/state",
		"graylogic/core/entity/c/state",
	}, topics)
}

func TestRegistry_Unregistered(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, testRecord("tuya.dev9relay_status", "dev9"))
	require.NoError(t, err)

	reg := NewRegistry(RegistryOptions{Repository: repo})
	require.NoError(t, reg.AddSelects(ctx, []Select{newFakeSelect("tuya.dev1relay_status", "dev1", true)}))

	records, err := reg.Unregistered(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "tuya.dev9relay_status", records[0].UniqueID)
	assert.Equal(t, "dev9", records[0].DeviceID)
}

func TestRegistry_Unregistered_NoRepository(t *testing.T) {
	reg := NewRegistry(RegistryOptions{})

	records, err := reg.Unregistered(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
}

func TestRegistry_SetEnabled_StoredOnly(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, testRecord("tuya.dev9relay_status", "dev9"))
	require.NoError(t, err)

	pub := &fakePublisher{}
	reg := NewRegistry(RegistryOptions{Repository: repo, Publisher: pub})

	require.NoError(t, reg.SetEnabled(ctx, "tuya.dev9relay_status", false))
	assert.Empty(t, pub.messages())

	stored, err := repo.Get(ctx, "tuya.dev9relay_status")
	require.NoError(t, err)
	assert.False(t, stored.Enabled)

	// The stored flag applies once the device comes back.
	require.NoError(t, reg.AddSelects(ctx, []Select{newFakeSelect("tuya.dev9relay_status", "dev9", true)}))
	_, enabled := reg.Count()
	assert.Zero(t, enabled)

	assert.ErrorIs(t, reg.SetEnabled(ctx, "tuya.missing", true), ErrEntityNotFound)
}

func TestRegistry_SetEnabled_UnknownWithoutRepository(t *testing.T) {
	reg := NewRegistry(RegistryOptions{})

	assert.ErrorIs(t, reg.SetEnabled(context.Background(), "tuya.missing", true), ErrEntityNotFound)
}
