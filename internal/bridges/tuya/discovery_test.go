package tuya

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nerrad567/gray-logic-tuya/internal/platform"
	iot "github.com/nerrad567/gray-logic-tuya/internal/tuya"
)

const (
	codeA iot.DPCode = "code_a"
	codeB iot.DPCode = "code_b"
	codeC iot.DPCode = "code_c"
)

func testRegistry() *SelectRegistry {
	return &SelectRegistry{
		selects: map[string][]SelectDescription{
			"abc": {
				{Key: codeA, Name: "A"},
				{Key: codeB, Name: "B"},
				{Key: codeC, Name: "C"},
			},
		},
		aliases: map[string]string{},
	}
}

func newTestDiscoverer(m *fakeManager, h *fakeHost, r *SelectRegistry) *Discoverer {
	return NewDiscoverer(DiscovererOptions{Devices: m, Sender: m, Registry: r, Registrar: h})
}

func uniqueIDs(batch []platform.Select) []string {
	ids := make([]string, len(batch))
	for i, s := range batch {
		ids[i] = s.UniqueID()
	}
	return ids
}

func TestDiscoverSelects_FiltersByLiveStatus(t *testing.T) {
	m := newFakeManager(iot.DeviceInfo{
		ID:       "dev1",
		Category: "abc",
		Status:   []iot.StatusEntry{status(codeC, "x"), status(codeA, "y")},
	})
	h := &fakeHost{}

	require.NoError(t, newTestDiscoverer(m, h, testRegistry()).DiscoverSelects(context.Background(), []string{"dev1"}))

	batches := h.allBatches()
	require.Len(t, batches, 1)
	assert.Equal(t, []string{"tuya.dev1code_a", "tuya.dev1code_c"}, uniqueIDs(batches[0]))
}

func TestDiscoverSelects_UnknownCategory(t *testing.T) {
	m := newFakeManager(iot.DeviceInfo{
		ID:       "dev1",
		Category: "zzz",
		Status:   []iot.StatusEntry{status(codeA, "x")},
	})
	h := &fakeHost{}

	require.NoError(t, newTestDiscoverer(m, h, testRegistry()).DiscoverSelects(context.Background(), []string{"dev1"}))

	batches := h.allBatches()
	require.Len(t, batches, 1, "an empty batch is still handed over")
	assert.Empty(t, batches[0])
}

func TestDiscoverSelects_SkipsMissingDevice(t *testing.T) {
	m := newFakeManager(iot.DeviceInfo{
		ID:       "dev2",
		Category: "abc",
		Status:   []iot.StatusEntry{status(codeB, "x")},
	})
	h := &fakeHost{}

	err := newTestDiscoverer(m, h, testRegistry()).DiscoverSelects(context.Background(), []string{"ghost", "dev2"})
	require.NoError(t, err)

	batches := h.allBatches()
	require.Len(t, batches, 1)
	assert.Equal(t, []string{"tuya.dev2code_b"}, uniqueIDs(batches[0]))
}

func TestDiscoverSelects_PreservesDeviceOrder(t *testing.T) {
	m := newFakeManager(
		iot.DeviceInfo{ID: "dev1", Category: "abc", Status: []iot.StatusEntry{status(codeA, "x"), status(codeB, "x")}},
		iot.DeviceInfo{ID: "dev2", Category: "abc", Status: []iot.StatusEntry{status(codeA, "x")}},
	)
	h := &fakeHost{}

	require.NoError(t, newTestDiscoverer(m, h, testRegistry()).DiscoverSelects(context.Background(), []string{"dev2", "dev1"}))

	batches := h.allBatches()
	require.Len(t, batches, 1)
	assert.Equal(t, []string{"tuya.dev2code_a", "tuya.dev1code_a", "tuya.dev1code_b"}, uniqueIDs(batches[0]))
}

func TestDiscoverSelects_RealTable(t *testing.T) {
	m := newFakeManager(iot.DeviceInfo{
		ID:       "sock1",
		Category: "cz",
		Functions: []iot.DeviceFunction{
			enumFunction(iot.DPCodeRelayStatus, `{"range":["power_off","power_on","last"]}`),
		},
		Status: []iot.StatusEntry{
			status("switch_1", true),
			status(iot.DPCodeRelayStatus, "last"),
		},
	})
	h := &fakeHost{}

	require.NoError(t, newTestDiscoverer(m, h, NewSelectRegistry()).DiscoverSelects(context.Background(), []string{"sock1"}))

	batches := h.allBatches()
	require.Len(t, batches, 1)
	require.Len(t, batches[0], 1)

	s := batches[0][0]
	assert.Equal(t, "tuya.sock1relay_status", s.UniqueID())
	assert.Equal(t, "Power on behavior", s.Description().Name)
	assert.Equal(t, []string{"power_off", "power_on", "last"}, s.Options())
	got, ok := s.CurrentOption()
	assert.True(t, ok)
	assert.Equal(t, "last", got)
}

func TestDiscoverSelects_ReturnsRegistrarError(t *testing.T) {
	m := newFakeManager()
	h := &fakeHost{addErr: errors.New("database locked")}

	err := newTestDiscoverer(m, h, testRegistry()).DiscoverSelects(context.Background(), nil)
	assert.Equal(t, h.addErr, err)
}
