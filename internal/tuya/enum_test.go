package tuya

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnumTypeData(t *testing.T) {
	tests := []struct {
		name    string
		values  string
		want    []string
		wantErr bool
	}{
		{name: "range", values: `{"range":["low","mid","high"]}`, want: []string{"low", "mid", "high"}},
		{name: "empty range", values: `{"range":[]}`, want: []string{}},
		{name: "missing range", values: `{"min":1}`, wantErr: true},
		{name: "not json", values: `low,mid`, wantErr: true},
		{name: "non-string values", values: `{"range":[1,2]}`, wantErr: true},
		{name: "empty string", values: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEnumTypeData(DPCodeMode, tt.values)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTypeData)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, DPCodeMode, got.DPCode)
			assert.Equal(t, tt.want, got.Range)
		})
	}
}

func TestEnumTypeData_Contains(t *testing.T) {
	e := &EnumTypeData{DPCode: DPCodeLevel, Range: []string{"low", "mid", "high"}}

	assert.True(t, e.Contains("mid"))
	assert.False(t, e.Contains("turbo"))
	assert.False(t, e.Contains(""))
}
