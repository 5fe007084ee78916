package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/typesmith/pkg/types"
)

func TestCoerce(t *testing.T) {
	tests := []struct {
		name    string
		kind    string
		in      any
		want    any
		wantErr bool
	}{
		{"bool for boolean", types.KindBoolean, true, true, false},
		{"one for boolean", types.KindBoolean, "1", true, false},
		{"zero for boolean", types.KindBoolean, "0", false, false},
		{"word for boolean", types.KindBoolean, "false", false, false},
		{"garbage for boolean", types.KindBoolean, "maybe", nil, true},
		{"string for text", types.KindText, "12", "12", false},
		{"int for text", types.KindText, 12, nil, true},
		{"string for choice", types.KindChoice, "food", "food", false},
		{"bool for repeatable", types.KindRepeatable, true, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Coerce(tt.kind, tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHandleSetValueIgnoresWrongType(t *testing.T) {
	h := &Handle{Key: "k", Kind: types.KindText, Tag: "nominal", value: "5"}
	h.SetValue(7)
	assert.Equal(t, "5", h.Value())
	h.SetValue("7")
	assert.Equal(t, "7", h.Value())
}

func TestHandleText(t *testing.T) {
	b := &Handle{Kind: types.KindBoolean, Flag: "crafted", value: true}
	assert.Equal(t, "1", b.Text())
	b.SetValue(false)
	assert.Equal(t, "0", b.Text())
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Name", Label(&Handle{Key: KeyName, Kind: types.KindText}))
	assert.Equal(t, "crafted", Label(&Handle{Kind: types.KindBoolean, Tag: types.TagFlags, Flag: "crafted"}))
	assert.Equal(t, "Lifetime", Label(&Handle{Kind: types.KindText, Tag: "lifetime"}))
	assert.Equal(t, "Usage", Label(&Handle{Kind: types.KindRepeatable, Tag: types.TagUsage}))
}
