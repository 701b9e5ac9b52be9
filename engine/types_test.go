package engine

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_String(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
		empty bool
	}{
		{"empty", Empty, "", true},
		{"blank text", Text(""), "", true},
		{"text", Text("North"), "North", false},
		{"whole number", Number(3), "3", false},
		{"fraction", Number(2.5), "2.5", false},
		{"negative", Number(-0.125), "-0.125", false},
		{"large", Number(1234567), "1234567", false},
		{"bool", Bool(true), "true", false},
		{"nan is empty", Number(math.NaN()), "", true},
		{"int via ValueOf", ValueOf(42), "42", false},
		{"nil via ValueOf", ValueOf(nil), "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.String())
			assert.Equal(t, tt.empty, tt.value.IsEmpty())
		})
	}
}

func TestRow_OrderAndOverwrite(t *testing.T) {
	r := NewRow(F("b", 1), F("a", "x"), F("b", 2))

	assert.Equal(t, []string{"b", "a"}, r.Headers())
	assert.Equal(t, "2", r.Get("b").String())
	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("c"))
	assert.Equal(t, Empty, r.Get("c"))
}

func TestRow_JSONRoundTripKeepsOrder(t *testing.T) {
	r := NewRow(F("Zeta", "z"), F("Alpha", 1.5), F("Flag", false), F("Blank", nil))

	out, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"Zeta":"z","Alpha":1.5,"Flag":false,"Blank":null}`, string(out))

	var back Row
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, r.Headers(), back.Headers())
	assert.Equal(t, KindNumber, back.Get("Alpha").Kind())
	assert.True(t, back.Get("Blank").IsEmpty())
}

func TestRow_UnmarshalRejectsNested(t *testing.T) {
	var r Row
	assert.Error(t, json.Unmarshal([]byte(`{"a":{"b":1}}`), &r))
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &r))
}

func TestRow_CloneIsIndependent(t *testing.T) {
	r := NewRow(F("a", 1))
	c := r.Clone()
	c.Set("a", Text("changed"))
	c.Set("b", Text("new"))

	assert.Equal(t, "1", r.Get("a").String())
	assert.Equal(t, []string{"a"}, r.Headers())
}

func TestParseViewMode(t *testing.T) {
	for _, m := range ViewModes {
		got, err := ParseViewMode(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ParseViewMode("scatter")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownViewMode))
	assert.False(t, ModeTable.IsChart())
	assert.True(t, ModeStackedBar.IsChart())
}

func TestVisibilityState_Enabled(t *testing.T) {
	vis := VisibilityState{"on": true, "off": false}
	assert.True(t, vis.Enabled("on"))
	assert.False(t, vis.Enabled("off"))
	assert.True(t, vis.Enabled("unknown"))
	assert.True(t, VisibilityState(nil).Enabled("x"))
}
