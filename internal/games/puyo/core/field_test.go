package core

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFieldBottomAligned(t *testing.T) {
	f := MustParseField(
		"R.....",
		"..B..Y",
	)
	assert.Equal(t, ColorRed, f.Get(P(0, 11)))
	assert.Equal(t, ColorBlue, f.Get(P(2, 12)))
	assert.Equal(t, ColorYellow, f.Get(P(5, 12)))
	assert.Equal(t, 3, f.Count())

	_, err := ParseField("RR")
	assert.Error(t, err)
	_, err = ParseField("RRXRRR")
	assert.Error(t, err)
}

func TestFieldSet(t *testing.T) {
	f := EmptyField()
	g := f.Set(P(1, 5), ColorGreen)

	assert.Equal(t, ColorGreen, g.Get(P(1, 5)))
	assert.True(t, f.IsEmpty(P(1, 5)), "Set must not touch the receiver")

	// Occupied cell is left alone.
	h := g.Set(P(1, 5), ColorRed)
	assert.Equal(t, ColorGreen, h.Get(P(1, 5)))

	// Out of bounds is a no-op.
	assert.Equal(t, g, g.Set(P(-1, 0), ColorRed))
	assert.Equal(t, g, g.Set(P(0, FieldRows), ColorRed))
	assert.Equal(t, ColorNone, g.Get(P(FieldCols, 0)))
}

func TestFieldRemoveIsCopyOnWrite(t *testing.T) {
	f := MustParseField("RRBB..")
	g := f.Remove([]Pos{P(0, 12), P(3, 12), P(9, 9)})

	if diff := cmp.Diff(MustParseField(".RB..."), g); diff != "" {
		t.Errorf("Remove mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, MustParseField("RRBB.."), f)
}

func TestApplyGravity(t *testing.T) {
	tests := []struct {
		name string
		in   Field
		want Field
	}{
		{
			name: "empty",
			in:   EmptyField(),
			want: EmptyField(),
		},
		{
			name: "gap closes without reordering",
			in: MustParseField(
				"R.....",
				"G.....",
				"......",
				"B....Y",
			),
			want: MustParseField(
				"R.....",
				"G.....",
				"B....Y",
			),
		},
		{
			name: "hidden row cell falls",
			in: func() Field {
				var f Field
				f[0][3] = ColorPurple
				return f
			}(),
			want: MustParseField("...P.."),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.ApplyGravity()
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ApplyGravity mismatch (-want +got):\n%s", diff)
			}
			assert.False(t, got.HasFloating())
		})
	}
}

func randomField(r *Rng) Field {
	var f Field
	for y := 0; y < FieldRows; y++ {
		for x := 0; x < FieldCols; x++ {
			if r.NextInt(3) == 0 {
				f[y][x] = r.NextColor()
			}
		}
	}
	return f
}

func TestApplyGravityIdempotent(t *testing.T) {
	r := NewRng(SeedFromInt64(7), nil)
	for i := 0; i < 500; i++ {
		f := randomField(r)
		once := f.ApplyGravity()
		twice := once.ApplyGravity()
		require.Equal(t, once, twice, "field %d:\n%s", i, f)
		require.Equal(t, f.Count(), once.Count())
	}
}

func TestHasFloating(t *testing.T) {
	assert.False(t, EmptyField().HasFloating())
	assert.False(t, MustParseField("R.....", "R.....").HasFloating())
	assert.True(t, MustParseField("R.....", "......").HasFloating())
}

func TestIsGameOver(t *testing.T) {
	tests := []struct {
		pos  Pos
		want bool
	}{
		{P(2, 1), true},
		{P(3, 1), true},
		{P(1, 1), false},
		{P(4, 1), false},
		{P(2, 0), false},
		{P(2, 2), false},
	}
	for _, tt := range tests {
		f := EmptyField().Set(tt.pos, ColorRed)
		if got := f.IsGameOver(); got != tt.want {
			t.Errorf("IsGameOver with cell at %v = %v, want %v", tt.pos, got, tt.want)
		}
	}
}

func TestIsCleared(t *testing.T) {
	assert.True(t, EmptyField().IsCleared())
	var f Field
	f[0][0] = ColorRed
	assert.False(t, f.IsCleared(), "hidden row counts")
}

func TestFieldJSON(t *testing.T) {
	f := MustParseField("RGBYP.")
	data, err := json.Marshal(f)
	require.NoError(t, err)

	var back Field
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, f, back)

	assert.Error(t, json.Unmarshal([]byte(`["......"]`), &back))
}
