package setpoint

import (
	"math"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	for want, name := range Names {
		got, ok := Index(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	for _, bad := range []string{"", "hf", "xfp", "hxp", "hfx", "hfps"} {
		_, ok := Index(bad)
		assert.False(t, ok, bad)
	}
}

func TestBoardSet(t *testing.T) {
	tests := []struct {
		name  string
		index int
		in    float64
		ok    bool
		want  float64
	}{
		{"in range", 2, 0.25, true, 0.25},
		{"clamp high", 0, 3, true, 1},
		{"clamp low", 7, -2, true, -1},
		{"infinity clamps", 1, math.Inf(1), true, 1},
		{"negative index", -1, 0.5, false, 0},
		{"index too large", Count, 0.5, false, 0},
		{"NaN", 3, math.NaN(), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBoard(zerolog.Nop())
			assert.Equal(t, tt.ok, b.Set(tt.index, tt.in))
			if tt.ok {
				got, err := b.Get(tt.index)
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestBoardNamedAndSnapshot(t *testing.T) {
	b := NewBoard(zerolog.Nop())
	assert.True(t, b.SetNamed("vas", 0.5))
	assert.False(t, b.SetNamed("front", 0.5))
	assert.Equal(t, 2, b.SetAll([]float64{0.1, math.NaN(), 0.3}))

	var snap [Count]float64
	b.Snapshot(&snap)
	assert.Equal(t, [Count]float64{0.1, 0, 0.3, 0, 0, 0, 0, 0.5}, snap)

	b.Reset()
	b.Snapshot(&snap)
	assert.Equal(t, [Count]float64{}, snap)

	_, err := b.Get(Count)
	assert.Error(t, err)
}

func TestBoardConcurrentWriters(t *testing.T) {
	b := NewBoard(zerolog.Nop())
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				b.Set(i%Count, float64(w)/4)
			}
		}(w)
	}

	var snap [Count]float64
	for i := 0; i < 100; i++ {
		b.Snapshot(&snap)
		for _, v := range snap {
			assert.True(t, v >= 0 && v <= 1)
		}
	}
	wg.Wait()
}
