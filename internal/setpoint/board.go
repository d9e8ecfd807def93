package setpoint

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Count is the number of thruster slots on the vehicle.
const Count = 8

// Names lists the slots in index order: (h|v)(f|a)(p|s) for
// horizontal/vertical, fore/aft, port/starboard.
var Names = [Count]string{"hfp", "hfs", "hap", "has", "vfp", "vfs", "vap", "vas"}

// Index resolves a slot name to its index, 4*vertical + 2*aft + starboard.
func Index(name string) (int, bool) {
	if len(name) != 3 {
		return 0, false
	}
	i := 0
	switch name[0] {
	case 'h':
	case 'v':
		i += 4
	default:
		return 0, false
	}
	switch name[1] {
	case 'f':
	case 'a':
		i += 2
	default:
		return 0, false
	}
	switch name[2] {
	case 'p':
	case 's':
		i++
	default:
		return 0, false
	}
	return i, true
}

// Board holds the latest commanded power per thruster in [-1, 1]. Any
// goroutine may write; the simulation reads a snapshot once per tick.
type Board struct {
	slots [Count]atomic.Uint64
	log   zerolog.Logger
}

func NewBoard(log zerolog.Logger) *Board {
	return &Board{log: log.With().Str("component", "setpoint").Logger()}
}

func (b *Board) Len() int { return Count }

// Set stores v for slot i, clamped to [-1, 1]. Out-of-range indices and NaN
// are dropped with a warning.
func (b *Board) Set(i int, v float64) bool {
	if i < 0 || i >= Count {
		b.log.Warn().Int("index", i).Msg("thruster index out of range")
		return false
	}
	if math.IsNaN(v) {
		b.log.Warn().Int("index", i).Msg("NaN thruster power ignored")
		return false
	}
	v = math.Max(-1, math.Min(1, v))
	b.slots[i].Store(math.Float64bits(v))
	return true
}

func (b *Board) SetNamed(name string, v float64) bool {
	i, ok := Index(name)
	if !ok {
		b.log.Warn().Str("thruster", name).Msg("unknown thruster name")
		return false
	}
	return b.Set(i, v)
}

// SetAll writes as many slots as vals provides, reporting how many took.
func (b *Board) SetAll(vals []float64) int {
	if len(vals) > Count {
		b.log.Warn().Int("count", len(vals)).Msg("extra thruster values ignored")
		vals = vals[:Count]
	}
	n := 0
	for i, v := range vals {
		if b.Set(i, v) {
			n++
		}
	}
	return n
}

func (b *Board) Get(i int) (float64, error) {
	if i < 0 || i >= Count {
		return 0, fmt.Errorf("setpoint: index %d out of range [0,%d)", i, Count)
	}
	return math.Float64frombits(b.slots[i].Load()), nil
}

// Snapshot copies every slot into dst.
func (b *Board) Snapshot(dst *[Count]float64) {
	for i := range b.slots {
		dst[i] = math.Float64frombits(b.slots[i].Load())
	}
}

func (b *Board) Reset() {
	for i := range b.slots {
		b.slots[i].Store(0)
	}
}
