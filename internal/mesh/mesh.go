package mesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var ErrEmpty = errors.New("mesh: no triangles")

// Geometry is an indexed triangle list in model space.
type Geometry struct {
	Vertices []mgl64.Vec3
	Indices  []uint32
}

// Box returns a closed box centred on the origin with 8 shared corners and
// 12 triangles.
func Box(halfExtents mgl64.Vec3) Geometry {
	hx, hy, hz := halfExtents[0], halfExtents[1], halfExtents[2]
	v := []mgl64.Vec3{
		{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {-hx, hy, -hz},
		{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz},
	}
	idx := []uint32{
		0, 2, 1, 0, 3, 2, // -z
		4, 5, 6, 4, 6, 7, // +z
		0, 1, 5, 0, 5, 4, // -y
		3, 6, 2, 3, 7, 6, // +y
		0, 4, 7, 0, 7, 3, // -x
		1, 2, 6, 1, 6, 5, // +x
	}
	return Geometry{Vertices: v, Indices: idx}
}

func (g Geometry) TriangleCount() int { return len(g.Indices) / 3 }

func (g Geometry) Validate() error {
	if len(g.Indices) == 0 {
		return ErrEmpty
	}
	if len(g.Indices)%3 != 0 {
		return fmt.Errorf("mesh: index count %d is not a multiple of 3", len(g.Indices))
	}
	for i, ix := range g.Indices {
		if int(ix) >= len(g.Vertices) {
			return fmt.Errorf("mesh: index %d at position %d out of range (%d vertices)", ix, i, len(g.Vertices))
		}
	}
	return nil
}

// Bounds returns the min and max corners of the referenced vertices.
func (g Geometry) Bounds() (lo, hi mgl64.Vec3) {
	lo = mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, ix := range g.Indices {
		if int(ix) >= len(g.Vertices) {
			continue
		}
		p := g.Vertices[ix]
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	return lo, hi
}
