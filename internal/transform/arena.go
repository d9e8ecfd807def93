package transform

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	ErrStaleHandle = errors.New("transform: stale or unknown handle")
	ErrCycle       = errors.New("transform: parent would create a cycle")
)

// Handle addresses a transform inside an Arena. The zero Handle is never
// issued and always resolves as stale.
type Handle struct {
	index uint32
	gen   uint32
}

func (h Handle) IsZero() bool { return h.gen == 0 }

func (h Handle) String() string { return fmt.Sprintf("%d:%d", h.index, h.gen) }

type node struct {
	local  Transform
	parent Handle
	gen    uint32
	live   bool
}

// Arena stores transforms by index. Parents are plain handles: a child holds
// no ownership over its parent, and a removed parent simply stops resolving,
// turning its children into roots for world-matrix purposes.
type Arena struct {
	nodes []node
	free  []uint32
}

func NewArena() *Arena {
	return &Arena{}
}

func (a *Arena) Add(t Transform) Handle {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		nd := &a.nodes[idx]
		nd.gen++
		nd.local = t
		nd.parent = Handle{}
		nd.live = true
		return Handle{index: idx, gen: nd.gen}
	}
	a.nodes = append(a.nodes, node{local: t, gen: 1, live: true})
	return Handle{index: uint32(len(a.nodes) - 1), gen: 1}
}

func (a *Arena) lookup(h Handle) (*node, bool) {
	if h.gen == 0 || int(h.index) >= len(a.nodes) {
		return nil, false
	}
	nd := &a.nodes[h.index]
	if !nd.live || nd.gen != h.gen {
		return nil, false
	}
	return nd, true
}

func (a *Arena) Contains(h Handle) bool {
	_, ok := a.lookup(h)
	return ok
}

func (a *Arena) Len() int {
	return len(a.nodes) - len(a.free)
}

func (a *Arena) Remove(h Handle) error {
	nd, ok := a.lookup(h)
	if !ok {
		return ErrStaleHandle
	}
	nd.live = false
	nd.parent = Handle{}
	a.free = append(a.free, h.index)
	return nil
}

func (a *Arena) Get(h Handle) (Transform, error) {
	nd, ok := a.lookup(h)
	if !ok {
		return Transform{}, ErrStaleHandle
	}
	return nd.local, nil
}

func (a *Arena) Set(h Handle, t Transform) error {
	nd, ok := a.lookup(h)
	if !ok {
		return ErrStaleHandle
	}
	nd.local = t
	return nil
}

// SetParent links child under parent without touching the child's local
// values. A zero parent detaches the child.
func (a *Arena) SetParent(child, parent Handle) error {
	nd, ok := a.lookup(child)
	if !ok {
		return ErrStaleHandle
	}
	if parent.IsZero() {
		nd.parent = Handle{}
		return nil
	}
	if !a.Contains(parent) {
		return ErrStaleHandle
	}
	for p := parent; ; {
		if p == child {
			return ErrCycle
		}
		next, ok := a.Parent(p)
		if !ok {
			break
		}
		p = next
	}
	nd.parent = parent
	return nil
}

// Parent reports the live parent of h, if any.
func (a *Arena) Parent(h Handle) (Handle, bool) {
	nd, ok := a.lookup(h)
	if !ok || !a.Contains(nd.parent) {
		return Handle{}, false
	}
	return nd.parent, true
}

func (a *Arena) Children(h Handle) []Handle {
	var out []Handle
	for i := range a.nodes {
		nd := &a.nodes[i]
		if nd.live && nd.parent == h {
			out = append(out, Handle{index: uint32(i), gen: nd.gen})
		}
	}
	return out
}

func (a *Arena) WorldMatrix(h Handle) (mgl64.Mat4, error) {
	nd, ok := a.lookup(h)
	if !ok {
		return mgl64.Ident4(), ErrStaleHandle
	}
	m := nd.local.LocalMatrix()
	for p, ok := a.Parent(h); ok; p, ok = a.Parent(p) {
		m = a.nodes[p.index].local.LocalMatrix().Mul4(m)
	}
	return m, nil
}

// WorldRotation composes the orientation chain from the root down to h.
func (a *Arena) WorldRotation(h Handle) (mgl64.Mat3, error) {
	nd, ok := a.lookup(h)
	if !ok {
		return mgl64.Ident3(), ErrStaleHandle
	}
	r := nd.local.Rotation()
	for p, ok := a.Parent(h); ok; p, ok = a.Parent(p) {
		r = a.nodes[p.index].local.Rotation().Mul3(r)
	}
	return r, nil
}

// ParentRotation is the world rotation of h's parent, or identity for roots.
func (a *Arena) ParentRotation(h Handle) (mgl64.Mat3, error) {
	if !a.Contains(h) {
		return mgl64.Ident3(), ErrStaleHandle
	}
	p, ok := a.Parent(h)
	if !ok {
		return mgl64.Ident3(), nil
	}
	return a.WorldRotation(p)
}

// ParentMatrix is the world matrix of h's parent, or identity for a root.
func (a *Arena) ParentMatrix(h Handle) (mgl64.Mat4, error) {
	if !a.Contains(h) {
		return mgl64.Ident4(), ErrStaleHandle
	}
	p, ok := a.Parent(h)
	if !ok {
		return mgl64.Ident4(), nil
	}
	return a.WorldMatrix(p)
}

func (a *Arena) WorldPosition(h Handle) (mgl64.Vec3, error) {
	m, err := a.WorldMatrix(h)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return m.Col(3).Vec3(), nil
}
