package scene

// Graph is an arena-backed scene graph implementing Backend. Slots are
// reused through a free list; handles carry a generation so references to
// destroyed objects go stale instead of aliasing whatever object reuses
// the slot.
type Graph struct {
	nodes []node
	free  []uint32
	live  int

	created   uint64
	updated   uint64
	destroyed uint64
}

type node struct {
	mesh     MeshRef
	material MaterialRef
	pos      Vec3
	parent   Handle
	children []Handle
	gen      uint32
	alive    bool
}

func NewGraph() *Graph {
	return &Graph{}
}

func (g *Graph) CreateObject(mesh MeshRef, material MaterialRef, pos Vec3, parent Handle) Handle {
	var idx uint32
	if n := len(g.free); n > 0 {
		idx = g.free[n-1]
		g.free = g.free[:n-1]
	} else {
		g.nodes = append(g.nodes, node{})
		idx = uint32(len(g.nodes) - 1)
	}
	nd := &g.nodes[idx]
	gen := nd.gen + 1
	*nd = node{
		mesh:     mesh,
		material: material,
		pos:      pos,
		parent:   parent,
		gen:      gen,
		alive:    true,
	}
	h := Handle{idx: idx, gen: gen}
	if p := g.lookup(parent); p != nil {
		p.children = append(p.children, h)
	}
	g.live++
	g.created++
	return h
}

// UpdateObject replaces the object's own visual payload in place. The
// handle stays valid and attached children are untouched.
func (g *Graph) UpdateObject(h Handle, mesh MeshRef, material MaterialRef, pos Vec3) {
	nd := g.lookup(h)
	if nd == nil {
		return
	}
	nd.mesh = mesh
	nd.material = material
	nd.pos = pos
	g.updated++
}

// DestroyObjectRecursive destroys the object and everything attached below
// it. Stale handles are a no-op, so double-destroy is safe.
func (g *Graph) DestroyObjectRecursive(h Handle) {
	nd := g.lookup(h)
	if nd == nil {
		return
	}
	if p := g.lookup(nd.parent); p != nil {
		p.children = removeHandle(p.children, h)
	}
	g.destroyRec(h)
}

func (g *Graph) destroyRec(h Handle) {
	nd := g.lookup(h)
	if nd == nil {
		return
	}
	children := nd.children
	nd.children = nil
	for _, c := range children {
		g.destroyRec(c)
	}
	nd.alive = false
	g.free = append(g.free, h.idx)
	g.live--
	g.destroyed++
}

func (g *Graph) lookup(h Handle) *node {
	if !h.Valid() || int(h.idx) >= len(g.nodes) {
		return nil
	}
	nd := &g.nodes[h.idx]
	if !nd.alive || nd.gen != h.gen {
		return nil
	}
	return nd
}

func (g *Graph) Alive(h Handle) bool {
	return g.lookup(h) != nil
}

func (g *Graph) Len() int {
	return g.live
}

type ObjectInfo struct {
	Mesh     MeshRef
	Material MaterialRef
	Pos      Vec3
	Parent   Handle
	Children int
}

func (g *Graph) Object(h Handle) (ObjectInfo, bool) {
	nd := g.lookup(h)
	if nd == nil {
		return ObjectInfo{}, false
	}
	return ObjectInfo{
		Mesh:     nd.mesh,
		Material: nd.material,
		Pos:      nd.pos,
		Parent:   nd.parent,
		Children: len(nd.children),
	}, true
}

type Stats struct {
	Created   uint64
	Updated   uint64
	Destroyed uint64
	Live      int
}

func (g *Graph) Stats() Stats {
	return Stats{
		Created:   g.created,
		Updated:   g.updated,
		Destroyed: g.destroyed,
		Live:      g.live,
	}
}

func removeHandle(hs []Handle, h Handle) []Handle {
	for i := range hs {
		if hs[i] == h {
			hs[i] = hs[len(hs)-1]
			return hs[:len(hs)-1]
		}
	}
	return hs
}
