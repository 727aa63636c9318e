package scene

// MeshRef identifies a mesh owned by the asset pipeline. The zero value
// means "no visual" and is used for plain container objects.
type MeshRef struct {
	Source string
}

type MaterialRef struct {
	BaseColor [4]uint8
}

// DefaultMaterial is the flat grey applied to turfs that carry no custom
// material of their own.
func DefaultMaterial() MaterialRef {
	return MaterialRef{BaseColor: [4]uint8{204, 204, 204, 255}}
}

type Vec3 struct {
	X, Y, Z float32
}

// Handle is an opaque reference to a backend-owned object. The zero value
// never refers to a live object.
type Handle struct {
	idx uint32
	gen uint32
}

func (h Handle) Valid() bool { return h.gen != 0 }

// Backend owns every realized object and its heavy resources. Callers hold
// only handles: the right to request an update or destruction, never
// ownership of the object itself.
type Backend interface {
	CreateObject(mesh MeshRef, material MaterialRef, pos Vec3, parent Handle) Handle
	UpdateObject(h Handle, mesh MeshRef, material MaterialRef, pos Vec3)
	DestroyObjectRecursive(h Handle)
}
