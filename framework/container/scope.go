package container

// NodeID identifies a node in the host's ownership tree. The zero value is
// never a valid node.
type NodeID uint64

// NoNode is the zero NodeID.
const NoNode NodeID = 0

// SceneID identifies one scene (unit of work) of the host.
type SceneID string

// Scope is the breadth at which a Container's registrations are visible.
type Scope int

const (
	// ScopeUnbound is a node-local Container, or a bootstrap source that has
	// not bound yet (or lost its claim).
	ScopeUnbound Scope = iota
	// ScopeGlobal is the single process-wide Container.
	ScopeGlobal
	// ScopeScene is the Container registered for one scene.
	ScopeScene
)

func (s Scope) String() string {
	switch s {
	case ScopeUnbound:
		return "unbound"
	case ScopeGlobal:
		return "global"
	case ScopeScene:
		return "scene"
	default:
		return "unknown"
	}
}

// BindKind selects what a Container binds as when it is bootstrapped.
type BindKind int

const (
	// BindNone attaches a plain node Container with no bootstrap source.
	BindNone BindKind = iota
	// BindGlobal claims the Global slot on bootstrap.
	BindGlobal
	// BindScene claims the scene entry of the Container's node on bootstrap.
	BindScene
)

func (k BindKind) String() string {
	switch k {
	case BindNone:
		return "none"
	case BindGlobal:
		return "global"
	case BindScene:
		return "scene"
	default:
		return "unknown"
	}
}
