package container

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/km-arc/go-locator/framework/registry"
)

// Container owns one Registry and a position in the scope hierarchy
// (node → scene → global). Lookups that miss locally continue in the next
// Container outward.
type Container struct {
	id       uint64
	name     string
	loc      *Locator
	node     NodeID
	services *registry.Registry
	boot     *Bootstrapper

	mu        sync.RWMutex
	scope     Scope
	scene     SceneID
	destroyed bool
}

func (c *Container) ID() uint64        { return c.id }
func (c *Container) Name() string      { return c.name }
func (c *Container) Node() NodeID      { return c.node }
func (c *Container) Locator() *Locator { return c.loc }

// Bootstrapper returns the bootstrap source of c, nil for plain node
// Containers.
func (c *Container) Bootstrapper() *Bootstrapper { return c.boot }

// Scope returns the scope c is bound to.
func (c *Container) Scope() Scope {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scope
}

// Scene returns the scene c is bound for; empty unless Scope is ScopeScene.
func (c *Container) Scene() SceneID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.scene
}

// IsGlobal reports whether c currently holds the Global slot.
func (c *Container) IsGlobal() bool { return c.loc.dir.IsGlobal(c) }

// Destroyed reports whether the destruction hook has run for c.
func (c *Container) Destroyed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.destroyed
}

// Types lists the types registered directly on c.
func (c *Container) Types() []reflect.Type { return c.services.Types() }

// Services lists the instances registered directly on c.
func (c *Container) Services() []any { return c.services.Services() }

func (c *Container) String() string {
	return fmt.Sprintf("%s#%d[%s]", c.name, c.id, c.Scope())
}

func (c *Container) setScope(s Scope, scene SceneID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scope = s
	c.scene = scene
}

// ── Registration ──────────────────────────────────────────────────────────────

// Register stores instance under t and returns c for chaining.
//
// A duplicate or mismatched registration is reported on the Locator's logger
// and leaves the registry unchanged; use TryRegister to receive the error.
//
//	loc.For(node).
//	    Register(reflect.TypeFor[Logger](), consoleLogger{}).
//	    Register(reflect.TypeFor[*Mixer](), mixer)
func (c *Container) Register(t reflect.Type, instance any) *Container {
	if err := c.TryRegister(t, instance); err != nil {
		c.loc.log.Error().
			Err(err).
			Str("container", c.name).
			Str("type", registry.TypeName(t)).
			Msg("service registration rejected")
	}
	return c
}

// TryRegister stores instance under t and returns the registry error, if
// any. An *registry.Error wrapping ErrDuplicateRegistration means the first
// instance is still in place.
func (c *Container) TryRegister(t reflect.Type, instance any) error {
	if err := c.services.Register(t, instance); err != nil {
		return err
	}
	c.loc.log.Debug().
		Str("container", c.name).
		Str("type", registry.TypeName(t)).
		Msg("registered service")
	return nil
}

// Register stores instance on c under T and returns c for chaining.
//
//	container.Register[Logger](loc.Global(), consoleLogger{})
func Register[T any](c *Container, instance T) *Container {
	return c.Register(registry.TypeOf[T](), instance)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Lookup resolves t starting at c and walking outward.
func (c *Container) Lookup(t reflect.Type) (any, bool) {
	v, _, ok := c.lookup(t)
	return v, ok
}

// Owner returns the Container that satisfies a lookup of t from c.
func (c *Container) Owner(t reflect.Type) (*Container, bool) {
	_, owner, ok := c.lookup(t)
	return owner, ok
}

// lookup walks c → next → ... and stops at the first Container holding t.
// A Container is visited at most once. When the next step would revisit one,
// as with a scene Container nested below another node Container, the walk
// continues at Global.
func (c *Container) lookup(t reflect.Type) (any, *Container, bool) {
	visited := make(map[*Container]struct{})
	for cur := c; cur != nil; {
		visited[cur] = struct{}{}

		if v, ok := cur.services.TryGet(t); ok {
			return v, cur, true
		}
		next, ok := cur.next()
		if !ok {
			return nil, nil, false
		}
		if _, seen := visited[next]; seen {
			if next = c.loc.Global(); next == nil {
				return nil, nil, false
			}
			if _, seen := visited[next]; seen {
				return nil, nil, false
			}
		}
		cur = next
	}
	return nil, nil, false
}

// next returns the Container one step outward from c: the nearest Container
// above c's node, else the scene Container, else Global. The Global
// Container has no next.
func (c *Container) next() (*Container, bool) {
	l := c.loc
	if l.dir.IsGlobal(c) {
		return nil, false
	}

	if parent, ok := l.host.Parent(c.node); ok {
		if up, ok := l.nearest(parent); ok {
			return up, true
		}
	}

	var outward *Container
	if scene, ok := l.host.SceneOf(c.node); ok {
		outward = l.forScene(scene, c)
	} else {
		outward = l.Global()
	}
	return outward, outward != nil
}

// TryGet resolves T from c outward.
func TryGet[T any](c *Container) (T, bool) {
	v, ok := c.Lookup(registry.TypeOf[T]())
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// Get resolves T from c outward. When no Container up to Global holds T the
// error wraps registry.ErrNotRegistered and names T.
func Get[T any](c *Container) (T, error) {
	v, ok := TryGet[T](c)
	if !ok {
		return v, registry.NotRegistered(registry.TypeOf[T]())
	}
	return v, nil
}

// MustGet is like Get but panics when T cannot be resolved.
//
//	audio := container.MustGet[*Mixer](loc.For(node))
func MustGet[T any](c *Container) T {
	v, err := Get[T](c)
	if err != nil {
		panic(err)
	}
	return v
}
