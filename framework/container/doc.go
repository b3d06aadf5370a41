// Package container provides a hierarchical, type-keyed service locator.
//
// # Overview
//
// Services are registered on Containers at one of three scopes:
//
//   - Global: a single process-wide Container
//   - Scene: one Container per scene (unit of work)
//   - Node: a Container attached to a node of the host's ownership tree
//
// A lookup starts at the nearest Container and walks outward, node ancestors
// first, then the scene Container, then Global, and stops at the first match.
// A node or scene can therefore shadow a global implementation.
//
// The ownership tree belongs to the host (see the Host interface and the
// reference implementation in framework/tree).
//
// # Lifecycle
//
//  1. Create: loc := container.NewLocator(host)
//  2. Reset at process/test start: loc.Reset()
//  3. Attach sources: loc.Attach(root, container.BindScene)
//  4. Resolve: container.Get[Logger](loc.For(node))
//  5. Host reports node destruction: loc.NodeDestroyed(node)
//
// # Registering
//
//	container.Register[Logger](loc.Global(), consoleLogger{})
//
//	loc.ForSceneOf(node).
//	    Register(reflect.TypeFor[Logger](), fileLogger{}).
//	    Register(reflect.TypeFor[*Mixer](), mixer)
//
// A second registration of the same type keeps the first instance and is
// reported on the Locator's logger. TryRegister returns the condition.
//
// # Resolving
//
//	// Negative result instead of failure
//	log, ok := container.TryGet[Logger](loc.For(node))
//
//	// Error naming the type when nothing up to Global has it
//	mixer, err := container.Get[*Mixer](loc.For(node))
//
//	// Panics instead
//	mixer := container.MustGet[*Mixer](loc.For(node))
//
// # Bootstrap
//
// Global and Scene Containers bind lazily. Whichever comes first, the host's
// NodeCreated notification or a resolution that needs the scope, runs the
// bind; later triggers are no-ops. A second candidate for an already bound
// scope is refused, reported, and stays ScopeUnbound.
//
// Global provisions a Container on a fresh root node when neither a bound
// Global nor a pending Global source exists (see WithAutoProvision).
//
// # Service Providers
//
//	type AudioProvider struct{ container.BaseProvider }
//
//	func (p *AudioProvider) Register(c *container.Container) {
//	    container.Register[*Mixer](c, NewMixer())
//	}
//
//	loc.Attach(root, container.BindScene, container.WithProviders(&AudioProvider{}))
package container
