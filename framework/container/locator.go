package container

import (
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-locator/framework/registry"
)

// DefaultGlobalName names the Container and node created when Global has to
// provision one.
const DefaultGlobalName = "ServiceLocator [Global]"

// Locator resolves Containers over a Host tree and owns the Directory of
// bound Global and scene Containers.
type Locator struct {
	host          Host
	dir           *Directory
	log           zerolog.Logger
	autoProvision bool
	globalName    string
	persistGlobal bool
	nextID        atomic.Uint64
}

// Option configures a Locator.
type Option func(*Locator)

// WithLogger sets the diagnostics logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(l *Locator) { l.log = log.With().Str("component", "locator").Logger() }
}

// WithDirectory shares an existing Directory instead of creating one.
func WithDirectory(d *Directory) Option {
	return func(l *Locator) { l.dir = d }
}

// WithAutoProvision controls whether Global creates a Container when none is
// bound and no Global bootstrap source exists. Enabled by default.
func WithAutoProvision(enabled bool) Option {
	return func(l *Locator) { l.autoProvision = enabled }
}

// WithGlobalName sets the name of the auto-provisioned Global Container.
func WithGlobalName(name string) Option {
	return func(l *Locator) {
		if name != "" {
			l.globalName = name
		}
	}
}

// WithPersistGlobal sets the default for moving Global Containers into the
// host's persistent scene when they bind. Enabled by default.
func WithPersistGlobal(persist bool) Option {
	return func(l *Locator) { l.persistGlobal = persist }
}

// NewLocator creates a Locator over host.
func NewLocator(host Host, opts ...Option) *Locator {
	l := &Locator{
		host:          host,
		log:           zerolog.Nop(),
		autoProvision: true,
		globalName:    DefaultGlobalName,
		persistGlobal: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.dir == nil {
		l.dir = NewDirectory()
	}
	return l
}

// Directory returns the Locator's table of bound Containers.
func (l *Locator) Directory() *Directory { return l.dir }

// Host returns the tree the Locator walks.
func (l *Locator) Host() Host { return l.host }

// Reset clears the Directory. Containers already attached to nodes keep
// their registrations but no longer hold any scope.
func (l *Locator) Reset() {
	l.dir.Reset()
	l.log.Debug().Msg("directory reset")
}

// ── Attaching ─────────────────────────────────────────────────────────────────

type attachConfig struct {
	name      string
	persist   *bool
	providers []ServiceProvider
}

// AttachOption configures a Container created by Attach.
type AttachOption func(*attachConfig)

// WithName sets the Container's display name.
func WithName(name string) AttachOption {
	return func(cfg *attachConfig) { cfg.name = name }
}

// WithProviders installs providers that run after a successful bind.
// Providers of a BindNone Container never run.
func WithProviders(providers ...ServiceProvider) AttachOption {
	return func(cfg *attachConfig) { cfg.providers = append(cfg.providers, providers...) }
}

// Persist overrides WithPersistGlobal for one BindGlobal Container.
func Persist(persist bool) AttachOption {
	return func(cfg *attachConfig) { cfg.persist = &persist }
}

// Attach creates a Container on node n. With BindGlobal or BindScene the
// Container carries a Bootstrapper that binds it on first demand or when the
// host reports NodeCreated.
//
//	c, err := loc.Attach(root, container.BindScene, container.WithName("level-1"))
func (l *Locator) Attach(n NodeID, kind BindKind, opts ...AttachOption) (*Container, error) {
	cfg := attachConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	id := l.nextID.Add(1)
	if cfg.name == "" {
		cfg.name = defaultName(kind)
	}
	c := &Container{
		id:       id,
		name:     cfg.name,
		loc:      l,
		node:     n,
		services: registry.New(),
	}
	if kind != BindNone {
		persist := l.persistGlobal
		if cfg.persist != nil {
			persist = *cfg.persist
		}
		c.boot = &Bootstrapper{
			kind:      kind,
			container: c,
			persist:   persist,
			providers: cfg.providers,
		}
	}

	if err := l.host.Attach(n, c); err != nil {
		return nil, err
	}
	return c, nil
}

func defaultName(kind BindKind) string {
	switch kind {
	case BindGlobal:
		return DefaultGlobalName
	case BindScene:
		return "ServiceLocator [Scene]"
	default:
		return "ServiceLocator"
	}
}

// ── Lifecycle ─────────────────────────────────────────────────────────────────

// NodeCreated bootstraps the source attached to n, if any.
func (l *Locator) NodeCreated(n NodeID) {
	if c, ok := l.host.ContainerOf(n); ok && c.boot != nil {
		c.boot.BootstrapOnDemand()
	}
}

// NodeDestroyed runs the destruction hook for the Container attached to n.
func (l *Locator) NodeDestroyed(n NodeID) {
	if c, ok := l.host.ContainerOf(n); ok {
		l.Destroy(c)
	}
}

// Destroy releases every scope held by c. The next Global call after the
// Global Container is destroyed provisions a fresh one.
func (l *Locator) Destroy(c *Container) {
	wasGlobal := l.dir.IsGlobal(c)
	l.dir.release(c)

	c.mu.Lock()
	c.destroyed = true
	c.mu.Unlock()

	l.log.Debug().
		Str("container", c.name).
		Bool("global", wasGlobal).
		Msg("container destroyed")
}

// ── Resolver entry points ─────────────────────────────────────────────────────

// Global returns the Global Container. If none is bound it bootstraps the
// first pending Global source in host order, and failing that provisions a
// new root node with a Global Container. It returns nil only when
// provisioning is disabled and no Global exists.
func (l *Locator) Global() *Container {
	if g, ok := l.dir.Global(); ok {
		return g
	}

	for _, n := range l.host.Nodes() {
		c, ok := l.host.ContainerOf(n)
		if !ok || c.boot == nil || c.boot.kind != BindGlobal || c.boot.Bound() {
			continue
		}
		c.boot.BootstrapOnDemand()
		if g, ok := l.dir.Global(); ok {
			return g
		}
	}

	if !l.autoProvision {
		return nil
	}

	node := l.host.SpawnRoot(l.globalName)
	c, err := l.Attach(node, BindGlobal, WithName(l.globalName))
	if err != nil {
		l.log.Error().Err(err).Msg("global container provisioning failed")
		return nil
	}
	l.log.Info().Str("container", c.name).Uint64("node", uint64(node)).Msg("provisioned global container")
	c.boot.BootstrapOnDemand()

	g, _ := l.dir.Global()
	return g
}

// ForSceneOf returns the Container of n's scene, bootstrapping a pending
// scene source among the scene's root nodes, else Global.
func (l *Locator) ForSceneOf(n NodeID) *Container {
	scene, ok := l.host.SceneOf(n)
	if !ok {
		return l.Global()
	}
	return l.forScene(scene, nil)
}

// For returns the Container nearest to n: the one on n or its closest
// ancestor, else the scene Container, else Global.
func (l *Locator) For(n NodeID) *Container {
	if c, ok := l.nearest(n); ok {
		return c
	}
	return l.ForSceneOf(n)
}

// forScene resolves the scene Container for scene, never returning exclude.
func (l *Locator) forScene(scene SceneID, exclude *Container) *Container {
	if c, ok := l.dir.Scene(scene); ok && c != exclude {
		return c
	}

	for _, root := range l.host.RootNodes(scene) {
		c, ok := l.host.ContainerOf(root)
		if !ok || c == exclude || c.boot == nil || c.boot.kind != BindScene {
			continue
		}
		c.boot.BootstrapOnDemand()
		if bound, ok := l.dir.Scene(scene); ok && bound != exclude {
			return bound
		}
	}

	return l.Global()
}

// nearest returns the Container on n or its closest ancestor.
func (l *Locator) nearest(n NodeID) (*Container, bool) {
	for cur, ok := n, true; ok; cur, ok = l.host.Parent(cur) {
		if c, found := l.host.ContainerOf(cur); found {
			return c, true
		}
	}
	return nil, false
}
