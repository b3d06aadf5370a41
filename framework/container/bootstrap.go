package container

import "sync/atomic"

// Bootstrapper is the one-shot bind trigger of a Container. However many
// call paths reach it, the bind runs once: the first BootstrapOnDemand closes
// the latch before binding, so resolution started from inside the bind (a
// provider calling ForSceneOf, say) sees the latch already closed.
type Bootstrapper struct {
	kind      BindKind
	container *Container
	persist   bool
	providers []ServiceProvider
	done      atomic.Bool
}

// Kind returns what the Container binds as.
func (b *Bootstrapper) Kind() BindKind { return b.kind }

// Container returns the Container this source binds.
func (b *Bootstrapper) Container() *Container { return b.container }

// Bound reports whether BootstrapOnDemand has run. A rejected bind still
// counts as run; the Container then stays ScopeUnbound.
func (b *Bootstrapper) Bound() bool { return b.done.Load() }

// BootstrapOnDemand binds the Container on the first call and does nothing
// afterwards.
func (b *Bootstrapper) BootstrapOnDemand() {
	if !b.done.CompareAndSwap(false, true) {
		return
	}
	b.container.loc.bootstrap(b)
}

// bootstrap performs the bind for b's kind, then runs b's providers if the
// bind succeeded.
func (l *Locator) bootstrap(b *Bootstrapper) {
	c := b.container

	var err error
	switch b.kind {
	case BindGlobal:
		err = l.bindGlobal(c, b.persist)
	case BindScene:
		err = l.bindScene(c)
	default:
		return
	}
	if err != nil {
		l.log.Error().Err(err).Str("container", c.name).Msg("bootstrap rejected")
		return
	}

	l.log.Debug().
		Str("container", c.name).
		Str("scope", c.Scope().String()).
		Str("scene", string(c.Scene())).
		Msg("container bootstrapped")

	runProviders(c, b.providers)
}

func (l *Locator) bindGlobal(c *Container, persist bool) error {
	holder, ok := l.dir.claimGlobal(c)
	if !ok {
		return &ScopeError{Op: "bind global", Container: c.name, Holder: holder.name, Err: ErrScopeAlreadyBound}
	}
	if !persist {
		return nil
	}
	if _, nested := l.host.Parent(c.node); nested {
		l.log.Warn().
			Str("container", c.name).
			Uint64("node", uint64(c.node)).
			Msg("global container is not on a root node; not persisted")
		return nil
	}
	l.host.Persist(c.node)
	return nil
}

func (l *Locator) bindScene(c *Container) error {
	scene, ok := l.host.SceneOf(c.node)
	if !ok {
		return &ScopeError{Op: "bind scene", Container: c.name, Err: ErrNoScene}
	}
	holder, ok := l.dir.claimScene(scene, c)
	if !ok {
		return &ScopeError{Op: "bind scene", Container: c.name, Scene: scene, Holder: holder.name, Err: ErrScopeAlreadyBound}
	}
	return nil
}
