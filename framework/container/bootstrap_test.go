package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/km-arc/go-locator/framework/container"
	"github.com/km-arc/go-locator/framework/registry"
)

// ── stub providers ────────────────────────────────────────────────────────────

type recordingProvider struct {
	calls *[]string
	name  string
}

func (p *recordingProvider) Register(c *container.Container) {
	*p.calls = append(*p.calls, p.name+".register")
	container.Register[Logger](c, namedLogger(p.name))
}

func (p *recordingProvider) Boot(c *container.Container) {
	*p.calls = append(*p.calls, p.name+".boot")
}

// ── Global ────────────────────────────────────────────────────────────────────

func TestGlobal_AutoProvisions(t *testing.T) {
	w := newWorld(t, container.WithGlobalName("Root Services"))

	g := w.loc.Global()

	require.NotNil(t, g)
	assert.True(t, g.IsGlobal())
	assert.Equal(t, container.ScopeGlobal, g.Scope())
	assert.Equal(t, "Root Services", g.Name())
	assert.Equal(t, "Root Services", w.tree.Name(g.Node()))
	assert.Same(t, g, w.loc.Global(), "second call returns the same container")
}

func TestGlobal_AutoProvisionDisabled(t *testing.T) {
	w := newWorld(t, container.WithAutoProvision(false))
	n := w.spawn(w.tree.NewScene("s"), container.NoNode, "n")
	c := w.attach(n, container.BindNone)

	assert.Nil(t, w.loc.Global())
	assert.Same(t, c, w.loc.For(n))
	_, err := container.Get[Audio](c)
	assert.ErrorIs(t, err, registry.ErrNotRegistered)
	assert.Nil(t, w.loc.For(w.spawn(w.tree.ActiveScene(), container.NoNode, "bare")))
}

func TestGlobal_BootstrapsPendingSource(t *testing.T) {
	w := newWorld(t, container.WithAutoProvision(false))
	s := w.tree.NewScene("s")
	root := w.spawn(s, container.NoNode, "root")
	deep := w.spawn(s, root, "deep")
	src := w.attach(deep, container.BindGlobal)
	require.False(t, src.Bootstrapper().Bound())

	assert.Same(t, src, w.loc.Global())
	assert.True(t, src.Bootstrapper().Bound())
}

func TestGlobal_PersistsByDefault(t *testing.T) {
	w := newWorld(t)
	s := w.tree.NewScene("s")
	root := w.spawn(s, container.NoNode, "root")
	g := w.attach(root, container.BindGlobal)

	g.Bootstrapper().BootstrapOnDemand()

	scene, _ := w.tree.SceneOf(root)
	assert.Equal(t, w.tree.PersistentScene(), scene)
	require.NoError(t, w.tree.Unload(s))
	assert.Same(t, g, w.loc.Global(), "global survives its scene being unloaded")
}

func TestGlobal_PersistDisabledPerContainer(t *testing.T) {
	w := newWorld(t)
	s := w.tree.NewScene("s")
	root := w.spawn(s, container.NoNode, "root")
	g := w.attach(root, container.BindGlobal, container.Persist(false))

	g.Bootstrapper().BootstrapOnDemand()

	scene, _ := w.tree.SceneOf(root)
	assert.Equal(t, s, scene)
	require.NoError(t, w.tree.Unload(s))
	assert.NotSame(t, g, w.loc.Global())
}

func TestGlobal_NestedSourceNotPersisted(t *testing.T) {
	w := newWorld(t)
	s := w.tree.NewScene("s")
	root := w.spawn(s, container.NoNode, "root")
	sceneC := w.attach(root, container.BindScene)
	sceneC.Bootstrapper().BootstrapOnDemand()
	nested := w.spawn(s, root, "nested")
	g := w.attach(nested, container.BindGlobal)

	require.Same(t, g, w.loc.Global())

	scene, _ := w.tree.SceneOf(root)
	assert.Equal(t, s, scene, "scene root stays in its scene")
	assert.Contains(t, w.logs.String(), "not persisted")

	require.NoError(t, w.tree.Unload(s))
	_, ok := w.loc.Directory().Scene(s)
	assert.False(t, ok, "unloading the scene releases its entry")
	assert.True(t, g.Destroyed())
}

func TestGlobal_SecondCandidateRejected(t *testing.T) {
	w := newWorld(t)
	s := w.tree.NewScene("s")
	first := w.attach(w.spawn(s, container.NoNode, "first"), container.BindGlobal)
	second := w.attach(w.spawn(s, container.NoNode, "second"), container.BindGlobal)

	first.Bootstrapper().BootstrapOnDemand()
	second.Bootstrapper().BootstrapOnDemand()

	assert.Same(t, first, w.loc.Global())
	assert.Equal(t, container.ScopeUnbound, second.Scope())
	assert.False(t, second.IsGlobal())
	assert.Contains(t, w.logs.String(), "scope already bound")
}

func TestGlobal_DestroyClearsSlot(t *testing.T) {
	w := newWorld(t)
	g := w.loc.Global()
	container.Register(g, Audio{Channels: 2})

	require.NoError(t, w.tree.Destroy(g.Node()))

	assert.True(t, g.Destroyed())
	_, bound := w.loc.Directory().Global()
	assert.False(t, bound)

	fresh := w.loc.Global()
	require.NotNil(t, fresh)
	assert.NotSame(t, g, fresh)
	_, ok := container.TryGet[Audio](fresh)
	assert.False(t, ok)
}

func TestGlobal_OnlyOneHolderProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		w := newWorld(t)
		s := w.tree.NewScene("s")
		count := rapid.IntRange(1, 6).Draw(rt, "candidates")
		candidates := make([]*container.Container, count)
		for i := range candidates {
			n := w.spawn(s, container.NoNode, "candidate")
			candidates[i] = w.attach(n, container.BindGlobal)
		}

		order := rapid.Permutation(candidates).Draw(rt, "order")
		for _, c := range order {
			c.Bootstrapper().BootstrapOnDemand()
		}

		holders := 0
		for _, c := range candidates {
			if c.Scope() == container.ScopeGlobal {
				holders++
			}
		}
		if holders != 1 {
			rt.Fatalf("got %d global holders, want 1", holders)
		}
		if w.loc.Global() != order[0] {
			rt.Fatalf("global changed after the first bind")
		}
	})
}

// ── Scene ─────────────────────────────────────────────────────────────────────

func TestScene_LazyBootstrapOnDemand(t *testing.T) {
	w := newWorld(t)
	s := w.tree.NewScene("s")
	root := w.spawn(s, container.NoNode, "root")
	sceneC := w.attach(root, container.BindScene)
	actor := w.spawn(s, container.NoNode, "actor")
	require.False(t, sceneC.Bootstrapper().Bound(), "attach alone does not bind")

	assert.Same(t, sceneC, w.loc.For(actor))
	assert.True(t, sceneC.Bootstrapper().Bound())

	got, ok := w.loc.Directory().Scene(s)
	require.True(t, ok)
	assert.Same(t, sceneC, got)
}

func TestScene_NodeCreatedBootstraps(t *testing.T) {
	w := newWorld(t)
	s := w.tree.NewScene("s")
	var sceneC *container.Container

	_, err := w.tree.Spawn(s, container.NoNode, "root", func(n container.NodeID) {
		sceneC = w.attach(n, container.BindScene)
	})

	require.NoError(t, err)
	assert.True(t, sceneC.Bootstrapper().Bound())
	assert.Equal(t, container.ScopeScene, sceneC.Scope())
}

func TestScene_SecondCandidateRejected(t *testing.T) {
	w := newWorld(t)
	s := w.tree.NewScene("s")
	first := w.attach(w.spawn(s, container.NoNode, "first"), container.BindScene)
	second := w.attach(w.spawn(s, container.NoNode, "second"), container.BindScene)
	actor := w.spawn(s, container.NoNode, "actor")

	assert.Same(t, first, w.loc.ForSceneOf(actor))
	second.Bootstrapper().BootstrapOnDemand()

	assert.Same(t, first, w.loc.ForSceneOf(actor))
	assert.Equal(t, container.ScopeUnbound, second.Scope())
	assert.Contains(t, w.logs.String(), "bootstrap rejected")
}

func TestScene_ScenesAreIndependent(t *testing.T) {
	w := newWorld(t)
	a := w.tree.NewScene("a")
	b := w.tree.NewScene("b")
	ca := w.attach(w.spawn(a, container.NoNode, "a-locator"), container.BindScene)
	cb := w.attach(w.spawn(b, container.NoNode, "b-locator"), container.BindScene)

	assert.Same(t, ca, w.loc.ForSceneOf(w.spawn(a, container.NoNode, "x")))
	assert.Same(t, cb, w.loc.ForSceneOf(w.spawn(b, container.NoNode, "y")))
	assert.Len(t, w.loc.Directory().Scenes(), 2)
}

func TestScene_NonRootSourceNotScanned(t *testing.T) {
	w := newWorld(t)
	s := w.tree.NewScene("s")
	root := w.spawn(s, container.NoNode, "root")
	nested := w.attach(w.spawn(s, root, "nested"), container.BindScene)
	other := w.spawn(s, container.NoNode, "other")

	assert.True(t, w.loc.ForSceneOf(other).IsGlobal())
	assert.False(t, nested.Bootstrapper().Bound())
}

func TestScene_UnloadRemovesEntry(t *testing.T) {
	w := newWorld(t)
	s := w.tree.NewScene("s")
	sceneC := w.attach(w.spawn(s, container.NoNode, "root"), container.BindScene)
	sceneC.Bootstrapper().BootstrapOnDemand()

	require.NoError(t, w.tree.Unload(s))

	_, ok := w.loc.Directory().Scene(s)
	assert.False(t, ok)
	assert.True(t, sceneC.Destroyed())
}

func TestScene_UnknownNodeFallsBackToGlobal(t *testing.T) {
	w := newWorld(t)
	assert.True(t, w.loc.ForSceneOf(container.NodeID(999)).IsGlobal())
	assert.True(t, w.loc.For(container.NodeID(999)).IsGlobal())
}

// ── Latch ─────────────────────────────────────────────────────────────────────

func TestBootstrap_IdempotentProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		w := newWorld(t)
		s := w.tree.NewScene("s")
		kind := rapid.SampledFrom([]container.BindKind{container.BindGlobal, container.BindScene}).Draw(rt, "kind")
		calls := rapid.IntRange(1, 10).Draw(rt, "calls")
		var log []string
		c := w.attach(w.spawn(s, container.NoNode, "src"), kind,
			container.WithProviders(&recordingProvider{calls: &log, name: "p"}))

		c.Bootstrapper().BootstrapOnDemand()
		wantGlobal, _ := w.loc.Directory().Global()
		wantScenes := w.loc.Directory().Scenes()

		for i := 1; i < calls; i++ {
			c.Bootstrapper().BootstrapOnDemand()
		}

		gotGlobal, _ := w.loc.Directory().Global()
		if gotGlobal != wantGlobal {
			rt.Fatalf("global changed after repeated bootstrap")
		}
		if len(w.loc.Directory().Scenes()) != len(wantScenes) {
			rt.Fatalf("scene table changed after repeated bootstrap")
		}
		if len(log) != 2 {
			rt.Fatalf("providers ran %d phases, want 2: %v", len(log), log)
		}
	})
}

func TestBootstrap_ReentrantResolutionDoesNotRebind(t *testing.T) {
	w := newWorld(t)
	s := w.tree.NewScene("s")
	root := w.spawn(s, container.NoNode, "root")
	var seen *container.Container
	runs := 0

	sceneC := w.attach(root, container.BindScene, container.WithProviders(container.ProviderFunc(func(c *container.Container) {
		runs++
		seen = w.loc.ForSceneOf(root)
		c.Bootstrapper().BootstrapOnDemand()
	})))

	sceneC.Bootstrapper().BootstrapOnDemand()

	assert.Equal(t, 1, runs)
	assert.Same(t, sceneC, seen)
}

func TestBootstrap_BindNoneHasNoBootstrapper(t *testing.T) {
	w := newWorld(t)
	c := w.attach(w.spawn(w.tree.NewScene("s"), container.NoNode, "n"), container.BindNone)

	assert.Nil(t, c.Bootstrapper())
	w.loc.NodeCreated(c.Node())
	assert.Equal(t, container.ScopeUnbound, c.Scope())
}

// ── Providers ─────────────────────────────────────────────────────────────────

func TestProviders_RegisterThenBoot(t *testing.T) {
	w := newWorld(t)
	var calls []string
	a := &recordingProvider{calls: &calls, name: "a"}
	b := &recordingProvider{calls: &calls, name: "b"}
	g := w.attach(w.spawn(w.tree.NewScene("s"), container.NoNode, "g"), container.BindGlobal,
		container.WithProviders(a, b, a))

	g.Bootstrapper().BootstrapOnDemand()

	assert.Equal(t, []string{"a.register", "b.register", "a.boot", "b.boot"}, calls)
	l, _ := container.TryGet[Logger](g)
	assert.Equal(t, "a", l.Name(), "first provider's registration wins")
}

func TestProviders_SkippedOnRejectedBind(t *testing.T) {
	w := newWorld(t)
	s := w.tree.NewScene("s")
	w.attach(w.spawn(s, container.NoNode, "first"), container.BindScene).Bootstrapper().BootstrapOnDemand()
	var calls []string
	second := w.attach(w.spawn(s, container.NoNode, "second"), container.BindScene,
		container.WithProviders(&recordingProvider{calls: &calls, name: "late"}))

	second.Bootstrapper().BootstrapOnDemand()

	assert.Empty(t, calls)
}

// ── Reset ─────────────────────────────────────────────────────────────────────

func TestReset_ClearsDirectory(t *testing.T) {
	w := newWorld(t)
	s := w.tree.NewScene("s")
	w.attach(w.spawn(s, container.NoNode, "scene"), container.BindScene).Bootstrapper().BootstrapOnDemand()
	g := w.loc.Global()

	w.loc.Reset()

	_, ok := w.loc.Directory().Global()
	assert.False(t, ok)
	assert.Empty(t, w.loc.Directory().Scenes())
	assert.False(t, g.IsGlobal())
}

func TestSharedDirectory(t *testing.T) {
	dir := container.NewDirectory()
	a := newWorld(t, container.WithDirectory(dir))
	b := newWorld(t, container.WithDirectory(dir))

	g := a.loc.Global()

	assert.Same(t, dir, b.loc.Directory())
	assert.Same(t, g, b.loc.Global())
}
