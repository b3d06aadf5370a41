// Package tree is an in-memory ownership tree of named nodes grouped into
// scenes. It implements container.Host, so a container.Locator can resolve
// services against it, and reports node lifecycles to a container.Lifecycle.
//
// Nodes live in an arena indexed by NodeID and link to their parent by id.
// Every tree has one persistent scene ("DontDestroyOnLoad") that cannot be
// unloaded; Persist moves a node's root there.
package tree

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/km-arc/go-locator/framework/container"
)

// PersistentSceneName is the display name of the scene that survives
// unloads.
const PersistentSceneName = "DontDestroyOnLoad"

var (
	ErrUnknownNode     = errors.New("tree: unknown node")
	ErrUnknownScene    = errors.New("tree: unknown scene")
	ErrCrossScene      = errors.New("tree: parent belongs to another scene")
	ErrPersistentScene = errors.New("tree: persistent scene cannot be unloaded")
)

type node struct {
	name     string
	scene    container.SceneID
	parent   container.NodeID
	children []container.NodeID
	attached *container.Container
	alive    bool
}

type scene struct {
	name  string
	roots []container.NodeID
}

// Tree is safe for concurrent use. Listener callbacks run without the tree's
// lock held, so a listener may call back into the tree.
type Tree struct {
	mu         sync.RWMutex
	nodes      []node
	scenes     map[container.SceneID]*scene
	order      []container.SceneID
	active     container.SceneID
	persistent container.SceneID
	listener   container.Lifecycle
}

var _ container.Host = (*Tree)(nil)

// New creates a tree holding only the persistent scene, which is also the
// active scene until NewScene is called.
func New() *Tree {
	t := &Tree{scenes: make(map[container.SceneID]*scene)}
	t.persistent = t.addScene(PersistentSceneName)
	t.active = t.persistent
	return t
}

// SetListener sets the receiver of node lifecycle notifications.
func (t *Tree) SetListener(l container.Lifecycle) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listener = l
}

func (t *Tree) notifier() container.Lifecycle {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.listener
}

// ── Scenes ────────────────────────────────────────────────────────────────────

// NewScene loads an empty scene and makes it the active scene.
func (t *Tree) NewScene(name string) container.SceneID {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.addScene(name)
	t.active = id
	return id
}

func (t *Tree) addScene(name string) container.SceneID {
	id := container.SceneID(uuid.NewString())
	t.scenes[id] = &scene{name: name}
	t.order = append(t.order, id)
	return id
}

// SetActive makes id the scene SpawnRoot creates nodes in.
func (t *Tree) SetActive(id container.SceneID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.scenes[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownScene, id)
	}
	t.active = id
	return nil
}

// ActiveScene returns the scene SpawnRoot creates nodes in.
func (t *Tree) ActiveScene() container.SceneID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.active
}

// PersistentScene returns the id of the scene that survives unloads.
func (t *Tree) PersistentScene() container.SceneID { return t.persistent }

// Scenes returns loaded scenes in load order, the persistent scene first.
func (t *Tree) Scenes() []container.SceneID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return append([]container.SceneID(nil), t.order...)
}

// SceneName returns the display name of id.
func (t *Tree) SceneName(id container.SceneID) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.scenes[id]
	if !ok {
		return "", false
	}
	return s.name, true
}

// Unload destroys every node of id and removes the scene.
func (t *Tree) Unload(id container.SceneID) error {
	if id == t.persistent {
		return ErrPersistentScene
	}
	if _, ok := t.SceneName(id); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownScene, id)
	}
	for _, root := range t.RootNodes(id) {
		if err := t.Destroy(root); err != nil {
			return err
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.scenes, id)
	for i, sid := range t.order {
		if sid == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
	if t.active == id {
		t.active = t.order[len(t.order)-1]
	}
	return nil
}

// ── Nodes ─────────────────────────────────────────────────────────────────────

// Spawn creates a node under parent, or a root of sceneID when parent is
// container.NoNode. With a parent, sceneID may be empty and defaults to the
// parent's scene. setup runs before the listener's NodeCreated, which is
// where components such as a Container are attached.
//
//	root, _ := t.Spawn(level, container.NoNode, "locator", func(n container.NodeID) {
//	    _, _ = loc.Attach(n, container.BindScene)
//	})
func (t *Tree) Spawn(sceneID container.SceneID, parent container.NodeID, name string, setup ...func(container.NodeID)) (container.NodeID, error) {
	t.mu.Lock()
	if parent != container.NoNode {
		p, ok := t.get(parent)
		if !ok {
			t.mu.Unlock()
			return container.NoNode, fmt.Errorf("%w: parent %d", ErrUnknownNode, parent)
		}
		if sceneID == "" {
			sceneID = p.scene
		}
		if p.scene != sceneID {
			t.mu.Unlock()
			return container.NoNode, ErrCrossScene
		}
	}
	s, ok := t.scenes[sceneID]
	if !ok {
		t.mu.Unlock()
		return container.NoNode, fmt.Errorf("%w: %s", ErrUnknownScene, sceneID)
	}

	id := container.NodeID(len(t.nodes) + 1)
	t.nodes = append(t.nodes, node{name: name, scene: sceneID, parent: parent, alive: true})
	if parent == container.NoNode {
		s.roots = append(s.roots, id)
	} else {
		p := &t.nodes[parent-1]
		p.children = append(p.children, id)
	}
	t.mu.Unlock()

	for _, fn := range setup {
		fn(id)
	}
	if l := t.notifier(); l != nil {
		l.NodeCreated(id)
	}
	return id, nil
}

// SpawnRoot creates a root node in the active scene.
func (t *Tree) SpawnRoot(name string) container.NodeID {
	id, _ := t.Spawn(t.ActiveScene(), container.NoNode, name)
	return id
}

// Destroy destroys n and its descendants, children first. The listener's
// NodeDestroyed runs for each node before it is released.
func (t *Tree) Destroy(n container.NodeID) error {
	t.mu.RLock()
	if _, ok := t.get(n); !ok {
		t.mu.RUnlock()
		return fmt.Errorf("%w: %d", ErrUnknownNode, n)
	}
	order := t.postOrder(n, nil)
	t.mu.RUnlock()

	l := t.notifier()
	for _, id := range order {
		if l != nil {
			l.NodeDestroyed(id)
		}
		t.release(id)
	}
	return nil
}

func (t *Tree) postOrder(n container.NodeID, out []container.NodeID) []container.NodeID {
	for _, child := range t.nodes[n-1].children {
		out = t.postOrder(child, out)
	}
	return append(out, n)
}

func (t *Tree) release(n container.NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	nd := &t.nodes[n-1]
	if !nd.alive {
		return
	}
	if nd.parent != container.NoNode {
		p := &t.nodes[nd.parent-1]
		p.children = without(p.children, n)
	} else if s, ok := t.scenes[nd.scene]; ok {
		s.roots = without(s.roots, n)
	}
	*nd = node{name: nd.name}
}

// Persist moves the root node n, and its subtree, into the persistent scene.
// Non-root nodes stay where they are.
func (t *Tree) Persist(n container.NodeID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	nd, ok := t.get(n)
	if !ok || nd.parent != container.NoNode || nd.scene == t.persistent {
		return
	}
	if s, ok := t.scenes[nd.scene]; ok {
		s.roots = without(s.roots, n)
	}
	p := t.scenes[t.persistent]
	p.roots = append(p.roots, n)
	t.setScene(n, t.persistent)
}

func (t *Tree) setScene(n container.NodeID, id container.SceneID) {
	nd := &t.nodes[n-1]
	nd.scene = id
	for _, child := range nd.children {
		t.setScene(child, id)
	}
}

// ── container.Host ────────────────────────────────────────────────────────────

// Parent returns the parent of n.
func (t *Tree) Parent(n container.NodeID) (container.NodeID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	nd, ok := t.get(n)
	if !ok || nd.parent == container.NoNode {
		return container.NoNode, false
	}
	return nd.parent, true
}

// ContainerOf returns the Container attached to n.
func (t *Tree) ContainerOf(n container.NodeID) (*container.Container, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	nd, ok := t.get(n)
	if !ok || nd.attached == nil {
		return nil, false
	}
	return nd.attached, true
}

// SceneOf returns the scene of n.
func (t *Tree) SceneOf(n container.NodeID) (container.SceneID, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	nd, ok := t.get(n)
	if !ok {
		return "", false
	}
	return nd.scene, true
}

// RootNodes returns the roots of id in creation order.
func (t *Tree) RootNodes(id container.SceneID) []container.NodeID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.scenes[id]
	if !ok {
		return nil
	}
	return append([]container.NodeID(nil), s.roots...)
}

// Nodes returns every live node, scene by scene in load order, each scene
// depth-first from its roots.
func (t *Tree) Nodes() []container.NodeID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []container.NodeID
	var walk func(container.NodeID)
	walk = func(n container.NodeID) {
		out = append(out, n)
		for _, child := range t.nodes[n-1].children {
			walk(child)
		}
	}
	for _, id := range t.order {
		for _, root := range t.scenes[id].roots {
			walk(root)
		}
	}
	return out
}

// Attach stores c as the Container of n.
func (t *Tree) Attach(n container.NodeID, c *container.Container) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	nd, ok := t.get(n)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownNode, n)
	}
	if nd.attached != nil {
		return fmt.Errorf("%w: node %d (%s)", container.ErrAlreadyAttached, n, nd.name)
	}
	nd.attached = c
	return nil
}

// ── Queries ───────────────────────────────────────────────────────────────────

// Name returns the name of n, also after n was destroyed.
func (t *Tree) Name(n container.NodeID) string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if n == container.NoNode || int(n) > len(t.nodes) {
		return ""
	}
	return t.nodes[n-1].name
}

// Alive reports whether n exists and has not been destroyed.
func (t *Tree) Alive(n container.NodeID) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.get(n)
	return ok
}

// Children returns the direct children of n.
func (t *Tree) Children(n container.NodeID) []container.NodeID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	nd, ok := t.get(n)
	if !ok {
		return nil
	}
	return append([]container.NodeID(nil), nd.children...)
}

// get must be called with mu held.
func (t *Tree) get(n container.NodeID) (*node, bool) {
	if n == container.NoNode || int(n) > len(t.nodes) {
		return nil, false
	}
	nd := &t.nodes[n-1]
	return nd, nd.alive
}

func without(ids []container.NodeID, n container.NodeID) []container.NodeID {
	for i, id := range ids {
		if id == n {
			return append(ids[:i:i], ids[i+1:]...)
		}
	}
	return ids
}
