package container

import "sync"

// Directory is the process-wide table of bound Containers: one optional
// Global Container and at most one Container per scene.
//
// Only bootstrap and Container destruction mutate it. Call Reset at process
// or test start so no binding survives into an unrelated run.
type Directory struct {
	mu     sync.Mutex
	global *Container
	scenes map[SceneID]*Container
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{scenes: make(map[SceneID]*Container)}
}

// Reset drops every binding.
func (d *Directory) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.global = nil
	d.scenes = make(map[SceneID]*Container)
}

// Global returns the Container holding the Global slot.
func (d *Directory) Global() (*Container, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.global, d.global != nil
}

// Scene returns the Container bound for scene.
func (d *Directory) Scene(scene SceneID) (*Container, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	c, ok := d.scenes[scene]
	return c, ok
}

// Scenes returns a copy of the scene table.
func (d *Directory) Scenes() map[SceneID]*Container {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[SceneID]*Container, len(d.scenes))
	for id, c := range d.scenes {
		out[id] = c
	}
	return out
}

// IsGlobal reports whether c holds the Global slot.
func (d *Directory) IsGlobal(c *Container) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return c != nil && d.global == c
}

// claimGlobal makes c the Global Container unless another Container holds
// the slot. It returns the holder after the call.
func (d *Directory) claimGlobal(c *Container) (*Container, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.global != nil {
		return d.global, d.global == c
	}
	d.global = c
	c.setScope(ScopeGlobal, "")
	return c, true
}

// claimScene makes c the Container of scene unless one is already bound.
func (d *Directory) claimScene(scene SceneID, c *Container) (*Container, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if holder, ok := d.scenes[scene]; ok {
		return holder, holder == c
	}
	d.scenes[scene] = c
	c.setScope(ScopeScene, scene)
	return c, true
}

// release removes every binding held by c.
func (d *Directory) release(c *Container) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.global == c {
		d.global = nil
	}
	for id, held := range d.scenes {
		if held == c {
			delete(d.scenes, id)
		}
	}
}
