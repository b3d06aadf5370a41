package container

// Host is the ownership tree the Locator resolves against. The tree itself,
// its scenes and node lifecycles belong to the host; the Locator only walks
// it.
type Host interface {
	// Parent returns the parent of n, false for roots and unknown nodes.
	Parent(n NodeID) (NodeID, bool)

	// ContainerOf returns the Container attached to n.
	ContainerOf(n NodeID) (*Container, bool)

	// SceneOf returns the scene n belongs to.
	SceneOf(n NodeID) (SceneID, bool)

	// RootNodes returns the root nodes of scene in host order.
	RootNodes(scene SceneID) []NodeID

	// Nodes returns every live node in host order.
	Nodes() []NodeID

	// Attach stores c as the Container of n. A node carries at most one
	// Container; a second Attach fails with ErrAlreadyAttached.
	Attach(n NodeID, c *Container) error

	// SpawnRoot creates a new root node in the host's active scene.
	SpawnRoot(name string) NodeID

	// Persist moves the root node n into the host's persistent scene so it
	// survives scene unloads. The Locator only passes root nodes.
	Persist(n NodeID)
}

// Lifecycle receives node notifications from the host. Locator implements it.
type Lifecycle interface {
	// NodeCreated is called once a node and its Container are in place.
	NodeCreated(n NodeID)

	// NodeDestroyed is called before the host releases n.
	NodeDestroyed(n NodeID)
}
