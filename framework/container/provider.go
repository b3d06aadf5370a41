package container

import "reflect"

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider installs services into a Container once the Container's
// bootstrap has bound it.
//
// Register runs for every provider first; Boot runs afterwards, so Boot may
// resolve anything the providers of the same Container registered.
//
//	type AudioProvider struct{ container.BaseProvider }
//
//	func (p *AudioProvider) Register(c *container.Container) {
//	    container.Register[*audio.Mixer](c, audio.NewMixer())
//	}
type ServiceProvider interface {
	Register(c *Container)
	Boot(c *Container)
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable no-op Boot.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) {}

// ProviderFunc adapts a function to a ServiceProvider with no Boot phase.
//
//	container.ProviderFunc(func(c *container.Container) {
//	    container.Register[Logger](c, stdout)
//	})
type ProviderFunc func(c *Container)

func (f ProviderFunc) Register(c *Container) { f(c) }
func (f ProviderFunc) Boot(_ *Container)     {}

// runProviders registers then boots each provider once, in order.
// Only providers with comparable dynamic types are deduplicated.
func runProviders(c *Container, providers []ServiceProvider) {
	seen := make(map[ServiceProvider]bool, len(providers))
	unique := make([]ServiceProvider, 0, len(providers))
	for _, p := range providers {
		if p == nil {
			continue
		}
		if reflect.TypeOf(p).Comparable() {
			if seen[p] {
				continue
			}
			seen[p] = true
		}
		unique = append(unique, p)
	}

	for _, p := range unique {
		p.Register(c)
	}
	for _, p := range unique {
		p.Boot(c)
	}
}
