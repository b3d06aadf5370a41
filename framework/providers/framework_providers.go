package providers

import (
	"github.com/rs/zerolog"

	"github.com/km-arc/go-locator/framework/config"
	"github.com/km-arc/go-locator/framework/container"
	"github.com/km-arc/go-locator/framework/inspect"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider registers the loaded configuration.
//
// Registered types:
//   - *config.Config
//
// The configuration is loaded from EnvFiles when Config is nil.
type ConfigServiceProvider struct {
	container.BaseProvider
	Config   *config.Config
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(c *container.Container) {
	cfg := p.Config
	if cfg == nil {
		cfg = config.Load(p.EnvFiles...)
	}
	container.Register(c, cfg)
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider registers the application logger.
//
// Registered types:
//   - zerolog.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger zerolog.Logger
}

func (p *LoggingServiceProvider) Register(c *container.Container) {
	container.Register(c, p.Logger)
}

// ── InspectServiceProvider ────────────────────────────────────────────────────

// InspectServiceProvider registers the Directory inspector during Boot, once
// the logger is available.
//
// Registered types:
//   - *inspect.Inspector
type InspectServiceProvider struct{}

func (p *InspectServiceProvider) Register(_ *container.Container) {}

func (p *InspectServiceProvider) Boot(c *container.Container) {
	log, ok := container.TryGet[zerolog.Logger](c)
	if !ok {
		log = zerolog.Nop()
	}
	container.Register(c, inspect.New(c.Locator(), log))
}
