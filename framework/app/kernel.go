package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/km-arc/go-locator/framework/config"
	"github.com/km-arc/go-locator/framework/container"
	"github.com/km-arc/go-locator/framework/inspect"
	"github.com/km-arc/go-locator/framework/logging"
	"github.com/km-arc/go-locator/framework/providers"
	"github.com/km-arc/go-locator/framework/tree"
)

// shutdownTimeout bounds graceful shutdown of the inspector server.
const shutdownTimeout = 5 * time.Second

// Application owns the configuration, logger, scene tree and Locator of one
// process. The framework providers are installed on the Global Container.
type Application struct {
	Config  *config.Config
	Log     zerolog.Logger
	Tree    *tree.Tree
	Locator *container.Locator

	globals container.NodeID
}

// Options adjusts New.
type Options struct {
	// EnvFiles are passed to config.Load. Ignored when Config is set.
	EnvFiles []string
	// Config skips loading from the environment.
	Config *config.Config
	// LogOutput receives log output. Defaults to stderr.
	LogOutput io.Writer
	// Providers run on the Global Container after the framework providers.
	Providers []container.ServiceProvider
}

// New creates and bootstraps the application.
//
//	application, err := app.New(app.Options{EnvFiles: []string{".env"}})
func New(opts Options) (*Application, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Load(opts.EnvFiles...)
	}
	log := logging.ForApp(logging.New(cfg.Log, opts.LogOutput), cfg.App.Name)

	tr := tree.New()
	loc := container.NewLocator(tr,
		container.WithLogger(log),
		container.WithAutoProvision(cfg.Locator.AutoProvision),
		container.WithGlobalName(cfg.Locator.GlobalName),
		container.WithPersistGlobal(cfg.Locator.PersistGlobal),
	)
	loc.Reset()
	tr.SetListener(loc)

	a := &Application{Config: cfg, Log: log, Tree: tr, Locator: loc}

	all := append([]container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg},
		&providers.LoggingServiceProvider{Logger: log},
		&providers.InspectServiceProvider{},
	}, opts.Providers...)

	var attachErr error
	id, err := tr.Spawn(tr.ActiveScene(), container.NoNode, cfg.Locator.GlobalName, func(n container.NodeID) {
		_, attachErr = loc.Attach(n, container.BindGlobal,
			container.WithName(cfg.Locator.GlobalName),
			container.WithProviders(all...),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("app: spawn global node: %w", err)
	}
	if attachErr != nil {
		return nil, fmt.Errorf("app: attach global container: %w", attachErr)
	}
	a.globals = id

	log.Info().
		Str("env", cfg.App.Env).
		Str("global", cfg.Locator.GlobalName).
		Msg("application bootstrapped")
	return a, nil
}

// Global returns the Global Container.
func (a *Application) Global() *container.Container { return a.Locator.Global() }

// LoadScene creates an active scene whose root node carries a scene
// Container named from the configuration.
func (a *Application) LoadScene(name string, opts ...container.AttachOption) (container.SceneID, *container.Container, error) {
	scene := a.Tree.NewScene(name)
	opts = append([]container.AttachOption{container.WithName(a.Config.Locator.SceneName)}, opts...)

	var (
		c         *container.Container
		attachErr error
	)
	_, err := a.Tree.Spawn(scene, container.NoNode, a.Config.Locator.SceneName, func(n container.NodeID) {
		c, attachErr = a.Locator.Attach(n, container.BindScene, opts...)
	})
	if err == nil {
		err = attachErr
	}
	if err != nil {
		return "", nil, fmt.Errorf("app: load scene %q: %w", name, err)
	}
	return scene, c, nil
}

// Inspector returns the inspector registered by InspectServiceProvider.
func (a *Application) Inspector() (*inspect.Inspector, error) {
	return container.Get[*inspect.Inspector](a.Global())
}

// Run serves the inspector on addr (the configured address when empty)
// until ctx is cancelled, then shuts the server down gracefully.
func (a *Application) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = a.Config.Inspect.Addr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("app: listen %s: %w", addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	insp, err := a.Inspector()
	if err != nil {
		_ = ln.Close()
		return err
	}

	srv := &http.Server{
		Handler:           insp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	a.Log.Info().Str("addr", ln.Addr().String()).Msg("inspector listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("app: shutdown: %w", err)
	}
	a.Log.Info().Msg("inspector stopped")
	return nil
}

// Close destroys the Global node and clears the Directory.
func (a *Application) Close() {
	if a.Tree.Alive(a.globals) {
		_ = a.Tree.Destroy(a.globals)
	}
	a.Locator.Reset()
}

// Environment returns the configured application environment.
func (a *Application) Environment() string { return a.Config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
