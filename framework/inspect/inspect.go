// Package inspect serves a read-only JSON view of a Locator's Directory.
//
//	GET /healthz          {"data":"ok"}
//	HEAD /healthz         200, no body
//	GET /global           the Global Container, 404 when none is bound
//	GET /scenes           every bound scene Container
//	GET /scenes/{scene}   one scene Container, 404 when unbound
//
// Directory responses are sent with no-cache headers. Requests never
// bootstrap sources or provision a Global Container.
package inspect

import (
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/km-arc/go-locator/framework/container"
	gohttp "github.com/km-arc/go-locator/framework/http"
	"github.com/km-arc/go-locator/framework/registry"
	"github.com/km-arc/go-locator/framework/routing"
)

// SceneNamer is implemented by hosts that can name their scenes.
type SceneNamer interface {
	SceneName(id container.SceneID) (string, bool)
}

// Snapshot describes one Container.
type Snapshot struct {
	ID        uint64            `json:"id"`
	Name      string            `json:"name"`
	Scope     string            `json:"scope"`
	Scene     container.SceneID `json:"scene,omitempty"`
	SceneName string            `json:"scene_name,omitempty"`
	Node      uint64            `json:"node"`
	Services  []string          `json:"services"`
}

// Describe captures c's identity, scope and registered service types.
func Describe(c *container.Container, host container.Host) Snapshot {
	s := Snapshot{
		ID:       c.ID(),
		Name:     c.Name(),
		Scope:    c.Scope().String(),
		Scene:    c.Scene(),
		Node:     uint64(c.Node()),
		Services: []string{},
	}
	if namer, ok := host.(SceneNamer); ok && s.Scene != "" {
		s.SceneName, _ = namer.SceneName(s.Scene)
	}
	for _, t := range c.Types() {
		s.Services = append(s.Services, registry.TypeName(t))
	}
	return s
}

// Inspector answers inspection requests for one Locator.
type Inspector struct {
	loc *container.Locator
	log zerolog.Logger
}

// New creates an Inspector over loc.
func New(loc *container.Locator, log zerolog.Logger) *Inspector {
	return &Inspector{loc: loc, log: log.With().Str("component", "inspect").Logger()}
}

// Handler returns the routed inspector.
func (i *Inspector) Handler() http.Handler {
	r := routing.New(i.log)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { gohttp.NewResponse(w).NotFound() })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) { gohttp.NewResponse(w).MethodNotAllowed() })

	r.Get("/healthz", i.health)
	r.Head("/healthz", i.healthHead)
	r.Group(func(live *routing.Router) {
		live.Middleware(middleware.NoCache)
		live.Get("/global", i.global)
		live.Prefix("/scenes", func(scenes *routing.Router) {
			scenes.Get("/", i.scenes)
			scenes.Get("/{scene}", i.scene)
		})
	})
	return r
}

func (i *Inspector) health(w http.ResponseWriter, _ *http.Request) {
	gohttp.NewResponse(w).Success("ok")
}

func (i *Inspector) healthHead(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (i *Inspector) global(w http.ResponseWriter, _ *http.Request) {
	res := gohttp.NewResponse(w)
	g, ok := i.loc.Directory().Global()
	if !ok {
		res.NotFound("no global container bound")
		return
	}
	res.Success(Describe(g, i.loc.Host()))
}

func (i *Inspector) scenes(w http.ResponseWriter, _ *http.Request) {
	bound := i.loc.Directory().Scenes()
	out := make([]Snapshot, 0, len(bound))
	for _, c := range bound {
		out = append(out, Describe(c, i.loc.Host()))
	}
	slices.SortFunc(out, func(a, b Snapshot) int { return strings.Compare(string(a.Scene), string(b.Scene)) })
	gohttp.NewResponse(w).Success(out)
}

func (i *Inspector) scene(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	id := container.SceneID(routing.Param(r, "scene"))
	c, ok := i.loc.Directory().Scene(id)
	if !ok {
		res.NotFound("no container bound for scene " + string(id))
		return
	}
	res.Success(Describe(c, i.loc.Host()))
}
