package main

import (
	"fmt"
	"io"
	"reflect"
	"text/tabwriter"

	"github.com/km-arc/go-locator/framework/app"
	"github.com/km-arc/go-locator/framework/container"
	"github.com/km-arc/go-locator/framework/registry"
)

// Logger and Audio are the sample services resolved by the demo.
type Logger interface{ Prefix() string }

type Audio interface{ Output() string }

type prefixLogger string

func (l prefixLogger) Prefix() string { return string(l) }

type audioOut string

func (a audioOut) Output() string { return string(a) }

type demoNode struct {
	path string
	id   container.NodeID
}

type demo struct {
	app   *app.Application
	nodes []demoNode
}

// buildDemo registers defaults on Global, overrides Logger in the menu
// scene and Audio on the player node of level-1.
func buildDemo(a *app.Application) (*demo, error) {
	d := &demo{app: a}

	a.Global().
		Register(registry.TypeOf[Logger](), prefixLogger("global")).
		Register(registry.TypeOf[Audio](), audioOut("stereo"))

	menu, menuC, err := a.LoadScene("menu", container.WithName("menu services"))
	if err != nil {
		return nil, err
	}
	container.Register[Logger](menuC, prefixLogger("menu"))
	if err := d.spawn(menu, container.NoNode, "menu/button"); err != nil {
		return nil, err
	}

	level, _, err := a.LoadScene("level-1", container.WithName("level-1 services"))
	if err != nil {
		return nil, err
	}
	var attachErr error
	player, err := a.Tree.Spawn(level, container.NoNode, "player", func(n container.NodeID) {
		var c *container.Container
		if c, attachErr = a.Locator.Attach(n, container.BindNone, container.WithName("player services")); attachErr == nil {
			container.Register[Audio](c, audioOut("surround"))
		}
	})
	if err == nil {
		err = attachErr
	}
	if err != nil {
		return nil, err
	}
	d.nodes = append(d.nodes, demoNode{path: "level-1/player", id: player})
	if err := d.spawn(level, player, "level-1/player/weapon"); err != nil {
		return nil, err
	}
	if err := d.spawn(level, container.NoNode, "level-1/enemy"); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *demo) spawn(scene container.SceneID, parent container.NodeID, path string) error {
	id, err := d.app.Tree.Spawn(scene, parent, path)
	if err != nil {
		return err
	}
	d.nodes = append(d.nodes, demoNode{path: path, id: id})
	return nil
}

func (d *demo) print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NODE\tNEAREST\tLOGGER\tAUDIO")
	for _, n := range d.nodes {
		c := d.app.Locator.For(n.id)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			n.path, c.Name(),
			resolved(c, registry.TypeOf[Logger]()),
			resolved(c, registry.TypeOf[Audio]()),
		)
	}
	return tw.Flush()
}

func resolved(c *container.Container, t reflect.Type) string {
	v, ok := c.Lookup(t)
	if !ok {
		return "-"
	}
	owner, _ := c.Owner(t)
	switch s := v.(type) {
	case Logger:
		return fmt.Sprintf("%s (%s)", s.Prefix(), owner.Name())
	case Audio:
		return fmt.Sprintf("%s (%s)", s.Output(), owner.Name())
	default:
		return fmt.Sprint(v)
	}
}
