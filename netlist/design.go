// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package netlist builds the static topology of a design: nodes with pins
// joined into nexuses. A design is elaborated into a runtime graph of
// evsim nets, with resolvers inserted on multiply driven nexuses.
//
package netlist

import (
	"strconv"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/logic"
	"github.com/pkg/errors"
)

// Config holds the design settings.
//
type Config struct {
	// PinLimit caps the number of pins of a single node. Defaults to
	// evsim.DefaultPinLimit.
	PinLimit int
}

// A Design is a set of nodes connected through named or anonymous nexuses.
//
type Design struct {
	cfg   Config
	nodes []*Node
	named map[string]*Link
	names []string
	count map[string]int
}

// NewDesign returns an empty design.
//
func NewDesign(cfg Config) *Design {
	if cfg.PinLimit <= 0 {
		cfg.PinLimit = evsim.DefaultPinLimit
	}
	return &Design{cfg: cfg, named: make(map[string]*Link), count: make(map[string]int)}
}

// Nodes returns the nodes of d in creation order.
//
func (d *Design) Nodes() []*Node { return d.nodes }

// NewNode adds an unconnected node for spec p. If name is empty, a name is
// derived from the part name.
//
func (d *Design) NewNode(name string, p *PartSpec) (*Node, error) {
	names := p.pinNames()
	if len(names) > d.cfg.PinLimit {
		return nil, evsim.ConfigError("part %s: %d pins exceed the pin limit of %d", p.Name, len(names), d.cfg.PinLimit)
	}
	if name == "" {
		name = p.Name + strconv.Itoa(d.count[p.Name])
		d.count[p.Name]++
	}
	n := &Node{Name: name, Spec: p, pinNames: names, pinIdx: make(map[string]int, len(names))}
	for i, pn := range names {
		if _, ok := n.pinIdx[pn]; ok {
			return nil, errors.Errorf("part %s: duplicate pin name %q", p.Name, pn)
		}
		n.pinIdx[pn] = i
	}
	if p.New != nil {
		n.Fun = p.New()
	}
	d.nodes = append(d.nodes, n)
	return n, nil
}

// Add adds a node for part p and wires it according to p's connections.
//
func (d *Design) Add(p Part) (*Node, error) {
	return d.AddNamed("", p)
}

// AddNamed is like Add with an explicit node name. Chips are flattened into
// their sub-parts and yield a nil node.
//
func (d *Design) AddNamed(name string, p Part) (*Node, error) {
	if len(p.Parts) > 0 {
		return nil, d.addChip(name, p)
	}
	n, err := d.NewNode(name, p.PartSpec)
	if err != nil {
		return nil, err
	}
	if err = d.wire(n, p.Conns); err != nil {
		return nil, err
	}
	return n, nil
}

// Wire connects the pins of node n to named nexuses according to the
// connection string conns. See ParseConnections.
//
func (d *Design) Wire(n *Node, conns string) error {
	c, err := ParseConnections(conns)
	if err != nil {
		return err
	}
	return d.wire(n, c)
}

func (d *Design) wire(n *Node, conns []Connection) error {
	for _, c := range conns {
		for _, pr := range c.pairs() {
			l, ok := n.PinByName(pr[0])
			if !ok {
				return errors.New("invalid pin name " + pr[0] + " for part " + n.Spec.Name)
			}
			Connect(l, d.anchor(pr[1]))
		}
	}
	return nil
}

// anchor returns the anchor link of the named nexus, creating it if needed.
func (d *Design) anchor(name string) *Link {
	l := d.named[name]
	if l == nil {
		l = newLink(nil, 0, Passive)
		l.nex.Name = name
		d.named[name] = l
		d.names = append(d.names, name)
	}
	return l
}

// Nexus returns the named nexus, creating it if needed.
//
func (d *Design) Nexus(name string) *Nexus { return d.anchor(name).Nexus() }

// Lookup returns the named nexus if it exists.
//
func (d *Design) Lookup(name string) (*Nexus, bool) {
	l, ok := d.named[name]
	if !ok {
		return nil, false
	}
	return l.Nexus(), true
}

// SetKind sets the resolution kind of the named nexus.
//
func (d *Design) SetKind(name string, k evsim.ResolvKind) { d.Nexus(name).Kind = k }

// Check checks the wiring of d. It reports input pins that are not connected
// to any output and named nexuses that are not connected to any input.
//
func (d *Design) Check() error {
	for _, n := range d.nodes {
		for _, l := range n.Links() {
			if l.dir == Input && l.Nexus().DriverCount() == 0 {
				return errors.New("pin " + l.String() + " not connected to any output")
			}
		}
	}
	for _, name := range d.names {
		x := d.named[name].Nexus()
		if x.count(Input)+x.count(Passive) == 0 {
			return errors.New("pin " + name + " not connected to any input")
		}
	}
	return nil
}

// Elaborate creates the runtime nets of d in simulation s. Every node gets its
// own net. Every driven nexus gets the net of its single driver, or a resolver
// net for multiply driven nexuses and nexuses with a pull or wired
// resolution. Drivers with strengths other than strong get an intermediate
// Drive net.
//
func (d *Design) Elaborate(s *evsim.Simulation) error {
	for _, n := range d.nodes {
		n.net = s.NewNet(n.Name, n.Fun)
		if n.Spec.Delay != nil {
			n.net.SetDelay(*n.Spec.Delay)
		}
	}
	seen := make(map[*Nexus]bool)
	anon := 0
	for _, n := range d.nodes {
		for _, l := range n.Links() {
			x := l.Nexus()
			if seen[x] {
				continue
			}
			seen[x] = true
			if x.Name == "" {
				x.Name = "$nexus" + strconv.Itoa(anon)
				anon++
			}
			if err := d.elaborate(s, x); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *Design) elaborate(s *evsim.Simulation, x *Nexus) error {
	var drivers []*Link
	var readers []evsim.Port
	for _, l := range x.Links() {
		switch {
		case l.node == nil:
		case l.dir == Output:
			drivers = append(drivers, l)
		case l.node.Fun != nil:
			readers = append(readers, l.node.net.Port(l.pin))
		}
	}
	if len(drivers) == 0 {
		return nil
	}
	width := drivers[0].node.Spec.Width
	srcs := make([]*evsim.Net, len(drivers))
	for i, l := range drivers {
		sp := l.node.Spec
		if sp.Width != width {
			return evsim.ConfigError("nexus %s: driver %s is %d bits wide, want %d", x.Name, l, sp.Width, width)
		}
		src := l.node.net
		if s0, s1 := sp.strengths(); s0 != logic.Strong || s1 != logic.Strong {
			drv := s.NewNet(l.node.Name+"$drive", &evsim.Drive{S0: s0, S1: s1})
			if err := src.Connect(drv.Port(0)); err != nil {
				return err
			}
			src = drv
		}
		srcs[i] = src
	}
	if len(drivers) == 1 && x.Kind == evsim.Tri {
		x.net = srcs[0]
		return errors.Wrapf(srcs[0].Connect(readers...), "nexus %s", x.Name)
	}
	r := s.NewNet(x.Name, evsim.NewResolv(x.Kind, width, len(srcs)))
	for i, src := range srcs {
		if err := src.Connect(r.Port(i)); err != nil {
			return err
		}
	}
	x.net = r
	return errors.Wrapf(r.Connect(readers...), "nexus %s", x.Name)
}
