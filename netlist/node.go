// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package netlist

import (
	"github.com/db47h/evsim"
	"github.com/db47h/evsim/logic"
)

// A PartSpec is the blueprint of a node.
//
// Pins are numbered in this order: inputs, passive pins, then the output if
// any. Input and passive pin i is wired to port i of the node's functor.
//
//	notSpec := &netlist.PartSpec{
//		Name:   "NOT",
//		Inputs: netlist.IO("in"),
//		Output: "out",
//		Width:  1,
//		New:    func() evsim.Functor { return hwlib.NewGate(hwlib.OpNot, 1, 1) },
//	}
//
type PartSpec struct {
	// Part name.
	Name string
	// Input pin names. Use IO to expand bus declarations.
	Inputs []string
	// Passive pin names.
	Passive []string
	// Output pin name. Empty for sinks.
	Output string
	// Width of the output.
	Width int
	// Delay of the output, may be nil.
	Delay *evsim.Delay
	// Drive strengths of the output. Zero values mean strong.
	Drive0, Drive1 logic.Strength
	// New returns a new instance of the part's functor. May be nil for parts
	// that only drive, like constants set by the caller.
	New func() evsim.Functor
	// Parts are the sub-parts of a chip. See Chip.
	Parts []Part
}

// NewPart wraps p with the given connections into a Part. It panics if the
// connection string is invalid.
//
func (p *PartSpec) NewPart(connections string) Part {
	c, err := ParseConnections(connections)
	if err != nil {
		panic(err)
	}
	return Part{p, c}
}

// NewPartFn is a function that wires a part with the given connections.
//
type NewPartFn func(connections string) Part

// A Part wraps a part specification together with its connections.
//
type Part struct {
	*PartSpec
	Conns []Connection
}

func (p *PartSpec) pinNames() []string {
	names := make([]string, 0, len(p.Inputs)+len(p.Passive)+1)
	names = append(names, p.Inputs...)
	names = append(names, p.Passive...)
	if p.Output != "" {
		names = append(names, p.Output)
	}
	return names
}

func (p *PartSpec) strengths() (s0, s1 logic.Strength) {
	s0, s1 = p.Drive0, p.Drive1
	if s0 == logic.HiZ {
		s0 = logic.Strong
	}
	if s1 == logic.HiZ {
		s1 = logic.Strong
	}
	return s0, s1
}

// A Node is an instance of a part in a design.
//
type Node struct {
	Name string
	Spec *PartSpec
	Fun  evsim.Functor

	pinNames []string
	pinIdx   map[string]int
	pins     []*Link // allocated on first access
	net      *evsim.Net
}

// NumPins returns the number of pins of n.
//
func (n *Node) NumPins() int { return len(n.pinNames) }

// Dir returns the direction of pin i.
//
func (n *Node) Dir(i int) Dir {
	switch {
	case i < len(n.Spec.Inputs):
		return Input
	case i < len(n.Spec.Inputs)+len(n.Spec.Passive):
		return Passive
	}
	return Output
}

// Pin returns the link of pin i, allocating it on first access.
//
func (n *Node) Pin(i int) *Link {
	if n.pins == nil {
		n.pins = make([]*Link, len(n.pinNames))
	}
	l := n.pins[i]
	if l == nil {
		l = newLink(n, i, n.Dir(i))
		n.pins[i] = l
	}
	return l
}

// PinByName returns the link of the named pin.
//
func (n *Node) PinByName(name string) (*Link, bool) {
	i, ok := n.pinIdx[name]
	if !ok {
		return nil, false
	}
	return n.Pin(i), true
}

// Links returns the allocated links of n.
//
func (n *Node) Links() []*Link {
	var r []*Link
	for _, l := range n.pins {
		if l != nil {
			r = append(r, l)
		}
	}
	return r
}

// Net returns the runtime net of n once the design has been elaborated.
//
func (n *Node) Net() *evsim.Net { return n.net }
