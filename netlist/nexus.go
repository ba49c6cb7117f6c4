// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package netlist

import (
	"github.com/db47h/evsim"
	"github.com/db47h/evsim/logic"
)

// Dir is the direction of a pin.
//
type Dir int

// Pin directions.
//
const (
	Input   Dir = iota // the node reads the nexus
	Output             // the node drives the nexus
	Passive            // the node observes the nexus without needing a driver
)

func (d Dir) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	}
	return "passive"
}

// A Link is one pin of one node. Every link belongs to exactly one Nexus.
// Links that do not belong to a node anchor the named nexuses of a design.
//
type Link struct {
	node *Node
	pin  int
	dir  Dir
	next *Link // circular list of the members of the nexus
	nex  *Nexus
}

func newLink(n *Node, pin int, dir Dir) *Link {
	l := &Link{node: n, pin: pin, dir: dir}
	l.next = l
	l.nex = &Nexus{size: 1, head: l}
	l.nex.parent = l.nex
	return l
}

// Node returns the node l belongs to, nil for anchors.
//
func (l *Link) Node() *Node { return l.node }

// Pin returns the pin number of l in its node.
//
func (l *Link) Pin() int { return l.pin }

// Dir returns the direction of l.
//
func (l *Link) Dir() Dir { return l.dir }

// Nexus returns the nexus l belongs to.
//
func (l *Link) Nexus() *Nexus {
	x := l.nex.find()
	l.nex = x
	return x
}

func (l *Link) String() string {
	if l.node == nil {
		return l.Nexus().Name
	}
	return l.node.Name + "." + l.node.pinNames[l.pin]
}

// A Nexus is a set of links connected together. Nexuses are merged by
// Connect and never split.
//
type Nexus struct {
	Name string
	Kind evsim.ResolvKind

	parent *Nexus
	size   int
	head   *Link
	net    *evsim.Net
}

// find returns the representative of x, halving paths on the way.
func (x *Nexus) find() *Nexus {
	for x.parent != x {
		x.parent = x.parent.parent
		x = x.parent
	}
	return x
}

// Connect merges the nexuses of a and b and returns the result.
//
func Connect(a, b *Link) *Nexus {
	ra, rb := a.Nexus(), b.Nexus()
	if ra == rb {
		return ra
	}
	if ra.size < rb.size {
		ra, rb = rb, ra
	}
	rb.parent = ra
	ra.size += rb.size
	if ra.Name == "" {
		ra.Name = rb.Name
	}
	if ra.Kind == evsim.Tri {
		ra.Kind = rb.Kind
	}
	// splice the member lists
	ha, hb := ra.head, rb.head
	ha.next, hb.next = hb.next, ha.next
	rb.head = nil
	return ra
}

// Len returns the number of links in x.
//
func (x *Nexus) Len() int { return x.find().size }

// Links returns the links of x.
//
func (x *Nexus) Links() []*Link {
	x = x.find()
	r := make([]*Link, 0, x.size)
	l := x.head
	for {
		r = append(r, l)
		l = l.next
		if l == x.head {
			break
		}
	}
	return r
}

func (x *Nexus) count(dir Dir) int {
	n := 0
	for _, l := range x.Links() {
		if l.node != nil && l.dir == dir {
			n++
		}
	}
	return n
}

// DriverCount returns the number of output pins in x.
//
func (x *Nexus) DriverCount() int { return x.count(Output) }

// MultiplyDriven returns true if x has more than one driver.
//
func (x *Nexus) MultiplyDriven() bool { return x.DriverCount() > 1 }

// CountSignals returns the number of passive pins in x.
//
func (x *Nexus) CountSignals() int { return x.count(Passive) }

// FindNextOutput returns the first output link of x after l in list order,
// or nil. If l is nil, the search starts at the head of the list.
//
func (x *Nexus) FindNextOutput(l *Link) *Link {
	x = x.find()
	start := x.head
	if l != nil {
		start = l.next
	}
	c := start
	for {
		if c.node != nil && c.dir == Output && c != l {
			return c
		}
		c = c.next
		if c == start || l != nil && c == l {
			return nil
		}
	}
}

// Net returns the runtime net holding the resolved value of x once the design
// has been elaborated.
//
func (x *Nexus) Net() *evsim.Net { return x.find().net }

// Value returns the resolved value of x.
//
func (x *Nexus) Value() (logic.Vector4, bool) {
	n := x.Net()
	if n == nil {
		return logic.Vector4{}, false
	}
	return n.Value()
}
