// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import "github.com/db47h/evsim/logic"

// Signal ports.
//
const (
	PortAssign = 0 // normal assignment
	PortForce  = 1 // force
)

// Storage is implemented by functors that hold a value that threads can load
// and store.
//
type Storage interface {
	Functor
	Load(ctx *Context) logic.Vector4
	Store(n *Net, v logic.Vector4, ctx *Context)
}

// Signal is the functor of a variable or a wire. It holds the current value
// and propagates every change.
//
// Values received on PortAssign update the signal unless it is forced.
// Values received on PortForce force it until Release is called.
//
type Signal struct {
	width  int
	wire   bool
	value  logic.Vector4
	driven logic.Vector4
	forced bool
	str    logic.Vector8
	hasStr bool
}

// NewVariable returns a variable of the given width, initialized to X.
// A released variable keeps its forced value until the next assignment.
//
func NewVariable(width int) *Signal {
	return &Signal{width: width, value: logic.NewVector4(width, logic.BX), driven: logic.NewVector4(width, logic.BX)}
}

// NewWire returns a wire of the given width, initialized to Z. A released
// wire reverts to its driven value.
//
func NewWire(width int) *Signal {
	return &Signal{width: width, wire: true, value: logic.NewVector4(width, logic.BZ), driven: logic.NewVector4(width, logic.BZ)}
}

// Width returns the signal width.
//
func (s *Signal) Width() int { return s.width }

// Forced returns true if the signal is forced.
//
func (s *Signal) Forced() bool { return s.forced }

// Load returns the current value of s. ctx is ignored.
//
func (s *Signal) Load(*Context) logic.Vector4 { return s.value }

// Store sets the value of s, as a blocking assignment. It is ignored while s
// is forced.
//
func (s *Signal) Store(n *Net, v logic.Vector4, _ *Context) {
	n.checkWritable()
	n.CheckWidth(n.Port(PortAssign), v, s.width)
	s.driven = v
	if !s.forced {
		s.set(n, v)
	}
}

func (s *Signal) set(n *Net, v logic.Vector4) {
	s.value, s.hasStr = v, false
	n.SendVec4(v, nil)
}

// NewSignalNet returns a new net with signal functor sig. The initial value
// of sig is propagated before time 0.
//
func (s *Simulation) NewSignalNet(name string, sig *Signal) *Net {
	return s.NewNet(name, sig)
}

// Init implements Initializer.
//
func (s *Signal) Init(n *Net) { n.SendVec4(s.value, nil) }

// RecvVec4 implements Functor.
//
func (s *Signal) RecvVec4(p Port, v logic.Vector4, ctx *Context) {
	p.Net.CheckWidth(p, v, s.width)
	switch p.Index {
	case PortAssign:
		s.Store(p.Net, v, ctx)
	case PortForce:
		s.forced = true
		s.set(p.Net, v)
	default:
		p.Net.CheckPort(p, 2)
	}
}

// RecvVec4PV implements PartialReceiver. Part assignments merge into the
// current value.
//
func (s *Signal) RecvVec4PV(p Port, v logic.Vector4, base, vwid int, ctx *Context) {
	if vwid != s.width || base < 0 || base+v.Size() > vwid {
		p.Net.Fatalf("part [%d+:%d] of %d bits does not fit a %d bits signal", base, v.Size(), vwid, s.width)
	}
	var cur logic.Vector4
	if p.Index == PortForce {
		cur = s.value.Clone()
	} else {
		cur = s.driven.Clone()
	}
	cur.SetVec(base, v)
	s.RecvVec4(p, cur, ctx)
}

// RecvVec8 implements StrengthReceiver. Strength information is propagated
// unchanged.
//
func (s *Signal) RecvVec8(p Port, v logic.Vector8) {
	if v.Size() != s.width {
		p.Net.Fatalf("width mismatch on port %d: got %d bits, want %d", p.Index, v.Size(), s.width)
	}
	p.Net.CheckPort(p, 2)
	v4 := v.Reduce4()
	if p.Index == PortAssign {
		s.driven = v4
		if s.forced {
			return
		}
	} else {
		s.forced = true
	}
	if s.hasStr && s.str.EEQ(v) {
		return
	}
	s.value, s.str, s.hasStr = v4, v, true
	p.Net.SendVec8(v)
}

// Release releases a forced signal. Wires revert to their driven value,
// variables keep the forced value.
//
func (s *Signal) Release(n *Net) {
	if !s.forced {
		return
	}
	s.forced = false
	if s.wire {
		s.set(n, s.driven)
	} else {
		s.driven = s.value
	}
}

// AutoSignal is a variable allocated in the context of an automatic scope.
// Each live context holds its own value.
//
type AutoSignal struct {
	width int
	scope *Scope
	item  int
}

type autoValue struct {
	v logic.Vector4
}

// NewAutoSignal returns a new variable of scope sc, which must be automatic.
//
func NewAutoSignal(sc *Scope, width int) (*AutoSignal, error) {
	a := &AutoSignal{width: width, scope: sc}
	i, err := sc.Register(a)
	if err != nil {
		return nil, err
	}
	a.item = i
	return a, nil
}

// AllocInstance implements AutomaticHooks.
//
func (a *AutoSignal) AllocInstance(ctx *Context) {
	ctx.SetItem(a.item, &autoValue{logic.NewVector4(a.width, logic.BX)})
}

// ResetInstance implements AutomaticHooks.
//
func (a *AutoSignal) ResetInstance(ctx *Context) {
	ctx.Item(a.item).(*autoValue).v = logic.NewVector4(a.width, logic.BX)
}

// FreeInstance implements AutomaticHooks.
//
func (a *AutoSignal) FreeInstance(ctx *Context) {}

func (a *AutoSignal) slot(n *Net, ctx *Context) *autoValue {
	if ctx == nil || ctx.scope != a.scope {
		n.Fatalf("automatic variable accessed without a context of scope %q", a.scope.Name)
	}
	return ctx.Item(a.item).(*autoValue)
}

// Load returns the value of a in context ctx.
//
func (a *AutoSignal) Load(ctx *Context) logic.Vector4 {
	if ctx == nil || ctx.scope != a.scope {
		panic(&FatalError{Kind: KindInternal, Msg: "automatic variable loaded without a context of scope " + a.scope.Name})
	}
	return ctx.Item(a.item).(*autoValue).v
}

// Store sets the value of a in context ctx and propagates it within that
// context.
//
func (a *AutoSignal) Store(n *Net, v logic.Vector4, ctx *Context) {
	n.checkWritable()
	n.CheckWidth(n.Port(PortAssign), v, a.width)
	av := a.slot(n, ctx)
	if av.v.EEQ(v) {
		return
	}
	av.v = v
	n.SendVec4(v, ctx)
}

// RecvVec4 implements Functor.
//
func (a *AutoSignal) RecvVec4(p Port, v logic.Vector4, ctx *Context) {
	p.Net.CheckPort(p, 1)
	a.Store(p.Net, v, ctx)
}
