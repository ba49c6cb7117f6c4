// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package evsim

import (
	"strconv"

	"github.com/db47h/evsim/logic"
)

// A Port identifies one input of a net's functor.
//
type Port struct {
	Net   *Net
	Index int
}

func (p Port) String() string {
	if p.Net == nil {
		return "<nil>." + strconv.Itoa(p.Index)
	}
	return p.Net.Name + "." + strconv.Itoa(p.Index)
}

// A Functor computes the output of a net from the values received on its
// input ports. Every functor receives whole 4-state vectors. ctx is the
// automatic context the value belongs to, nil for static values.
//
// Functors must never call the receive methods of other functors directly:
// outputs are sent with the Send methods of their net, which schedule one
// delivery event per fanout port.
//
type Functor interface {
	RecvVec4(p Port, v logic.Vector4, ctx *Context)
}

// PartialReceiver is implemented by functors that accept part updates: v is
// the new value of bits [base, base+v.Size()) of an input of width vwid.
// Functors that do not implement it receive v widened with Z bits.
//
type PartialReceiver interface {
	RecvVec4PV(p Port, v logic.Vector4, base, vwid int, ctx *Context)
}

// StrengthReceiver is implemented by functors that accept strength vectors.
// Functors that do not implement it receive the 4-state reduction of the
// strength vector.
//
type StrengthReceiver interface {
	RecvVec8(p Port, v logic.Vector8)
}

// PartialStrengthReceiver is the strength aware version of PartialReceiver.
//
type PartialStrengthReceiver interface {
	RecvVec8PV(p Port, v logic.Vector8, base, vwid int)
}

// An Initializer sends the initial output of its net. Functors without
// inputs, like constant drivers, use it to drive their value.
//
type Initializer interface {
	Init(n *Net)
}

// An Evaluator computes the output of its net on demand. See Net.Trigger.
//
type Evaluator interface {
	Eval(n *Net)
}

// Delay is a propagation delay applied to the output of a net. The delay of
// a transition depends on the new value: Rise for 1, Fall for 0, Decay for Z
// and the smallest of all three for X. For vectors, the largest delay of all
// changed bits is used.
//
type Delay struct {
	Rise, Fall, Decay Time
}

// UniformDelay returns a delay of d for all transitions.
//
func UniformDelay(d Time) Delay { return Delay{d, d, d} }

func (d *Delay) bitDelay(b logic.Bit4) Time {
	switch b {
	case logic.B0:
		return d.Fall
	case logic.B1:
		return d.Rise
	case logic.BZ:
		return d.Decay
	}
	m := d.Rise
	if d.Fall < m {
		m = d.Fall
	}
	if d.Decay < m {
		m = d.Decay
	}
	return m
}

// For returns the delay of the transition from -> to.
//
func (d *Delay) For(from, to logic.Vector4) Time {
	var r Time
	for i := 0; i < to.Size(); i++ {
		b := to.Value(i)
		if i < from.Size() && from.Value(i) == b {
			continue
		}
		if t := d.bitDelay(b); t > r {
			r = t
		}
	}
	return r
}

// A Net is a node of the runtime graph: a functor and the list of ports its
// output feeds.
//
type Net struct {
	Name string
	Fun  Functor

	sim    *Simulation
	fanout []Port

	last4 logic.Vector4
	has4  bool
	last8 logic.Vector8
	has8  bool

	value    logic.Vector4 // value seen by readers
	hasValue bool
	strength logic.Vector8
	hasStr   bool

	delay       *Delay
	pending     []*outEvent
	evalPending bool
	watchers    []*Callback
}

// NewNet returns a new net with functor f. f may be nil for nets that are
// only used as drivers. If f implements Initializer, its Init method is
// queued for execution before time 0.
//
func (s *Simulation) NewNet(name string, f Functor) *Net {
	n := &Net{Name: name, Fun: f, sim: s}
	if i, ok := f.(Initializer); ok {
		s.ScheduleInit(func() { i.Init(n) })
	}
	return n
}

// Sim returns the simulation n belongs to.
//
func (n *Net) Sim() *Simulation { return n.sim }

// Port returns input port i of n.
//
func (n *Net) Port(i int) Port { return Port{n, i} }

// Connect adds ports to the fanout of n.
//
func (n *Net) Connect(ports ...Port) error {
	if len(n.fanout)+len(ports) > n.sim.cfg.PinLimit {
		return ConfigError("net %q: fanout of %d exceeds the pin limit of %d", n.Name, len(n.fanout)+len(ports), n.sim.cfg.PinLimit)
	}
	for _, p := range ports {
		if p.Net == nil || p.Index < 0 {
			return ConfigError("net %q: invalid fanout port %v", n.Name, p)
		}
	}
	n.fanout = append(n.fanout, ports...)
	return nil
}

// Fanout returns the ports fed by n.
//
func (n *Net) Fanout() []Port { return n.fanout }

// SetDelay sets the output delay of n.
//
func (n *Net) SetDelay(d Delay) { n.delay = &d }

// Value returns the last value propagated by n. The second result is false
// if n never propagated anything.
//
func (n *Net) Value() (logic.Vector4, bool) { return n.value, n.hasValue }

// Strength returns the last strength vector propagated by n.
//
func (n *Net) Strength() (logic.Vector8, bool) { return n.strength, n.hasStr }

// Fatalf aborts the simulation with an internal error about n.
//
func (n *Net) Fatalf(format string, args ...interface{}) {
	n.sim.fatal(n, nil, format, args...)
}

// CheckPort aborts the simulation if p is not one of the first nports ports
// of n.
//
func (n *Net) CheckPort(p Port, nports int) {
	if p.Index < 0 || p.Index >= nports {
		n.sim.fatal(n, nil, "invalid port %d (functor has %d ports)", p.Index, nports)
	}
}

// CheckWidth aborts the simulation if v is not want bits wide.
//
func (n *Net) CheckWidth(p Port, v logic.Vector4, want int) {
	if v.Size() != want {
		n.sim.fatal(n, nil, "width mismatch on port %d: got %d bits, want %d", p.Index, v.Size(), want)
	}
}

// SendVec4 propagates v to the fanout of n. Sending the same static value
// twice in a row is a no-op.
//
func (n *Net) SendVec4(v logic.Vector4, ctx *Context) {
	if ctx == nil {
		if n.has4 && n.last4.EEQ(v) {
			return
		}
		n.last4, n.has4, n.has8 = v, true, false
	}
	n.out(&outEvent{n: n, v4: v, ctx: ctx}, v)
}

// SendVec8 propagates the strength vector v to the fanout of n.
//
func (n *Net) SendVec8(v logic.Vector8) {
	if n.has8 && n.last8.EEQ(v) {
		return
	}
	n.last8, n.has8, n.has4 = v, true, false
	n.out(&outEvent{n: n, v8: v, is8: true}, v.Reduce4())
}

// SendVec4PV propagates a part update: v holds bits [base, base+v.Size()) of
// a vwid bits wide output.
//
func (n *Net) SendVec4PV(v logic.Vector4, base, vwid int, ctx *Context) {
	n.has4, n.has8 = false, false
	n.out(&outEvent{n: n, v4: v, ctx: ctx, pv: true, base: base, vwid: vwid}, v)
}

// SendVec8PV is the strength aware version of SendVec4PV.
//
func (n *Net) SendVec8PV(v logic.Vector8, base, vwid int) {
	n.has4, n.has8 = false, false
	n.out(&outEvent{n: n, v8: v, is8: true, pv: true, base: base, vwid: vwid}, v.Reduce4())
}

// checkWritable aborts the simulation if n is written to from a read-only
// sync callback.
func (n *Net) checkWritable() {
	if n.sim.InReadOnlySync() {
		n.sim.fatal(n, ErrReadOnlySync, "net written from a read-only sync callback")
	}
}

func (n *Net) out(ev *outEvent, v4 logic.Vector4) {
	n.checkWritable()
	if n.delay == nil {
		ev.run(n.sim)
		return
	}
	from := n.value
	if ev.pv {
		from = from.Subvalue(ev.base, v4.Size())
	}
	d := n.delay.For(from, v4)
	// inertial: a new output supersedes the ones still in flight
	for _, p := range n.pending {
		p.dead = true
	}
	n.pending = n.pending[:0]
	if d == 0 {
		ev.run(n.sim)
		return
	}
	n.pending = append(n.pending, ev)
	n.sim.schedule(d, Active, ev)
}

// Trigger schedules a call to the Eval method of the net's functor in the
// ACTIVE region. Repeated triggers before evaluation are coalesced into a
// single evaluation.
//
func (n *Net) Trigger() {
	if n.evalPending {
		return
	}
	if _, ok := n.Fun.(Evaluator); !ok {
		n.sim.fatal(n, nil, "functor cannot be triggered")
	}
	n.evalPending = true
	n.sim.schedule(0, Active, evalEvent{n})
}

type evalEvent struct{ n *Net }

func (e evalEvent) run(*Simulation) {
	e.n.evalPending = false
	e.n.Fun.(Evaluator).Eval(e.n)
}

// outEvent carries an output of a net to its fanout.
type outEvent struct {
	n          *Net
	v4         logic.Vector4
	v8         logic.Vector8
	is8, pv    bool
	base, vwid int
	ctx        *Context
	dead       bool
}

func (e *outEvent) cancelled() bool { return e.dead }

func (e *outEvent) run(s *Simulation) {
	n := e.n
	for i, p := range n.pending {
		if p == e {
			n.pending = append(n.pending[:i], n.pending[i+1:]...)
			break
		}
	}
	if e.ctx == nil {
		n.update(e)
	}
	for _, p := range n.fanout {
		var ev event
		switch {
		case e.is8 && e.pv:
			ev = &vec8PVEvent{dst: p, v: e.v8, base: e.base, vwid: e.vwid}
		case e.is8:
			ev = &vec8Event{dst: p, v: e.v8}
		case e.pv:
			ev = &vec4PVEvent{dst: p, v: e.v4, base: e.base, vwid: e.vwid, ctx: e.ctx}
		default:
			ev = &vec4Event{dst: p, v: e.v4, ctx: e.ctx}
		}
		s.schedule(0, Active, ev)
	}
}

// update records the value seen by readers and notifies watchers.
func (n *Net) update(e *outEvent) {
	switch {
	case e.pv:
		if !n.hasValue || n.value.Size() != e.vwid {
			n.value = logic.NewVector4(e.vwid, logic.BZ)
		} else {
			n.value = n.value.Clone()
		}
		if e.is8 {
			n.value.SetVec(e.base, e.v8.Reduce4())
			n.hasStr = false
		} else {
			n.value.SetVec(e.base, e.v4)
		}
	case e.is8:
		n.value = e.v8.Reduce4()
		n.strength, n.hasStr = e.v8, true
	default:
		n.value, n.hasStr = e.v4, false
	}
	n.hasValue = true
	for _, w := range n.watchers {
		w.notify()
	}
}

type vec4Event struct {
	dst Port
	v   logic.Vector4
	ctx *Context
}

func (e *vec4Event) run(s *Simulation) {
	fun(e.dst).RecvVec4(e.dst, e.v, e.ctx)
}

type vec4PVEvent struct {
	dst        Port
	v          logic.Vector4
	base, vwid int
	ctx        *Context
}

func (e *vec4PVEvent) run(s *Simulation) { recvVec4PV(e.dst, e.v, e.base, e.vwid, e.ctx) }

func recvVec4PV(p Port, v logic.Vector4, base, vwid int, ctx *Context) {
	f := fun(p)
	if pr, ok := f.(PartialReceiver); ok {
		pr.RecvVec4PV(p, v, base, vwid, ctx)
		return
	}
	if base < 0 || base+v.Size() > vwid {
		p.Net.Fatalf("part [%d+:%d] out of range for a %d bits port", base, v.Size(), vwid)
	}
	w := logic.NewVector4(vwid, logic.BZ)
	w.SetVec(base, v)
	f.RecvVec4(p, w, ctx)
}

type vec8Event struct {
	dst Port
	v   logic.Vector8
}

func (e *vec8Event) run(s *Simulation) {
	f := fun(e.dst)
	if sr, ok := f.(StrengthReceiver); ok {
		sr.RecvVec8(e.dst, e.v)
		return
	}
	f.RecvVec4(e.dst, e.v.Reduce4(), nil)
}

type vec8PVEvent struct {
	dst        Port
	v          logic.Vector8
	base, vwid int
}

func (e *vec8PVEvent) run(s *Simulation) {
	f := fun(e.dst)
	switch r := f.(type) {
	case PartialStrengthReceiver:
		r.RecvVec8PV(e.dst, e.v, e.base, e.vwid)
	case StrengthReceiver:
		if e.base < 0 || e.base+e.v.Size() > e.vwid {
			e.dst.Net.Fatalf("part [%d+:%d] out of range for a %d bits port", e.base, e.v.Size(), e.vwid)
		}
		r.RecvVec8(e.dst, e.v.PartExpand(e.vwid, e.base))
	default:
		recvVec4PV(e.dst, e.v.Reduce4(), e.base, e.vwid, nil)
	}
}

func fun(p Port) Functor {
	if p.Net.Fun == nil {
		p.Net.Fatalf("no functor to receive on port %d", p.Index)
	}
	return p.Net.Fun
}
