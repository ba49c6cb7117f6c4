// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/logic"
	"github.com/db47h/evsim/netlist"
)

// DFF port indices.
//
const (
	DFFData = iota
	DFFClock
	DFFEnable
	DFFSet
	DFFClear
)

// DFF is an edge triggered flip flop. Port DFFData receives the data,
// DFFClock the clock. DFFEnable, DFFSet and DFFClear are optional one bit
// inputs: enable defaults to 1, set and clear to 0. Set and clear are
// asynchronous, clear wins when both are asserted.
//
// The output changes on the positive edge of the clock, or on the negative
// edge when NegEdge is set.
//
type DFF struct {
	inputs
	q       logic.Vector4
	NegEdge bool
}

// NewDFF returns a flip flop of the given width. The output starts at X.
//
func NewDFF(width int) *DFF {
	in := newInputs(width, 1, 1, 1, 1)
	in[DFFEnable] = logic.FromBits(logic.B1)
	in[DFFSet] = logic.FromBits(logic.B0)
	in[DFFClear] = logic.FromBits(logic.B0)
	return &DFF{inputs: in, q: logic.NewVector4(width, logic.BX)}
}

// RecvVec4 implements evsim.Functor.
//
func (f *DFF) RecvVec4(p evsim.Port, v logic.Vector4, _ *evsim.Context) {
	p.Net.CheckPort(p, len(f.inputs))
	old := f.inputs[p.Index].Value(0)
	if !f.recv(p, v) {
		return
	}
	w := f.q.Size()
	switch p.Index {
	case DFFClock:
		e := logic.Edge(old, v.Value(0))
		if f.NegEdge {
			e = -e
		}
		if e <= 0 || f.inputs[DFFSet].Value(0) == logic.B1 || f.inputs[DFFClear].Value(0) == logic.B1 {
			return
		}
		switch f.inputs[DFFEnable].Value(0) {
		case logic.B0:
			return
		case logic.B1:
			f.set(p.Net, f.inputs[DFFData])
		default:
			f.set(p.Net, merge(f.q, f.inputs[DFFData]))
		}
	case DFFClear:
		if v.Value(0) == logic.B1 {
			f.set(p.Net, logic.NewVector4(w, logic.B0))
		}
	case DFFSet:
		if v.Value(0) == logic.B1 && f.inputs[DFFClear].Value(0) != logic.B1 {
			f.set(p.Net, logic.NewVector4(w, logic.B1))
		}
	}
}

func (f *DFF) set(n *evsim.Net, v logic.Vector4) {
	f.q = v.Z2X()
	n.SendVec4(f.q, nil)
}

// Q returns the current state of f.
//
func (f *DFF) Q() logic.Vector4 { return f.q }

// SpecDFF returns the PartSpec of a flip flop with data, clock and enable
// inputs.
//
//	Inputs: d, clk, en
//	Outputs: out
//	Function: out(t) = d(t-1) // where t is the current clock cycle.
//
func SpecDFF(bits int) *netlist.PartSpec {
	name := "DFF"
	if bits > 1 {
		name += strconv.Itoa(bits)
	}
	return spec(name, []string{pD, pClk, pEn}, bits, func() evsim.Functor { return NewDFF(bits) })
}

var dff = SpecDFF(1)

// DFFPart returns a clocked data flip flop.
//
//	Inputs: d, clk, en
//	Outputs: out
//	Function: out(t) = d(t-1) // where t is the current clock cycle.
//
func DFFPart(w string) netlist.Part { return dff.NewPart(w) }

// DFFN returns a N-bits flip flop.
//
func DFFN(bits int) netlist.NewPartFn { return SpecDFF(bits).NewPart }

// Latch is a level sensitive latch: the output follows port 0 while the one
// bit port 1 is high.
//
type Latch struct {
	inputs
	q logic.Vector4
}

// NewLatch returns a latch of the given width.
//
func NewLatch(width int) *Latch {
	return &Latch{inputs: newInputs(width, 1), q: logic.NewVector4(width, logic.BX)}
}

// RecvVec4 implements evsim.Functor.
//
func (f *Latch) RecvVec4(p evsim.Port, v logic.Vector4, _ *evsim.Context) {
	if !f.recv(p, v) {
		return
	}
	var q logic.Vector4
	switch f.inputs[1].Value(0) {
	case logic.B1:
		q = f.inputs[0].Z2X()
	case logic.B0:
		return
	default:
		q = merge(f.q, f.inputs[0])
	}
	if !q.EEQ(f.q) {
		f.q = q
		p.Net.SendVec4(q, nil)
	}
}

// SpecLatch returns the PartSpec of a latch.
//
//	Inputs: d, en
//	Outputs: out
//
func SpecLatch(bits int) *netlist.PartSpec {
	return spec("LATCH"+strconv.Itoa(bits), []string{pD, pEn}, bits, func() evsim.Functor { return NewLatch(bits) })
}
