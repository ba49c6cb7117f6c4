// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/logic"
	"github.com/db47h/evsim/netlist"
)

// ShiftOp is a shift operator.
//
type ShiftOp int

// Shift operators.
//
const (
	OpShl ShiftOp = iota
	OpShr
	OpSshr
)

// Shift shifts port 0 by the amount on port 1. An unknown amount yields X.
//
type Shift struct {
	trigger
	op ShiftOp
}

// NewShift returns a shifter for values of the given width, with a shift
// amount of amtWidth bits.
//
func NewShift(op ShiftOp, width, amtWidth int) *Shift {
	return &Shift{trigger{inputs: newInputs(width, amtWidth)}, op}
}

// Eval implements evsim.Evaluator.
//
func (f *Shift) Eval(n *evsim.Net) {
	v := f.inputs[0]
	amt, ok := f.inputs[1].Uint64()
	if !ok {
		n.SendVec4(logic.NewVector4(v.Size(), logic.BX), nil)
		return
	}
	if amt > uint64(v.Size()) {
		amt = uint64(v.Size())
	}
	switch f.op {
	case OpShl:
		n.SendVec4(logic.Shl(v, int(amt)), nil)
	default:
		n.SendVec4(logic.Shr(v, int(amt), f.op == OpSshr), nil)
	}
}

// ReduceOp is a reduction operator.
//
type ReduceOp int

// Reduction operators.
//
const (
	OpRAnd ReduceOp = iota
	OpROr
	OpRXor
	OpRNand
	OpRNor
	OpRXnor
)

// Reduce reduces all the bits of its single input to one bit.
//
type Reduce struct {
	trigger
	op ReduceOp
}

// NewReduce returns a reduction functor for inputs of the given width.
//
func NewReduce(op ReduceOp, width int) *Reduce {
	return &Reduce{trigger{inputs: newInputs(width)}, op}
}

// Eval implements evsim.Evaluator.
//
func (f *Reduce) Eval(n *evsim.Net) {
	v := f.inputs[0]
	var r logic.Bit4
	switch f.op {
	case OpRAnd, OpRNand:
		r = logic.ReduceAnd(v)
	case OpROr, OpRNor:
		r = logic.ReduceOr(v)
	default:
		r = logic.ReduceXor(v)
	}
	if f.op >= OpRNand {
		r = r.Not()
	}
	n.SendVec4(logic.FromBits(r), nil)
}

// Concat concatenates its inputs, port 0 going to the least significant
// bits of the output.
//
type Concat struct {
	trigger
}

// NewConcat returns a concatenation of inputs of the given widths.
//
func NewConcat(widths ...int) *Concat {
	return &Concat{trigger{inputs: newInputs(widths...)}}
}

// Eval implements evsim.Evaluator.
//
func (f *Concat) Eval(n *evsim.Net) {
	n.SendVec4(logic.Concat(f.inputs...), nil)
}

// SpecConcat returns the PartSpec of a concatenation.
//
//	Inputs: in[len(widths)]
//	Outputs: out
//
func SpecConcat(widths ...int) *netlist.PartSpec {
	w := 0
	for _, x := range widths {
		w += x
	}
	return spec("CONCAT"+strconv.Itoa(w), bus(len(widths), pIn), w, func() evsim.Functor { return NewConcat(widths...) })
}

// Repeat outputs count copies of its input.
//
type Repeat struct {
	in      inputs
	count   int
	started bool
}

// NewRepeat returns a repeat functor.
//
func NewRepeat(width, count int) *Repeat {
	return &Repeat{in: newInputs(width), count: count}
}

// RecvVec4 implements evsim.Functor.
//
func (f *Repeat) RecvVec4(p evsim.Port, v logic.Vector4, ctx *evsim.Context) {
	if !f.in.recv(p, v) && f.started {
		return
	}
	f.started = true
	vs := make([]logic.Vector4, f.count)
	for i := range vs {
		vs[i] = v
	}
	p.Net.SendVec4(logic.Concat(vs...), ctx)
}

// Part selects wid bits at a fixed offset of its input. Strength is
// preserved. Bits outside of the input read as X.
//
type Part struct {
	Base, Wid int
	vwid      int
}

// NewPart returns a part select of bits [base, base+wid) of an input of width
// vwid.
//
func NewPart(vwid, base, wid int) *Part {
	return &Part{Base: base, Wid: wid, vwid: vwid}
}

// RecvVec4 implements evsim.Functor.
//
func (f *Part) RecvVec4(p evsim.Port, v logic.Vector4, ctx *evsim.Context) {
	p.Net.CheckPort(p, 1)
	p.Net.CheckWidth(p, v, f.vwid)
	p.Net.SendVec4(v.Subvalue(f.Base, f.Wid), ctx)
}

// RecvVec8 implements evsim.StrengthReceiver.
//
func (f *Part) RecvVec8(p evsim.Port, v logic.Vector8) {
	p.Net.CheckPort(p, 1)
	if v.Size() != f.vwid {
		p.Net.Fatalf("width mismatch on port %d: got %d bits, want %d", p.Index, v.Size(), f.vwid)
	}
	p.Net.SendVec8(v.Subvalue(f.Base, f.Wid))
}

// RecvVec4PV implements evsim.PartialReceiver. Only the bits overlapping the
// selected part are forwarded.
//
func (f *Part) RecvVec4PV(p evsim.Port, v logic.Vector4, base, vwid int, ctx *evsim.Context) {
	p.Net.CheckPort(p, 1)
	if vwid != f.vwid {
		p.Net.Fatalf("width mismatch on port %d: got %d bits, want %d", p.Index, vwid, f.vwid)
	}
	lo, hi := base, base+v.Size()
	if lo < f.Base {
		lo = f.Base
	}
	if hi > f.Base+f.Wid {
		hi = f.Base + f.Wid
	}
	if lo >= hi {
		return
	}
	p.Net.SendVec4PV(v.Subvalue(lo-base, hi-lo), lo-f.Base, f.Wid, ctx)
}

// PartPV places its input at a fixed offset of a wider vector. It sends part
// updates, so the receiver only sees bits [Base, Base+input width) change.
//
type PartPV struct {
	Base, VWid int
}

// RecvVec4 implements evsim.Functor.
//
func (f *PartPV) RecvVec4(p evsim.Port, v logic.Vector4, ctx *evsim.Context) {
	p.Net.CheckPort(p, 1)
	p.Net.SendVec4PV(v, f.Base, f.VWid, ctx)
}

// RecvVec8 implements evsim.StrengthReceiver.
//
func (f *PartPV) RecvVec8(p evsim.Port, v logic.Vector8) {
	p.Net.CheckPort(p, 1)
	p.Net.SendVec8PV(v, f.Base, f.VWid)
}

// PartVar selects wid bits of port 0 at the offset on port 1. Bits outside of
// the input and unknown offsets read as X.
//
type PartVar struct {
	trigger
	wid    int
	signed bool
}

// NewPartVar returns a variable part select of wid bits of an input of width
// vwid. The offset input is offWidth bits wide.
//
func NewPartVar(vwid, offWidth, wid int, signed bool) *PartVar {
	return &PartVar{trigger{inputs: newInputs(vwid, offWidth)}, wid, signed}
}

// Eval implements evsim.Evaluator.
//
func (f *PartVar) Eval(n *evsim.Net) {
	off := f.inputs[1]
	var base int64
	ok := false
	if f.signed {
		base, ok = off.Int64()
	} else {
		var u uint64
		u, ok = off.Uint64()
		base = int64(u)
		if u > uint64(f.inputs[0].Size()) {
			base = int64(f.inputs[0].Size())
		}
	}
	if !ok || base < -int64(f.wid) || base > int64(f.inputs[0].Size()) {
		n.SendVec4(logic.NewVector4(f.wid, logic.BX), nil)
		return
	}
	n.SendVec4(f.inputs[0].Subvalue(int(base), f.wid), nil)
}

// Extend resizes its input to a fixed width, sign extending when Signed is
// set and zero extending otherwise.
//
type Extend struct {
	Width  int
	Signed bool
}

// RecvVec4 implements evsim.Functor.
//
func (f *Extend) RecvVec4(p evsim.Port, v logic.Vector4, ctx *evsim.Context) {
	p.Net.CheckPort(p, 1)
	pad := logic.PadZero
	if f.Signed {
		pad = logic.PadSign
	}
	p.Net.SendVec4(v.Resize(f.Width, pad), ctx)
}
