// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/logic"
	"github.com/db47h/evsim/netlist"
)

// Mux2 is a two way multiplexer. Port 0 and 1 are the data inputs, port 2 is
// the one bit select input. An unknown select yields the bits on which both
// inputs agree and X elsewhere.
//
type Mux2 struct {
	trigger
}

// NewMux2 returns a two way multiplexer of the given width.
//
func NewMux2(width int) *Mux2 {
	return &Mux2{trigger{inputs: newInputs(width, width, 1)}}
}

// Eval implements evsim.Evaluator.
//
func (m *Mux2) Eval(n *evsim.Net) {
	a, b := m.inputs[0], m.inputs[1]
	switch m.inputs[2].Value(0) {
	case logic.B0:
		n.SendVec4(a.Z2X(), nil)
	case logic.B1:
		n.SendVec4(b.Z2X(), nil)
	default:
		n.SendVec4(merge(a, b), nil)
	}
}

// merge returns the bits common to a and b, X elsewhere.
func merge(a, b logic.Vector4) logic.Vector4 {
	out := logic.NewVector4(a.Size(), logic.BX)
	for i := 0; i < a.Size(); i++ {
		if x := a.Value(i); x == b.Value(i) && !x.IsXZ() {
			out.SetBit(i, x)
		}
	}
	return out
}

// MuxN is an N-way multiplexer. Ports 0 to n-1 are the data inputs, port n is
// the select input. An out of range select yields X, so does an unknown one
// unless all the candidates agree.
//
type MuxN struct {
	trigger
	n int
}

// NewMuxN returns an N-way multiplexer with a select input of selWidth bits.
//
func NewMuxN(width, ways, selWidth int) *MuxN {
	return &MuxN{trigger{inputs: newInputs(append(repeat(ways, width), selWidth)...)}, ways}
}

// Eval implements evsim.Evaluator.
//
func (m *MuxN) Eval(n *evsim.Net) {
	sel := m.inputs[m.n]
	w := m.inputs[0].Size()
	if !sel.HasXZ() {
		if i, ok := sel.Uint64(); ok && i < uint64(m.n) {
			n.SendVec4(m.inputs[i].Z2X(), nil)
			return
		}
		n.SendVec4(logic.NewVector4(w, logic.BX), nil)
		return
	}
	out := m.inputs[0].Z2X()
	for _, v := range m.inputs[1:m.n] {
		out = merge(out, v)
	}
	n.SendVec4(out, nil)
}

// Mux returns a multiplexer.
//
//	Inputs: a, b, sel
//	Outputs: out
//	Function: if sel == 0 { out = a } else { out = b }
//
func Mux(w string) netlist.Part { return mux.NewPart(w) }

var mux = SpecMuxN(1)

// SpecMuxN returns a PartSpec for an n-bits Mux
//
//	Inputs: a, b, sel
//	Outputs: out
//	Function: for i := range out { if sel == 0 { out[i] = a[i] } else { out[i] = b[i] } }
//
func SpecMuxN(bits int) *netlist.PartSpec {
	name := "MUX"
	if bits > 1 {
		name += strconv.Itoa(bits)
	}
	return spec(name, []string{pA, pB, pSel}, bits, func() evsim.Functor { return NewMux2(bits) })
}

var mux16 = SpecMuxN(16)

// Mux16 returns a 16-bits Mux
//
//	Inputs: a, b, sel
//	Outputs: out
//	Function: for i := range out { if sel == 0 { out[i] = a[i] } else { out[i] = b[i] } }
//
func Mux16(c string) netlist.Part {
	return mux16.NewPart(c)
}

// SpecMuxWay returns a PartSpec for an n-way multiplexer.
//
//	Inputs: in[ways], sel
//	Outputs: out
//	Function: out = in[sel]
//
func SpecMuxWay(bits, ways, selWidth int) *netlist.PartSpec {
	return spec("MUX"+strconv.Itoa(ways)+"WAY"+strconv.Itoa(bits),
		append(bus(ways, pIn), pSel), bits,
		func() evsim.Functor { return NewMuxN(bits, ways, selWidth) })
}

// DMux is a demultiplexer. Port 0 is the data input, port 1 the one bit
// select. The output is twice as wide as the input: the low half is the a
// output, the high half the b output.
//
type DMux struct {
	trigger
}

// NewDMux returns a demultiplexer with data inputs of the given width.
//
func NewDMux(width int) *DMux {
	return &DMux{trigger{inputs: newInputs(width, 1)}}
}

// Eval implements evsim.Evaluator.
//
func (m *DMux) Eval(n *evsim.Net) {
	in := m.inputs[0].Z2X()
	zero := logic.NewVector4(in.Size(), logic.B0)
	switch m.inputs[1].Value(0) {
	case logic.B0:
		n.SendVec4(logic.Concat(in, zero), nil)
	case logic.B1:
		n.SendVec4(logic.Concat(zero, in), nil)
	default:
		x := merge(in, zero)
		n.SendVec4(logic.Concat(x, x), nil)
	}
}

// SpecDMux returns the PartSpec of a demultiplexer. Use part selects to
// split its output.
//
//	Inputs: in, sel
//	Outputs: out
//	Function: if sel == 0 { out = {0, in} } else { out = {in, 0} }
//
func SpecDMux(bits int) *netlist.PartSpec {
	return spec("DMUX"+strconv.Itoa(bits), []string{pIn, pSel}, 2*bits, func() evsim.Functor { return NewDMux(bits) })
}
