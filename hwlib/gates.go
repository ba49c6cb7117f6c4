// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/logic"
	"github.com/db47h/evsim/netlist"
)

// GateOp is the function of a logic gate.
//
type GateOp int

// Gate functions.
//
const (
	OpAnd GateOp = iota
	OpNand
	OpOr
	OpNor
	OpXor
	OpXnor
	OpBuf  // Z inputs become X
	OpNot  // Z inputs become X
	OpBufZ // Z passes through
)

var gateNames = [...]string{"AND", "NAND", "OR", "NOR", "XOR", "XNOR", "BUF", "NOT", "BUFZ"}

func (op GateOp) String() string { return gateNames[op] }

// Gate is an N-input bitwise logic gate. All inputs and the output have the
// same width.
//
type Gate struct {
	trigger
	op GateOp
}

// NewGate returns a gate with n inputs of the given width. Buffers and
// inverters have a single input.
//
func NewGate(op GateOp, width, n int) *Gate {
	if op >= OpBuf {
		n = 1
	}
	return &Gate{trigger{inputs: newInputs(repeat(n, width)...)}, op}
}

// Eval implements evsim.Evaluator.
//
func (g *Gate) Eval(n *evsim.Net) {
	n.SendVec4(g.eval(), nil)
}

func (g *Gate) eval() logic.Vector4 {
	in := g.inputs
	switch g.op {
	case OpBuf:
		return in[0].Z2X()
	case OpNot:
		return in[0].Invert()
	case OpBufZ:
		return in[0]
	}
	out := in[0].Z2X()
	for _, v := range in[1:] {
		switch g.op {
		case OpAnd, OpNand:
			out = out.And(v)
		case OpOr, OpNor:
			out = out.Or(v)
		default:
			out = out.Xor(v)
		}
	}
	switch g.op {
	case OpNand, OpNor, OpXnor:
		out = out.Invert()
	}
	return out
}

func gateSpec(op GateOp, width, n int) *netlist.PartSpec {
	name := op.String()
	var in []string
	if op >= OpBuf {
		in = []string{pIn}
	} else {
		in = bus(n, pIn)
		name += strconv.Itoa(n)
	}
	if width > 1 {
		name += "_" + strconv.Itoa(width)
	}
	return spec(name, in, width, func() evsim.Functor { return NewGate(op, width, n) })
}

// GateN returns an N-input gate of the given width.
//
//	Inputs: in[n]
//	Outputs: out
//	Function: out = in[0] op in[1] op ... op in[n-1], bitwise
//
func GateN(op GateOp, width, n int) *netlist.PartSpec { return gateSpec(op, width, n) }

// two input, one bit gates
func newGate2(name string, op GateOp) *netlist.PartSpec {
	return &netlist.PartSpec{
		Name:   name,
		Inputs: []string{pA, pB},
		Output: pOut,
		Width:  1,
		New:    func() evsim.Functor { return NewGate(op, 1, 2) },
	}
}

var (
	notGate = &netlist.PartSpec{Name: "NOT", Inputs: []string{pIn}, Output: pOut, Width: 1,
		New: func() evsim.Functor { return NewGate(OpNot, 1, 1) }}
	and  = newGate2("AND", OpAnd)
	nand = newGate2("NAND", OpNand)
	or   = newGate2("OR", OpOr)
	nor  = newGate2("NOR", OpNor)
	xor  = newGate2("XOR", OpXor)
	xnor = newGate2("XNOR", OpXnor)
)

// Not returns a NOT gate.
//
//	Inputs: in
//	Outputs: out
//	Function: out = !in
//
func Not(w string) netlist.Part { return notGate.NewPart(w) }

// And returns a AND gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a && b
//
func And(w string) netlist.Part { return and.NewPart(w) }

// Nand returns a NAND gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = !(a && b)
//
func Nand(w string) netlist.Part { return nand.NewPart(w) }

// Or returns a OR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a || b
//
func Or(w string) netlist.Part { return or.NewPart(w) }

// Nor returns a NOR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = !(a || b)
//
func Nor(w string) netlist.Part { return nor.NewPart(w) }

// Xor returns a XOR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = (a && !b) || (!a && b)
//
func Xor(w string) netlist.Part { return xor.NewPart(w) }

// Xnor returns a XNOR gate.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a && b || !a && !b
//
func Xnor(w string) netlist.Part { return xnor.NewPart(w) }

// OrNWay returns a N-Way OR gate.
//
//	Inputs: in[n]
//	Outputs: out
//	Function: out = in[0] || in[1] || in[2] || ... || in[n-1]
//
func OrNWay(ways int) netlist.NewPartFn { return gateSpec(OpOr, 1, ways).NewPart }

// AndNWay returns a N-Way AND gate.
//
//	Inputs: in[n]
//	Outputs: out
//	Function: out = in[0] && in[1] && in[2] || ... && in[n-1]
//
func AndNWay(ways int) netlist.NewPartFn { return gateSpec(OpAnd, 1, ways).NewPart }
