// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/logic"
	"github.com/db47h/evsim/netlist"
)

// ArithOp is an arithmetic operator.
//
type ArithOp int

// Arithmetic operators.
//
const (
	OpAdd ArithOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
)

var arithNames = [...]string{"ADD", "SUB", "MUL", "DIV", "MOD", "POW"}

func (op ArithOp) String() string { return arithNames[op] }

// Arith computes a op b on two inputs of the same width. Any X or Z bit in an
// operand yields an all X result, so does a division by zero.
//
type Arith struct {
	trigger
	op     ArithOp
	signed bool
}

// NewArith returns an arithmetic functor.
//
func NewArith(op ArithOp, width int, signed bool) *Arith {
	return &Arith{trigger{inputs: newInputs(width, width)}, op, signed}
}

// Eval implements evsim.Evaluator.
//
func (f *Arith) Eval(n *evsim.Net) {
	a, b := f.inputs[0], f.inputs[1]
	var r logic.Vector4
	switch f.op {
	case OpAdd:
		r = logic.Add(a, b)
	case OpSub:
		r = logic.Sub(a, b)
	case OpMul:
		r = logic.Mul(a, b)
	case OpDiv:
		r = logic.Div(a, b, f.signed)
	case OpMod:
		r = logic.Mod(a, b, f.signed)
	case OpPow:
		r = logic.Pow(a, b, f.signed)
	}
	n.SendVec4(r, nil)
}

// SpecArith returns the PartSpec of an arithmetic operator.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a op b
//
func SpecArith(op ArithOp, bits int, signed bool) *netlist.PartSpec {
	name := op.String() + strconv.Itoa(bits)
	if signed {
		name += "S"
	}
	return spec(name, []string{pA, pB}, bits, func() evsim.Functor { return NewArith(op, bits, signed) })
}

// AdderN returns a N-bits adder. The carry is dropped.
//
//	Inputs: a, b
//	Outputs: out
//	Function: out = a + b
//
func AdderN(bits int) netlist.NewPartFn { return SpecArith(OpAdd, bits, false).NewPart }

// CmpOp is a comparison operator.
//
type CmpOp int

// Comparison operators.
//
const (
	OpEq CmpOp = iota
	OpNe
	OpCaseEq
	OpCaseNe
	OpGt
	OpGe
	OpLt
	OpLe
)

var cmpNames = [...]string{"EQ", "NE", "EEQ", "NEE", "GT", "GE", "LT", "LE"}

func (op CmpOp) String() string { return cmpNames[op] }

// Cmp compares two inputs of the same width. The output is a single bit.
//
type Cmp struct {
	trigger
	op     CmpOp
	signed bool
}

// NewCmp returns a comparator.
//
func NewCmp(op CmpOp, width int, signed bool) *Cmp {
	return &Cmp{trigger{inputs: newInputs(width, width)}, op, signed}
}

// Eval implements evsim.Evaluator.
//
func (f *Cmp) Eval(n *evsim.Net) {
	a, b := f.inputs[0], f.inputs[1]
	var r logic.Bit4
	switch f.op {
	case OpEq:
		r = logic.Eq(a, b)
	case OpNe:
		r = logic.Ne(a, b)
	case OpCaseEq:
		r = logic.CaseEq(a, b)
	case OpCaseNe:
		r = logic.CaseNe(a, b)
	case OpGt:
		r = logic.Lt(b, a, f.signed)
	case OpGe:
		r = logic.Le(b, a, f.signed)
	case OpLt:
		r = logic.Lt(a, b, f.signed)
	case OpLe:
		r = logic.Le(a, b, f.signed)
	}
	n.SendVec4(logic.FromBits(r), nil)
}

// SpecCmp returns the PartSpec of a comparator.
//
//	Inputs: a, b
//	Outputs: out (1 bit)
//
func SpecCmp(op CmpOp, bits int, signed bool) *netlist.PartSpec {
	name := op.String() + strconv.Itoa(bits)
	if signed {
		name += "S"
	}
	return spec(name, []string{pA, pB}, 1, func() evsim.Functor { return NewCmp(op, bits, signed) })
}
