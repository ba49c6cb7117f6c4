// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/logic"
	"github.com/db47h/evsim/netlist"
)

// Array port indices.
//
const (
	ArrayAddr = iota
	ArrayData
	ArrayWE
	ArrayClock
)

// Array is a memory of fixed width words. Its output is the whole memory,
// word i occupying bits [i*width, (i+1)*width). A write is sent as a part
// update of the written word only, so a part select reading another word
// sees no change.
//
// The word at ArrayAddr is written with the value on ArrayData on the
// positive edge of ArrayClock while ArrayWE is 1. Writes to unknown or out of
// range addresses are ignored.
//
type Array struct {
	inputs
	words []logic.Vector4
	width int
}

// NewArray returns an array of n words of the given width, with an address
// input of addrWidth bits. All words start at X.
//
func NewArray(n, width, addrWidth int) *Array {
	a := &Array{inputs: newInputs(addrWidth, width, 1, 1), words: make([]logic.Vector4, n), width: width}
	for i := range a.words {
		a.words[i] = logic.NewVector4(width, logic.BX)
	}
	return a
}

// Preload sets the initial value of word i. It must be called before the
// simulation starts.
//
func (a *Array) Preload(i int, v logic.Vector4) {
	a.words[i] = v.Resize(a.width, logic.PadZero)
}

// Len returns the number of words in a.
//
func (a *Array) Len() int { return len(a.words) }

// Word returns word i of a.
//
func (a *Array) Word(i int) logic.Vector4 { return a.words[i] }

// Write stores v in word i of a and propagates the change to the fanout of n.
// Writing the current value is a no-op.
//
func (a *Array) Write(n *evsim.Net, i int, v logic.Vector4) {
	n.CheckWidth(n.Port(ArrayData), v, a.width)
	if i < 0 || i >= len(a.words) || a.words[i].EEQ(v) {
		return
	}
	a.words[i] = v
	n.SendVec4PV(v, i*a.width, len(a.words)*a.width, nil)
}

// Init implements evsim.Initializer.
//
func (a *Array) Init(n *evsim.Net) { n.SendVec4(logic.Concat(a.words...), nil) }

// RecvVec4 implements evsim.Functor.
//
func (a *Array) RecvVec4(p evsim.Port, v logic.Vector4, _ *evsim.Context) {
	p.Net.CheckPort(p, len(a.inputs))
	old := a.inputs[p.Index].Value(0)
	if !a.recv(p, v) || p.Index != ArrayClock {
		return
	}
	if logic.Edge(old, v.Value(0)) <= 0 || a.inputs[ArrayWE].Value(0) != logic.B1 {
		return
	}
	addr, ok := a.inputs[ArrayAddr].Uint64()
	if !ok || addr >= uint64(len(a.words)) {
		return
	}
	a.Write(p.Net, int(addr), a.inputs[ArrayData])
}

// SpecArray returns the PartSpec of an array of n words.
//
//	Inputs: addr, d, we, clk
//	Outputs: out
//
func SpecArray(n, width, addrWidth int) *netlist.PartSpec {
	return spec("ARRAY"+strconv.Itoa(n)+"x"+strconv.Itoa(width), []string{pAddr, pD, pWE, pClk}, n*width,
		func() evsim.Functor { return NewArray(n, width, addrWidth) })
}
