// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of functors for evsim, together with the
// netlist part specifications that use them.
//
// Copyright 2018 Denis Bernard <db047h@gmail.com>
//
// This package is licensed under the MIT license. See license text in the LICENSE file.
//
package hwlib

import (
	"strconv"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/logic"
	"github.com/db47h/evsim/netlist"
)

// common pin names
const (
	pA    = "a"
	pB    = "b"
	pIn   = "in"
	pSel  = "sel"
	pOut  = "out"
	pClk  = "clk"
	pEn   = "en"
	pD    = "d"
	pAddr = "addr"
	pWE   = "we"
)

// make a bus name
func bus(bits int, names ...string) []string {
	b := make([]string, len(names)*bits)
	for i, n := range names {
		for j := 0; j < bits; j++ {
			b[i*bits+j] = n + "[" + strconv.Itoa(j) + "]"
		}
	}
	return b
}

// inputs holds the last value received on each port of a functor. Ports
// start with all bits X.
type inputs []logic.Vector4

func newInputs(widths ...int) inputs {
	in := make(inputs, len(widths))
	for i, w := range widths {
		in[i] = logic.NewVector4(w, logic.BX)
	}
	return in
}

// recv stores v and returns true if it changed the value of port p.
func (in inputs) recv(p evsim.Port, v logic.Vector4) bool {
	p.Net.CheckPort(p, len(in))
	p.Net.CheckWidth(p, v, in[p.Index].Size())
	if in[p.Index].EEQ(v) {
		return false
	}
	in[p.Index] = v
	return true
}

// trigger is embedded by functors that evaluate their output on demand.
// Repeated changes within a batch of active events yield one evaluation. The
// first value received always triggers an evaluation.
type trigger struct {
	inputs
	started bool
}

func (t *trigger) RecvVec4(p evsim.Port, v logic.Vector4, _ *evsim.Context) {
	if t.recv(p, v) || !t.started {
		t.started = true
		p.Net.Trigger()
	}
}

func repeat(n, w int) []int {
	r := make([]int, n)
	for i := range r {
		r[i] = w
	}
	return r
}

func spec(name string, in []string, width int, f func() evsim.Functor) *netlist.PartSpec {
	return &netlist.PartSpec{Name: name, Inputs: in, Output: pOut, Width: width, New: f}
}
