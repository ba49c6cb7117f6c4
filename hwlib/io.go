// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"strconv"
	"sync"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/logic"
	"github.com/db47h/evsim/netlist"
	"github.com/pkg/errors"
)

var (
	litMu   sync.Mutex
	lits, _ = logic.NewLiteralCache(128)
)

// Const drives a constant value. It has no inputs.
//
type Const struct {
	V logic.Vector4
}

// RecvVec4 implements evsim.Functor.
//
func (c *Const) RecvVec4(p evsim.Port, _ logic.Vector4, _ *evsim.Context) {
	p.Net.Fatalf("constant driver has no input port, got value on %v", p)
}

// Init implements evsim.Initializer.
//
func (c *Const) Init(n *evsim.Net) { n.SendVec4(c.V, nil) }

// Const8 drives a constant strength vector.
//
type Const8 struct {
	V logic.Vector8
}

// RecvVec4 implements evsim.Functor.
//
func (c *Const8) RecvVec4(p evsim.Port, _ logic.Vector4, _ *evsim.Context) {
	p.Net.Fatalf("constant driver has no input port, got value on %v", p)
}

// Init implements evsim.Initializer.
//
func (c *Const8) Init(n *evsim.Net) { n.SendVec8(c.V) }

// ConstN returns a constant driver. lit is any literal accepted by
// logic.ParseVector4 or, for strength values, logic.ParseVector8 ("C8<...>").
//
//	Outputs: out
//	Function: out = lit
//
func ConstN(lit string) (netlist.NewPartFn, error) {
	litMu.Lock()
	defer litMu.Unlock()
	var p *netlist.PartSpec
	if v, err := lits.Vector4(lit); err == nil {
		p = spec("CONST", nil, v.Size(), func() evsim.Functor { return &Const{v} })
	} else if v8, err8 := lits.Vector8(lit); err8 == nil {
		p = spec("CONST", nil, v8.Size(), func() evsim.Functor { return &Const8{v8} })
	} else {
		return nil, errors.Wrapf(err, "constant %q", lit)
	}
	return p.NewPart, nil
}

// Input is a driver set from outside of the simulation, typically by a test
// harness. The initial value is all X.
//
type Input struct {
	net *evsim.Net
	v   logic.Vector4
}

// NewInput returns an input driver of the given width.
//
func NewInput(width int) *Input { return &Input{v: logic.NewVector4(width, logic.BX)} }

// RecvVec4 implements evsim.Functor.
//
func (in *Input) RecvVec4(p evsim.Port, _ logic.Vector4, _ *evsim.Context) {
	p.Net.Fatalf("input driver has no input port, got value on %v", p)
}

// Init implements evsim.Initializer.
//
func (in *Input) Init(n *evsim.Net) {
	in.net = n
	n.SendVec4(in.v, nil)
}

// Set drives v in the active region of the current time slot. It must be
// called after the design has been elaborated.
//
func (in *Input) Set(v logic.Vector4) {
	in.v = v
	n := in.net
	if n == nil {
		return
	}
	n.Sim().ScheduleActive(0, func() { n.SendVec4(v, nil) })
}

// Value returns the last value set.
//
func (in *Input) Value() logic.Vector4 { return in.v }

// InputN creates an input bus of the given bits size. The Input functor is
// available from the node's Fun field.
//
//	Outputs: out
//
func InputN(bits int) netlist.NewPartFn {
	return spec("INPUT"+strconv.Itoa(bits), nil, bits, func() evsim.Functor { return NewInput(bits) }).NewPart
}

// Probe calls a function with every value received on its single input.
//
type Probe func(t evsim.Time, v logic.Vector4)

// RecvVec4 implements evsim.Functor.
//
func (f Probe) RecvVec4(p evsim.Port, v logic.Vector4, _ *evsim.Context) {
	f(p.Net.Sim().Now(), v)
}

// Output creates an output or probe. The fn function is
// called with the named pin state on every update.
//
//	Inputs: in
//	Function: f(in)
//
func Output(f func(logic.Vector4)) netlist.NewPartFn {
	return (&netlist.PartSpec{
		Name:   "Output",
		Inputs: []string{pIn},
		New: func() evsim.Functor {
			return Probe(func(_ evsim.Time, v logic.Vector4) { f(v) })
		},
	}).NewPart
}
