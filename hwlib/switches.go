// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/evsim"
	"github.com/db47h/evsim/logic"
	"github.com/db47h/evsim/netlist"
)

// reduce returns s after it went through a pass device.
func reduce(s logic.Scalar, resistive bool) logic.Scalar {
	if s.IsHiZ() {
		return s
	}
	return logic.NewScalar(s.Value(),
		logic.SwitchStrength(s.Strength0(), resistive),
		logic.SwitchStrength(s.Strength1(), resistive))
}

// gated returns the output of a switch for data scalar d and control bit g
// (1 means conducting).
func gated(d logic.Scalar, g logic.Bit4, resistive bool) logic.Scalar {
	d = reduce(d, resistive)
	switch g.Z2X() {
	case logic.B1:
		return d
	case logic.B0:
		return 0
	}
	switch d.Value() {
	case logic.B0:
		return logic.NewScalar(logic.BX, d.Strength0(), logic.HiZ)
	case logic.B1:
		return logic.NewScalar(logic.BX, logic.HiZ, d.Strength1())
	}
	return d
}

// Switch is a MOS pass transistor. Port 0 is the data input, strength aware,
// port 1 the gate. nmos switches conduct on gate 1, pmos switches on gate 0.
// Resistive switches reduce the strength of the data by one more notch.
//
type Switch struct {
	data      logic.Vector8
	gate      logic.Vector4
	pmos      bool
	resistive bool
}

// NewSwitch returns an nmos (or pmos) switch of the given width.
//
func NewSwitch(width int, pmos, resistive bool) *Switch {
	return &Switch{
		data:      logic.NewVector8(width),
		gate:      logic.NewVector4(width, logic.BX),
		pmos:      pmos,
		resistive: resistive,
	}
}

// RecvVec4 implements evsim.Functor.
//
func (s *Switch) RecvVec4(p evsim.Port, v logic.Vector4, _ *evsim.Context) {
	if p.Index == 0 {
		s.RecvVec8(p, logic.FromVector4(v, logic.Strong, logic.Strong))
		return
	}
	p.Net.CheckPort(p, 2)
	p.Net.CheckWidth(p, v, s.gate.Size())
	if !s.gate.EEQ(v) {
		s.gate = v
		p.Net.Trigger()
	}
}

// RecvVec8 implements evsim.StrengthReceiver.
//
func (s *Switch) RecvVec8(p evsim.Port, v logic.Vector8) {
	p.Net.CheckPort(p, 2)
	if p.Index != 0 {
		s.RecvVec4(p, v.Reduce4(), nil)
		return
	}
	if v.Size() != s.data.Size() {
		p.Net.Fatalf("port %v: strength vector is %d bits wide, want %d", p, v.Size(), s.data.Size())
	}
	if !s.data.EEQ(v) {
		s.data = v.Clone()
		p.Net.Trigger()
	}
}

// Eval implements evsim.Evaluator.
//
func (s *Switch) Eval(n *evsim.Net) {
	out := logic.NewVector8(s.data.Size())
	for i := 0; i < out.Size(); i++ {
		g := s.gate.Value(i).Z2X()
		if s.pmos && g != logic.BX {
			g ^= 1
		}
		out.SetBit(i, gated(s.data.Value(i), g, s.resistive))
	}
	n.SendVec8(out)
}

// CMOS is a complementary switch: port 0 is the data input, port 1 the
// nmos gate and port 2 the pmos gate. The contributions of both devices are
// resolved together.
//
type CMOS struct {
	n, p *Switch
}

// NewCMOS returns a cmos (or rcmos) switch of the given width.
//
func NewCMOS(width int, resistive bool) *CMOS {
	return &CMOS{NewSwitch(width, false, resistive), NewSwitch(width, true, resistive)}
}

// RecvVec4 implements evsim.Functor.
//
func (c *CMOS) RecvVec4(p evsim.Port, v logic.Vector4, _ *evsim.Context) {
	if p.Index == 0 {
		c.RecvVec8(p, logic.FromVector4(v, logic.Strong, logic.Strong))
		return
	}
	p.Net.CheckPort(p, 3)
	p.Net.CheckWidth(p, v, c.n.gate.Size())
	g := &c.n.gate
	if p.Index == 2 {
		g = &c.p.gate
	}
	if !g.EEQ(v) {
		*g = v
		p.Net.Trigger()
	}
}

// RecvVec8 implements evsim.StrengthReceiver.
//
func (c *CMOS) RecvVec8(p evsim.Port, v logic.Vector8) {
	if p.Index != 0 {
		c.RecvVec4(p, v.Reduce4(), nil)
		return
	}
	if v.Size() != c.n.data.Size() {
		p.Net.Fatalf("port %v: strength vector is %d bits wide, want %d", p, v.Size(), c.n.data.Size())
	}
	if !c.n.data.EEQ(v) {
		c.n.data = v.Clone()
		c.p.data = c.n.data
		p.Net.Trigger()
	}
}

// Eval implements evsim.Evaluator.
//
func (c *CMOS) Eval(n *evsim.Net) {
	out := logic.NewVector8(c.n.data.Size())
	for i := 0; i < out.Size(); i++ {
		d := c.n.data.Value(i)
		ng := c.n.gate.Value(i).Z2X()
		pg := c.p.gate.Value(i).Z2X()
		if pg != logic.BX {
			pg ^= 1
		}
		out.SetBit(i, logic.Resolve(gated(d, ng, c.n.resistive), gated(d, pg, c.p.resistive)))
	}
	n.SendVec8(out)
}

func switchSpec(name string, pmos, resistive bool) func(int) *netlist.PartSpec {
	return func(width int) *netlist.PartSpec {
		return spec(name, []string{pIn, "gate"}, width, func() evsim.Functor {
			return NewSwitch(width, pmos, resistive)
		})
	}
}

func cmosSpec(name string, resistive bool) func(int) *netlist.PartSpec {
	return func(width int) *netlist.PartSpec {
		return spec(name, []string{pIn, "ngate", "pgate"}, width, func() evsim.Functor {
			return NewCMOS(width, resistive)
		})
	}
}

// Switch part specs.
//
//	Inputs: in, gate (in, ngate, pgate for CMOS)
//	Outputs: out
//
var (
	NMOS      = switchSpec("NMOS", false, false)
	PMOS      = switchSpec("PMOS", true, false)
	RNMOS     = switchSpec("RNMOS", false, true)
	RPMOS     = switchSpec("RPMOS", true, true)
	CMOSSpec  = cmosSpec("CMOS", false)
	RCMOSSpec = cmosSpec("RCMOS", true)
)
