// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/evsim"
	"github.com/db47h/evsim/logic"
	"github.com/db47h/evsim/netlist"
)

// Bufif is a tri-state buffer: port 0 is the data input, port 1 the enable.
// Both have the same width. Enabled bits drive the data (inverted for notif
// gates) with the buffer's strengths; disabled bits are HiZ. An unknown
// enable drives a range between HiZ and the data value (L or H).
//
type Bufif struct {
	trigger
	activeHigh bool
	invert     bool
	s0, s1     logic.Strength
}

// NewBufif returns a bufif1 (activeHigh) or bufif0 gate. If invert is set
// the gate is a notif1 or notif0.
//
func NewBufif(width int, activeHigh, invert bool, s0, s1 logic.Strength) *Bufif {
	return &Bufif{trigger{inputs: newInputs(width, width)}, activeHigh, invert, s0, s1}
}

// Eval implements evsim.Evaluator.
//
func (b *Bufif) Eval(n *evsim.Net) {
	d, en := b.inputs[0], b.inputs[1]
	out := logic.NewVector8(d.Size())
	for i := 0; i < d.Size(); i++ {
		v := d.Value(i).Z2X()
		if b.invert {
			v = v.Not()
		}
		e := en.Value(i).Z2X()
		if !b.activeHigh && e != logic.BX {
			e ^= 1
		}
		switch e {
		case logic.B1:
			out.SetBit(i, logic.NewScalar(v, b.s0, b.s1))
		case logic.BX:
			switch v {
			case logic.B0:
				out.SetBit(i, logic.NewScalar(logic.BX, b.s0, logic.HiZ))
			case logic.B1:
				out.SetBit(i, logic.NewScalar(logic.BX, logic.HiZ, b.s1))
			default:
				out.SetBit(i, logic.NewScalar(logic.BX, b.s0, b.s1))
			}
		}
	}
	n.SendVec8(out)
}

func bufifSpec(name string, activeHigh, invert bool) func(int) *netlist.PartSpec {
	return func(width int) *netlist.PartSpec {
		return spec(name, []string{pIn, pEn}, width, func() evsim.Functor {
			return NewBufif(width, activeHigh, invert, logic.Strong, logic.Strong)
		})
	}
}

// Tri-state buffer part specs. The functor instances drive with strong
// strengths; set PartSpec.Drive0/Drive1 to insert a weaker drive.
//
//	Inputs: in, en
//	Outputs: out
//
var (
	Bufif0 = bufifSpec("BUFIF0", false, false)
	Bufif1 = bufifSpec("BUFIF1", true, false)
	Notif0 = bufifSpec("NOTIF0", false, true)
	Notif1 = bufifSpec("NOTIF1", true, true)
)
