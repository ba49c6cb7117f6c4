// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"github.com/db47h/evsim"
	hl "github.com/db47h/evsim/hwlib"
	"github.com/db47h/evsim/logic"
	"github.com/db47h/evsim/netlist"
	"github.com/pkg/errors"
)

// A design builds itself into s and returns a recorder of the nets to trace.
type design func(s *evsim.Simulation) (*evsim.Recorder, error)

var designs = map[string]design{
	"counter": counter,
	"xor":     xorGate,
}

// build adds parts to a new design, elaborates it and returns the design
// together with the input drivers found in parts.
func build(s *evsim.Simulation, parts ...netlist.Part) (*netlist.Design, map[string]*hl.Input, error) {
	d := netlist.NewDesign(netlist.Config{PinLimit: s.Config().PinLimit})
	ins := make(map[string]*hl.Input)
	for _, p := range parts {
		n, err := d.Add(p)
		if err != nil {
			return nil, nil, err
		}
		if n == nil {
			continue
		}
		if in, ok := n.Fun.(*hl.Input); ok {
			l, _ := n.PinByName("out")
			ins[l.Nexus().Name] = in
		}
	}
	if err := d.Check(); err != nil {
		return nil, nil, err
	}
	if err := d.Elaborate(s); err != nil {
		return nil, nil, err
	}
	return d, ins, nil
}

func trace(s *evsim.Simulation, d *netlist.Design, names ...string) (*evsim.Recorder, error) {
	r := evsim.NewRecorder(s)
	for _, name := range names {
		x, ok := d.Lookup(name)
		if !ok || x.Net() == nil {
			return nil, errors.Errorf("no net for %q", name)
		}
		r.Watch(s, x.Net())
	}
	return r, nil
}

// setter returns a thread callback that drives v onto in.
func setter(in *hl.Input, v logic.Vector4) func(*evsim.Thread) {
	return func(*evsim.Thread) { in.Set(v) }
}

// counter is a 4 bits synchronous counter with an active low reset, clocked
// by a thread with a period of 10.
func counter(s *evsim.Simulation) (*evsim.Recorder, error) {
	one, err := hl.ConstN("4'd1")
	if err != nil {
		return nil, err
	}
	en, err := hl.ConstN("1")
	if err != nil {
		return nil, err
	}
	d, ins, err := build(s,
		hl.InputN(1)("out=clk"),
		hl.InputN(4)("out=nrst"),
		en("out=en"),
		one("out=one"),
		hl.AdderN(4)("a=q, b=one, out=sum"),
		hl.GateN(hl.OpAnd, 4, 2).NewPart("in[0]=sum, in[1]=nrst, out=d"),
		hl.DFFN(4)("d=d, clk=clk, en=en, out=q"),
	)
	if err != nil {
		return nil, err
	}
	clk, nrst := ins["clk"], ins["nrst"]
	nrst.Set(s.MustConst("0000"))

	p, err := evsim.NewBuilder(s).
		Label("clock").
		Call(setter(clk, s.MustConst("0"))).Delay(5).
		Call(setter(clk, s.MustConst("1"))).Delay(5).
		Jmp("clock").
		Label("reset").Delay(12).Call(setter(nrst, s.MustConst("1111"))).End().
		Build()
	if err != nil {
		return nil, err
	}
	for _, l := range []string{"clock", "reset"} {
		if _, err = s.Start(p, l, nil); err != nil {
			return nil, err
		}
	}
	return trace(s, d, "q")
}

// xorGate is a XOR chip built from NAND gates, driven through its truth
// table.
func xorGate(s *evsim.Simulation) (*evsim.Recorder, error) {
	xor, err := netlist.Chip("XOR", "a, b", "out", 1,
		hl.Nand("a=a, b=b, out=nandAB"),
		hl.Nand("a=a, b=nandAB, out=w0"),
		hl.Nand("a=b, b=nandAB, out=w1"),
		hl.Nand("a=w0, b=w1, out=out"),
	)
	if err != nil {
		return nil, err
	}
	d, ins, err := build(s,
		hl.InputN(1)("out=a"),
		hl.InputN(1)("out=b"),
		xor("a=a, b=b, out=out"),
		hl.Output(func(logic.Vector4) {})("in=out"),
	)
	if err != nil {
		return nil, err
	}
	b := evsim.NewBuilder(s).Label("main")
	for i := 0; i < 4; i++ {
		b.Call(setter(ins["a"], logic.FromUint64(1, uint64(i>>1)))).
			Call(setter(ins["b"], logic.FromUint64(1, uint64(i&1)))).
			Delay(10)
	}
	p, err := b.End().Build()
	if err != nil {
		return nil, err
	}
	if _, err = s.Start(p, "main", nil); err != nil {
		return nil, err
	}
	return trace(s, d, "a", "b", "out")
}
