// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits.
//
package hwtest

import (
	"testing"

	"github.com/db47h/evsim"
	"github.com/db47h/evsim/hwlib"
	"github.com/db47h/evsim/logic"
	"github.com/db47h/evsim/netlist"
)

// A Harness wraps a design and its simulation for tests. Inputs are driven by
// name and outputs read by nexus name. Any error is fatal to the test.
//
type Harness struct {
	T      testing.TB
	Sim    *evsim.Simulation
	Design *netlist.Design

	inputs map[string]*hwlib.Input
	done   bool
}

// New returns a harness with an empty design.
//
func New(t testing.TB, cfg evsim.Config) *Harness {
	t.Helper()
	s, err := evsim.New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	return &Harness{
		T:      t,
		Sim:    s,
		Design: netlist.NewDesign(netlist.Config{PinLimit: cfg.PinLimit}),
		inputs: make(map[string]*hwlib.Input),
	}
}

// Add adds parts to the design.
//
func (h *Harness) Add(parts ...netlist.Part) *Harness {
	h.T.Helper()
	for _, p := range parts {
		if _, err := h.Design.Add(p); err != nil {
			h.T.Fatal(err)
		}
	}
	return h
}

// Input adds an input driver of the given width to the named nexus.
//
func (h *Harness) Input(name string, width int) *Harness {
	h.T.Helper()
	n, err := h.Design.Add(hwlib.InputN(width)("out=" + name))
	if err != nil {
		h.T.Fatal(err)
	}
	h.inputs[name] = n.Fun.(*hwlib.Input)
	return h
}

// Elaborate checks and elaborates the design. It is called by the first
// Settle if needed.
//
func (h *Harness) Elaborate() {
	h.T.Helper()
	if h.done {
		return
	}
	h.done = true
	if err := h.Design.Check(); err != nil {
		h.T.Fatal(err)
	}
	if err := h.Design.Elaborate(h.Sim); err != nil {
		h.T.Fatal(err)
	}
}

// Set drives v onto the named input. v is a literal as accepted by
// Simulation.Const.
//
func (h *Harness) Set(name string, lit string) {
	h.T.Helper()
	in, ok := h.inputs[name]
	if !ok {
		h.T.Fatalf("no input named %q", name)
	}
	v, err := h.Sim.Const(lit)
	if err != nil {
		h.T.Fatal(err)
	}
	in.Set(v)
}

// SetVec is like Set with a vector value.
//
func (h *Harness) SetVec(name string, v logic.Vector4) {
	h.T.Helper()
	in, ok := h.inputs[name]
	if !ok {
		h.T.Fatalf("no input named %q", name)
	}
	in.Set(v)
}

// Settle processes all the events of the current time slot. Events
// scheduled in the future are left pending.
//
func (h *Harness) Settle() {
	h.T.Helper()
	h.Elaborate()
	if err := h.Sim.RunUntil(h.Sim.Now()); err != nil {
		h.T.Fatal(err)
	}
}

// Step runs the simulation for d time units.
//
func (h *Harness) Step(d evsim.Time) {
	h.T.Helper()
	h.Elaborate()
	if err := h.Sim.RunUntil(h.Sim.Now() + d); err != nil {
		h.T.Fatal(err)
	}
}

// Get returns the value of the named nexus.
//
func (h *Harness) Get(name string) logic.Vector4 {
	h.T.Helper()
	x, ok := h.Design.Lookup(name)
	if !ok {
		h.T.Fatalf("no nexus named %q", name)
	}
	v, ok := x.Value()
	if !ok {
		h.T.Fatalf("nexus %q has no value", name)
	}
	return v
}

// String returns the value of the named nexus as a string, most significant
// bit first.
//
func (h *Harness) String(name string) string {
	h.T.Helper()
	return h.Get(name).String()
}

// Strength returns the strength vector of the named nexus. The nexus must be
// driven by a strength aware functor.
//
func (h *Harness) Strength(name string) logic.Vector8 {
	h.T.Helper()
	x, ok := h.Design.Lookup(name)
	if !ok || x.Net() == nil {
		h.T.Fatalf("no net for nexus %q", name)
	}
	v, ok := x.Net().Strength()
	if !ok {
		h.T.Fatalf("nexus %q has no strength value", name)
	}
	return v
}
