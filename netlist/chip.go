// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package netlist

import (
	"strconv"

	"github.com/pkg/errors"
)

// Chip composes existing parts into a new part packaged into a chip.
// The pin names specified as inputs and output will be the pins of the chip.
// Any other nexus name used by the sub-parts is local to each instance of the
// chip.
//
// An Xor gate could be created like this:
//
//	xor, err := netlist.Chip("XOR", "a, b", "out", 1,
//		hwlib.Nand("a=a, b=b, out=nandAB"),
//		hwlib.Nand("a=a, b=nandAB, out=w0"),
//		hwlib.Nand("a=b, b=nandAB, out=w1"),
//		hwlib.Nand("a=w0, b=w1, out=out"),
//	)
//
// The returned value is a function of type NewPartFn that can be used to
// compose the new part with others into other chips:
//
//	xnor, err := netlist.Chip("XNOR", "a, b", "out", 1,
//		xor("a=a, b=b, out=xorAB"),
//		hwlib.Not("in=xorAB, out=out"),
//	)
//
func Chip(name string, inputs, output string, width int, parts ...Part) (NewPartFn, error) {
	in, err := ParseIO(inputs)
	if err != nil {
		return nil, errors.Wrapf(err, "chip %s", name)
	}
	p := &PartSpec{Name: name, Inputs: in, Output: output, Width: width, Parts: parts}
	pins := make(map[string]bool)
	for _, n := range p.pinNames() {
		if pins[n] {
			return nil, errors.Errorf("chip %s: duplicate pin name %q", name, n)
		}
		pins[n] = true
	}
	driven := false
	for _, sp := range parts {
		for _, c := range sp.Conns {
			for _, pr := range c.pairs() {
				if pr[1] == output && sp.Output == pr[0] {
					driven = true
				}
				if !sp.hasPin(pr[0]) {
					return nil, errors.New("chip " + name + ": invalid pin name " + pr[0] + " for part " + sp.Name)
				}
			}
		}
	}
	if output != "" && !driven {
		return nil, errors.Errorf("chip %s: output pin %s not connected to any output", name, output)
	}
	return p.NewPart, nil
}

func (p *PartSpec) hasPin(name string) bool {
	for _, n := range p.pinNames() {
		if n == name {
			return true
		}
	}
	return false
}

// addChip flattens the chip instance p into d. Local nexus names are
// prefixed with the instance name.
func (d *Design) addChip(name string, p Part) error {
	if name == "" {
		name = p.Name + strconv.Itoa(d.count[p.Name])
		d.count[p.Name]++
	}
	ext := make(map[string]string)
	for _, c := range p.Conns {
		for _, pr := range c.pairs() {
			if !p.hasPin(pr[0]) {
				return errors.New("invalid pin name " + pr[0] + " for part " + p.Name)
			}
			if prev, ok := ext[pr[0]]; ok {
				// one pin wired to several nexuses merges them.
				Connect(d.anchor(prev), d.anchor(pr[1]))
				continue
			}
			ext[pr[0]] = pr[1]
		}
	}
	local := func(n string) string {
		if e, ok := ext[n]; ok {
			return e
		}
		return name + "." + n
	}
	for i, sp := range p.Parts {
		conns := make([]Connection, len(sp.Conns))
		for j, c := range sp.Conns {
			cp := make([]string, len(c.CP))
			for k, n := range c.CP {
				cp[k] = local(n)
			}
			conns[j] = Connection{PP: c.PP, CP: cp}
		}
		if _, err := d.AddNamed(name+"."+sp.Name+strconv.Itoa(i), Part{sp.PartSpec, conns}); err != nil {
			return errors.Wrapf(err, "chip %s", name)
		}
	}
	return nil
}
