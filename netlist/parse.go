// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package netlist

import (
	"strconv"

	"github.com/db47h/evsim/internal/hdl"
	"github.com/pkg/errors"
)

// BusPinName returns the name of pin i of bus.
//
func BusPinName(bus string, i int) string {
	return bus + "[" + strconv.Itoa(i) + "]"
}

// IO parses a pin list and expands bus declarations into individual pin names:
//
//	IO("a, b, bus[2]") // []string{"a", "b", "bus[0]", "bus[1]"}
//
// It panics on syntax errors; use ParseIO to get an error instead.
//
func IO(spec string) []string {
	r, err := ParseIO(spec)
	if err != nil {
		panic(err)
	}
	return r
}

// ParseIO is like IO but returns an error on invalid input.
//
func ParseIO(spec string) ([]string, error) {
	var out []string
	p := &hdl.Parser{Input: spec}
	for {
		x, err := p.Next(false)
		if err != nil {
			return nil, err
		}
		switch v := x.(type) {
		case nil:
			return out, nil
		case hdl.Pin:
			out = append(out, v.Name)
		case hdl.PinIndex:
			// in a pin list, an index is a bus size.
			for i := 0; i < v.Index; i++ {
				out = append(out, BusPinName(v.Name, i))
			}
		case hdl.PinRange:
			return nil, errors.Errorf("in %q at pos %d: bus range in pin list", spec, v.Pos+1)
		}
	}
}

// A Connection connects part pins (PP) to nexus names (CP).
//
type Connection struct {
	PP []string
	CP []string
}

// ParseConnections parses a connection string of the form:
//
//	"a=x, b=bus[2], out[0..3]=data[4..7]"
//
// Ranges on either side are expanded. Ranges of the same size are connected
// pin to pin; a single pin on either side is connected to all the pins on
// the other side.
//
func ParseConnections(c string) ([]Connection, error) {
	var conns []Connection
	p := &hdl.Parser{Input: c}
	for {
		x, err := p.Next(true)
		if err != nil {
			return nil, err
		}
		if x == nil {
			return conns, nil
		}
		a, ok := x.(hdl.PinAssignment)
		if !ok {
			return nil, errors.Errorf("in %q: pin %v not connected", c, x)
		}
		pp, err := expand(a.LHS)
		if err != nil {
			return nil, errors.Wrapf(err, "in %q", c)
		}
		cp, err := expand(a.RHS)
		if err != nil {
			return nil, errors.Wrapf(err, "in %q", c)
		}
		if len(pp) != len(cp) && len(pp) != 1 && len(cp) != 1 {
			return nil, errors.Errorf("in %q: pin count mismatch in pin mapping %v=%v", c, pp, cp)
		}
		conns = append(conns, Connection{pp, cp})
	}
}

func expand(pin interface{}) ([]string, error) {
	switch v := pin.(type) {
	case hdl.Pin:
		return []string{v.Name}, nil
	case hdl.PinIndex:
		return []string{BusPinName(v.Name, v.Index)}, nil
	case hdl.PinRange:
		if v.End < v.Start {
			return nil, errors.Errorf("invalid bus range %s[%d..%d]", v.Name, v.Start, v.End)
		}
		r := make([]string, 0, v.End-v.Start+1)
		for i := v.Start; i <= v.End; i++ {
			r = append(r, BusPinName(v.Name, i))
		}
		return r, nil
	}
	return nil, errors.Errorf("unexpected pin %v", pin)
}

// pairs returns the (part pin, nexus name) pairs of c.
func (c *Connection) pairs() [][2]string {
	var r [][2]string
	switch {
	case len(c.PP) == len(c.CP):
		for i := range c.PP {
			r = append(r, [2]string{c.PP[i], c.CP[i]})
		}
	case len(c.PP) == 1:
		for _, cp := range c.CP {
			r = append(r, [2]string{c.PP[0], cp})
		}
	default:
		for _, pp := range c.PP {
			r = append(r, [2]string{pp, c.CP[0]})
		}
	}
	return r
}
